package commands

import (
	"encoding/json"
	"modelcatalog/internal/catalog"

	"github.com/spf13/cobra"
)

var listFlags struct {
	search       string
	capabilities []string
	sort         string
	descending   bool
	fuzzy        bool
	json         bool
}

func init() {
	flags := listCmd.Flags()
	flags.StringVarP(&listFlags.search, "search", "s", "", "Only models whose name or description contains this text.")
	flags.StringSliceVar(&listFlags.capabilities, "capability", nil, "Only models with every given capability (tools, vision, ...).")
	flags.StringVar(&listFlags.sort, "sort", string(catalog.SortName), "Sort by name, pulls, tags, updated or size.")
	flags.BoolVar(&listFlags.descending, "desc", false, "Reverse the sort order.")
	flags.BoolVar(&listFlags.fuzzy, "fuzzy", false, "Also match names that are similar to the search text.")
	flags.BoolVar(&listFlags.json, "json", false, "Print json instead of a table.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--search <text>] [--capability <name>] [--sort <key>]",
	Short: "Lists the persisted catalog, filtered and sorted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sortKey, err := catalog.ParseSortKey(listFlags.sort)
		if err != nil {
			return err
		}

		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.warm(cmd.Context())
		if err != nil {
			return err
		}

		snap := a.cache.Snapshot()
		models := catalog.Apply(snap.Models, catalog.Query{
			Search:       listFlags.search,
			Capabilities: listFlags.capabilities,
			Sort:         sortKey,
			Descending:   listFlags.descending,
			Fuzzy:        listFlags.fuzzy,
		})

		if listFlags.json {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(models)
		}
		renderModels(cmd.OutOrStdout(), models, snap.UpdatedAt)
		return nil
	},
}
