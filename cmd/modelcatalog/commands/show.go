package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"modelcatalog/internal/catalog"

	"github.com/spf13/cobra"
)

var showJson bool

func init() {
	showCmd.Flags().BoolVar(&showJson, "json", false, "Print json instead of tables.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Shows one model of the persisted catalog with all of its versions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.warm(cmd.Context())
		if err != nil {
			return err
		}

		model, err := a.cache.Get(args[0])
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%s is not in the catalog, try `modelcatalog list --search %s --fuzzy`", args[0], args[0])
		}
		if err != nil {
			return err
		}

		if showJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(model)
		}
		renderModel(cmd.OutOrStdout(), model)
		return nil
	},
}
