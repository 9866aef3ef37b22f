package commands

import (
	"fmt"
	"io"
	"math"
	"modelcatalog/internal/catalog"
	"modelcatalog/internal/components/telemetry"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// formatCount renders "12.3M" as "12,300,000", unparsable counts are shown
// as is.
func formatCount(text string) string {
	value, ok := catalog.ParseCount(text)
	if !ok {
		return text
	}
	return humanize.Comma(int64(math.Round(value)))
}

func formatBytes(text string) string {
	value, ok := catalog.ParseBytes(text)
	if !ok {
		return text
	}
	return humanize.Bytes(value)
}

func formatUpdated(at time.Time) string {
	if at.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", at.Format(time.DateTime), humanize.Time(at))
}

func renderModels(out io.Writer, models []catalog.Model, updatedAt time.Time) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Name", "Capabilities", "Sizes", "Pulls", "Tags", "Updated"})
	for _, m := range models {
		t.AppendRow(table.Row{
			m.Name,
			strings.Join(m.Capabilities, ", "),
			strings.Join(m.Sizes, ", "),
			formatCount(m.PullCount),
			m.TagCount,
			m.Updated,
		})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d models", len(models)),
		"", "", "", "",
		formatUpdated(updatedAt),
	})
	t.Render()
}

func renderModel(out io.Writer, m catalog.Model) {
	info := newTable(out)
	info.AppendRows([]table.Row{
		{"Name", m.Name},
		{"Title", m.Title},
		{"Description", m.Description},
		{"URL", m.URL},
		{"Capabilities", strings.Join(m.Capabilities, ", ")},
		{"Sizes", strings.Join(m.Sizes, ", ")},
		{"Pulls", formatCount(m.PullCount)},
		{"Tags", m.TagCount},
		{"Updated", m.Updated},
	})
	info.Render()

	if len(m.Versions) == 0 {
		return
	}
	versions := newTable(out)
	versions.AppendHeader(table.Row{"Version", "Digest", "Size", "Context", "Input", "Updated"})
	for _, v := range m.Versions {
		versions.AppendRow(table.Row{
			v.Name,
			v.Digest,
			formatBytes(v.Size),
			v.Context,
			v.Input,
			v.Updated,
		})
	}
	versions.Render()
}

func renderLogs(out io.Writer, entries []telemetry.Entry) {
	for _, e := range entries {
		fmt.Fprintln(out, e.String())
	}
}
