package longevity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by WriteStats.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTable = "table"
	FormatPlot  = "plot"
)

// ErrUnknownFormat reports an output format WriteStats does not support.
var ErrUnknownFormat = errors.New("unknown output format")

// WriteStats serializes stats to w in the requested format.
func WriteStats(stats *Stats, format string, w io.Writer) error {
	switch format {
	case FormatYAML, "":
		return writeYAML(stats, w)
	case FormatJSON:
		return writeJSON(stats, w)
	case FormatTable:
		return writeTable(stats, w)
	case FormatPlot:
		return WritePlot(stats, w)
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func writeYAML(stats *Stats, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	return nil
}

func writeJSON(stats *Stats, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

func writeTable(stats *Stats, w io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"Author", "Lines", "Average Age"})

	for _, author := range stats.Authors {
		tbl.AppendRow(table.Row{
			author.Name,
			humanize.Comma(author.LineCount),
			FormatAge(author.AverageAgeSeconds),
		})
	}

	tbl.AppendFooter(table.Row{
		"repository",
		humanize.Comma(stats.LineCount),
		FormatAge(stats.AverageAgeSeconds),
	})

	tbl.Render()

	return nil
}

// FormatAge renders an age in seconds as a rounded human phrase.
func FormatAge(seconds int64) string {
	if seconds == 0 {
		return "0 seconds"
	}

	phrase := humanize.RelTime(time.Unix(0, 0), time.Unix(seconds, 0), "", "")

	return strings.TrimSpace(phrase)
}
