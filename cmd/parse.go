package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geon/internal/model"
)

var (
	parseOutput string
	parseStrict bool
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a GEON document and print it as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "json", "output format: json or yaml")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "fail when any line was skipped")
	rootCmd.AddCommand(parseCmd)
}

func runParse(out, errOut io.Writer, path string) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	for _, d := range doc.Diagnostics {
		fmt.Fprintf(errOut, "%s:%d: %s\n", path, d.Line, d.Message)
	}
	if parseStrict && len(doc.Diagnostics) > 0 {
		return eris.Errorf("parse %s: %d skipped lines", path, len(doc.Diagnostics))
	}
	return writePlacesAs(out, doc.Places, parseOutput)
}

func writePlacesAs(out io.Writer, places []*model.Place, format string) error {
	if places == nil {
		places = []*model.Place{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(places), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(places); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	default:
		return eris.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
