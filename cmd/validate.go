package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geon/internal/validate"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check GEON documents against the vocabulary and geometry rules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(validateCmd)
}

type placeReport struct {
	File   string           `json:"file"`
	Place  string           `json:"place"`
	Result *validate.Result `json:"result"`
}

func validateFiles(ctx context.Context, paths []string) ([]placeReport, error) {
	perFile := make([][]placeReport, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			places, err := loadPlaces(path)
			if err != nil {
				return err
			}
			for _, p := range places {
				perFile[i] = append(perFile[i], placeReport{File: path, Place: p.Name, Result: validate.Validate(p)})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var reports []placeReport
	for _, r := range perFile {
		reports = append(reports, r...)
	}
	return reports, nil
}

func runValidate(ctx context.Context, out io.Writer, paths []string) error {
	reports, err := validateFiles(ctx, paths)
	if err != nil {
		return err
	}

	invalid := 0
	for _, r := range reports {
		if !r.Result.Valid() {
			invalid++
		}
	}

	if validateJSON {
		if reports == nil {
			reports = []placeReport{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return eris.Wrap(err, "encode json")
		}
	} else {
		for _, r := range reports {
			fmt.Fprintf(out, "%s: %s\n", r.File, r.Place)
			for _, issue := range r.Result.Issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
			if len(r.Result.Issues) == 0 {
				fmt.Fprintf(out, "  %s\n", r.Result)
			}
		}
	}

	if invalid > 0 {
		return eris.Errorf("validate: %d of %d place(s) invalid", invalid, len(reports))
	}
	return nil
}
