package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geon/internal/notation"
)

var (
	fmtWrite bool
	fmtCheck bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE...",
	Short: "Rewrite GEON documents in canonical form",
	Long:  "Prints the canonical form of each document. With --write the files are rewritten in place; with --check unformatted files are listed and the command fails.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFmt(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to the source files")
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "list files whose formatting differs and exit non-zero")
	rootCmd.AddCommand(fmtCmd)
}

type formatted struct {
	path    string
	text    string
	changed bool
}

// formatFiles formats every path concurrently. Results keep argument order.
func formatFiles(ctx context.Context, paths []string) ([]formatted, error) {
	results := make([]formatted, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			data, err := readInput(path)
			if err != nil {
				return err
			}
			places, err := newParser().ParseMany(string(data))
			if err != nil {
				return eris.Wrapf(err, "parse %s", path)
			}
			text := notation.GenerateMany(places)
			results[i] = formatted{path: path, text: text, changed: text != string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runFmt(ctx context.Context, out io.Writer, paths []string) error {
	if fmtWrite {
		for _, p := range paths {
			if p == stdinPath {
				return eris.New("fmt: cannot --write standard input")
			}
		}
	}

	results, err := formatFiles(ctx, paths)
	if err != nil {
		return err
	}

	var unformatted int
	for _, r := range results {
		switch {
		case fmtCheck:
			if r.changed {
				unformatted++
				if _, err := io.WriteString(out, r.path+"\n"); err != nil {
					return err
				}
			}
		case fmtWrite:
			if !r.changed {
				continue
			}
			if err := os.WriteFile(r.path, []byte(r.text), 0o644); err != nil {
				return eris.Wrapf(err, "write %s", r.path)
			}
			zap.L().Info("formatted", zap.String("file", r.path))
		default:
			if _, err := io.WriteString(out, r.text); err != nil {
				return err
			}
		}
	}
	if unformatted > 0 {
		return eris.Errorf("fmt: %d file(s) not formatted", unformatted)
	}
	return nil
}
