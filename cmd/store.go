package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/convert"
	"github.com/sells-group/geon/internal/model"
	"github.com/sells-group/geon/internal/notation"
	"github.com/sells-group/geon/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the place catalog",
}

var storePutCmd = &cobra.Command{
	Use:   "put FILE...",
	Short: "Add or replace the places in GEON files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			return runStorePut(cmd.Context(), cmd.OutOrStdout(), st, args)
		})
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Print a stored place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withStore(cmd.Context(), func(st store.Store) error {
			p, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeStored(cmd.OutOrStdout(), []*model.Place{p}, format)
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored places",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := listFilter(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return withStore(cmd.Context(), func(st store.Store) error {
			places, err := st.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return writeStored(cmd.OutOrStdout(), places, format)
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Remove places from the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			for _, id := range args {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				zap.L().Info("deleted place", zap.String("id", id))
			}
			return nil
		})
	},
}

func init() {
	storeGetCmd.Flags().String("format", formatGEON, "output format: geon, json or geojson")

	storeListCmd.Flags().String("format", formatGEON, "output format: geon, json or geojson")
	storeListCmd.Flags().String("type", "", "filter by TYPE")
	storeListCmd.Flags().String("part-of", "", "filter by PART_OF")
	storeListCmd.Flags().String("name", "", "filter by name substring")
	storeListCmd.Flags().String("bbox", "", "filter by location within north, south, east, west")
	storeListCmd.Flags().Int("limit", 100, "max places to return")
	storeListCmd.Flags().Int("offset", 0, "places to skip")

	storeCmd.AddCommand(storePutCmd, storeGetCmd, storeListCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}

// withStore opens the configured catalog for the duration of fn.
func withStore(ctx context.Context, fn func(store.Store) error) error {
	if err := cfg.Validate("store"); err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return eris.Wrap(err, "open store")
	}
	defer st.Close() //nolint:errcheck
	return fn(st)
}

func runStorePut(ctx context.Context, out io.Writer, st store.Store, paths []string) error {
	var places []*model.Place
	for _, path := range paths {
		ps, err := loadPlaces(path)
		if err != nil {
			return err
		}
		places = append(places, ps...)
	}
	if len(places) == 0 {
		return eris.New("store put: no places found")
	}

	ids, err := st.PutMany(ctx, places)
	if err != nil {
		return err
	}
	for i, id := range ids {
		fmt.Fprintf(out, "%s\t%s\n", id, places[i].Name)
	}
	zap.L().Info("stored places", zap.Int("count", len(ids)))
	return nil
}

func listFilter(cmd *cobra.Command) (store.Filter, error) {
	typ, _ := cmd.Flags().GetString("type")
	partOf, _ := cmd.Flags().GetString("part-of")
	name, _ := cmd.Flags().GetString("name")
	bbox, _ := cmd.Flags().GetString("bbox")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	f := store.Filter{Type: typ, PartOf: partOf, Name: name, Limit: limit, Offset: offset}
	if bbox != "" {
		e, ok := notation.ParseExtent(bbox)
		if !ok {
			return f, eris.Errorf("invalid --bbox %q (want north, south, east, west)", bbox)
		}
		f.Within = &e
	}
	return f, nil
}

func writeStored(out io.Writer, places []*model.Place, format string) error {
	switch format {
	case formatGEON:
		_, err := io.WriteString(out, notation.GenerateMany(places))
		return err
	case "json":
		if places == nil {
			places = []*model.Place{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(places), "encode json")
	case formatGeoJSON:
		data, err := convert.MarshalGeoJSON(places)
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}
