package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/convert"
	"github.com/sells-group/geon/internal/model"
	"github.com/sells-group/geon/internal/notation"
)

const (
	formatGEON      = "geon"
	formatGeoJSON   = "geojson"
	formatShapefile = "shapefile"
)

var (
	convertFrom string
	convertTo   string
	convertOut  string
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Convert between GEON, GeoJSON and shapefiles",
	Long:  "Converts GeoJSON or an ESRI shapefile to GEON text, or GEON text to a GeoJSON FeatureCollection. The input format is inferred from the file extension unless --from is given.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if convertOut != "" {
			f, err := os.Create(convertOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", convertOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return runConvert(out, args[0], convertFrom, convertTo)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "input format: geon, geojson or shapefile (default from extension)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "output format: geon or geojson (default the other of the input)")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(convertCmd)
}

// detectFormat maps a file extension to an input format.
func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return formatShapefile
	case ".geojson", ".json":
		return formatGeoJSON
	default:
		return formatGEON
	}
}

func runConvert(out io.Writer, path, from, to string) error {
	if from == "" {
		from = detectFormat(path)
	}
	if to == "" {
		to = formatGEON
		if from == formatGEON {
			to = formatGeoJSON
		}
	}

	var (
		places []*model.Place
		err    error
	)
	switch from {
	case formatGEON:
		places, err = loadPlaces(path)
	case formatGeoJSON:
		var data []byte
		if data, err = readInput(path); err == nil {
			places, err = newConverter().FromGeoJSON(data)
		}
	case formatShapefile:
		if path == stdinPath {
			return eris.New("convert: shapefiles cannot be read from standard input")
		}
		places, err = newConverter().FromShapefile(path)
	default:
		return eris.Errorf("convert: unknown input format %q", from)
	}
	if err != nil {
		return err
	}

	zap.L().Debug("converted",
		zap.String("file", path),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("places", len(places)),
	)

	switch to {
	case formatGEON:
		_, err = io.WriteString(out, notation.GenerateMany(places))
		return err
	case formatGeoJSON:
		data, err := convert.MarshalGeoJSON(places)
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	default:
		return eris.Errorf("convert: unknown output format %q", to)
	}
}
