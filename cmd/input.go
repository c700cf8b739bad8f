package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geon/internal/convert"
	"github.com/sells-group/geon/internal/model"
	"github.com/sells-group/geon/internal/notation"
)

// stdinPath names standard input in file arguments.
const stdinPath = "-"

var stdin io.Reader = os.Stdin

func readInput(path string) ([]byte, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		return data, eris.Wrap(err, "read stdin")
	}
	data, err := os.ReadFile(path)
	return data, eris.Wrapf(err, "read %s", path)
}

func newParser() *notation.Parser {
	return notation.NewParser(notation.WithMaxDepth(cfg.Parse.MaxDepth))
}

func newConverter() *convert.Converter {
	return convert.NewConverter(convert.Options{
		DefaultType: cfg.Convert.DefaultType,
		DefaultName: cfg.Convert.DefaultName,
		SourceTag:   cfg.Convert.SourceTag,
		AssignIDs:   cfg.Convert.AssignIDs,
	})
}

// loadDocument reads and parses one GEON file.
func loadDocument(path string) (*notation.Document, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	doc, err := newParser().ParseDocument(string(data))
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	return doc, nil
}

func loadPlaces(path string) ([]*model.Place, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Places, nil
}
