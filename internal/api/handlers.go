package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/convert"
	"github.com/sells-group/geon/internal/model"
	"github.com/sells-group/geon/internal/notation"
	"github.com/sells-group/geon/internal/store"
	"github.com/sells-group/geon/internal/validate"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeGeoJSON = "application/geo+json"
	contentTypeGEON    = "text/plain; charset=utf-8"
)

type parseResponse struct {
	Places      []*model.Place        `json:"places"`
	Diagnostics []notation.Diagnostic `json:"diagnostics"`
}

type validateResponse struct {
	Place  string           `json:"place"`
	Result *validate.Result `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	text, ok := readBody(w, r)
	if !ok {
		return
	}
	doc, err := s.parser.ParseDocument(text)
	if err != nil {
		writeParseError(w, err)
		return
	}
	resp := parseResponse{Places: doc.Places, Diagnostics: doc.Diagnostics}
	if resp.Places == nil {
		resp.Places = []*model.Place{}
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []notation.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	places, ok := s.readPlaces(w, r)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, notation.GenerateMany(places))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	places, ok := s.readPlaces(w, r)
	if !ok {
		return
	}
	resp := make([]validateResponse, 0, len(places))
	for _, p := range places {
		resp = append(resp, validateResponse{Place: p.Name, Result: validate.Validate(p)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConvertGeoJSON(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	places, err := s.converter.FromGeoJSON([]byte(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, notation.GenerateMany(places))
}

func (s *Server) handleExportGeoJSON(w http.ResponseWriter, r *http.Request) {
	places, ok := s.readPlaces(w, r)
	if !ok {
		return
	}
	writeGeoJSON(w, places)
}

func (s *Server) handlePutPlaces(w http.ResponseWriter, r *http.Request) {
	places, ok := s.readPlaces(w, r)
	if !ok {
		return
	}
	if len(places) == 0 {
		writeError(w, http.StatusBadRequest, "no places in request body")
		return
	}
	ids, err := s.store.PutMany(r.Context(), places)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"ids": ids})
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	places, err := s.store.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if places == nil {
		places = []*model.Place{}
	}
	writePlaces(w, r, places)
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "geon":
		writeText(w, http.StatusOK, notation.Generate(p))
	case "geojson":
		w.Header().Set("Content-Type", contentTypeGeoJSON)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(convert.ToFeature(p))
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlaceGeometry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.store.Geometry(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusNotFound, "place has no geometry")
		return
	}
	g, err := convert.DecodeEWKB(data)
	if err != nil {
		zap.L().Error("api: decode stored geometry", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stored geometry is unreadable")
		return
	}
	out, err := geojson.Marshal(g)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode geometry")
		return
	}
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// readPlaces parses the body as a GEON document, writing the error response
// itself when it fails.
func (s *Server) readPlaces(w http.ResponseWriter, r *http.Request) ([]*model.Place, bool) {
	text, ok := readBody(w, r)
	if !ok {
		return nil, false
	}
	places, err := s.parser.ParseMany(text)
	if err != nil {
		writeParseError(w, err)
		return nil, false
	}
	return places, true
}

func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		writeError(w, http.StatusBadRequest, "read request body")
		return "", false
	}
	return string(data), true
}

func parseFilter(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	f := store.Filter{
		Type:   q.Get("type"),
		PartOf: q.Get("part_of"),
		Name:   q.Get("name"),
	}
	var err error
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil || f.Limit < 0 {
			return f, errors.New("limit must be a non-negative integer")
		}
	}
	if v := q.Get("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil || f.Offset < 0 {
			return f, errors.New("offset must be a non-negative integer")
		}
	}
	if v := q.Get("bbox"); v != "" {
		e, ok := notation.ParseExtent(v)
		if !ok {
			return f, errors.New("bbox must be north, south, east, west")
		}
		f.Within = &e
	}
	return f, nil
}

func writePlaces(w http.ResponseWriter, r *http.Request, places []*model.Place) {
	switch r.URL.Query().Get("format") {
	case "geon":
		writeText(w, http.StatusOK, notation.GenerateMany(places))
	case "geojson":
		writeGeoJSON(w, places)
	default:
		writeJSON(w, http.StatusOK, places)
	}
}

func writeGeoJSON(w http.ResponseWriter, places []*model.Place) {
	data, err := convert.MarshalGeoJSON(places)
	if err != nil {
		zap.L().Error("api: encode geojson", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "encode geojson")
		return
	}
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeParseError(w http.ResponseWriter, err error) {
	var fe *notation.FormatError
	if errors.As(err, &fe) {
		writeError(w, http.StatusUnprocessableEntity, fe.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "place not found")
		return
	}
	zap.L().Error("api: catalog", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "catalog error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", contentTypeGEON)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
