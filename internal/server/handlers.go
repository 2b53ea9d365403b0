package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tracelayer/gridroute/pkg/buildinfo"
	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/geom"
	"github.com/tracelayer/gridroute/pkg/layout"
	"github.com/tracelayer/gridroute/pkg/pipeline"
	"github.com/tracelayer/gridroute/pkg/problem"
	"github.com/tracelayer/gridroute/pkg/render/jsonout"
	"github.com/tracelayer/gridroute/pkg/store"
)

// maxProblemBytes caps inline problem documents.
const maxProblemBytes = 8 << 20

// runView is the API shape of a stored run. Artifact bytes are served by
// their own endpoints, so the view lists the available formats instead.
type runView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Elapsed     time.Duration   `json:"elapsed,omitempty"`
	ProblemHash string          `json:"problem_hash,omitempty"`
	Options     store.Options   `json:"options"`
	Result      *problem.Result `json:"result,omitempty"`
	Artifacts   []string        `json:"artifacts,omitempty"`
}

func viewOf(run *store.Run) runView {
	v := runView{
		ID:          run.ID,
		Name:        run.Name,
		CreatedAt:   run.CreatedAt,
		Elapsed:     run.Elapsed,
		ProblemHash: run.ProblemHash,
		Options:     run.Options,
		Result:      run.Result,
	}
	for format := range run.Artifacts {
		v.Artifacts = append(v.Artifacts, format)
	}
	slices.Sort(v.Artifacts)
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "gridroute",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput,
				"limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, viewOf(run))
	}
	s.writeJSON(w, http.StatusOK, views)
}

// loadRun fetches a stored run, translating store sentinels to coded
// errors.
func (s *Server) loadRun(ctx context.Context, id string) (*store.Run, error) {
	run, err := s.store.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrCodeRunNotFound, err, "run %s", id)
		}
		return nil, err
	}
	return run, nil
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.loadRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(run))
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			err = errors.Wrap(errors.ErrCodeRunNotFound, err, "run %s", id)
		}
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunSVG(w http.ResponseWriter, r *http.Request) {
	run, err := s.loadRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	data := run.Artifacts[pipeline.FormatSVG]
	if len(data) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeNotFound,
			"run %s has no svg artifact", run.ID))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

// elementsResponse answers a region query.
type elementsResponse struct {
	Run      string            `json:"run"`
	Count    int               `json:"count"`
	Elements []jsonout.Element `json:"elements"`
}

// handleRunElements answers region queries over a run's routed geometry.
// Optional query params: layer (m1 or m1.pin form) and bbox (x0,y0,x1,y1;
// default the full routing area).
func (s *Server) handleRunElements(w http.ResponseWriter, r *http.Request) {
	run, err := s.loadRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	data := run.Artifacts[pipeline.FormatJSON]
	if len(data) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeNotFound,
			"run %s has no layout document", run.ID))
		return
	}
	doc, err := jsonout.Unmarshal(data)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "stored layout document"))
		return
	}

	g := doc.Group()
	region := doc.AreaRect()
	if raw := r.URL.Query().Get("bbox"); raw != "" {
		region, err = parseBBox(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	var elems []layout.Element
	if name := r.URL.Query().Get("layer"); name != "" {
		elems = g.QueryLayer(layout.ParseLayer(name), region)
	} else {
		elems = g.Query(region)
	}

	s.writeJSON(w, http.StatusOK, elementsResponse{
		Run:      run.ID,
		Count:    len(elems),
		Elements: jsonout.Wire(elems),
	})
}

// parseBBox parses "x0,y0,x1,y1" into a region rect.
func parseBBox(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, errors.New(errors.ErrCodeInvalidInput,
			"bbox must be x0,y0,x1,y1")
	}
	var r problem.Rect
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return geom.Rect{}, errors.Wrap(errors.ErrCodeInvalidInput, err,
				"bbox coordinate %d", i)
		}
		r[i] = v
	}
	return r.Geom(), nil
}

// routeRequest is the POST /api/route body.
type routeRequest struct {
	Problem  json.RawMessage `json:"problem"` // inline problem document, required
	Straps   bool            `json:"straps,omitempty"`
	Formats  []string        `json:"formats,omitempty"` // default svg
	Detailed bool            `json:"detailed,omitempty"`
	Refresh  bool            `json:"refresh,omitempty"`
	Name     string          `json:"name,omitempty"`
}

// routeResponse reports the executed run.
type routeResponse struct {
	RunID     string             `json:"run_id,omitempty"`
	Result    *problem.Result    `json:"result"`
	Artifacts []string           `json:"artifacts"`
	Stats     pipeline.Stats     `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	body := http.MaxBytesReader(w, r.Body, maxProblemBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}
	if len(req.Problem) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"request carries no problem document"))
		return
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{pipeline.FormatSVG}
	}
	// The elements endpoint needs the layout document, so the json artifact
	// is always produced.
	if !slices.Contains(formats, pipeline.FormatJSON) {
		formats = append(formats, pipeline.FormatJSON)
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Problem:  req.Problem,
		Straps:   req.Straps,
		Formats:  formats,
		Detailed: req.Detailed,
		Refresh:  req.Refresh,
		Name:     req.Name,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := routeResponse{
		RunID:     res.RunID,
		Result:    res.Routing,
		Stats:     res.Stats,
		CacheInfo: res.CacheInfo,
	}
	for format := range res.Artifacts {
		resp.Artifacts = append(resp.Artifacts, format)
	}
	slices.Sort(resp.Artifacts)
	s.writeJSON(w, http.StatusOK, resp)
}
