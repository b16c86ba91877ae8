package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/items"
	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/pipeline"
)

// LayoutRequest is the body of both API routes.
type LayoutRequest struct {
	Items   []items.Item     `json:"items"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the data of a successful layout call.
type LayoutResponse struct {
	DatasetHash string  `json:"dataset_hash"`
	SnapshotHit bool    `json:"snapshot_hit"`
	Frames      []Frame `json:"frames"`
	Stats       Stats   `json:"stats"`
}

// Frame is a placed item in wire form.
type Frame struct {
	Position int `json:"position"`
	Lane     int `json:"lane"`
	Left     int `json:"left"`
	Top      int `json:"top"`
	Right    int `json:"right"`
	Bottom   int `json:"bottom"`
}

// Stats mirrors pipeline.Stats with durations in milliseconds.
type Stats struct {
	Items    int     `json:"items"`
	Placed   int     `json:"placed"`
	Measured int     `json:"measured"`
	Cached   int     `json:"cached"`
	Restored int     `json:"restored"`
	LayoutMS float64 `json:"layout_ms"`
}

// response is the JSON envelope of every API answer.
type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatLane: "image/svg+xml",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ds, opts, err := s.decode(w, r)
	if err != nil {
		s.respondWithError(w, err)
		return
	}

	result, err := s.runner.Layout(r.Context(), ds, opts)
	if err != nil {
		s.respondWithError(w, err)
		return
	}

	frames := make([]Frame, len(result.Frames))
	for i, f := range result.Frames {
		frames[i] = wireFrame(f)
	}
	s.respond(w, http.StatusOK, response{Status: "success", Data: LayoutResponse{
		DatasetHash: result.DatasetHash,
		SnapshotHit: result.CacheInfo.SnapshotHit,
		Frames:      frames,
		Stats: Stats{
			Items:    result.Stats.Items,
			Placed:   result.Stats.Placed,
			Measured: result.Stats.Measured,
			Cached:   result.Stats.Cached,
			Restored: result.Stats.Restored,
			LayoutMS: float64(result.Stats.LayoutTime.Microseconds()) / 1000,
		},
	}})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.respondWithError(w, err)
		return
	}

	ds, opts, err := s.decode(w, r)
	if err != nil {
		s.respondWithError(w, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), ds, opts)
	if err != nil {
		s.respondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Dataset-Hash", result.DatasetHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// decode reads the request body into a dataset and pipeline options with the
// server's engine defaults applied.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*items.Dataset, pipeline.Options, error) {
	var req LayoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request")
	}
	if err := s.checkLimits(req); err != nil {
		return nil, pipeline.Options{}, err
	}

	ds, err := items.New(req.Items)
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	opts := req.Options
	if opts.Lanes == 0 {
		opts.Lanes = s.defaults.Lanes
	}
	if opts.LaneSize == 0 {
		opts.LaneSize = s.defaults.LaneSize
	}
	if opts.Orientation == "" {
		opts.Orientation = s.defaults.Orientation
	}
	if opts.Strategy == "" {
		opts.Strategy = s.defaults.Strategy
	}
	opts.Logger = s.logger
	return ds, opts, nil
}

// checkLimits bounds everything in a request that sizes an allocation: the
// item count, the lane set, item extents and the PNG canvas.
func (s *Server) checkLimits(req LayoutRequest) error {
	lim := s.defaults.Server
	if lim.MaxItems > 0 && len(req.Items) > lim.MaxItems {
		return errs.New(errs.ErrCodeInvalidInput, "%d items exceed the limit of %d", len(req.Items), lim.MaxItems)
	}
	if lim.MaxLanes > 0 && req.Options.Lanes > lim.MaxLanes {
		return errs.New(errs.ErrCodeInvalidInput, "%d lanes exceed the limit of %d", req.Options.Lanes, lim.MaxLanes)
	}
	if lim.MaxLaneSize > 0 && req.Options.LaneSize > lim.MaxLaneSize {
		return errs.New(errs.ErrCodeInvalidInput, "lane size %d exceeds the limit of %d", req.Options.LaneSize, lim.MaxLaneSize)
	}
	if lim.MaxScale > 0 && req.Options.Scale > lim.MaxScale {
		return errs.New(errs.ErrCodeInvalidInput, "scale %g exceeds the limit of %g", req.Options.Scale, lim.MaxScale)
	}
	if lim.MaxItemSize > 0 {
		for i, it := range req.Items {
			if it.Width > lim.MaxItemSize || it.Height > lim.MaxItemSize {
				return errs.New(errs.ErrCodeInvalidInput, "item %d size %dx%d exceeds the limit of %d",
					i, it.Width, it.Height, lim.MaxItemSize)
			}
		}
	}
	return nil
}

func wireFrame(f layout.Frame) Frame {
	return Frame{
		Position: f.Position,
		Lane:     f.Lane,
		Left:     f.Rect.Left,
		Top:      f.Rect.Top,
		Right:    f.Rect.Right,
		Bottom:   f.Rect.Bottom,
	}
}

// statusFor maps an error to an HTTP status by its code.
func statusFor(err error) int {
	switch {
	case errs.Is(err, errs.ErrCodeInvalidInput),
		errs.Is(err, errs.ErrCodeInvalidConfig),
		errs.Is(err, errs.ErrCodeInvalidFormat),
		errs.Is(err, errs.ErrCodeOutOfRange):
		return http.StatusBadRequest
	case errs.Is(err, errs.ErrCodeMeasure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) respondWithError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	s.respond(w, status, response{Status: "error", Error: errs.UserMessage(err), Code: code})
}

func (s *Server) respond(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", "err", fmt.Errorf("status %d: %w", status, err))
	}
}
