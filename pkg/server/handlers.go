package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/cache"
	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/observability"
	"github.com/matzehuels/facepile/pkg/pipeline"
	"github.com/matzehuels/facepile/pkg/size"
)

// maxBodyBytes bounds POST /v1/avatar bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if hc, ok := s.runner.Cache.(healthChecker); ok {
		if err := hc.HealthCheck(r.Context()); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeNetwork, err, "cache unavailable"))
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleAvatar renders GET /v1/avatar.{format}.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	collabs, err := parseCollaborators(q["c"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{
		Collaborators: collabs,
		Formats:       []string{format},
		Title:         q.Get("title"),
		FontFamily:    q.Get("font"),
		NoWash:        q.Get("wash") == "false",
		Inline:        format == pipeline.FormatPNG || format == pipeline.FormatPDF,
		Logger:        s.logger,
	}
	if v := q.Get("size"); v != "" {
		if opts.Size, err = size.Parse(v); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// ETag is derived from the rendered bytes, not the composite hash.
	body := res.Artifacts[format]
	etag := fmt.Sprintf("%q", cache.Hash(body)[:16]+"-"+format)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	_, _ = w.Write(body)
}

type avatarRequest struct {
	Size          size.Class            `json:"size"`
	Title         string                `json:"title"`
	NoWash        bool                  `json:"no_wash"`
	Font          string                `json:"font"`
	Collaborators []avatar.Collaborator `json:"collaborators"`
}

type avatarResponse struct {
	Hash     string        `json:"hash"`
	Size     size.Class    `json:"size"`
	Diameter float64       `json:"diameter"`
	Cells    []avatar.Cell `json:"cells"`
	SVG      string        `json:"svg"`
}

// handleAvatarJSON renders POST /v1/avatar.
func (s *Server) handleAvatarJSON(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	for i, c := range req.Collaborators {
		if err := checkRemoteSource(c.ImageSource); err != nil {
			s.writeError(w, r, errors.Wrap(errors.GetCode(err), err, "collaborator %d", i))
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Collaborators: req.Collaborators,
		Size:          req.Size,
		Formats:       []string{pipeline.FormatSVG},
		Title:         req.Title,
		FontFamily:    req.Font,
		NoWash:        req.NoWash,
		Logger:        s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarResponse{
		Hash:     res.Hash,
		Size:     res.Composite.Size,
		Diameter: res.Composite.Diameter,
		Cells:    res.Composite.Cells,
		SVG:      string(res.Artifacts[pipeline.FormatSVG]),
	})
}

type layoutResponse struct {
	Count    int           `json:"count"`
	Size     size.Class    `json:"size"`
	Diameter float64       `json:"diameter"`
	Tiles    []avatar.Tile `json:"tiles"`
}

// handleLayout renders GET /v1/layout.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := strconv.Atoi(q.Get("count"))
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidCount, "count must be an integer, got %q", q.Get("count")))
		return
	}
	class := size.Default
	if v := q.Get("size"); v != "" {
		if class, err = size.Parse(v); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	diameter, err := avatar.FrameDiameter(class)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tiles, err := avatar.Layout(count, diameter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Count: count, Size: class, Diameter: diameter, Tiles: tiles})
}

// parseCollaborators decodes repeated "Name" or "Name|src" values.
func parseCollaborators(values []string) ([]avatar.Collaborator, error) {
	if len(values) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCount, "at least one c parameter is required")
	}
	collabs := make([]avatar.Collaborator, 0, len(values))
	for i, v := range values {
		name, src, _ := strings.Cut(v, "|")
		c := avatar.Collaborator{Name: name, ImageSource: strings.TrimSpace(src)}
		if err := checkRemoteSource(c.ImageSource); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "collaborator %d", i)
		}
		collabs = append(collabs, c)
	}
	return collabs, nil
}

// checkRemoteSource rejects local paths, which the server must not read.
func checkRemoteSource(src string) error {
	if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "data:image/") {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "image must be an http(s) URL or data:image URI")
}

func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, errors.ErrCodeNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	detail := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestIDFrom(r.Context()))
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		if status == http.StatusInternalServerError {
			detail = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
