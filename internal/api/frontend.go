package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pbaille/timeline/internal/artifact"
	"github.com/pbaille/timeline/internal/client"
	"github.com/pbaille/timeline/internal/datenav"
	"github.com/pbaille/timeline/internal/filter"
	"github.com/pbaille/timeline/internal/store"
	"github.com/pbaille/timeline/internal/timeline"
)

// LoginPath is where viewers are sent when the backend refuses them.
const LoginPath = "/login"

// FinanceSource provides the daily balance deltas.
type FinanceSource interface {
	Finances(ctx context.Context) (client.Finances, error)
}

// Frontend serves the timeline of the session's viewer.
type Frontend struct {
	nav       *datenav.Controller
	session   *store.Session
	builder   *timeline.Builder
	finances  FinanceSource
	artifacts *artifact.Cache
	logger    *slog.Logger
}

// FrontendOption configures a Frontend.
type FrontendOption func(*Frontend)

// WithFinances adds the balance series to the timeline.
func WithFinances(f FinanceSource) FrontendOption {
	return func(fe *Frontend) { fe.finances = f }
}

// WithArtifacts serves entry artifacts through c.
func WithArtifacts(c *artifact.Cache) FrontendOption {
	return func(fe *Frontend) { fe.artifacts = c }
}

func NewFrontend(nav *datenav.Controller, session *store.Session, logger *slog.Logger, opts ...FrontendOption) *Frontend {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Frontend{
		nav:     nav,
		session: session,
		builder: timeline.NewBuilder(nav, session.Registry()),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Frontend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /timeline", f.timeline)
	mux.HandleFunc("GET /filters", f.filters)
	mux.HandleFunc("POST /filters/{name}/toggle", f.toggleFilter)
	mux.HandleFunc("POST /refresh", f.refresh)
	mux.HandleFunc("GET /metadata/{checksum}/{name}", f.artifact)
	mux.HandleFunc("GET /text/{checksum}", f.text)
	mux.HandleFunc("GET "+LoginPath, f.login)
	mux.HandleFunc("GET /health", health)
	return mux
}

func (f *Frontend) timeline(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	date, redirect, err := f.nav.Guard(query)
	if err != nil {
		f.logger.Debug("redirecting to today", "err", err)
		http.Redirect(w, r, r.URL.Path+"?"+redirect.Encode(), http.StatusFound)
		return
	}

	if query.Has("filter") {
		set, err := f.session.Registry().ParseSet(query.Get("filter"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.session.SetFilters(set)
	}

	entries, err := f.session.Navigate(r.Context(), datenav.Format(date))
	if client.IsAuthRequired(err) {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	// Other failures show an empty day.

	in := timeline.Input{
		Date:    date,
		Entries: entries,
		Status:  f.session.Status(),
		Enabled: f.session.EnabledFilters(),
		Query:   query,
		Path:    r.URL.Path,
	}
	if f.finances != nil {
		if report, err := f.finances.Finances(r.Context()); err != nil {
			f.logger.Warn("finances unavailable", "err", err)
		} else {
			in.Finances = report
		}
	}
	writeJSON(w, http.StatusOK, f.builder.Build(in))
}

type filterResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Plural      string `json:"display_name_plural"`
	IconClass   string `json:"icon_class"`
	Enabled     bool   `json:"enabled"`
}

func (f *Frontend) filters(w http.ResponseWriter, r *http.Request) {
	enabled := f.session.EnabledFilters()
	var out []filterResponse
	for _, d := range f.session.Registry().Definitions() {
		out = append(out, filterResponse{
			Name:        d.Name,
			DisplayName: d.DisplayName,
			Plural:      d.DisplayNamePlural,
			IconClass:   d.IconClass,
			Enabled:     enabled.Has(d.Name),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filters": out,
		"enabled": enabled.Names(),
	})
}

func (f *Frontend) toggleFilter(w http.ResponseWriter, r *http.Request) {
	set, err := f.session.ToggleFilter(r.PathValue("name"))
	var unknown *filter.UnknownFilterError
	if errors.As(err, &unknown) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enabled": set.Names()})
}

func (f *Frontend) refresh(w http.ResponseWriter, r *http.Request) {
	if f.session.Date() == "" {
		writeError(w, http.StatusConflict, "no date loaded")
		return
	}
	entries, err := f.session.Refresh(r.Context())
	if client.IsAuthRequired(err) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error(), "login": LoginPath})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":   f.session.Date(),
		"status": f.session.Status(),
		"count":  len(entries),
	})
}

func (f *Frontend) artifact(w http.ResponseWriter, r *http.Request) {
	if f.artifacts == nil {
		writeError(w, http.StatusNotFound, "artifacts are not served")
		return
	}
	body, err := f.artifacts.Get(r.Context(), r.PathValue("checksum"), r.PathValue("name"))
	if err != nil {
		f.writeArtifactError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(body))
	w.Write(body)
}

func (f *Frontend) text(w http.ResponseWriter, r *http.Request) {
	if f.artifacts == nil {
		writeError(w, http.StatusNotFound, "artifacts are not served")
		return
	}
	text, err := f.artifacts.Text(r.Context(), r.PathValue("checksum"))
	if err != nil {
		f.writeArtifactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (f *Frontend) writeArtifactError(w http.ResponseWriter, err error) {
	var invalid *artifact.InvalidKeyError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case client.IsAuthRequired(err):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		f.logger.Warn("artifact", "err", err)
		writeError(w, http.StatusNotFound, "artifact not found")
	}
}

func (f *Frontend) login(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusUnauthorized, "authentication required: configure the backend token")
}
