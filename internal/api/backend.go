package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pbaille/timeline/internal/archive"
	"github.com/pbaille/timeline/internal/datenav"
	"github.com/pbaille/timeline/internal/domain"
)

// Archive is what the backend serves from.
type Archive interface {
	EntriesForDate(ctx context.Context, day string) ([]domain.Entry, error)
	Finances(ctx context.Context) (map[string]string, error)
	GetArtifact(ctx context.Context, checksum, name string) (*archive.Artifact, error)
}

// Backend serves day files, the finance report and entry artifacts.
type Backend struct {
	archive Archive
	token   string
	logger  *slog.Logger
}

// NewBackend serves a. A non-empty token is required as a bearer token on
// every route but /health.
func NewBackend(a Archive, token string, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{archive: a, token: token, logger: logger}
}

func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /entries/{file}", b.requireToken(http.HandlerFunc(b.entries)))
	mux.Handle("GET /metadata/{checksum}/{name}", b.requireToken(http.HandlerFunc(b.artifact)))
	mux.HandleFunc("GET /health", health)
	return mux
}

// requireToken answers 401 without credentials and 403 with wrong ones.
func (b *Backend) requireToken(h http.Handler) http.Handler {
	if b.token == "" {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		got, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || got == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="timeline"`)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(b.token)) != 1 {
			writeError(w, http.StatusForbidden, "invalid token")
			return
		}
		h.ServeHTTP(w, r)
	})
}

// entries serves /entries/YYYY-MM-DD.json and /entries/finances.json.
func (b *Backend) entries(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".json")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if name == "finances" {
		b.finances(w, r)
		return
	}
	if _, err := datenav.New(nil).Parse(name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	entries, err := b.archive.EntriesForDate(r.Context(), name)
	if err != nil {
		b.logger.Error("entries for date", "date", name, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, domain.EntriesResponse{Entries: entries})
}

func (b *Backend) finances(w http.ResponseWriter, r *http.Request) {
	report, err := b.archive.Finances(r.Context())
	if err != nil {
		b.logger.Error("finances", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (b *Backend) artifact(w http.ResponseWriter, r *http.Request) {
	a, err := b.archive.GetArtifact(r.Context(), r.PathValue("checksum"), r.PathValue("name"))
	if errors.Is(err, archive.ErrNotFound) {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(a.Body)
}
