package article

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/handler/http/respond"
	"rss-portal/internal/observability/logging"
)

// staticCacheControl lets browsers and the site cache the file for 5 minutes.
const staticCacheControl = "public, max-age=300"

// StaticHandler serves the last published file. Before the first publish
// it falls back to a live document built with the display defaults.
type StaticHandler struct {
	Path     string
	Svc      Generator
	MinScore entity.Score
	Limit    int
}

func (h StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.FromContext(r.Context()).WarnContext(r.Context(), "published file unreadable, generating live",
				slog.String("path", h.Path),
				slog.Any("error", err))
		}
		h.serveLive(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.serveLive(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", staticCacheControl)
	http.ServeContent(w, r, "articles.json", info.ModTime(), f)
}

func (h StaticHandler) serveLive(w http.ResponseWriter, r *http.Request) {
	minScore, limit := displayDefaults(h.MinScore, h.Limit)

	doc, err := h.Svc.Generate(r.Context(), minScore, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}
