// Package status serves the service banner and store statistics.
package status

import (
	"context"
	"net/http"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/handler/http/respond"
)

// ServiceName is reported by GET /.
const ServiceName = "RSS Portal API"

// StatsReader returns a snapshot of the article store.
type StatsReader interface {
	Stats(ctx context.Context) (entity.Stats, error)
}

type rootStats struct {
	Feeds    int `json:"feeds"`
	Articles int `json:"articles"`
	Scored   int `json:"scored"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Stats   rootStats `json:"stats"`
}

type articleStats struct {
	Total     int `json:"total"`
	Scored    int `json:"scored"`
	HighScore int `json:"high_score"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Feeds    int          `json:"feeds"`
	Articles articleStats `json:"articles"`
}

// Register mounts GET / (exact) and GET /stats on mux.
func Register(mux *http.ServeMux, svc StatsReader) {
	mux.Handle("GET /{$}", RootHandler{Svc: svc})
	mux.Handle("GET /stats", StatsHandler{Svc: svc})
}

type RootHandler struct{ Svc StatsReader }

func (h RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Stats(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, RootResponse{
		Status:  "ok",
		Service: ServiceName,
		Stats:   rootStats{Feeds: st.Feeds, Articles: st.Total, Scored: st.Scored},
	})
}

type StatsHandler struct{ Svc StatsReader }

func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Stats(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, StatsResponse{
		Feeds:    st.Feeds,
		Articles: articleStats{Total: st.Total, Scored: st.Scored, HighScore: st.HighScore},
	})
}
