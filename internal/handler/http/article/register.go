package article

import (
	"net/http"
)

// Handlers groups the article routes.
type Handlers struct {
	List   ListHandler
	Static StaticHandler
	Score  ScoreHandler
}

// Register mounts GET /articles, GET /articles.json and
// POST /articles/{id}/score on mux.
func Register(mux *http.ServeMux, h Handlers) {
	mux.Handle("GET /articles", h.List)
	mux.Handle("GET /articles.json", h.Static)
	mux.Handle("POST /articles/{id}/score", h.Score)
}
