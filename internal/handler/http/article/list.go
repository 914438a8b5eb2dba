// Package article serves the published article document and on-demand
// rescoring.
package article

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/handler/http/respond"
	publishUC "rss-portal/internal/usecase/publish"
)

// Generator builds the publish document for a query.
type Generator interface {
	Generate(ctx context.Context, minScore entity.Score, limit int) (*publishUC.Document, error)
}

// ListHandler answers GET /articles?min_score=3&limit=100 with a freshly
// generated document.
type ListHandler struct {
	Svc             Generator
	DefaultMinScore entity.Score
	DefaultLimit    int
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	minScore, limit, err := h.parseQuery(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	doc, err := h.Svc.Generate(r.Context(), minScore, limit)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, publishUC.ErrInvalidQuery) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// displayDefaults fills unset defaults from the publish package.
func displayDefaults(minScore entity.Score, limit int) (entity.Score, int) {
	if minScore == entity.Unscored {
		minScore = publishUC.DefaultMinScore
	}
	if limit <= 0 {
		limit = publishUC.DefaultLimit
	}
	return minScore, limit
}

func (h ListHandler) parseQuery(r *http.Request) (entity.Score, int, error) {
	q := r.URL.Query()
	minScore, limit := displayDefaults(h.DefaultMinScore, h.DefaultLimit)

	if raw := q.Get("min_score"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid min_score: %q", raw)
		}
		minScore = entity.Score(v)
	}

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid limit: %q", raw)
		}
		limit = v
	}
	return minScore, limit, nil
}
