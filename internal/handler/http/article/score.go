package article

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/handler/http/pathutil"
	"rss-portal/internal/handler/http/respond"
	"rss-portal/internal/observability/logging"
	scoreUC "rss-portal/internal/usecase/score"
)

var (
	errNoModelResult      = errors.New("scoring failed: the model returned no usable result")
	errScoringUnavailable = errors.New("scoring unavailable: no model credential configured")
)

// Rescorer scores one article on demand.
type Rescorer interface {
	ScoreArticle(ctx context.Context, id int64) (entity.Score, bool, error)
}

// ScoreResponse is the body of a successful rescoring.
type ScoreResponse struct {
	ArticleID int64        `json:"article_id"`
	Score     entity.Score `json:"score"`
}

// ScoreHandler answers POST /articles/{id}/score.
//
//	200 {"article_id": 1, "score": 4}
//	400 bad id, 404 unknown article, 502 no model result, 503 no credential
type ScoreHandler struct {
	Svc Rescorer
}

func (h ScoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	score, ok, err := h.Svc.ScoreArticle(r.Context(), id)
	switch {
	case errors.Is(err, scoreUC.ErrInvalidArticleID):
		respond.SafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, scoreUC.ErrArticleNotFound):
		respond.SafeError(w, http.StatusNotFound, err)
	case errors.Is(err, scoreUC.ErrScoringUnavailable):
		respond.Error(w, http.StatusServiceUnavailable, errScoringUnavailable)
	case err != nil:
		respond.SafeError(w, http.StatusInternalServerError, err)
	case !ok:
		logging.FromContext(r.Context()).WarnContext(r.Context(), "on-demand scoring produced no result",
			slog.Int64("article_id", id))
		respond.Error(w, http.StatusBadGateway, errNoModelResult)
	default:
		respond.JSON(w, http.StatusOK, ScoreResponse{ArticleID: id, Score: score})
	}
}
