// Package feedback accepts like, dislike and click signals from readers.
package feedback

import (
	"context"
	"errors"
	"net/http"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/handler/http/respond"
	feedbackUC "rss-portal/internal/usecase/feedback"
)

// Submitter records one feedback signal.
type Submitter interface {
	Submit(ctx context.Context, articleID int64, kind string) (entity.FeedbackKind, error)
}

// Request is the body of POST /feedback.
type Request struct {
	ArticleID int64  `json:"article_id"`
	Feedback  string `json:"feedback"`
}

// Response echoes the stored signal.
type Response struct {
	Status    string              `json:"status"`
	ArticleID int64               `json:"article_id"`
	Feedback  entity.FeedbackKind `json:"feedback"`
}

// Handler answers POST /feedback.
type Handler struct {
	Svc Submitter
}

// Register mounts POST /feedback on mux.
func Register(mux *http.ServeMux, svc Submitter) {
	mux.Handle("POST /feedback", Handler{Svc: svc})
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.DecodeJSON(r, &req, false); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	kind, err := h.Svc.Submit(r.Context(), req.ArticleID, req.Feedback)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, feedbackUC.ErrInvalidFeedbackKind), errors.Is(err, feedbackUC.ErrInvalidArticleID):
			code = http.StatusBadRequest
		case errors.Is(err, feedbackUC.ErrArticleNotFound):
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, Response{Status: "ok", ArticleID: req.ArticleID, Feedback: kind})
}
