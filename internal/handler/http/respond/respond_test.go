package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-portal/internal/handler/http/respond"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body["error"]
}

/* ───────── 1. JSON ───────── */

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	respond.JSON(w, http.StatusAccepted, map[string]string{"status": "started"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"started"}`, w.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	w := httptest.NewRecorder()
	respond.JSON(w, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	respond.JSON(w, http.StatusOK, make(chan int))
	assert.Equal(t, http.StatusOK, w.Code)
}

/* ───────── 2. SafeError ───────── */

func TestSafeError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		err     error
		wantMsg string
	}{
		{name: "validation", code: http.StatusBadRequest, err: errors.New("invalid feedback kind"), wantMsg: "invalid feedback kind"},
		{name: "not found", code: http.StatusNotFound, err: errors.New("article not found"), wantMsg: "article not found"},
		{name: "internal detail hidden", code: http.StatusBadRequest, err: errors.New("sqlite: database is locked"), wantMsg: "internal server error"},
		{name: "5xx always hidden", code: http.StatusInternalServerError, err: errors.New("invalid state"), wantMsg: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respond.SafeError(w, tt.code, tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w))
		})
	}
}

func TestSafeError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	respond.SafeError(w, http.StatusBadRequest, nil)
	assert.Empty(t, w.Body.String())
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	respond.Error(w, http.StatusServiceUnavailable, errors.New("scoring unavailable"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "scoring unavailable", decodeError(t, w))
}

/* ───────── 3. DecodeJSON ───────── */

type payload struct {
	ArticleID int64  `json:"article_id"`
	Feedback  string `json:"feedback"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		allowEmpty bool
		want       payload
		wantErr    bool
	}{
		{name: "valid", body: `{"article_id":3,"feedback":"like"}`, want: payload{ArticleID: 3, Feedback: "like"}},
		{name: "empty allowed", body: "", allowEmpty: true},
		{name: "empty rejected", body: "", wantErr: true},
		{name: "unknown field", body: `{"article_id":3,"extra":1}`, wantErr: true},
		{name: "wrong type", body: `{"article_id":"x"}`, wantErr: true},
		{name: "trailing data", body: `{"article_id":1}{"article_id":2}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(tt.body))
			var got payload
			err := respond.DecodeJSON(r, &got, tt.allowEmpty)
			if tt.wantErr {
				assert.ErrorIs(t, err, respond.ErrInvalidBody)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"feedback":"`+strings.Repeat("a", 100)+`"}`))
	r.Body = http.MaxBytesReader(w, r.Body, 16)

	var got payload
	err := respond.DecodeJSON(r, &got, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
