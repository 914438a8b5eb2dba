package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeedbackKind(t *testing.T) {
	for _, k := range FeedbackKinds {
		got, err := ParseFeedbackKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	for _, bad := range []string{"", "LIKE", "love", "click "} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseFeedbackKind(bad)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestFeed_Validate(t *testing.T) {
	tests := []struct {
		name    string
		feed    Feed
		wantErr bool
	}{
		{"valid", Feed{Name: "Zenn", URL: "https://zenn.dev/feed"}, false},
		{"missing name", Feed{URL: "https://zenn.dev/feed"}, true},
		{"missing url", Feed{Name: "Zenn"}, true},
		{"ftp scheme", Feed{Name: "x", URL: "ftp://example.com/feed"}, true},
		{"loopback literal", Feed{Name: "x", URL: "http://127.0.0.1/feed"}, true},
		{"metadata address", Feed{Name: "x", URL: "http://169.254.169.254/latest"}, true},
		{"private range", Feed{Name: "x", URL: "http://192.168.1.10/rss"}, true},
		{"public literal", Feed{Name: "x", URL: "http://8.8.8.8/rss"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.feed.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "feedback", Message: "bad"}
	assert.Equal(t, "validation error on field 'feedback': bad", err.Error())
}
