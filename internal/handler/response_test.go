package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/exercise-tracker/internal/apperror"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestWriteJSON_EncodeFailureUsesInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	rr := httptest.NewRecorder()

	writeJSON(rr, bufferLogger(&buf), http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantLogged bool
	}{
		{"validation", apperror.ValidationFailed("username", "username is required"), http.StatusBadRequest, "username is required", false},
		{"unknown user", apperror.UserNotFound(), http.StatusNotFound, "User id does not exist", false},
		{"duplicate", apperror.DuplicateUsername(), http.StatusConflict, "Username already taken", false},
		{"storage", apperror.Storage("save user", errors.New("disk full")), http.StatusInternalServerError, "Internal Server Error", true},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rr := httptest.NewRecorder()

			writeError(rr, bufferLogger(&buf), tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())
			assert.Equal(t, tt.wantLogged, buf.Len() > 0)
		})
	}
}
