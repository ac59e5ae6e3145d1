package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/utils/errutil"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", goerr.Wrap(model.ErrInvalidInput, "text is empty"), http.StatusBadRequest},
		{"provider", goerr.Wrap(model.ErrProviderUnavailable, "timeout"), http.StatusServiceUnavailable},
		{"store", goerr.Wrap(model.ErrStoreUnavailable, "refused"), http.StatusServiceUnavailable},
		{"corrupted", goerr.Wrap(model.ErrCorrupted, "count mismatch"), http.StatusInternalServerError},
		{"unknown", goerr.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Number(t, errutil.StatusCode(tt.err)).Equal(tt.want)
		})
	}
}

func TestHandleHTTP(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("info", buf))

	t.Run("client error keeps message", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "text is empty"), http.StatusBadRequest)

		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
		var body map[string]string
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.S(t, body["error"]).Contains("text is empty")
	})

	t.Run("server error hides details", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrCorrupted, "sidecar mismatch"), http.StatusInternalServerError)

		gt.Number(t, w.Code).Equal(http.StatusInternalServerError)
		gt.S(t, w.Body.String()).NotContains("sidecar mismatch")
		gt.S(t, buf.String()).Contains("sidecar mismatch")
	})
}

func TestHandleHTTPLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		level  string
	}{
		{"bad request", goerr.Wrap(model.ErrInvalidInput, "limit is negative"), http.StatusBadRequest, "WARN"},
		{"unavailable", goerr.Wrap(model.ErrStoreUnavailable, "refused"), http.StatusServiceUnavailable, "ERROR"},
		{"internal", goerr.Wrap(model.ErrCorrupted, "count mismatch"), http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := logging.NewWithFormat("info", logging.FormatJSON, buf)
			gt.NoError(t, err).Required()
			ctx := logging.With(context.Background(), logger)

			errutil.HandleHTTP(ctx, httptest.NewRecorder(), tt.err, tt.status)

			var entry map[string]any
			gt.NoError(t, json.Unmarshal(buf.Bytes(), &entry)).Required()
			gt.V(t, entry["level"]).Equal(tt.level)
			if tt.status < http.StatusInternalServerError {
				gt.Map(t, entry).NotHasKey("stack")
			}
		})
	}
}

func TestHandle(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("info", buf))

	err := goerr.New("remember failed", goerr.V("memory_id", "m-1"))
	gt.Value(t, errutil.Handle(ctx, err, "command failed")).Equal(err)
	gt.S(t, buf.String()).Contains("command failed")

	gt.NoError(t, errutil.Handle(ctx, nil, "nothing"))
}
