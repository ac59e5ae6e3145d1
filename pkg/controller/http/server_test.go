package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/zenmemory/pkg/controller/http"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/repository/memory"
	"github.com/secmon-lab/zenmemory/pkg/service/embedding/local"
	"github.com/secmon-lab/zenmemory/pkg/usecase"
)

type mockMemoryUseCase struct {
	rememberFn func(ctx context.Context, owner model.Owner, text string) (model.MemoryID, error)
	recallFn   func(ctx context.Context, owner model.Owner, query string, limit int) ([]string, error)
}

func (m *mockMemoryUseCase) Remember(ctx context.Context, owner model.Owner, text string) (model.MemoryID, error) {
	return m.rememberFn(ctx, owner, text)
}

func (m *mockMemoryUseCase) Recall(ctx context.Context, owner model.Owner, query string, limit int) ([]string, error) {
	return m.recallFn(ctx, owner, query, limit)
}

func newEngineServer() *httpctrl.Server {
	uc := usecase.New(local.New(), memory.New())
	return httpctrl.New(uc.Memory)
}

func post(t *testing.T, srv http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newEngineServer()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusOK)
	var resp map[string]string
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
	gt.V(t, resp["status"]).Equal("ok")
	gt.V(t, resp["service"]).Equal("zenmemory")
}

func TestHealthServiceName(t *testing.T) {
	srv := httpctrl.New(&mockMemoryUseCase{}, httpctrl.WithServiceName("memory-test"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	gt.S(t, w.Body.String()).Contains("memory-test")
}

func TestRememberAndRecall(t *testing.T) {
	srv := newEngineServer()

	for _, text := range []string{"My favorite food is pasta", "I like hiking"} {
		w := post(t, srv, "/remember", `{"email":"u1","text":"`+text+`"}`)
		gt.Number(t, w.Code).Equal(http.StatusOK)

		var resp map[string]string
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
		gt.V(t, resp["status"]).Equal("saved")
		gt.S(t, resp["memory_id"]).NotEqual("")
	}

	w := post(t, srv, "/recall", `{"email":"u1","query_text":"what do I like to eat?","limit":1}`)
	gt.Number(t, w.Code).Equal(http.StatusOK)

	var resp struct {
		Email     string   `json:"email"`
		QueryText string   `json:"query_text"`
		Memories  []string `json:"memories"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
	gt.V(t, resp.Email).Equal("u1")
	gt.V(t, resp.QueryText).Equal("what do I like to eat?")
	gt.A(t, resp.Memories).Equal([]string{"My favorite food is pasta"})

	t.Run("other owner sees nothing", func(t *testing.T) {
		w := post(t, srv, "/recall", `{"email":"u2","query_text":"what do I like to eat?"}`)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.S(t, w.Body.String()).Contains(`"memories":[]`)
	})
}

func TestRecallUnknownOwnerReturnsEmptyArray(t *testing.T) {
	srv := newEngineServer()

	w := post(t, srv, "/recall", `{"email":"nobody@example.com","query_text":"what do I like to eat?"}`)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.S(t, w.Body.String()).Contains(`"memories":[]`)
	gt.S(t, w.Body.String()).NotContains("null")

	var resp map[string]json.RawMessage
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)).Required()
	gt.V(t, string(resp["memories"])).Equal("[]")
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		err  error
		want int
	}{
		{"malformed json", "/remember", `{"email":`, nil, http.StatusBadRequest},
		{"invalid input", "/remember", `{"email":"u1","text":""}`, goerr.Wrap(model.ErrInvalidInput, "text is empty"), http.StatusBadRequest},
		{"provider unavailable", "/remember", `{"email":"u1","text":"x"}`, goerr.Wrap(model.ErrProviderUnavailable, "timeout"), http.StatusServiceUnavailable},
		{"store unavailable", "/recall", `{"email":"u1","query_text":"x"}`, goerr.Wrap(model.ErrStoreUnavailable, "refused"), http.StatusServiceUnavailable},
		{"corrupted", "/recall", `{"email":"u1","query_text":"x"}`, goerr.Wrap(model.ErrCorrupted, "count mismatch"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMemoryUseCase{
				rememberFn: func(ctx context.Context, owner model.Owner, text string) (model.MemoryID, error) {
					return "", tt.err
				},
				recallFn: func(ctx context.Context, owner model.Owner, query string, limit int) ([]string, error) {
					return nil, tt.err
				},
			}
			w := post(t, httpctrl.New(uc), tt.path, tt.body)
			gt.Number(t, w.Code).Equal(tt.want)
			gt.S(t, w.Header().Get("Content-Type")).Contains("application/json")
		})
	}
}

func TestRecallPassesLimit(t *testing.T) {
	var gotLimit int
	var gotOwner model.Owner
	uc := &mockMemoryUseCase{
		recallFn: func(ctx context.Context, owner model.Owner, query string, limit int) ([]string, error) {
			gotOwner = owner
			gotLimit = limit
			return []string{}, nil
		},
	}
	srv := httpctrl.New(uc)

	w := post(t, srv, "/recall", `{"email":"alice@example.com","query_text":"q"}`)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.V(t, gotOwner).Equal(model.Owner("alice@example.com"))
	gt.Number(t, gotLimit).Equal(0)

	w = post(t, srv, "/recall", `{"email":"alice@example.com","query_text":"q","limit":3}`)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.Number(t, gotLimit).Equal(3)
}

func TestBodyTooLarge(t *testing.T) {
	called := false
	uc := &mockMemoryUseCase{
		rememberFn: func(ctx context.Context, owner model.Owner, text string) (model.MemoryID, error) {
			called = true
			return "id", nil
		},
	}
	srv := httpctrl.New(uc, httpctrl.WithMaxBodyBytes(32))

	body := `{"email":"u1","text":"` + string(bytes.Repeat([]byte("a"), 64)) + `"}`
	w := post(t, srv, "/remember", body)
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	gt.False(t, called)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newEngineServer()

	req := httptest.NewRequest(http.MethodGet, "/remember", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusMethodNotAllowed)
}
