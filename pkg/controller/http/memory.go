package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/utils/errutil"
	"github.com/secmon-lab/zenmemory/pkg/utils/safe"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type rememberRequest struct {
	Email string `json:"email"`
	Text  string `json:"text"`
}

type rememberResponse struct {
	Status   string `json:"status"`
	MemoryID string `json:"memory_id"`
}

type recallRequest struct {
	Email     string `json:"email"`
	QueryText string `json:"query_text"`
	Limit     int    `json:"limit,omitempty"`
}

type recallResponse struct {
	Email     string   `json:"email"`
	QueryText string   `json:"query_text"`
	Memories  []string `json:"memories"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Service: s.serviceName})
}

func (s *Server) rememberHandler(w http.ResponseWriter, r *http.Request) {
	var req rememberRequest
	if err := s.decode(w, r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	id, err := s.memoryUC.Remember(r.Context(), model.Owner(req.Email), req.Text)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, errutil.StatusCode(err))
		return
	}

	writeJSON(w, r, http.StatusOK, rememberResponse{Status: "saved", MemoryID: string(id)})
}

func (s *Server) recallHandler(w http.ResponseWriter, r *http.Request) {
	var req recallRequest
	if err := s.decode(w, r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	memories, err := s.memoryUC.Recall(r.Context(), model.Owner(req.Email), req.QueryText, req.Limit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, errutil.StatusCode(err))
		return
	}

	writeJSON(w, r, http.StatusOK, recallResponse{
		Email:     req.Email,
		QueryText: req.QueryText,
		Memories:  memories,
	})
}

// decode reads a single JSON object bounded by maxBodyBytes
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return goerr.Wrap(model.ErrInvalidInput, "request body too large", goerr.V("limit", tooLarge.Limit))
		}
		return goerr.Wrap(model.ErrInvalidInput, "malformed request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
