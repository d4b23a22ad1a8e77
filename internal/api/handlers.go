package api

import (
	"encoding/json"
	"net/http"

	"github.com/mailprobe/mailprobe/internal/logging"
)

type findRequest struct {
	FullName string `json:"full_name" validate:"required,notblank"`
	Domain   string `json:"domain" validate:"required,notblank"`
}

type findResponse struct {
	Found *string `json:"found"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required"`
}

type bulkRequest struct {
	Emails     []string `json:"emails" validate:"required,min=1"`
	MaxWorkers int      `json:"max_workers"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "mailprobe email verification service",
		"endpoints": map[string]string{
			"find":        "POST /find",
			"verify":      "POST /verify",
			"verify_bulk": "POST /verify/bulk",
		},
		"example": map[string]string{
			"full_name": "Jane Doe",
			"domain":    "acme.com",
		},
	})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var req findRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "full_name and domain must be provided and non-empty")
		return
	}

	found, ok, err := s.finder.Find(r.Context(), req.FullName, req.Domain)
	if err != nil {
		// Input-shaped failures only; an exhausted search is a 200
		// with found null.
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var resp findResponse
	if ok {
		resp.Found = &found
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "email must be provided")
		return
	}

	// Malformed addresses are not transport errors: the verifier
	// answers them with a bad_syntax result.
	res := s.verifier.Verify(r.Context(), req.Email)
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleVerifyBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "emails must not be empty")
		return
	}

	workers := req.MaxWorkers
	if workers <= 0 {
		workers = s.cfg.MaxWorkers
	}
	workers = min(workers, bulkWorkerCap)

	logging.FromContext(r.Context()).Debug("bulk verification requested",
		"emails", len(req.Emails),
		"workers", workers,
	)
	results := s.verifier.VerifyBulk(r.Context(), req.Emails, workers)
	respondJSON(w, http.StatusOK, results)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}
