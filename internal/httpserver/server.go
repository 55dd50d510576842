package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BaraaHazzaa/DocuMint/internal/config"
	"github.com/BaraaHazzaa/DocuMint/internal/models"
	"github.com/BaraaHazzaa/DocuMint/internal/store"
	"github.com/BaraaHazzaa/DocuMint/internal/workflow"
)

type Server struct {
	cfg    config.Config
	engine *workflow.Engine
	store  store.Store
}

func New(cfg config.Config, engine *workflow.Engine, st store.Store) *Server {
	return &Server{cfg: cfg, engine: engine, store: st}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.handleListPending)
		r.Get("/{transactionId}", s.handleGetWorkflow)
		r.Get("/{transactionId}/can-act", s.handleCanAct)

		r.Group(func(r chi.Router) {
			r.Use(s.writeAuth)
			r.Post("/", s.handleInitialize)
			r.Post("/{transactionId}/actions", s.handleAction)
			r.Post("/{transactionId}/verify-signature", s.handleVerifySignature)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC(),
	}
	if err := s.store.Ping(ctx); err != nil {
		status["ok"] = false
		status["db"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	wf, err := s.engine.InitializeWorkflow(r.Context(), tx)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, wf)
}

type actionRequest struct {
	Action    string `json:"action"`
	UserID    string `json:"userId"`
	Comment   string `json:"comment"`
	Signature string `json:"signature"`
}

// actionResult is the structured transition outcome: the whole transition
// committed, or nothing did and Error says why.
type actionResult struct {
	Success  bool             `json:"success"`
	Workflow *models.Workflow `json:"workflow,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, actionResult{Error: err.Error()})
		return
	}
	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		respondJSON(w, statusForError(err), actionResult{Error: err.Error()})
		return
	}
	var signature []byte
	if req.Signature != "" {
		signature = []byte(req.Signature)
	}
	wf, err := s.engine.ProcessAction(r.Context(), workflow.ActionRequest{
		TransactionID: chi.URLParam(r, "transactionId"),
		Action:        action,
		UserID:        req.UserID,
		Comment:       req.Comment,
		Signature:     signature,
	})
	if err != nil {
		respondJSON(w, statusForError(err), actionResult{Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, actionResult{Success: true, Workflow: wf})
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.engine.GetWorkflowStatus(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, wf)
}

func (s *Server) handleCanAct(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "userId query parameter required")
		return
	}
	canAct := s.engine.CanTakeAction(r.Context(), userID, chi.URLParam(r, "transactionId"))
	respondJSON(w, http.StatusOK, map[string]bool{"canAct": canAct})
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	approverID := r.URL.Query().Get("approverId")
	if approverID == "" {
		respondError(w, http.StatusBadRequest, "approverId query parameter required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	workflows, err := s.engine.PendingForApprover(r.Context(), approverID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if workflows == nil {
		workflows = []*models.Workflow{}
	}
	respondJSON(w, http.StatusOK, workflows)
}

type verifySignatureRequest struct {
	StepOrder     int    `json:"stepOrder"`
	SignatureHash string `json:"signatureHash"`
}

func (s *Server) handleVerifySignature(w http.ResponseWriter, r *http.Request) {
	var req verifySignatureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	verified, err := s.engine.VerifySignature(r.Context(), chi.URLParam(r, "transactionId"), req.StepOrder, req.SignatureHash)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

func (s *Server) writeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.AllowDebugToken {
			next.ServeHTTP(w, r)
			return
		}
		if token := r.Header.Get("X-Debug-Token"); token != "" && token == s.cfg.DebugToken {
			next.ServeHTTP(w, r)
			return
		}
		respondError(w, http.StatusUnauthorized, "debug token required")
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrValidation), errors.Is(err, workflow.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrNoHigherApprover),
		errors.Is(err, workflow.ErrWorkflowClosed),
		errors.Is(err, workflow.ErrAlreadyInitialized):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
