package testbackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/okian/nodo/internal/domain/model"
)

// maxUploadBytes bounds multipart parsing.
const maxUploadBytes = 10 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", ErrValidation)
	}
	return nil
}

// statusOf maps store errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidLogin), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotVerified):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrInvalidCode), errors.Is(err, ErrDuplicateProposal):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if err := decode(r, &req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	u, code, err := s.store.register(req)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, model.RegistrationResult{
		ID:               u.ID,
		Message:          "Registered. Verify your email to log in.",
		VerificationCode: code,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req model.Verification
	if err := decode(r, &req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	if err := s.store.verify(req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Email verified"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if err := decode(r, &req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	u, err := s.store.login(req)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	token, err := s.issueToken(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResult{Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.profile(currentUser(r).ID))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.Profile
	if err := decode(r, &req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.updateProfile(currentUser(r).ID, req))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: expected multipart form", ErrValidation))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: missing file part", ErrValidation))
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(io.Discard, f); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name := filepath.Base(hdr.Filename)
	writeJSON(w, http.StatusCreated, model.UploadResult{URL: s.store.addUpload(name), Filename: name})
}

func (s *Server) handleCreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req model.NewOpportunity
	if err := decode(r, &req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	op, err := s.store.createOpportunity(currentUser(r).ID, req)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, op)
}

func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.store.listOpportunities(model.OpportunityFilter{
		Category: model.Category(q.Get("category")),
		Location: q.Get("location"),
	}))
}

func (s *Server) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	op, ok := s.store.opportunity(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (s *Server) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	var req model.NewProposal
	if err := decode(r, &req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	p, err := s.store.submitProposal(currentUser(r).ID, mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleMyProposals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.proposalsBy(currentUser(r).ID))
}

func (s *Server) handleReceivedProposals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.proposalsFor(currentUser(r).ID))
}

// handleProposalStatus answers in plain text; clients re-fetch instead of
// reading the body.
func (s *Server) handleProposalStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdate
	if err := decode(r, &req); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	if _, err := s.store.setProposalStatus(currentUser(r).ID, mux.Vars(r)["id"], req.Status); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "status updated")
}

func (s *Server) handleDeveloperDashboard(w http.ResponseWriter, r *http.Request) {
	id := currentUser(r).ID
	writeJSON(w, http.StatusOK, model.DeveloperDashboard{
		MyOpportunities:   s.store.opportunitiesOf(id),
		ProposalsReceived: s.store.proposalsFor(id),
	})
}

func (s *Server) handleContractorDashboard(w http.ResponseWriter, r *http.Request) {
	id := currentUser(r).ID
	writeJSON(w, http.StatusOK, model.ContractorDashboard{
		Opportunities: s.store.listOpportunities(model.OpportunityFilter{}),
		MyProposals:   s.store.proposalsBy(id),
	})
}
