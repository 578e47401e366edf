package handler

import (
	"context"
	"net/http"

	"github.com/ainager-onboarding/internal/application/onboarding"
	"github.com/ainager-onboarding/internal/pkg/company"
	"github.com/ainager-onboarding/internal/pkg/validate"
	"github.com/ainager-onboarding/internal/transport/http/middleware"
)

// OnboardingService is satisfied by *onboarding.Service.
type OnboardingService interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*onboarding.VerifyResult, error)
	CreateTenant(ctx context.Context, email string) (*onboarding.CreateResult, error)
	Status(ctx context.Context, email string) (*onboarding.Status, error)
}

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otpcode"`
}

type CreateTenantRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OnboardingHandler serves the code, verification and tenant endpoints.
type OnboardingHandler struct {
	svc           OnboardingService
	requireTicket bool
}

// NewOnboardingHandler creates the handler. When requireTicket is set, tenant
// creation needs ticket claims whose subject matches the body email.
func NewOnboardingHandler(svc OnboardingService, requireTicket bool) *OnboardingHandler {
	return &OnboardingHandler{svc: svc, requireTicket: requireTicket}
}

func (h *OnboardingHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req RequestOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.RequestOTP(r.Context(), req.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (h *OnboardingHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{
		OK:          true,
		WebsiteInfo: res.WebsiteInfo,
		Ticket:      res.Ticket,
		Phases:      res.Phases,
	})
}

func (h *OnboardingHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, r, err)
		return
	}
	if h.requireTicket {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok || claims.Subject != company.NormalizeEmail(req.Email) {
			writeError(w, http.StatusUnauthorized, "ticket does not match email")
			return
		}
	}
	res, err := h.svc.CreateTenant(r.Context(), req.Email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CreateEnvelope{
		OK:                 true,
		TenantName:         res.TenantName,
		ShareableLink:      res.ShareableLink,
		Instruction:        res.Instruction,
		KnowledgeBaseBytes: res.KnowledgeBaseBytes,
		TenantID:           res.TenantID,
		DocumentID:         res.DocumentID,
		ArtifactPath:       res.ArtifactPath,
		Created:            res.Created,
		WebsiteInfo:        res.WebsiteInfo,
		Phases:             res.Phases,
	})
}

func (h *OnboardingHandler) Status(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter required")
		return
	}
	st, err := h.svc.Status(r.Context(), email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusEnvelope{
		OK:            true,
		Email:         st.Email,
		State:         string(st.State),
		Domain:        st.Domain,
		ProvisionedAt: st.ProvisionedAt,
	})
}
