package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ainager-onboarding/internal/application/onboarding"
	"github.com/ainager-onboarding/internal/domain"
)

// maxBodyBytes caps request bodies; every endpoint takes a tiny JSON object.
const maxBodyBytes = 1 << 16

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// OKEnvelope is the body of a bare success.
type OKEnvelope struct {
	OK bool `json:"ok"`
}

// VerifyEnvelope wraps verify-otp responses.
type VerifyEnvelope struct {
	OK          bool                     `json:"ok"`
	WebsiteInfo domain.WebsiteInfo       `json:"websiteInfo"`
	Ticket      string                   `json:"ticket,omitempty"`
	Phases      []onboarding.PhaseTiming `json:"phases,omitempty"`
}

// CreateEnvelope wraps tenant/create responses.
type CreateEnvelope struct {
	OK                 bool                     `json:"ok"`
	TenantName         string                   `json:"tenantName"`
	ShareableLink      string                   `json:"shareableLink"`
	Instruction        string                   `json:"instruction"`
	KnowledgeBaseBytes int                      `json:"knowledgeBaseBytes"`
	TenantID           string                   `json:"tenantId"`
	DocumentID         string                   `json:"documentId"`
	ArtifactPath       string                   `json:"artifactPath"`
	Created            bool                     `json:"created"`
	WebsiteInfo        domain.WebsiteInfo       `json:"websiteInfo"`
	Phases             []onboarding.PhaseTiming `json:"phases"`
}

// StatusEnvelope wraps onboarding/status responses.
type StatusEnvelope struct {
	OK            bool       `json:"ok"`
	Email         string     `json:"email"`
	State         string     `json:"state"`
	Domain        string     `json:"domain"`
	ProvisionedAt *time.Time `json:"provisionedAt,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
