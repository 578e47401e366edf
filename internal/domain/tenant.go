package domain

import "time"

// Tenant is the provisioned assistant record. Name is derived from the email
// domain and is the natural key for re-provisioning.
type Tenant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	Instruction  string    `json:"instruction"`
	ArtifactPath string    `json:"artifact_path"`
	Email        string    `json:"email"`
	Active       bool      `json:"active"`
}

// Document is inserted once per provisioning run and never updated.
type Document struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenant_id"`
	ArtifactPath      string    `json:"artifact_path"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	KnowledgeBaseText string    `json:"knowledge_base_text"`
	UploadedAt        time.Time `json:"uploaded_at"`
}

// ProvisionInput carries everything the tenant repository needs for one run.
type ProvisionInput struct {
	Email         string
	CompanyName   string
	Domain        string
	Description   string
	Instruction   string
	KnowledgeBase string
	ArtifactPath  string
}

// ProvisionResult identifies the rows written by one provisioning run.
type ProvisionResult struct {
	TenantID   string `json:"tenant_id"`
	DocumentID string `json:"document_id"`
	TenantName string `json:"tenant_name"`
	Created    bool   `json:"created"`
}
