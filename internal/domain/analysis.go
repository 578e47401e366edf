package domain

import "time"

// WebsiteInfo is the public summary of an analyzed website.
type WebsiteInfo struct {
	Domain      string `json:"domain"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// WebsiteAnalysis is produced by a successful verification and consumed by tenant creation.
// A later verification for the same email overwrites it.
type WebsiteAnalysis struct {
	Email         string     `json:"email"`
	Domain        string     `json:"domain"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Content       string     `json:"content"`
	Instruction   string     `json:"instruction"`
	KnowledgeBase string     `json:"knowledge_base"`
	AnalyzedAt    time.Time  `json:"analyzed_at"`
	ProvisionedAt *time.Time `json:"provisioned_at,omitempty"`
}

// Info returns the client-facing summary.
func (a *WebsiteAnalysis) Info() WebsiteInfo {
	return WebsiteInfo{Domain: a.Domain, Title: a.Title, Description: a.Description}
}
