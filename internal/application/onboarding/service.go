// Package onboarding sequences the three client-driven steps that turn a company
// email into a provisioned tenant: request a code, verify it and analyze the
// company website, then generate the knowledge artifact and persist the tenant.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ainager-onboarding/internal/application/artifact"
	"github.com/ainager-onboarding/internal/application/knowledge"
	"github.com/ainager-onboarding/internal/application/website"
	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/infrastructure/pdf"
	snsinfra "github.com/ainager-onboarding/internal/infrastructure/sns"
	"github.com/ainager-onboarding/internal/infrastructure/telemetry"
	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/ainager-onboarding/internal/pkg/company"
	"github.com/ainager-onboarding/internal/pkg/validate"
)

// DefaultServiceDomain is the host used in shareable links.
const DefaultServiceDomain = "www.ainager.com"

// CodeIssuer is satisfied by *otp.Service.
type CodeIssuer interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (bool, error)
	HasActive(ctx context.Context, email string) (bool, error)
	Revoke(ctx context.Context, email string) error
}

// Notifier delivers an issued code to its owner.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

// WebsiteAnalyzer is satisfied by *website.Analyzer.
type WebsiteAnalyzer interface {
	Fetch(ctx context.Context, d string) (string, string, error)
	Parse(d, url, html string) (*website.Page, error)
}

// ArtifactGenerator is satisfied by *artifact.Service.
type ArtifactGenerator interface {
	Generate(ctx context.Context, doc pdf.Document) (*artifact.Artifact, error)
}

// TenantProvisioner is satisfied by *postgres.TenantRepo.
type TenantProvisioner interface {
	Provision(ctx context.Context, in domain.ProvisionInput) (*domain.ProvisionResult, error)
}

// EventPublisher is satisfied by *sns.Publisher.
type EventPublisher interface {
	PublishTenantProvisioned(ctx context.Context, ev snsinfra.TenantProvisioned) error
}

// TicketSigner is satisfied by *jwtinfra.Provider.
type TicketSigner interface {
	Sign(email, domain string) (string, error)
}

// VerifyResult is returned by a successful VerifyOTP.
type VerifyResult struct {
	WebsiteInfo domain.WebsiteInfo
	Ticket      string
	Phases      []PhaseTiming
}

// CreateResult is returned by a successful CreateTenant.
type CreateResult struct {
	TenantName         string
	ShareableLink      string
	Instruction        string
	KnowledgeBaseBytes int
	TenantID           string
	DocumentID         string
	ArtifactPath       string
	Created            bool
	WebsiteInfo        domain.WebsiteInfo
	Phases             []PhaseTiming
}

// State is the per-email position in the pipeline.
type State string

const (
	StateIdle         State = "idle"
	StateOTPRequested State = "otp_requested"
	StateVerified     State = "verified"
	StateProvisioned  State = "provisioned"
)

// Status describes where an email is in the pipeline.
type Status struct {
	Email         string
	State         State
	Domain        string
	ProvisionedAt *time.Time
}

type Service struct {
	codes     CodeIssuer
	notifier  Notifier
	analyzer  WebsiteAnalyzer
	artifacts ArtifactGenerator
	tenants   TenantProvisioner
	analyses  *analysisStore
	clock     clock.Clock
	metrics   *telemetry.Metrics

	publisher     EventPublisher
	tickets       TicketSigner
	serviceDomain string
}

// Option customises a Service.
type Option func(*Service)

func WithPublisher(p EventPublisher) Option { return func(s *Service) { s.publisher = p } }

func WithTicketSigner(t TicketSigner) Option { return func(s *Service) { s.tickets = t } }

func WithMetrics(m *telemetry.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithAnalysisTTL(d time.Duration) Option { return func(s *Service) { s.analyses.ttl = d } }

func WithServiceDomain(d string) Option { return func(s *Service) { s.serviceDomain = d } }

func NewService(
	codes CodeIssuer,
	notifier Notifier,
	analyzer WebsiteAnalyzer,
	artifacts ArtifactGenerator,
	tenants TenantProvisioner,
	store domain.StateStore,
	c clock.Clock,
	opts ...Option,
) *Service {
	s := &Service{
		codes:         codes,
		notifier:      notifier,
		analyzer:      analyzer,
		artifacts:     artifacts,
		tenants:       tenants,
		analyses:      &analysisStore{kv: store, ttl: DefaultAnalysisTTL},
		clock:         c,
		serviceDomain: DefaultServiceDomain,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = telemetry.MustNewMetrics()
	}
	return s
}

// RequestOTP issues a code for a company email and hands it to the notifier.
// If delivery fails the code is revoked so the caller can retry immediately.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	email = company.NormalizeEmail(email)
	if _, err := company.CompanyDomain(email); err != nil {
		s.metrics.OTPRejected.Add(ctx, 1)
		return err
	}

	code, err := s.codes.Issue(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			s.metrics.OTPRejected.Add(ctx, 1)
		}
		return err
	}

	if err := s.notifier.SendOTP(ctx, email, code); err != nil {
		if rerr := s.codes.Revoke(ctx, email); rerr != nil {
			slog.Error("revoke undelivered code", "email", email, "error", rerr)
		}
		return fmt.Errorf("deliver verification code: %w", err)
	}

	s.metrics.OTPIssued.Add(ctx, 1)
	slog.Info("verification code issued", "email", email)
	return nil
}

// VerifyOTP consumes a valid code, analyzes the company website and stores the
// analysis for CreateTenant. A failed analysis is not resumable; the caller
// starts again from RequestOTP.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*VerifyResult, error) {
	email = company.NormalizeEmail(email)
	d, err := company.CompanyDomain(email)
	if err != nil {
		return nil, err
	}
	if !validate.IsOTPCode(code) {
		return nil, fmt.Errorf("code must be 6 digits: %w", domain.ErrValidation)
	}

	ok, err := s.codes.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.VerifyFailed.Add(ctx, 1)
		return nil, fmt.Errorf("verify code: %w", domain.ErrUnauthenticated)
	}

	progress := NewProgress(s.clock, VerifyPhases...)

	pageURL, html, err := s.analyzer.Fetch(ctx, d)
	if err != nil {
		s.metrics.AnalysisFailed.Add(ctx, 1)
		slog.Warn("website fetch failed", "email", email, "domain", d, "error", err)
		return nil, err
	}
	progress.Advance()

	page, err := s.analyzer.Parse(d, pageURL, html)
	if err != nil {
		s.metrics.AnalysisFailed.Add(ctx, 1)
		slog.Warn("website parse failed", "email", email, "domain", d, "error", err)
		return nil, err
	}
	progress.Advance()

	synth := knowledge.Synthesize(knowledge.Input{
		Domain:      d,
		Title:       page.Title,
		Description: page.Description,
		Content:     page.Content,
	})
	progress.Advance()

	analysis := &domain.WebsiteAnalysis{
		Email:         email,
		Domain:        d,
		Title:         page.Title,
		Description:   page.Description,
		Content:       page.Content,
		Instruction:   synth.Instruction,
		KnowledgeBase: synth.KnowledgeBase,
		AnalyzedAt:    s.clock.Now(),
	}
	if err := s.analyses.save(ctx, analysis); err != nil {
		return nil, err
	}

	res := &VerifyResult{WebsiteInfo: analysis.Info(), Phases: progress.Timings()}
	if s.tickets != nil {
		if res.Ticket, err = s.tickets.Sign(email, d); err != nil {
			return nil, fmt.Errorf("sign onboarding ticket: %w", err)
		}
	}

	slog.Info("website analyzed", "email", email, "domain", d,
		"business_type", synth.BusinessType, "keywords", synth.Keywords)
	return res, nil
}

// CreateTenant renders the stored analysis and provisions the tenant. Running
// it again for the same domain updates the tenant and adds a document.
func (s *Service) CreateTenant(ctx context.Context, email string) (*CreateResult, error) {
	email = company.NormalizeEmail(email)
	if _, err := company.DomainOf(email); err != nil {
		return nil, err
	}

	a, err := s.analyses.load(ctx, email)
	if err != nil {
		return nil, err
	}

	progress := NewProgress(s.clock, CreatePhases...)

	art, err := s.artifacts.Generate(ctx, pdf.Document{
		Domain:        a.Domain,
		Title:         a.Title,
		Description:   a.Description,
		Content:       a.Content,
		KnowledgeBase: a.KnowledgeBase,
	})
	if err != nil {
		slog.Error("artifact generation failed", "email", email, "domain", a.Domain, "error", err)
		return nil, err
	}
	progress.Advance()

	prov, err := s.tenants.Provision(ctx, domain.ProvisionInput{
		Email:         email,
		CompanyName:   a.Title,
		Domain:        a.Domain,
		Description:   a.Description,
		Instruction:   a.Instruction,
		KnowledgeBase: a.KnowledgeBase,
		ArtifactPath:  art.Path,
	})
	if err != nil {
		slog.Error("tenant provisioning failed", "email", email, "domain", a.Domain, "error", err)
		return nil, err
	}
	progress.Advance()
	s.metrics.TenantsProvisioned.Add(ctx, 1)

	now := s.clock.Now()
	a.ProvisionedAt = &now
	if err := s.analyses.save(ctx, a); err != nil {
		slog.Warn("mark analysis provisioned", "email", email, "error", err)
	}

	s.publish(ctx, snsinfra.TenantProvisioned{
		TenantID:     prov.TenantID,
		TenantName:   prov.TenantName,
		DocumentID:   prov.DocumentID,
		Email:        email,
		Domain:       a.Domain,
		ArtifactPath: art.Path,
		Created:      prov.Created,
	})

	slog.Info("tenant provisioned", "tenant", prov.TenantName, "tenant_id", prov.TenantID,
		"document_id", prov.DocumentID, "created", prov.Created)

	return &CreateResult{
		TenantName:         prov.TenantName,
		ShareableLink:      s.ShareableLink(prov.TenantName),
		Instruction:        a.Instruction,
		KnowledgeBaseBytes: len(a.KnowledgeBase),
		TenantID:           prov.TenantID,
		DocumentID:         prov.DocumentID,
		ArtifactPath:       art.Path,
		Created:            prov.Created,
		WebsiteInfo:        a.Info(),
		Phases:             progress.Timings(),
	}, nil
}

// Status derives the pipeline state for email. A live code means a new run is
// in progress and takes precedence over an older analysis.
func (s *Service) Status(ctx context.Context, email string) (*Status, error) {
	email = company.NormalizeEmail(email)
	d, err := company.DomainOf(email)
	if err != nil {
		return nil, err
	}
	st := &Status{Email: email, Domain: d, State: StateIdle}

	active, err := s.codes.HasActive(ctx, email)
	if err != nil {
		return nil, err
	}
	if active {
		st.State = StateOTPRequested
		return st, nil
	}

	a, err := s.analyses.load(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return st, nil
	case err != nil:
		return nil, err
	}
	st.State = StateVerified
	if a.ProvisionedAt != nil {
		st.State = StateProvisioned
		st.ProvisionedAt = a.ProvisionedAt
	}
	return st, nil
}

// ShareableLink returns the public URL for tenantName.
func (s *Service) ShareableLink(tenantName string) string {
	return fmt.Sprintf("https://%s/w/%s", s.serviceDomain, url.PathEscape(tenantName))
}

func (s *Service) publish(ctx context.Context, ev snsinfra.TenantProvisioned) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTenantProvisioned(ctx, ev); err != nil {
		slog.Warn("publish tenant event", "tenant", ev.TenantName, "error", err)
	}
}
