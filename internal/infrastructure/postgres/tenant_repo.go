package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/pkg/clock"
	"github.com/ainager-onboarding/internal/pkg/company"
	"github.com/ainager-onboarding/internal/pkg/id"
	"github.com/jackc/pgx/v5"
)

const genericDocDescription = "Knowledge base generated from the company website"

// txBeginner is satisfied by *pgxpool.Pool.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// TenantRepo writes tenants and their documents.
type TenantRepo struct {
	db    txBeginner
	clock clock.Clock
}

func NewTenantRepo(db txBeginner, c clock.Clock) *TenantRepo {
	return &TenantRepo{db: db, clock: c}
}

// Ping reports database connectivity.
func (r *TenantRepo) Ping(ctx context.Context) error {
	p, ok := r.db.(pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Provision upserts the tenant named after in.Email's domain and inserts a new
// document for this run. Both writes share one transaction; the unique
// constraint on tenants.name makes concurrent runs converge on one row.
func (r *TenantRepo) Provision(ctx context.Context, in domain.ProvisionInput) (*domain.ProvisionResult, error) {
	d, err := company.DomainOf(in.Email)
	if err != nil {
		return nil, err
	}
	name := company.DisplayName(d)
	now := r.clock.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w: %w", domain.ErrPersistence, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("rollback provision tx", "tenant", name, "error", rbErr)
		}
	}()

	res := &domain.ProvisionResult{TenantName: name}
	err = tx.QueryRow(ctx,
		`INSERT INTO tenants (id, name, description, instruction, artifact_path, email, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
		 ON CONFLICT (name) DO UPDATE
		   SET instruction = EXCLUDED.instruction,
		       artifact_path = EXCLUDED.artifact_path,
		       updated_at = EXCLUDED.updated_at
		 RETURNING id, (xmax = 0)`,
		id.New(), name, in.Description, in.Instruction, in.ArtifactPath, in.Email, now,
	).Scan(&res.TenantID, &res.Created)
	if err != nil {
		return nil, fmt.Errorf("upsert tenant %s: %w: %w", name, domain.ErrPersistence, err)
	}

	title := in.CompanyName
	if title == "" {
		title = in.Domain
	}
	desc := in.Description
	if desc == "" {
		desc = genericDocDescription
	}

	res.DocumentID = id.New()
	if _, err := tx.Exec(ctx,
		`INSERT INTO documents (id, tenant_id, artifact_path, title, description, knowledge_base_text, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.DocumentID, res.TenantID, in.ArtifactPath, title, desc, in.KnowledgeBase, now,
	); err != nil {
		return nil, fmt.Errorf("insert document for %s: %w: %w", name, domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit provision %s: %w: %w", name, domain.ErrPersistence, err)
	}
	return res, nil
}
