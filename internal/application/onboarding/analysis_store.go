package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ainager-onboarding/internal/domain"
)

const (
	analysisKeyPrefix  = "analysis:"
	DefaultAnalysisTTL = 24 * time.Hour
)

type analysisStore struct {
	kv  domain.StateStore
	ttl time.Duration
}

func analysisKey(email string) string { return analysisKeyPrefix + email }

func (s *analysisStore) save(ctx context.Context, a *domain.WebsiteAnalysis) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err := s.kv.Set(ctx, analysisKey(a.Email), b, s.ttl); err != nil {
		return fmt.Errorf("store analysis: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *analysisStore) load(ctx context.Context, email string) (*domain.WebsiteAnalysis, error) {
	b, err := s.kv.Get(ctx, analysisKey(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no website analysis for this email, verify your code first: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load analysis: %w: %w", domain.ErrPersistence, err)
	}
	var a domain.WebsiteAnalysis
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w: %w", domain.ErrPersistence, err)
	}
	return &a, nil
}
