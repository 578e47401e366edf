// Package otp issues and validates single-use, time-limited email verification codes.
// At most one live code exists per email; verification fails closed and consumes
// the record on success or on discovering it expired.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/pkg/clock"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "otp:"

type Service struct {
	store    domain.StateStore
	clock    clock.Clock
	ttl      time.Duration
	hashCost int
}

// Option customises a Service.
type Option func(*Service)

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option { return func(s *Service) { s.ttl = d } }

// WithHashCost sets the bcrypt cost used to store codes.
func WithHashCost(cost int) Option { return func(s *Service) { s.hashCost = cost } }

func NewService(store domain.StateStore, c clock.Clock, opts ...Option) *Service {
	s := &Service{store: store, clock: c, ttl: DefaultTTL, hashCost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(s)
	}
	return s
}

func key(email string) string { return keyPrefix + email }

// Issue generates and stores a new code for email and returns it for delivery.
// It fails with domain.ErrRateLimited while a previous code is still live.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}
	now := s.clock.Now()
	rec := domain.OTPRecord{
		Email:     email,
		CodeHash:  string(hash),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal otp record: %w", err)
	}
	ok, err := s.store.SetNX(ctx, key(email), raw, s.ttl)
	if err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("a verification code is already active for this email: %w", domain.ErrRateLimited)
	}
	return code, nil
}

// Verify reports whether code is the live code for email. A missing, expired or
// mismatched code yields false with a nil error; only store failures return an error.
// A matching code is consumed, so a second Verify with it returns false.
func (s *Service) Verify(ctx context.Context, email, code string) (bool, error) {
	raw, rec, err := s.load(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.Expired(s.clock.Now()) {
		if _, err := s.store.CompareAndDelete(ctx, key(email), raw); err != nil {
			return false, fmt.Errorf("evict expired otp: %w", err)
		}
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) != nil {
		return false, nil
	}
	// Only the caller that removes the exact record wins a concurrent race.
	consumed, err := s.store.CompareAndDelete(ctx, key(email), raw)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return consumed, nil
}

// HasActive reports whether a live code exists for email. It has no side effects.
func (s *Service) HasActive(ctx context.Context, email string) (bool, error) {
	_, rec, err := s.load(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !rec.Expired(s.clock.Now()), nil
}

// Revoke drops any code for email, e.g. when delivery failed.
func (s *Service) Revoke(ctx context.Context, email string) error {
	return s.store.Delete(ctx, key(email))
}

func (s *Service) load(ctx context.Context, email string) ([]byte, *domain.OTPRecord, error) {
	raw, err := s.store.Get(ctx, key(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("load otp: %w", err)
	}
	var rec domain.OTPRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, nil, fmt.Errorf("decode otp record: %w", err)
	}
	return raw, &rec, nil
}

// generateCode returns a uniformly random 6-digit code, leading zeros kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
