package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ainager-onboarding/internal/config"
	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/infrastructure/dynamo"
	"github.com/ainager-onboarding/internal/infrastructure/memstore"
	redisstore "github.com/ainager-onboarding/internal/infrastructure/redis"
	"github.com/ainager-onboarding/internal/pkg/clock"
)

// newStateStore selects the OTP and analysis backend named by STATE_BACKEND.
func newStateStore(ctx context.Context, cfg *config.Config, c clock.Clock) (domain.StateStore, func(), error) {
	switch cfg.StateBackend {
	case "memory", "":
		s := memstore.New(c, time.Minute)
		slog.Warn("using in-memory state store; codes and analyses are lost on restart")
		return s, s.Close, nil

	case "redis":
		client := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		s := redisstore.NewStore(client, "onboarding")
		if err := s.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, func() { _ = client.Close() }, nil

	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTable)
		return dynamo.NewStateRepo(client, cfg.DynamoTable, c), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
}
