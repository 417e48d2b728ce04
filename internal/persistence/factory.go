package persistence

import (
	"context"
	"fmt"

	"social-support-wizard/internal/common/config"
	"social-support-wizard/internal/common/database"
)

// NewBackend builds the backend named in configuration. The returned close func releases any
// connection the backend holds and is never nil.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Persistence.Backend {
	case "memory":
		return NewMemoryBackend(), noop, nil
	case "file":
		fb, err := NewFileBackend(cfg.Persistence.FileDir)
		if err != nil {
			return nil, noop, err
		}
		return fb, noop, nil
	case "redis":
		rc, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisBackend(rc.Client, "wizard:draft:", config.GetDuration(cfg.Persistence.TTL)), rc.Close, nil
	}
	return nil, noop, fmt.Errorf("unsupported persistence backend %q", cfg.Persistence.Backend)
}
