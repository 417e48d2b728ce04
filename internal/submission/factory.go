package submission

import (
	"context"
	"fmt"

	"social-support-wizard/internal/common/camunda"
	"social-support-wizard/internal/common/config"
	"social-support-wizard/internal/common/database"
	httpclient "social-support-wizard/internal/common/http"
	"social-support-wizard/internal/common/logger"
)

// New builds the configured submitter, instrumented. The returned close func releases any
// connection the backend opened.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Submitter, func() error, error) {
	noop := func() error { return nil }
	sc := cfg.Submission

	var (
		s       Submitter
		closeFn = noop
	)

	switch sc.Backend {
	case "mock":
		s = NewMockSubmitter(config.GetDuration(sc.Mock.MinDelay), config.GetDuration(sc.Mock.MaxDelay), sc.Mock.FailureRate)

	case "http":
		s = NewHTTPSubmitter(sc.BaseURL, httpclient.NewClient(0), config.GetDuration(sc.Timeout))

	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, noop, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, noop, err
		}
		rs, err := NewRecordSubmitter(pg.DB, log)
		if err != nil {
			pg.Close()
			return nil, noop, err
		}
		s, closeFn = rs, pg.Close

	case "camunda":
		zc, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		if err != nil {
			return nil, noop, err
		}
		s, closeFn = NewProcessSubmitter(zc, cfg.Camunda.ProcessID, log), zc.Close

	default:
		return nil, noop, fmt.Errorf("unsupported submission backend %q", sc.Backend)
	}

	return Instrument(s, log), closeFn, nil
}
