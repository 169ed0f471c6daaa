package store

import (
	"context"
	"fmt"
	"time"

	"auditforge/internal/platform/store/ch"
	"auditforge/internal/platform/store/pg"
)

// openPG dials postgres and gates the adapter behind a healthy ping
func openPG(ctx context.Context, cfg Config, s *Store) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log.With().Str("component", "pg").Logger())
	}

	client, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, fmt.Errorf("pg open: %w", err)
	}

	retries := cfg.PG.ConnectRetries
	if retries <= 0 {
		retries = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	backoff := 150 * time.Millisecond
	for attempt := 1; ; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = client.Pool.Ping(pctx)
		cancel()
		if err == nil {
			break
		}
		if attempt >= retries {
			client.Close()
			return nil, fmt.Errorf("pg ping after %d attempts: %w", attempt, err)
		}
		s.Log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("pg not ready, retrying")
		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 2*time.Second {
			backoff = 2 * time.Second
		}
	}

	return newPGAdapter(client), nil
}

// openCH dials clickhouse for the activity log
func openCH(ctx context.Context, cfg Config, s *Store) (*chAdapter, error) {
	client, err := ch.Open(ctx, ch.Config{
		URL:        cfg.CH.URL,
		ClientName: cfg.AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("ch open: %w", err)
	}
	s.Log.Debug().Str("backend", "clickhouse").Msg("store backend ready")
	return newCHAdapter(client), nil
}
