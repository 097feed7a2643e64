package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutorleap/qgen/internal/llm"
	"github.com/tutorleap/qgen/internal/qgen"
	"github.com/tutorleap/qgen/internal/ratelimit"
	"github.com/tutorleap/qgen/internal/server"
	"github.com/tutorleap/qgen/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Persistence is best-effort: the engine serves from memory when
		// the database cannot be opened.
		var st *store.Store
		if dbPath, err := resolveDBPath(cmd, cfg); err != nil {
			log.Printf("warning: resolve database path: %v; running without persistence", err)
		} else if st, err = store.Open(dbPath); err != nil {
			log.Printf("warning: open database at %s: %v; running without persistence", dbPath, err)
			st = nil
		} else {
			defer st.Close()
		}

		var rec llm.Recorder
		if st != nil {
			rec = st
		}
		provider, err := llm.NewProviderFromEnv(ctx, rec)
		if err != nil {
			log.Printf("warning: no LLM provider configured (%v); serving fallback questions only", err)
			provider = nil
		}

		engine := qgen.New(provider, qgen.Config{
			MaxAttempts: cfg.Generation.MaxAttempts,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
			MCQPortion:  cfg.Generation.MCQPortion,
			CallTimeout: cfg.Generation.CallTimeout,
		})

		limiter, err := buildLimiter(cfg.RateLimit.Window, cfg.RateLimit.FreeLimit, cfg.RateLimit.ElevatedLimit, cfg.RateLimit.Durable, st)
		if err != nil {
			return err
		}

		srvCfg := server.DefaultConfig()
		srvCfg.Addr = cfg.Server.Addr
		srvCfg.Version = version
		srvCfg.ReadTimeout = cfg.Server.ReadTimeout
		srvCfg.WriteTimeout = cfg.Server.WriteTimeout

		return server.New(engine, limiter, st, srvCfg).Run(ctx)
	},
}

// buildLimiter picks the counting backend: durable windows need an open
// store, otherwise counting is in-process.
func buildLimiter(window time.Duration, free, elevated int, durable bool, st *store.Store) (*ratelimit.Limiter, error) {
	cfg := ratelimit.Config{
		Window:        window,
		FreeLimit:     free,
		ElevatedLimit: elevated,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rate limit config: %w", err)
	}

	var backend ratelimit.Store = ratelimit.NewMemoryStore()
	if durable {
		if st == nil {
			return nil, fmt.Errorf("durable rate limiting requires a database")
		}
		backend = st.RateWindows()
	}
	return ratelimit.New(backend, cfg), nil
}
