package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ppiankov/brandguard/internal/agent"
	"github.com/ppiankov/brandguard/internal/auditlog"
	"github.com/ppiankov/brandguard/internal/critic"
	"github.com/ppiankov/brandguard/internal/embedding"
	"github.com/ppiankov/brandguard/internal/knowledge"
	"github.com/ppiankov/brandguard/internal/model"
	"github.com/ppiankov/brandguard/internal/runner"
	"github.com/ppiankov/brandguard/internal/util"
	"github.com/ppiankov/brandguard/internal/verify"
	"github.com/ppiankov/brandguard/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// robotsTTL is how long a fetched robots.txt is trusted
const robotsTTL = 24 * time.Hour

// app holds the components shared by every command
type app struct {
	cfg        model.Config
	logger     *zap.Logger
	httpClient *http.Client
	embedder   embedding.Embedder
	db         *knowledge.SQLiteStore
	store      *knowledge.Store
	critic     *critic.Critic
	verifier   *verify.Verifier
}

// newApp opens the knowledge store and builds the deterministic components.
// The drafting agent is only created by commands that need it.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := util.NewLogger(cfg.Output.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	httpClient := util.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	embedder, err := embedding.New(cfg.Embedding, cfg.Cache, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	db, err := knowledge.NewSQLiteStore(cfg.Knowledge.DBPath, embedder.Name())
	if err != nil {
		return nil, err
	}

	store, err := knowledge.Open(ctx, db, embedder, cfg.Knowledge.SeedWhenEmpty, knowledge.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("knowledge store ready",
		zap.String("db", cfg.Knowledge.DBPath),
		zap.String("embedder", embedder.Name()),
		zap.Int("brand_chunks", store.Count(model.CategoryBrand)),
		zap.Int("product_chunks", store.Count(model.CategoryProduct)))

	return &app{
		cfg:        cfg,
		logger:     logger,
		httpClient: httpClient,
		embedder:   embedder,
		db:         db,
		store:      store,
		critic:     critic.NewCritic(cfg.Critic),
		verifier:   verify.NewVerifier(embedder, store, cfg.Verifier, verify.WithLogger(logger)),
	}, nil
}

// Close releases the database, reports embedding cache use and flushes the logger
func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: close database: %v\n", err)
	}
	if ce, ok := a.embedder.(*embedding.CachedEmbedder); ok {
		if hits, misses, ok := ce.Stats(); ok {
			a.logger.Debug("embedding cache", zap.Int64("hits", hits), zap.Int64("misses", misses))
		}
	}
	_ = a.logger.Sync()
}

// ingester writes to the live store and the database, fetching URLs politely
func (a *app) ingester() *knowledge.Ingester {
	var fetchOpts []knowledge.FetcherOption
	if a.cfg.HTTP.RespectRobots {
		fetchOpts = append(fetchOpts, knowledge.WithRobots(
			util.NewRobotsChecker(a.httpClient, a.cfg.HTTP.UserAgent, robotsTTL, a.logger)))
	}
	if a.cfg.HTTP.RequestsPerSecond > 0 {
		fetchOpts = append(fetchOpts, knowledge.WithRateLimit(worker.NewLimiter(a.cfg.HTTP.RequestsPerSecond, 1)))
	}
	fetchOpts = append(fetchOpts, knowledge.WithFetchLogger(a.logger))

	fetcher := knowledge.NewFetcher(a.httpClient, a.cfg.HTTP.UserAgent, a.cfg.HTTP.MaxBodyBytes, fetchOpts...)
	chunker := knowledge.NewChunker(a.cfg.Knowledge.ChunkSize, a.cfg.Knowledge.ChunkOverlap)

	return knowledge.NewIngester(a.embedder, chunker, []knowledge.Sink{a.store, a.db},
		knowledge.WithFetcher(fetcher),
		knowledge.WithIngestLogger(a.logger))
}

// controller creates the drafting agent and the iteration controller.
// Finished runs are appended to the audit log under output.audit_dir.
func (a *app) controller() (*runner.Controller, error) {
	agentClient := util.NewHTTPClient(
		time.Duration(a.cfg.Agent.Timeout)*time.Second,
		a.cfg.HTTP.HTTPProxy, a.cfg.HTTP.HTTPSProxy, a.cfg.HTTP.NoProxy)

	drafter, err := agent.NewAgent(a.cfg.Agent, agentClient, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create drafting agent: %w", err)
	}

	opts := []runner.Option{runner.WithLogger(a.logger)}
	if a.cfg.Output.AuditDir != "" {
		audit, err := auditlog.New(auditlog.Options{Logger: a.logger, Dir: a.cfg.Output.AuditDir})
		if err != nil {
			return nil, err
		}
		opts = append(opts, runner.WithAuditSink(audit))
	}

	return runner.NewController(drafter, a.store, a.critic, a.verifier, a.cfg.Runner, opts...), nil
}

// bindFlags binds a command's flags to config keys. It runs in PreRunE so
// commands sharing a key do not overwrite each other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}
