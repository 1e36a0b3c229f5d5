package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/graderight/grader/pkg/api"
	"github.com/graderight/grader/pkg/auth"
	"github.com/graderight/grader/pkg/cleanup"
	"github.com/graderight/grader/pkg/engine"
	"github.com/graderight/grader/pkg/extract"
	"github.com/graderight/grader/pkg/fetch"
	"github.com/graderight/grader/pkg/llm"
	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/metrics"
	"github.com/graderight/grader/pkg/middleware"
	"github.com/graderight/grader/pkg/notify"
	"github.com/graderight/grader/pkg/orchestrator"
	"github.com/graderight/grader/pkg/ratelimit"
	"github.com/graderight/grader/pkg/retry"
	"github.com/graderight/grader/pkg/shutdown"
	"github.com/graderight/grader/pkg/store"
	tlsutil "github.com/graderight/grader/pkg/tls"
	"github.com/graderight/grader/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the grading API server",
	Long: `Starts the HTTP API that accepts solution-analysis and
submission-grading jobs, processes them asynchronously, and delivers
results to callback URLs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "listen address (overrides config)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := logging.NewFileLogger("serve", logging.ParseLevel(viper.GetString("log.level")), viper.GetBool("log.json"))
	if err != nil {
		logger = logging.NewLogger(logging.ParseLevel(viper.GetString("log.level")), viper.GetBool("log.json"))
	}

	tracer, err := tracing.InitTracer(tracing.Config{
		ServiceName:    "grader",
		ServiceVersion: Version,
		Environment:    viper.GetString("tracing.environment"),
		OTLPEndpoint:   viper.GetString("tracing.endpoint"),
		Enabled:        viper.GetBool("tracing.enabled"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	// The status store is telemetry. When it cannot be reached the server
	// still starts and grading runs without status bookkeeping.
	jobStore := connectStore(logger)
	recorder := store.NewStatusRecorder(jobStore, logger)

	m := metrics.New()
	fetcher := fetch.New(viper.GetDuration("fetch.timeout"), logger)
	extractor := extract.NewPDFExtractor()
	chatClient := llm.NewClient(llm.Config{
		BaseURL: viper.GetString("llm.base_url"),
		APIKey:  viper.GetString("llm.api_key"),
		Model:   viper.GetString("llm.model"),
		Timeout: viper.GetDuration("llm.timeout"),
	})
	gradingEngine := engine.New(chatClient, logger)
	notifier := notify.New(viper.GetDuration("callback.timeout"), logger)

	scheduler := orchestrator.NewScheduler(orchestrator.SchedulerConfig{
		MaxConcurrentJobs: viper.GetInt64("scheduler.max_concurrent_jobs"),
		QueueSize:         viper.GetInt("scheduler.queue_size"),
	}, logger)

	orch := orchestrator.New(scheduler, fetcher, extractor, gradingEngine, notifier, recorder, m, tracer, logger)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	orch.Start(jobCtx)

	cleaner := cleanup.NewManager(cleanup.Config{
		Enabled:       viper.GetBool("cleanup.enabled"),
		RetentionDays: viper.GetInt("cleanup.retention_days"),
		Interval:      viper.GetDuration("cleanup.interval"),
	}, jobStore, logger)
	cleaner.Start()

	authManager := auth.NewAPIKeyManager(viper.GetStringSlice("server.api_keys"))

	router := mux.NewRouter()
	handler := api.NewGraderHandler(orch, recorder, logger, Version)
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	var h http.Handler = router
	if rps := viper.GetFloat64("server.rate_limit_rps"); rps > 0 {
		limiter := ratelimit.NewLimiter(rps, viper.GetInt("server.rate_limit_burst"))
		h = limiter.Middleware(ratelimit.IPKeyFunc)(h)
	}
	h = authManager.Middleware(h)
	h = tracing.HTTPMiddleware(tracer)(h)
	h = middleware.RequestID(h)
	h = cors.New(cors.Options{
		AllowedOrigins: viper.GetStringSlice("server.cors_origins"),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", middleware.RequestIDHeader},
	}).Handler(h)

	server := &http.Server{
		Addr:         viper.GetString("server.listen"),
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sd := shutdown.New(30 * time.Second)
	sd.Register(shutdown.CloseResource(logger, "logger"))
	sd.Register(func(ctx context.Context) error { return tracer.Shutdown(ctx) })
	if jobStore != nil {
		sd.Register(shutdown.CloseResource(jobStore, "job store"))
	}
	sd.Register(func(ctx context.Context) error {
		cleaner.Stop()
		return nil
	})
	sd.Register(func(ctx context.Context) error {
		// Let in-flight jobs finish before cutting off their context.
		err := orch.Drain(ctx)
		cancelJobs()
		return err
	})
	sd.Register(shutdown.StopHTTPServer(server, "grader"))

	go func() {
		logger.Info("Grading API listening", map[string]interface{}{
			"addr":    server.Addr,
			"version": Version,
			"store":   viper.GetString("store.type"),
		})

		var serveErr error
		if viper.GetBool("tls.enabled") {
			certFile := viper.GetString("tls.cert_file")
			keyFile := viper.GetString("tls.key_file")
			if _, statErr := os.Stat(certFile); os.IsNotExist(statErr) {
				if genErr := tlsutil.GenerateSelfSignedCert(certFile, keyFile, "grader"); genErr != nil {
					logger.Fatal("Failed to generate TLS certificate", map[string]interface{}{"error": genErr.Error()})
				}
			}
			tlsConfig, cfgErr := tlsutil.LoadTLSConfig(certFile, keyFile)
			if cfgErr != nil {
				logger.Fatal("Failed to load TLS configuration", map[string]interface{}{"error": cfgErr.Error()})
			}
			server.TLSConfig = tlsConfig
			serveErr = server.ListenAndServeTLS("", "")
		} else {
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Fatal("Server failed", map[string]interface{}{"error": serveErr.Error()})
		}
	}()

	return sd.WaitWithContext(context.Background())
}

// connectStore opens the configured job store, retrying transient failures.
// Returns nil when the store stays unreachable.
func connectStore(logger *logging.Logger) store.Store {
	cfg := store.Config{
		Type:            viper.GetString("store.type"),
		DSN:             viper.GetString("store.dsn"),
		Path:            viper.GetString("store.path"),
		MaxOpenConns:    viper.GetInt("store.max_open_conns"),
		MaxIdleConns:    viper.GetInt("store.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("store.conn_max_lifetime"),
	}

	var s store.Store
	err := retry.Do(context.Background(), retry.Config{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	}, func() error {
		var openErr error
		s, openErr = store.NewStore(cfg)
		return openErr
	})
	if err != nil {
		logger.Warn("Job store unavailable, running without status tracking", map[string]interface{}{
			"type":  cfg.Type,
			"error": err.Error(),
		})
		return nil
	}

	return s
}
