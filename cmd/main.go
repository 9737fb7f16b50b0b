package main

import (
	"log"
	"net/http"

	"github.com/robertasolimandonofreo/squad-core/internal"
)

func main() {
	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := internal.NewLogger(cfg)
	metrics := internal.NewMetricsCollector(logger)

	roster, err := cfg.Roster()
	if err != nil {
		log.Fatalf("Error loading roster: %v", err)
	}

	store, err := internal.NewStore(cfg, logger)
	if err != nil {
		log.Fatalf("Error creating cache store: %v", err)
	}

	riotClient := internal.NewRiotClient(cfg, logger, metrics)
	pacer := internal.NewSleepPacer(cfg.PaceDelay)
	pipeline := internal.NewPipeline(store, riotClient, roster, pacer, logger, metrics)

	var rateLimiter internal.RateLimiterInterface
	if cfg.RateLimitEnabled {
		rateLimiter = internal.NewRateLimiter(cfg, logger)
	}

	profiler := internal.NewProfiler(logger)
	profiler.StartMemoryProfiling()
	profiler.StartPeriodicMemoryLogging()

	if cfg.NATSUrl != "" {
		natsClient, err := internal.NewNATSClient(cfg, logger)
		if err != nil {
			log.Fatalf("Error connecting to NATS: %v", err)
		}
		defer natsClient.Conn.Close()

		if _, err := natsClient.StartRefreshWorker(pipeline); err != nil {
			log.Fatalf("Error starting refresh worker: %v", err)
		}
		natsClient.ScheduleRefresh(cfg.RefreshInterval, cfg.MatchCount)
	}

	middleware := internal.NewLoggingMiddleware(logger, metrics)

	http.HandleFunc("/healthz", middleware.Handler(internal.HealthHandler(logger)))
	http.HandleFunc("/squad", middleware.Handler(internal.SquadHandler(pipeline, cfg, rateLimiter, logger)))
	http.HandleFunc("/metrics", middleware.Handler(internal.MetricsHandler(logger, metrics)))

	port := cfg.AppPort
	if port == "" {
		port = "8000"
	}
	log.Printf("Server started on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
