package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Yaseeru/CodeToContent-sub005/internal/auth"
	"github.com/Yaseeru/CodeToContent-sub005/internal/config"
	"github.com/Yaseeru/CodeToContent-sub005/internal/gateway"
	"github.com/Yaseeru/CodeToContent-sub005/internal/obs"
	"github.com/Yaseeru/CodeToContent-sub005/internal/ratelimit"
	"github.com/Yaseeru/CodeToContent-sub005/internal/ratelimit/fixedwindow"
)

const version = "v0.1.0"

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := obs.SetupLogger(cfg.Observability.LogLevel)

	reg := prometheus.NewRegistry()
	metrics := obs.NewMetrics(reg)

	anon, err := fixedwindow.New(cfg.Limits.Anonymous.RateConfig())
	if err != nil {
		log.Fatalf("anonymous limiter: %v", err)
	}
	authed, err := fixedwindow.New(cfg.Limits.Authenticated.RateConfig())
	if err != nil {
		log.Fatalf("authenticated limiter: %v", err)
	}
	metrics.TrackIdentifiers(gateway.ClassAnonymous, anon.Len)
	metrics.TrackIdentifiers(gateway.ClassAuthenticated, authed.Len)

	pairs := map[string]string{} // secret -> keyID
	for _, k := range cfg.Auth.Keys {
		if k.Secret != "" && k.ID != "" {
			pairs[k.Secret] = k.ID
		}
	}
	authStore := auth.NewStatic(cfg.Auth.Header, pairs)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(version))
	})

	mux.Handle(cfg.Observability.PrometheusPath,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	skip := map[string]struct{}{
		"/health":                        {},
		"/version":                       {},
		cfg.Observability.PrometheusPath: {},
	}

	handler := gateway.Chain(
		mux,
		obs.Logger(logger),
		gateway.BodyLimit(cfg.Server.MaxBody()),
		metrics.Middleware(skip),
		authStore.Tag(),
		gateway.RateLimit(
			gateway.Quotas{Anonymous: anon, Authenticated: authed},
			skip,
			func(class string) { metrics.RateLimited.WithLabelValues(class).Inc() },
		),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout(),
		IdleTimeout:       cfg.Server.IdleTimeout(),
		ReadTimeout:       cfg.Server.ReadTimeout(),
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepLoop(sweepCtx, cfg.Limits.SweepPeriod(), logger, anon, authed)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("bye")
}

// sweepLoop drops expired limiter entries on a fixed period. The
// limiters are correct without it; this only bounds memory for
// identifiers that stop sending.
func sweepLoop(ctx context.Context, period time.Duration, logger zerolog.Logger, limiters ...ratelimit.Limiter) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range limiters {
				l.Sweep()
			}
			logger.Debug().Msg("limiter sweep")
		}
	}
}
