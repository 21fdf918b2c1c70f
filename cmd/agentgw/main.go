package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentgw/agentgw/internal/agent"
	"github.com/agentgw/agentgw/internal/config"
	"github.com/agentgw/agentgw/internal/journal"
	"github.com/agentgw/agentgw/internal/logx"
	"github.com/agentgw/agentgw/internal/metrics"
	"github.com/agentgw/agentgw/internal/relay"
	"github.com/agentgw/agentgw/internal/server"
	"github.com/agentgw/agentgw/internal/serverstate"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	var cfg config.ServerConfig
	cfg.BindFlags()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "agentgw version=%s sha=%s date=%s\n\n", version, buildSHA, buildDate)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("agentgw version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}

	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	logx.Configure(cfg.LogLevel)

	metrics.Register(prometheus.DefaultRegisterer)
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	var j *journal.Journal
	if cfg.RedisAddr != "" {
		var err error
		j, err = journal.New(cfg.RedisAddr, cfg.JournalTTL)
		if err != nil {
			logx.Log.Fatal().Err(err).Msg("connect redis")
		}
		defer func() { _ = j.Close() }()
		logx.Log.Info().Str("addr", cfg.RedisAddr).Msg("result journal enabled")
	}

	rel := relay.New(relay.Options{
		Endpoint:    cfg.AgentEndpoint,
		Handlers:    agent.Default(),
		Journal:     j,
		Timeout:     cfg.RequestTimeout,
		ReadTimeout: cfg.SSEReadTimeout,
	})

	handler := server.New(rel, j, cfg)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: server.NewMetricsHandler()}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigCh {
			if serverstate.IsDraining() || cfg.DrainTimeout == 0 {
				logx.Log.Warn().Msg("termination requested")
				cancel()
				return
			}
			serverstate.StartDrain()
			logx.Log.Info().Dur("timeout", cfg.DrainTimeout).Msg("draining; send SIGTERM again to terminate immediately")
			go func(d time.Duration) {
				deadline := time.After(d)
				tick := time.NewTicker(500 * time.Millisecond)
				defer tick.Stop()
				for {
					select {
					case <-deadline:
						logx.Log.Warn().Msg("drain timeout exceeded; terminating")
						cancel()
						return
					case <-tick.C:
						if serverstate.ActiveStreams() == 0 {
							logx.Log.Info().Msg("drain complete")
							cancel()
							return
						}
					}
				}
			}(cfg.DrainTimeout)
		}
	}()
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			logx.Log.Error().Err(err).Msg("server shutdown")
		}
	}()
	if metricsSrv != nil {
		go func() {
			<-ctx.Done()
			if err := metricsSrv.Shutdown(context.Background()); err != nil {
				logx.Log.Error().Err(err).Msg("metrics server shutdown")
			}
		}()
		go func() {
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	if cfg.APIKey != "" {
		logx.Log.Info().Msg("API key auth enabled")
	}
	serverstate.SetState("ready")
	logx.Log.Info().Int("port", cfg.Port).Str("endpoint", cfg.AgentEndpoint).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
}
