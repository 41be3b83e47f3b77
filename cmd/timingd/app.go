// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"github.com/xmidt-org/resourcetiming/bodylength"
	"github.com/xmidt-org/resourcetiming/enrich"
	"github.com/xmidt-org/resourcetiming/health"
	"github.com/xmidt-org/resourcetiming/ingest"
	"github.com/xmidt-org/resourcetiming/logging"
	"github.com/xmidt-org/resourcetiming/matcher"
	"github.com/xmidt-org/resourcetiming/metrics"
	"github.com/xmidt-org/resourcetiming/server"
	"github.com/xmidt-org/resourcetiming/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	HealthKey  = "health"
	MetricsKey = "metrics"
)

// arguments are the command line arguments, without the program name
type arguments []string

// HealthConfig describes the health monitor
type HealthConfig struct {
	Interval time.Duration
}

func newViper(args arguments) (*viper.Viper, error) {
	var (
		v  = server.NewViper(applicationName)
		fs = server.NewFlagSet(applicationName)
	)

	if err := server.ParseAndBind(v, fs, args); err != nil {
		return nil, err
	}

	return v, server.ReadInConfig(v)
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	return logging.New(v)
}

type configs struct {
	fx.Out

	Server  server.Config
	Tracing tracing.Config
	Metrics metrics.Options
	Health  HealthConfig
	Timing  ingest.Config
}

func unmarshalConfigs(v *viper.Viper) (c configs, err error) {
	c.Server = server.DefaultConfig()
	c.Tracing = tracing.Config{
		Provider:    tracing.ProviderNoop,
		ServiceName: applicationName,
		SampleRatio: 1.0,
	}

	c.Metrics = metrics.Options{Namespace: applicationName}
	c.Health = HealthConfig{Interval: health.DefaultStatDumpInterval}
	c.Timing = ingest.DefaultConfig()

	keys := []struct {
		key    string
		target interface{}
	}{
		{server.ServerKey, &c.Server},
		{tracing.TracingKey, &c.Tracing},
		{MetricsKey, &c.Metrics},
		{HealthKey, &c.Health},
		{ingest.TimingKey, &c.Timing},
	}

	for _, k := range keys {
		if err = server.UnmarshalKey(v, k.key, k.target); err != nil {
			return
		}
	}

	return
}

func newTracerProvider(lc fx.Lifecycle, c tracing.Config, logger *zap.Logger) (tracing.Provider, error) {
	provider, err := tracing.NewProvider(context.Background(), c, os.Stdout)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	logger.Info("tracing configured", zap.String("provider", c.Provider), zap.Float64("sampleRatio", c.SampleRatio))

	lc.Append(fx.Hook{
		OnStop: provider.Shutdown,
	})

	return provider, nil
}

func newRegistry(o metrics.Options) (*metrics.Registry, error) {
	return metrics.NewRegistry(o, metrics.Measured)
}

func newHealth(lc fx.Lifecycle, c HealthConfig, logger *zap.Logger) *health.Health {
	var (
		h  = health.New(c.Interval, logger.Named("health"), health.ReportsAccepted, health.ReportsRejected)
		wg = new(sync.WaitGroup)
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			h.Run(wg)
			return nil
		},
		OnStop: func(context.Context) error {
			err := h.Close()
			wg.Wait()
			return err
		},
	})

	return h
}

type ingestIn struct {
	fx.In

	Config   ingest.Config
	Logger   *zap.Logger
	Measures *metrics.Measures
	Health   *health.Health
	Provider tracing.Provider
}

func newIngestHandler(in ingestIn) (*ingest.Handler, error) {
	ignore, _, err := in.Config.Patterns()
	if err != nil {
		return nil, err
	}

	store, err := ingest.NewStore(ingest.StoreOptions{
		MaxPages:          in.Config.MaxPages,
		MaxEntriesPerPage: in.Config.MaxEntriesPerPage,
		Logger:            in.Logger,
		Measures:          in.Measures,
	})

	if err != nil {
		return nil, err
	}

	correlator := ingest.NewCorrelator(ingest.CorrelatorOptions{
		Matcher: matcher.New(
			matcher.WithInitiatorType(in.Config.InitiatorType),
			matcher.WithOutcomes(in.Measures.MatchOutcomes),
			matcher.WithLogger(in.Logger),
		),
		Enricher: &enrich.Enricher{
			IgnoreNetworkEvents: in.Config.IgnoreNetworkEvents,
			Logger:              in.Logger,
		},
		TracerProvider: in.Provider,
		Propagator:     otel.GetTextMapPropagator(),
		IgnoreURLs:     ignore,
		Requests:       in.Measures.RequestsReceived,
		Logger:         in.Logger,
	})

	agent := in.Config.AgentConfig()
	return ingest.NewHandler(ingest.HandlerOptions{
		Store:      store,
		Correlator: correlator,
		Estimator: bodylength.New(
			bodylength.WithTeeStreams(in.Config.TeeStreams),
			bodylength.WithEstimates(in.Measures.BodyLengthEstimates),
			bodylength.WithLogger(in.Logger),
		),
		Origin:        in.Config.Origin,
		MaxReportSize: in.Config.MaxReportSize,
		LengthWait:    in.Config.LengthWait,
		Agent:         &agent,
		Health:        in.Health,
		Measures:      in.Measures,
		Logger:        in.Logger,
	}), nil
}

type routerIn struct {
	fx.In

	Config   server.Config
	Logger   *zap.Logger
	Provider tracing.Provider
	Registry *metrics.Registry
	Health   *health.Health
	Handler  *ingest.Handler
}

func newRouterOptions(in routerIn) server.RouterOptions {
	return in.Config.RouterOptions(server.RouterOptions{
		ServiceName:    applicationName,
		Logger:         in.Logger,
		TracerProvider: in.Provider,
		Propagator:     otel.GetTextMapPropagator(),
		Health:         in.Health,
		Metrics:        in.Registry.Handler(),
	})
}

func newRouter(o server.RouterOptions, h *health.Health, handler *ingest.Handler) *mux.Router {
	router := server.NewRouter(o)
	api := router.NewRoute().Subrouter()
	api.Use(h.Middleware)
	handler.Register(api)
	return router
}

func newServer(lc fx.Lifecycle, c server.Config, o server.RouterOptions, router *mux.Router, m *metrics.Measures, logger *zap.Logger) *server.Server {
	var (
		httpServer = server.NewHTTPServer(c, server.Decorate(router, o), logger)
		s          = server.New(c, httpServer, logger).WithConnectionMetrics(m.RejectedConnections, m.ActiveConnections)
	)

	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})

	return s
}

// newApp assembles the collector.  Extra options are applied last.
func newApp(args []string, extra ...fx.Option) *fx.App {
	options := []fx.Option{
		fx.Supply(arguments(args)),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			newViper,
			newLogger,
			unmarshalConfigs,
			newTracerProvider,
			newRegistry,
			metrics.NewMeasures,
			newHealth,
			newIngestHandler,
			newRouterOptions,
			newRouter,
			newServer,
		),
		fx.Invoke(func(*server.Server) {}),
	}

	return fx.New(append(options, extra...)...)
}
