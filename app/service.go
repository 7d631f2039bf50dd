// Package app wires the production plan service together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	planlogapi "github.com/kilianp07/productionplan/api/planlog"
	planapi "github.com/kilianp07/productionplan/api/productionplan"
	"github.com/kilianp07/productionplan/config"
	"github.com/kilianp07/productionplan/core/events"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/core/planlog"
	"github.com/kilianp07/productionplan/core/productionplan"
	"github.com/kilianp07/productionplan/infra/logger"
	"github.com/kilianp07/productionplan/infra/metrics"
	"github.com/kilianp07/productionplan/infra/mqtt"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// Service owns the engine, the event bus and every subscriber of it.
type Service struct {
	Engine *productionplan.Engine
	Store  planlog.LogStore

	cfg        *config.Config
	bus        *eventbus.TypedBus[events.PlanEvent]
	sink       coremetrics.MetricsSink
	publisher  mqtt.SetpointPublisher
	disconnect func()
	log        logger.Logger
	access     *logger.ZerologLogger
	cancel     context.CancelFunc
	done       []<-chan struct{}
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher replaces the MQTT client built from the configuration.
func WithPublisher(p mqtt.SetpointPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New creates a Service from the configuration and starts the bus
// subscribers.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:    cfg,
		bus:    eventbus.NewTyped[events.PlanEvent](),
		log:    logger.New("service"),
		access: logger.NewZerologLogger("http"),
	}
	for _, o := range opts {
		o(s)
	}
	s.Engine = productionplan.NewEngine(cfg.Plant.Tables(), logger.New("engine"))

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s.sink = sink

	store, err := newLogStore(cfg.PlanLog)
	if err != nil {
		return nil, fmt.Errorf("plan log: %w", err)
	}
	s.Store = store

	if s.publisher == nil && cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.publisher = client
		s.disconnect = client.Disconnect
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = append(s.done, metrics.StartPlanCollector(ctx, s.bus, s.sink))
	if s.Store != nil {
		s.done = append(s.done, planlog.StartRecorder(ctx, s.bus, s.Store, logger.New("planlog")))
	}
	if s.publisher != nil {
		s.done = append(s.done, mqtt.StartSetpointForwarder(ctx, s.bus, s.publisher, logger.New("setpoint")))
	}
	return s, nil
}

func newLogStore(cfg config.PlanLogConfig) (planlog.LogStore, error) {
	switch cfg.Backend {
	case "jsonl":
		store, err := planlog.NewJSONLStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "jsonl_rotating":
		store, err := planlog.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return planlog.NewMemoryStore(planlog.DefaultCapacity), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown backend %s", cfg.Backend)
	}
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if secs := s.cfg.Server.RequestTimeoutSeconds; secs > 0 {
		r.Use(middleware.Timeout(time.Duration(secs) * time.Second))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodPost, "/productionplan", planapi.NewHandler(s.Engine, s.bus, logger.New("api")))
	if s.Store != nil {
		r.Method(http.MethodGet, "/api/productionplan/logs", planlogapi.NewLogHandler(s.Store, s.cfg.Server.LogToken))
	}
	return r
}

func (s *Service) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.access.Zerolog().Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Run serves HTTP until ctx is canceled, then shuts the server down.
func (s *Service) Run(ctx context.Context) error {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close stops the subscribers and releases the stores and connections.
func (s *Service) Close() error {
	// Subscribers drain their buffers until the bus closes.
	s.bus.Close()
	for _, d := range s.done {
		<-d
	}
	s.cancel()
	if s.disconnect != nil {
		s.disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}
