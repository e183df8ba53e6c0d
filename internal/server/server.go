// Package server serves Moon data over HTTP: a small REST API, a websocket
// feed for live compass displays, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide"
	"github.com/thurmanmarka/moonglide/internal/config"
	"github.com/thurmanmarka/moonglide/internal/metrics"
)

// Server is the moonglide HTTP server.
type Server struct {
	calc     *moonglide.Calculator
	observer moonglide.Observer
	loc      *time.Location
	cfg      config.ServerConfig

	log      *zap.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	hub      *hub
	upgrader websocket.Upgrader
	events   MoonEventSchedule

	now   func() time.Time
	start time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the collectors updated by the server and the gatherer
// served on /metrics. The same collectors are usually passed to the
// Calculator as its divergence recorder.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New builds a Server answering for observer by default, with local days
// in loc.
func New(calc *moonglide.Calculator, observer moonglide.Observer, loc *time.Location, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		calc:     calc,
		observer: observer,
		loc:      loc,
		cfg:      cfg,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = metrics.New(reg)
		s.gatherer = reg
	}

	s.start = s.now()
	s.hub = newHub(s.log, s.metrics)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	s.events = MoonEventSchedule{
		Calc:     calc,
		Observer: observer,
		Location: s.loc,
		Log:      s.log,
	}
	return s
}

// Handler returns the router with all endpoints.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/moon", s.getMoon).Methods(http.MethodGet)
	api.HandleFunc("/moon/times", s.getMoonTimes).Methods(http.MethodGet)
	api.HandleFunc("/bearing", s.getBearing).Methods(http.MethodGet)

	router.HandleFunc("/ws", s.serveWS)

	if s.cfg.Metrics {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return router
}

// Run serves until ctx is cancelled. It also publishes the Moon position to
// websocket clients every refresh interval, the day's rise/set times at
// local midnight, and each rise/set as it happens.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cronLogger{s: s.log.Sugar()}),
	)
	c.Schedule(s.events, cron.FuncJob(s.fireEvent))
	if _, err := c.AddFunc("@daily", s.publishTimes); err != nil {
		return err
	}
	c.Start()

	go s.publishLoop(ctx)
	s.publishTimes()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("moonglide server listening", zap.String("addr", s.cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	<-c.Stop().Done()
	s.hub.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}

func (s *Server) publishLoop(ctx context.Context) {
	interval := s.cfg.RefreshInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	s.publishMoon()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.publishMoon()
		}
	}
}

func (s *Server) publishMoon() {
	md, err := s.calc.ComputeMoonData(s.observer, s.now())
	if err != nil {
		s.log.Error("computing moon data", zap.Error(err))
		return
	}
	s.metrics.ObserveMoon(md)
	s.hub.broadcast("moon", md)
}

func (s *Server) publishTimes() {
	mt, err := s.calc.ComputeMoonTimes(s.observer, s.now().In(s.loc))
	if err != nil {
		s.log.Error("computing moon times", zap.Error(err))
		return
	}
	s.hub.broadcast("times", mt)
}

func (s *Server) fireEvent() {
	ev, ok := s.events.Latest(s.now())
	if !ok {
		s.log.Debug("moon event schedule woke without an event")
		return
	}
	s.log.Info("moon event", zap.String("kind", ev.Kind), zap.Time("time", ev.Time))
	s.metrics.RecordEvent(ev.Kind)
	s.hub.broadcast("event", ev)
}
