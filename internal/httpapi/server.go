// Package httpapi exposes the queues read-only over HTTP, plus the runtime
// log level switch.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jose-valero/game-queue-bot/internal/app"
	"github.com/jose-valero/game-queue-bot/internal/domain/events"
	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/internal/queue"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

// Change is the last QueueChanged seen for a game.
type Change struct {
	Action events.Action `json:"action"`
	Actor  string        `json:"actor"`
	Target string        `json:"target,omitempty"`
	At     time.Time     `json:"at"`
}

// QueueSummary is one entry of GET /queues.
type QueueSummary struct {
	Game       string  `json:"game"`
	CohortSize int     `json:"cohortSize"`
	Members    int     `json:"members"`
	Delaying   int     `json:"delaying"`
	LastChange *Change `json:"lastChange,omitempty"`
}

type Server struct {
	svc    *app.Service
	echo   *echo.Echo
	server *http.Server
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	changes map[string]Change

	cancelSub func()
}

func ProvideServer(svc *app.Service, cfg *config.Config, loggerFactory *infra.LoggerFactory) *Server {
	s := &Server{
		svc:     svc,
		logger:  loggerFactory.Create("HTTP").Sugar(),
		changes: map[string]Change{},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonnetSerializer{}
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogRequestID: true,
		LogStatus:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debugf("%v %v id[%v] status[%v] latency[%vms]", v.Method, v.URI, v.RequestID, v.Status, v.Latency.Milliseconds())
			return nil
		},
	}))

	e.GET("/healthz", s.handleHealth)
	e.GET("/queues", s.handleQueues)
	e.GET("/queues/:game", s.handleQueue)

	e.PUT("/debug", func(c echo.Context) error {
		infra.LoggerLevel.SetLevel(zapcore.DebugLevel)
		s.logger.Info("debug logging enabled")
		return c.NoContent(http.StatusOK)
	})
	e.DELETE("/debug", func(c echo.Context) error {
		infra.LoggerLevel.SetLevel(zapcore.InfoLevel)
		s.logger.Info("debug logging disabled")
		return c.NoContent(http.StatusOK)
	})

	s.echo = e
	s.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.cancelSub = events.Subscribe(s.track)
	return s
}

func (s *Server) track(ev events.QueueChanged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes[ev.Game] = Change{Action: ev.Action, Actor: ev.Actor, Target: ev.Target, At: ev.At}
}

func (s *Server) lastChange(game string) *Change {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.changes[game]
	if !ok {
		return nil
	}
	return &c
}

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"queues": len(s.svc.Overview()),
	})
}

func (s *Server) handleQueues(c echo.Context) error {
	reports := s.svc.Overview()
	out := make([]QueueSummary, 0, len(reports))
	for _, r := range reports {
		out = append(out, QueueSummary{
			Game:       r.Game,
			CohortSize: r.CohortSize,
			Members:    r.Size(),
			Delaying:   len(r.Delaying),
			LastChange: s.lastChange(r.Game),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleQueue(c echo.Context) error {
	game := queue.GameKey(c.Param("game"))
	report, err := s.svc.Snapshot(game)
	if errors.Is(err, queue.ErrQueueNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no queue for "+game)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.cancelSub()
	if s.server.Addr == "" {
		s.logger.Info("status API disabled")
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("server starts listening on addr[%v]", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// sonnetSerializer swaps echo's encoding/json for sonnet.
type sonnetSerializer struct{}

func (sonnetSerializer) Serialize(c echo.Context, i interface{}, _ string) error {
	raw, err := sonnet.Marshal(i)
	if err != nil {
		return err
	}
	_, err = c.Response().Write(raw)
	return err
}

func (sonnetSerializer) Deserialize(c echo.Context, i interface{}) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	if err := sonnet.Unmarshal(raw, i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
