// Package api exposes transfer sessions over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/chain"
	"github.com/vultisig/xpay/internal/loop"
	"github.com/vultisig/xpay/internal/metrics"
	"github.com/vultisig/xpay/internal/transfer"
)

type Config struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port string `envconfig:"PORT" default:"8080"`
}

type Server struct {
	cfg      Config
	echo     *echo.Echo
	sessions *Sessions
	chains   chain.ConfigMap
	logger   *logrus.Logger
}

func NewServer(cfg Config, sessions *Sessions, chains chain.ConfigMap, logger *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metrics.HTTPMiddleware())

	s := &Server{
		cfg:      cfg,
		echo:     e,
		sessions: sessions,
		chains:   chains,
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	v1 := s.echo.Group("/v1")
	v1.GET("/chains", s.listChains)
	v1.POST("/sessions", s.createSession)

	sess := v1.Group("/sessions/:id")
	sess.GET("", s.getSession)
	sess.DELETE("", s.deleteSession)
	sess.PUT("/wallets/:chain", s.setWallet)
	sess.PUT("/source", s.setSource)
	sess.PUT("/amount", s.setAmount)
	sess.PUT("/target", s.setTarget)
	sess.POST("/next", s.next)
	sess.POST("/step", s.setStep)
	sess.POST("/approve", s.approve)
	sess.POST("/submit", s.submit)
	sess.POST("/settle", s.settle)
	sess.POST("/reset", s.reset)

	nft := sess.Group("/nft")
	nft.GET("", s.getNFT)
	nft.PUT("/source", s.setNFTSource)
	nft.PUT("/target", s.setNFTTarget)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("api server listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// fail maps session errors onto HTTP statuses.
func (s *Server) fail(c echo.Context, err error) error {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, transfer.ErrFieldsLocked),
		errors.Is(err, transfer.ErrInFlight),
		errors.Is(err, transfer.ErrAlreadySubmitted),
		errors.Is(err, transfer.ErrWrongWallet):
		status = http.StatusConflict
	case errors.Is(err, transfer.ErrUnknownChain), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, loop.ErrStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}
