// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

// Package web serves the Folio site over HTTP with gin.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/internal/portfolio"
)

// RequestObserver records per-request metrics.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Auth     *auth.Service
	Creds    *auth.CredentialStore
	Reset    *auth.PasswordResetService
	Profiles *auth.ProfileService
	Content  portfolio.ContentRepository
	Contact  *portfolio.ContactService

	// Optional.
	Events   auth.EventRecorder
	Observer RequestObserver
	Logger   *slog.Logger

	BaseURL        string
	StaticDir      string
	UploadDir      string
	MaxUploadBytes int64
	SecureCookies  bool
}

func (d *Deps) check() error {
	switch {
	case d.Auth == nil:
		return oops.Code("WEB_DEPS_MISSING").Errorf("auth service is required")
	case d.Creds == nil:
		return oops.Code("WEB_DEPS_MISSING").Errorf("credential store is required")
	case d.Reset == nil:
		return oops.Code("WEB_DEPS_MISSING").Errorf("password reset service is required")
	case d.Profiles == nil:
		return oops.Code("WEB_DEPS_MISSING").Errorf("profile service is required")
	case d.Content == nil:
		return oops.Code("WEB_DEPS_MISSING").Errorf("content repository is required")
	case d.Contact == nil:
		return oops.Code("WEB_DEPS_MISSING").Errorf("contact service is required")
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string) {}

// Server is the public HTTP server.
type Server struct {
	deps       Deps
	engine     *gin.Engine
	logger     *slog.Logger
	events     auth.EventRecorder
	now        func() time.Time
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// New builds the router. It does not start listening.
func New(deps Deps) (*Server, error) {
	if err := deps.check(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Events == nil {
		deps.Events = nopRecorder{}
	}

	views, err := loadPages()
	if err != nil {
		return nil, err
	}
	useFormTagNames()

	s := &Server{
		deps:   deps,
		logger: deps.Logger,
		events: deps.Events,
		now:    time.Now,
	}

	engine := gin.New()
	engine.HTMLRender = views
	if deps.MaxUploadBytes > 0 {
		engine.MaxMultipartMemory = deps.MaxUploadBytes
	}
	engine.Use(s.requestLogger(), s.recordMetrics(), gin.CustomRecovery(s.recovered), s.loadSession())
	s.engine = engine
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.index)
	r.GET("/home", s.index)
	r.GET("/about", s.about)
	r.GET("/contact", s.contactPage)
	r.POST("/contact", s.contactSubmit)
	r.GET("/logout", s.logout)
	r.GET("/static/*filepath", s.static)
	r.HEAD("/static/*filepath", s.static)

	anon := r.Group("/", s.redirectIfAuthenticated(DefaultLanding))
	anon.GET("/register", s.registerPage)
	anon.POST("/register", s.registerSubmit)
	anon.GET("/login", s.loginPage)
	anon.POST("/login", s.loginSubmit)

	reset := r.Group("/reset_password", s.redirectIfAuthenticated("/"))
	reset.GET("", s.resetRequestPage)
	reset.POST("", s.resetRequestSubmit)
	reset.GET("/:token", s.resetTokenPage)
	reset.POST("/:token", s.resetTokenSubmit)

	private := r.Group("/", s.requireAuth())
	private.GET("/profile", s.profilePage)
	private.POST("/profile", s.profileSubmit)
	private.GET("/dashboard", s.dashboard)
	private.POST("/messages/:id/read", s.markRead)
	private.GET("/education", s.contentPage("education", "Education"))
	private.GET("/experience", s.contentPage("experience", "Work Experience"))
	private.GET("/projects", s.contentPage("projects", "Projects"))
	private.GET("/certifications", s.contentPage("certifications", "Certifications"))
	private.GET("/skills", s.contentPage("skills", "Skills"))

	r.NoRoute(s.notFound)
}

// Handler returns the gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on addr and serves in the background. The returned channel
// receives a serve error, if any, and is closed when the server stops.
func (s *Server) Start(addr string) (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server. Stopping a stopped server is a
// no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}
	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
