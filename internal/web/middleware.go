// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/pkg/errutil"
)

const sessionCookie = "folio_session"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.logger.InfoContext(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", c.Writer.Status()),
			slog.String("client_ip", c.ClientIP()),
			slog.String("latency", time.Since(start).String()),
		)
	}
}

func (s *Server) recordMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.deps.Observer == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		s.deps.Observer.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) recovered(c *gin.Context, rec any) {
	s.serverError(c, oops.Code("HTTP_PANIC").With("panic", rec).Errorf("handler panicked"))
}

// loadSession resolves the session cookie into a user on the request
// context. An unknown or expired session clears the cookie.
func (s *Server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		user, _, err := s.deps.Auth.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) {
				s.clearSessionCookie(c)
				c.Next()
				return
			}
			s.serverError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.ContextWithUser(ctx, user))
		c.Next()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != nil {
			c.Next()
			return
		}
		addFlash(c, FlashInfo, "Please log in to access this page.")
		// Only GET and HEAD requests are returned to after login.
		target := "/login"
		if m := c.Request.Method; m == http.MethodGet || m == http.MethodHead {
			target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		s.redirect(c, target)
		c.Abort()
	}
}

func (s *Server) redirectIfAuthenticated(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Next()
			return
		}
		s.redirect(c, target)
		c.Abort()
	}
}

func currentUser(c *gin.Context) *auth.User {
	return auth.UserFromContext(c.Request.Context())
}

func (s *Server) setSessionCookie(c *gin.Context, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(s.deps.Auth.SessionTTL(true).Seconds())
	}
	http.SetCookie(c.Writer, cookie)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirect persists queued flashes and issues a 302.
func (s *Server) redirect(c *gin.Context, location string) {
	persistFlashes(c, s.deps.SecureCookies)
	c.Redirect(http.StatusFound, location)
}

// render fills the shared view fields and renders page.
func (s *Server) render(c *gin.Context, status int, page string, v view) {
	v.User = currentUser(c)
	v.Flashes = consumeFlashes(c, s.deps.SecureCookies)
	v.Now = s.now()
	v.Status = status
	c.HTML(status, page, v)
}

func (s *Server) serverError(c *gin.Context, err error) {
	errutil.LogErrorContext(c.Request.Context(), s.logger, "request failed", err,
		"method", c.Request.Method,
		"route", c.FullPath(),
	)
	if c.Writer.Written() {
		c.Abort()
		return
	}
	s.render(c, http.StatusInternalServerError, "error", view{Title: "Server Error"})
	c.Abort()
}

func (s *Server) notFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "error", view{Title: "Page Not Found"})
}
