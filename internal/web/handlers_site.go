// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package web

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/folioweb/folio/internal/portfolio"
)

//go:embed static
var assetFS embed.FS

func (s *Server) index(c *gin.Context) {
	content, err := s.deps.Content.Defaults(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}
	s.render(c, http.StatusOK, "index", view{Title: "Portfolio", Content: content, Form: contactForm{}})
}

func (s *Server) about(c *gin.Context) {
	s.render(c, http.StatusOK, "about", view{Title: "About Me"})
}

func (s *Server) contactPage(c *gin.Context) {
	s.render(c, http.StatusOK, "contact", view{Title: "Contact Me", Form: contactForm{}})
}

func (s *Server) contactSubmit(c *gin.Context) {
	var f contactForm
	if errs := bindForm(c, &f); errs != nil {
		s.render(c, http.StatusUnprocessableEntity, "contact", view{Title: "Contact Me", Form: f, Errors: errs})
		return
	}

	if _, err := s.deps.Contact.Submit(c.Request.Context(), f.Name, f.Email, f.Message); err != nil {
		if fields, ok := validationFields(err); ok {
			s.render(c, http.StatusUnprocessableEntity, "contact", view{Title: "Contact Me", Form: f, Errors: fields})
			return
		}
		s.serverError(c, err)
		return
	}

	addFlash(c, FlashSuccess, "Your message has been sent! Thank you for contacting me.")
	s.redirect(c, "/")
}

func (s *Server) dashboard(c *gin.Context) {
	msgs, err := s.deps.Contact.ListMessages(c.Request.Context())
	if err != nil {
		s.serverError(c, err)
		return
	}
	s.render(c, http.StatusOK, "dashboard", view{Title: "Dashboard", Messages: msgs, Unread: portfolio.Unread(msgs)})
}

func (s *Server) markRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.notFound(c)
		return
	}
	if err := s.deps.Contact.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, portfolio.ErrMessageNotFound) {
			s.notFound(c)
			return
		}
		s.serverError(c, err)
		return
	}
	s.redirect(c, "/dashboard")
}

func (s *Server) contentPage(page, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, err := s.deps.Content.Defaults(c.Request.Context())
		if err != nil {
			s.serverError(c, err)
			return
		}
		s.render(c, http.StatusOK, page, view{Title: title, Content: content})
	}
}

// static serves uploads from the upload directory and everything else from
// the static directory, falling back to the embedded assets.
func (s *Server) static(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")

	if upload, ok := strings.CutPrefix(name, "uploads/"); ok {
		if s.deps.UploadDir != "" && serveFile(c, http.Dir(s.deps.UploadDir), upload) {
			return
		}
		s.notFound(c)
		return
	}

	if s.deps.StaticDir != "" && serveFile(c, http.Dir(s.deps.StaticDir), name) {
		return
	}
	assets, err := fs.Sub(assetFS, "static")
	if err == nil && serveFile(c, http.FS(assets), name) {
		return
	}
	s.notFound(c)
}

// serveFile serves name from fsys when it is a regular file.
func serveFile(c *gin.Context, fsys http.FileSystem, name string) bool {
	if name == "" {
		return false
	}
	f, err := fsys.Open("/" + name)
	if err != nil {
		return false
	}
	info, err := f.Stat()
	_ = f.Close()
	if err != nil || info.IsDir() {
		return false
	}
	c.FileFromFS(name, fsys)
	return true
}
