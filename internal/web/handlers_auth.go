// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/auth"
)

func conflictMessage(err error) string {
	field := ""
	if oopsErr, ok := oops.AsOops(err); ok {
		field, _ = oopsErr.Context()["field"].(string)
	}
	switch field {
	case "username":
		return "That username is taken. Please choose a different one."
	case "email":
		return "That email is taken. Please choose a different one."
	default:
		return "That account already exists."
	}
}

func (s *Server) registerPage(c *gin.Context) {
	s.render(c, http.StatusOK, "register", view{Title: "Register", Form: registerForm{}})
}

func (s *Server) registerSubmit(c *gin.Context) {
	var f registerForm
	errs := bindForm(c, &f)
	password := f.Password
	f.Password, f.ConfirmPassword = "", ""
	if errs != nil {
		s.render(c, http.StatusUnprocessableEntity, "register", view{Title: "Register", Form: f, Errors: errs})
		return
	}

	_, err := s.deps.Creds.Create(c.Request.Context(), f.Username, f.Email, password, false)
	if err != nil {
		s.events.Record("register", "failure")
		if errors.Is(err, auth.ErrConflict) {
			addFlash(c, FlashDanger, conflictMessage(err))
			s.render(c, http.StatusConflict, "register", view{Title: "Register", Form: f})
			return
		}
		if fields, ok := validationFields(err); ok {
			s.render(c, http.StatusUnprocessableEntity, "register", view{Title: "Register", Form: f, Errors: fields})
			return
		}
		s.serverError(c, err)
		return
	}

	s.events.Record("register", "success")
	addFlash(c, FlashSuccess, "Your account has been created! You can now log in.")
	s.redirect(c, "/login")
}

func (s *Server) loginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "login", view{Title: "Login", Form: loginForm{Next: c.Query("next")}})
}

func (s *Server) loginSubmit(c *gin.Context) {
	var f loginForm
	errs := bindForm(c, &f)
	password := f.Password
	f.Password = ""
	if f.Next == "" {
		f.Next = c.Query("next")
	}
	if errs != nil {
		s.render(c, http.StatusUnprocessableEntity, "login", view{Title: "Login", Form: f, Errors: errs})
		return
	}

	session, token, err := s.deps.Auth.Login(c.Request.Context(), f.Email, password, f.remember(),
		c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		s.events.Record("login", "failure")
		if errors.Is(err, auth.ErrInvalidCredentials) {
			addFlash(c, FlashDanger, "Login unsuccessful. Please check email and password.")
			s.render(c, http.StatusOK, "login", view{Title: "Login", Form: f})
			return
		}
		s.serverError(c, err)
		return
	}

	s.events.Record("login", "success")
	s.setSessionCookie(c, token, session.Remember)
	s.redirect(c, SafeNext(f.Next))
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if err := s.deps.Auth.Logout(c.Request.Context(), token); err != nil {
			s.logger.WarnContext(c.Request.Context(), "logout failed", "error", err)
		} else if currentUser(c) != nil {
			s.events.Record("logout", "success")
		}
	}
	s.clearSessionCookie(c)
	s.redirect(c, "/")
}

func (s *Server) profilePage(c *gin.Context) {
	s.render(c, http.StatusOK, "profile", view{Title: "Profile", Form: profileFormFrom(currentUser(c))})
}

func (s *Server) profileSubmit(c *gin.Context) {
	user := currentUser(c)

	var f profileForm
	if errs := bindForm(c, &f); errs != nil {
		s.render(c, http.StatusUnprocessableEntity, "profile", view{Title: "Profile", Form: f, Errors: errs})
		return
	}

	var upload *auth.AvatarUpload
	if fh, err := c.FormFile("avatar"); err == nil && fh.Filename != "" {
		file, err := fh.Open()
		if err != nil {
			s.serverError(c, oops.Code("AVATAR_OPEN_FAILED").Wrap(err))
			return
		}
		defer file.Close() //nolint:errcheck // read-only multipart part
		upload = &auth.AvatarUpload{Filename: fh.Filename, Content: file}
	}

	_, err := s.deps.Profiles.UpdateProfile(c.Request.Context(), user, f.update(), upload)
	if err != nil {
		s.events.Record("profile_update", "failure")
		if errors.Is(err, auth.ErrConflict) {
			addFlash(c, FlashDanger, conflictMessage(err))
			s.render(c, http.StatusConflict, "profile", view{Title: "Profile", Form: f})
			return
		}
		if fields, ok := validationFields(err); ok {
			s.render(c, http.StatusUnprocessableEntity, "profile", view{Title: "Profile", Form: f, Errors: fields})
			return
		}
		s.serverError(c, err)
		return
	}

	s.events.Record("profile_update", "success")
	addFlash(c, FlashSuccess, "Your profile has been updated!")
	s.redirect(c, "/profile")
}

func (s *Server) resetRequestPage(c *gin.Context) {
	s.render(c, http.StatusOK, "reset_request", view{Title: "Reset Password", Form: resetRequestForm{}})
}

func (s *Server) resetRequestSubmit(c *gin.Context) {
	var f resetRequestForm
	if errs := bindForm(c, &f); errs != nil {
		s.render(c, http.StatusUnprocessableEntity, "reset_request", view{Title: "Reset Password", Form: f, Errors: errs})
		return
	}

	err := s.deps.Reset.RequestReset(c.Request.Context(), f.Email, s.deps.BaseURL)
	switch {
	case err == nil:
		s.events.Record("reset_request", "success")
		addFlash(c, FlashInfo, "An email has been sent with instructions to reset your password.")
	case errors.Is(err, auth.ErrNotFound):
		s.events.Record("reset_request", "failure")
		addFlash(c, FlashDanger, "No account found with that email.")
	default:
		s.serverError(c, err)
		return
	}
	s.redirect(c, "/login")
}

// checkResetToken redirects to the request page when token is not usable.
func (s *Server) checkResetToken(c *gin.Context, token string) bool {
	_, err := s.deps.Reset.ValidateToken(c.Request.Context(), token)
	if err == nil {
		return true
	}
	if errors.Is(err, auth.ErrInvalidOrExpiredToken) {
		addFlash(c, FlashWarning, "That is an invalid or expired token")
		s.redirect(c, "/reset_password")
		return false
	}
	s.serverError(c, err)
	return false
}

func (s *Server) resetTokenPage(c *gin.Context) {
	token := c.Param("token")
	if !s.checkResetToken(c, token) {
		return
	}
	s.render(c, http.StatusOK, "reset_token", view{Title: "Reset Password", Token: token, Form: resetPasswordForm{}})
}

func (s *Server) resetTokenSubmit(c *gin.Context) {
	token := c.Param("token")
	if !s.checkResetToken(c, token) {
		return
	}

	var f resetPasswordForm
	errs := bindForm(c, &f)
	password := f.Password
	f.Password, f.ConfirmPassword = "", ""
	if errs != nil {
		s.render(c, http.StatusUnprocessableEntity, "reset_token", view{Title: "Reset Password", Token: token, Form: f, Errors: errs})
		return
	}

	_, err := s.deps.Reset.ResetPassword(c.Request.Context(), token, password)
	if err != nil {
		s.events.Record("reset_complete", "failure")
		if errors.Is(err, auth.ErrInvalidOrExpiredToken) {
			addFlash(c, FlashWarning, "That is an invalid or expired token")
			s.redirect(c, "/reset_password")
			return
		}
		if fields, ok := validationFields(err); ok {
			s.render(c, http.StatusUnprocessableEntity, "reset_token", view{Title: "Reset Password", Token: token, Form: f, Errors: fields})
			return
		}
		s.serverError(c, err)
		return
	}

	s.events.Record("reset_complete", "success")
	addFlash(c, FlashSuccess, "Your password has been updated! You are now able to log in.")
	s.redirect(c, "/login")
}
