// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package web

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/folioweb/folio/internal/auth"
)

type registerForm struct {
	Username        string `form:"username" binding:"required,max=50"`
	Email           string `form:"email" binding:"required,email,max=120"`
	Password        string `form:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Remember string `form:"remember"`
	Next     string `form:"next"`
}

func (f loginForm) remember() bool {
	return f.Remember != ""
}

type profileForm struct {
	Username string `form:"username" binding:"required,max=50"`
	Email    string `form:"email" binding:"required,email,max=120"`
	Bio      string `form:"bio"`
	Location string `form:"location" binding:"max=100"`
	Phone    string `form:"phone" binding:"max=20"`
	Website  string `form:"website" binding:"max=100"`
	LinkedIn string `form:"linkedin" binding:"max=100"`
	GitHub   string `form:"github" binding:"max=100"`
	Twitter  string `form:"twitter" binding:"max=100"`
}

func profileFormFrom(u *auth.User) profileForm {
	return profileForm{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Profile.Bio,
		Location: u.Profile.Location,
		Phone:    u.Profile.Phone,
		Website:  u.Profile.Website,
		LinkedIn: u.Profile.LinkedIn,
		GitHub:   u.Profile.GitHub,
		Twitter:  u.Profile.Twitter,
	}
}

func (f profileForm) update() auth.ProfileUpdate {
	return auth.ProfileUpdate{
		Username: f.Username,
		Email:    f.Email,
		Bio:      f.Bio,
		Location: f.Location,
		Phone:    f.Phone,
		Website:  f.Website,
		LinkedIn: f.LinkedIn,
		GitHub:   f.GitHub,
		Twitter:  f.Twitter,
	}
}

type resetRequestForm struct {
	Email string `form:"email" binding:"required,email"`
}

type resetPasswordForm struct {
	Password        string `form:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type contactForm struct {
	Name    string `form:"name" binding:"required,max=100"`
	Email   string `form:"email" binding:"required,email,max=120"`
	Message string `form:"message" binding:"required"`
}

var registerTagNames sync.Once

// useFormTagNames makes validator report fields by their form names.
func useFormTagNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindForm binds the request into dst and returns per-field messages. A nil
// map means the form is valid.
func bindForm(c *gin.Context, dst any) map[string]string {
	err := c.ShouldBind(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": "The submitted form could not be read."}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "eqfield":
		return fmt.Sprintf("Field must be equal to %s.", strings.ToLower(fe.Param()))
	default:
		return "Invalid value."
	}
}

// validationFields extracts field messages from a domain validation error.
func validationFields(err error) (map[string]string, bool) {
	var verr *auth.ValidationError
	if !errors.As(err, &verr) {
		return nil, false
	}
	out := make(map[string]string, len(verr.Fields))
	for k, v := range verr.Fields {
		out[k] = v
	}
	return out, true
}
