// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

const (
	flashCookie = "folio_flash"
	flashKey    = "folio.flashes"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// addFlash queues a message for the current request. It survives a redirect
// because redirect persists pending messages to the flash cookie.
func addFlash(c *gin.Context, category, message string) {
	pending, _ := c.Get(flashKey)
	list, _ := pending.([]Flash)
	c.Set(flashKey, append(list, Flash{Category: category, Message: message}))
}

func pendingFlashes(c *gin.Context) []Flash {
	pending, _ := c.Get(flashKey)
	list, _ := pending.([]Flash)
	return list
}

// consumeFlashes returns the messages carried over from the previous
// response plus the ones queued during this request, and clears the cookie.
func consumeFlashes(c *gin.Context, secure bool) []Flash {
	var out []Flash
	if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
		out = decodeFlashes(raw)
		setFlashCookie(c, "", -1, secure)
	}
	out = append(out, pendingFlashes(c)...)
	c.Set(flashKey, []Flash(nil))
	return out
}

func persistFlashes(c *gin.Context, secure bool) {
	list := pendingFlashes(c)
	if len(list) == 0 {
		return
	}
	if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
		list = append(decodeFlashes(raw), list...)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	setFlashCookie(c, base64.RawURLEncoding.EncodeToString(data), 0, secure)
	c.Set(flashKey, []Flash(nil))
}

func decodeFlashes(raw string) []Flash {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var list []Flash
	if err := json.Unmarshal(data, &list); err != nil {
		return nil
	}
	return list
}

func setFlashCookie(c *gin.Context, value string, maxAge int, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
