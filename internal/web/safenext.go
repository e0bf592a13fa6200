// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package web

import (
	"net/url"
	"strings"
)

// DefaultLanding is where a login lands when no usable next target exists.
const DefaultLanding = "/dashboard"

// SafeNext returns raw when it is a same-origin relative path and
// DefaultLanding otherwise.
func SafeNext(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return DefaultLanding
	}
	if strings.ContainsRune(raw, '\\') {
		return DefaultLanding
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return DefaultLanding
		}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return DefaultLanding
	}
	return raw
}
