// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

package web

import (
	"embed"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/samber/oops"

	"github.com/folioweb/folio/internal/auth"
	"github.com/folioweb/folio/internal/portfolio"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// view is the data every page template receives.
type view struct {
	Title    string
	User     *auth.User
	Flashes  []Flash
	Now      time.Time
	Form     any
	Errors   map[string]string
	Next     string
	Token    string
	Content  *portfolio.Content
	Messages []portfolio.ContactMessage
	Unread   int
	Status   int
}

// pages is a gin HTMLRender holding one template set per page, each cloned
// from the shared layout.
type pages struct {
	sets map[string]*template.Template
}

var _ render.HTMLRender = (*pages)(nil)

var templateFuncs = template.FuncMap{
	"avatarURL": avatarURL,
	"lines": func(s string) []string {
		var out []string
		for _, l := range strings.Split(s, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
		return out
	},
	"csv": func(s string) []string {
		var out []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	},
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
}

func avatarURL(p auth.Profile) string {
	if !p.HasAvatar() {
		return "/static/img/default-avatar.svg"
	}
	return "/static/uploads/" + p.Avatar
}

func loadPages() (*pages, error) {
	layout, err := template.New("layout").Funcs(templateFuncs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, oops.Code("TEMPLATE_PARSE_FAILED").With("template", layoutFile).Wrap(err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("TEMPLATE_PARSE_FAILED").Wrap(err)
	}

	p := &pages{sets: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		set, err := layout.Clone()
		if err != nil {
			return nil, oops.Code("TEMPLATE_PARSE_FAILED").With("template", file).Wrap(err)
		}
		if _, err := set.ParseFS(templateFS, file); err != nil {
			return nil, oops.Code("TEMPLATE_PARSE_FAILED").With("template", file).Wrap(err)
		}
		p.sets[strings.TrimSuffix(path.Base(file), ".html")] = set
	}
	return p, nil
}

// Instance implements render.HTMLRender. Unknown pages render the error page.
func (p *pages) Instance(name string, data any) render.Render {
	set, ok := p.sets[name]
	if !ok {
		set = p.sets["error"]
	}
	return render.HTML{Template: set, Name: "layout", Data: data}
}
