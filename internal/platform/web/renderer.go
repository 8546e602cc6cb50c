// Package web renders the HTML pages.
//
// Every page under templates/pages is parsed together with the shared layout and partials
// into its own template set, so pages can all define "content" without clashing.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"myblog/internal/feature/auth/domain/entity"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

// Renderer implements gin's HTMLRender with one template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses all embedded templates.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout").Funcs(funcMap()).ParseFS(templateFS,
		"templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return r, nil
}

// MustNewRenderer is NewRenderer that panics on error.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic(fmt.Sprintf("web: unknown page %q", name))
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Has reports whether a page exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"static": func(p string) string {
			return "/static/" + strings.TrimPrefix(p, "/")
		},
		"profilePic": ProfilePicURL,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		// trusted marks post bodies, which are sanitized before they are stored.
		"trusted": func(s string) template.HTML {
			return template.HTML(s)
		},
		"pageURL": func(base string, n int) string {
			return fmt.Sprintf("%s?page=%d", base, n)
		},
		"dict": dict,
	}
}

// ProfilePicURL returns the public URL of a profile picture file.
func ProfilePicURL(name string) string {
	if name == "" {
		name = entity.DefaultProfilePic
	}
	return "/static/profile_pics/" + name
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
