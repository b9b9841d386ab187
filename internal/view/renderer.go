// Package view renders the storefront's pages from the embedded templates
// and holds the presentational helpers they use.
package view

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/Domenick1991/tourbooking/internal/format"
	"github.com/gin-gonic/gin/render"
)

const (
	layoutFile   = "layout.html"
	partialsGlob = "partials/*.html"
	layoutName   = "layout"
)

// Renderer holds one template set per page, each made of the layout, the
// shared partials and the page itself. It implements gin's HTMLRender.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every page under fsys. Page names are their paths
// without the .html suffix, e.g. "admin/tours".
func NewRenderer(fsys fs.FS, f format.Formatter, now func() time.Time) (*Renderer, error) {
	base, err := template.New(layoutName).Funcs(Funcs(f, now)).ParseFS(fsys, layoutFile, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".html" {
			return err
		}
		if p == layoutFile || strings.HasPrefix(p, "partials/") {
			return nil
		}
		t, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := t.ParseFS(fsys, p); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[strings.TrimSuffix(p, ".html")] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic(fmt.Sprintf("view: unknown page %q", name))
	}
	return render.HTML{Template: t, Name: layoutName, Data: data}
}

func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
