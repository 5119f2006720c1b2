// Package templates holds the server-rendered pages. Each page is parsed
// together with the shared layout and rendered through gin.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"nstore-backend/catalog"
)

//go:embed html/*.html
var files embed.FS

const layoutFile = "html/layout.html"

const placeholderImage = "https://via.placeholder.com/400x400?text=No+Image"

// Views is a set of parsed pages keyed by name ("home", "detail", ...).
type Views struct {
	pages map[string]*template.Template
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"price":    catalog.FormatPrice,
		"markdown": catalog.RenderDescription,
		"thumb": func(t *string) string {
			if t == nil || *t == "" {
				return placeholderImage
			}
			return *t
		},
		"year":  func() int { return time.Now().Year() },
		"lower": strings.ToLower,
		"add":   func(a, b int) int { return a + b },
	}
}

func New() (*Views, error) {
	names, err := fs.Glob(files, "html/*.html")
	if err != nil {
		return nil, err
	}

	v := &Views{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(path.Base(layoutFile)).Funcs(Funcs()).ParseFS(files, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		v.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return v, nil
}

// Render writes page with the layout. Unknown pages panic, which the
// recovery middleware turns into a 500.
func (v *Views) Render(c *gin.Context, status int, page string, data gin.H) {
	t, ok := v.pages[page]
	if !ok {
		panic("templates: unknown page " + page)
	}
	c.Render(status, render.HTML{Template: t, Name: "layout", Data: data})
}

func (v *Views) Has(page string) bool {
	_, ok := v.pages[page]
	return ok
}
