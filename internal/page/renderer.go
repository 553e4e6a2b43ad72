// AngelaMos | 2026
// renderer.go

package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer turns a resolved page context into HTML. name is the page
// template, for example "users.html".
type Renderer interface {
	Render(name string, data map[string]any) ([]byte, error)
}

type TemplateRenderer struct {
	pages map[string]*template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	return newTemplateRenderer(templateFS)
}

func newTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	funcs := template.FuncMap{
		"datetime": formatDateTime,
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}

		name := path.Base(file)
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &TemplateRenderer{pages: pages}, nil
}

func (r *TemplateRenderer) Render(name string, data map[string]any) ([]byte, error) {
	tmpl, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}

	return buf.Bytes(), nil
}

func formatDateTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("02.01.2006 15:04:05")
	case *time.Time:
		if t == nil || t.IsZero() {
			return "-"
		}
		return t.Local().Format("02.01.2006 15:04:05")
	default:
		return "-"
	}
}
