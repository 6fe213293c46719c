package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"os"

	"github.com/sweeney/netpowerswitch/internal/logic"
)

//go:embed templates
var embedded embed.FS

// errorPage is served in place of a page whose template cannot be loaded.
const errorPage = "<html><body><h1>Error Loading Page</h1></body></html>"

// Templates loads page templates and static assets. Files are read on
// every request so edits on disk take effect without a restart.
type Templates struct {
	fsys fs.FS
}

// NewTemplates serves files from dir, or the built-in set when dir is empty.
func NewTemplates(dir string) *Templates {
	if dir != "" {
		return &Templates{fsys: os.DirFS(dir)}
	}
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err) // embedded layout is fixed at build time
	}
	return &Templates{fsys: sub}
}

// NewTemplatesFS serves files from fsys.
func NewTemplatesFS(fsys fs.FS) *Templates {
	return &Templates{fsys: fsys}
}

// Load returns the raw markup of the named page (without ".html").
func (t *Templates) Load(name string) (string, error) {
	data, err := fs.ReadFile(t.fsys, name+".html")
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	return string(data), nil
}

// render executes the named page with data, falling back to errorPage.
func (t *Templates) render(name string, data any) []byte {
	markup, err := t.Load(name)
	if err != nil {
		log.Printf("web: %v", err)
		return []byte(errorPage)
	}

	tmpl, err := template.New(name).Parse(markup)
	if err != nil {
		log.Printf("web: parse template %s: %v", name, err)
		return []byte(errorPage)
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		log.Printf("web: render template %s: %v", name, err)
		return []byte(errorPage)
	}
	return b.Bytes()
}

// RenderLogin returns the login page.
func (t *Templates) RenderLogin() []byte {
	return t.render("login", nil)
}

// RenderControl returns the control page showing state.
func (t *Templates) RenderControl(state logic.State) []byte {
	return t.render("control", struct {
		State       string
		ButtonClass string
	}{
		State:       string(state),
		ButtonClass: state.Class(),
	})
}

// Asset returns the named static file, or false if it cannot be read.
func (t *Templates) Asset(name string) ([]byte, bool) {
	data, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		log.Printf("web: load static file %s: %v", name, err)
		return nil, false
	}
	return data, true
}
