// Package web holds the HTML templates compiled into the binary.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed templates/*.html
var files embed.FS

// Templates returns the embedded template files.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// ParseTemplates parses every *.html file. An empty dir selects the
// embedded copies; otherwise templates are read from dir on disk.
func ParseTemplates(dir string, funcs template.FuncMap) (*template.Template, error) {
	root := template.New("").Funcs(funcs)
	if dir == "" {
		return root.ParseFS(Templates(), "*.html")
	}
	return root.ParseFS(os.DirFS(filepath.Clean(dir)), "*.html")
}
