package templates

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed *.html
var pages embed.FS

//go:embed static
var static embed.FS

// Parse parses every page and partial with the shared FuncMap
func Parse() (*template.Template, error) {
	return template.New("").Funcs(GetTemplateFuncs()).ParseFS(pages, "*.html")
}

// Static returns the embedded /static/ tree
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
