// Package render turns the words collection into HTML pages.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/olimci/guffipedia/pkg/words"
	gm "github.com/yuin/goldmark"
)

const (
	PageDefinition = "definition"
	PageMain       = "main"
	PageThanks     = "thanks"

	PartialTop    = "top"
	PartialBottom = "bottom"
)

var ErrMissingTemplate = errors.New("missing template")

//go:embed templates/*.tmpl
var defaults embed.FS

// Required lists the templates every set must define.
var Required = []string{PageDefinition, PageMain, PageThanks, PartialTop, PartialBottom}

// Site is the site information available to every page.
type Site struct {
	Title       string
	Description string
	URL         string
	FeedURL     string
}

// PageData is passed to every page template.
type PageData struct {
	Page        string
	Env         string
	TrackingEnv string
	Site        Site

	// Word is set on definition pages.
	Word *words.Record
	// Words and Home are set on the main page.
	Words []*words.Record
	Home  []*words.Record
}

// Funcs returns the template functions: sprig plus markdown rendering.
func Funcs(md gm.Markdown) template.FuncMap {
	if md == nil {
		md = gm.New()
	}

	funcs := sprig.FuncMap()
	funcs["markdown"] = func(s string) (template.HTML, error) {
		var buf bytes.Buffer
		if err := md.Convert([]byte(s), &buf); err != nil {
			return "", fmt.Errorf("markdown: %w", err)
		}
		return template.HTML(buf.String()), nil
	}
	funcs["wordURL"] = words.WordURL
	return funcs
}

// Load parses every *.tmpl file in dir. When dir does not exist the embedded
// default templates are used instead.
func Load(dir string, md gm.Markdown) (*template.Template, error) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Defaults(md)
	case err != nil:
		return nil, fmt.Errorf("templates: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("templates: %s is not a directory", dir)
	}
	return Parse(os.DirFS(dir), ".", md)
}

// Defaults parses the embedded default templates.
func Defaults(md gm.Markdown) (*template.Template, error) {
	return Parse(defaults, "templates", md)
}

// Parse parses every *.tmpl file under root in fsys, naming each template
// after its file name without extension.
func Parse(fsys fs.FS, root string, md gm.Markdown) (*template.Template, error) {
	files, err := fs.Glob(fsys, path.Join(root, "*.tmpl"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no *.tmpl files in %s", ErrMissingTemplate, root)
	}

	tmpl := template.New("site").Funcs(Funcs(md))

	for _, file := range files {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file %s: %w", file, err)
		}

		name := strings.TrimSuffix(path.Base(file), path.Ext(file))
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}

	var missing []string
	for _, name := range Required {
		if tmpl.Lookup(name) == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingTemplate, strings.Join(missing, ", "))
	}

	return tmpl, nil
}

// Execute renders the page named by data.Page.
func Execute(w io.Writer, tmpl *template.Template, data PageData) error {
	if err := tmpl.ExecuteTemplate(w, data.Page, data); err != nil {
		return fmt.Errorf("render %s: %w", data.Page, err)
	}
	return nil
}
