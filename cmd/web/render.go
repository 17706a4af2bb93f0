package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/myrjola/calicoach/internal/contexthelpers"
	"github.com/myrjola/calicoach/internal/errors"
)

// formatFloat drops trailing zeros, e.g. 7.50 becomes 7.5.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// humanize turns identifiers like lower_back into "lower back".
func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// requestFuncs are bound per request in render. The parse-time versions only declare the names.
func requestFuncs() template.FuncMap {
	return template.FuncMap{
		"nonce":    func() template.HTMLAttr { panic("nonce called outside render") },
		"mdToHTML": func(string) template.HTML { panic("mdToHTML called outside render") },
	}
}

// parsePages parses base.gohtml together with each directory under pages/. Every page directory must define a
// template named "page".
func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	entries, err := fs.ReadDir(fsys, "pages")
	if err != nil {
		return nil, fmt.Errorf("read pages: %w", err)
	}
	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		t, parseErr := template.New(name).
			Funcs(requestFuncs()).
			Funcs(template.FuncMap{
				"formatFloat": formatFloat,
				"humanize":    humanize,
				"join":        strings.Join,
			}).
			ParseFS(fsys, "base.gohtml", "pages/"+name+"/*.gohtml")
		if parseErr != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, parseErr)
		}
		if t.Lookup("page") == nil {
			return nil, fmt.Errorf("page %s does not define a page template", name)
		}
		pages[name] = t
	}
	return pages, nil
}

// renderMarkdownToHTML renders coach replies. Raw HTML in the markdown is dropped by goldmark's default renderer,
// so the output is safe to embed even though the markdown comes from the model.
func (app *application) renderMarkdownToHTML(ctx context.Context, markdown string) template.HTML {
	var buf bytes.Buffer
	if err := app.markdown.Convert([]byte(markdown), &buf); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "render markdown", errors.SlogError(err))
		return template.HTML(template.HTMLEscapeString(markdown)) //nolint:gosec // escaped.
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark omits raw HTML unless WithUnsafe is set.
}

func (app *application) renderToBuf(ctx context.Context, pageName string, data any) (*bytes.Buffer, error) {
	page, ok := app.pages[pageName]
	if !ok {
		return nil, fmt.Errorf("unknown page %s", pageName)
	}
	// Clone so that concurrent requests do not share the nonce.
	t, err := page.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone page %s: %w", pageName, err)
	}
	nonce := template.HTMLAttr(`nonce="` + contexthelpers.CSPNonce(ctx) + `"`) //nolint:gosec // server generated.
	t.Funcs(template.FuncMap{
		"nonce":    func() template.HTMLAttr { return nonce },
		"mdToHTML": func(md string) template.HTML { return app.renderMarkdownToHTML(ctx, md) },
	})

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, "base", data); err != nil {
		return nil, fmt.Errorf("execute page %s: %w", pageName, err)
	}
	return buf, nil
}

// render writes the page from ui/templates/pages/{pageName}. The page is rendered to a buffer first so that a
// template error still produces a clean 500.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, pageName string, data any) {
	buf, err := app.renderToBuf(r.Context(), pageName, data)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
