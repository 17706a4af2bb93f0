package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/myrjola/calicoach/internal/contexthelpers"
)

// BaseTemplateData is embedded in every page's data and drives the shared layout in base.gohtml.
type BaseTemplateData struct {
	Authenticated bool
	CoachOnline   bool
	CurrentPath   string
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		Authenticated: contexthelpers.IsAuthenticated(r.Context()),
		CoachOnline:   app.coachOnline,
		CurrentPath:   contexthelpers.CurrentPath(r.Context()),
	}
}

const templateDir = "ui/templates"

// openTemplates returns the template directory as a file system. An empty path walks up from the working
// directory until it finds ui/templates, so tests work from any package directory.
func openTemplates(path string) (fs.FS, error) {
	if path == "" {
		var err error
		if path, err = searchUpwards(templateDir); err != nil {
			return nil, err
		}
	}
	templates := os.DirFS(path)
	if _, err := fs.Stat(templates, "base.gohtml"); err != nil {
		return nil, fmt.Errorf("no base.gohtml in template path %s: %w", path, err)
	}
	return templates, nil
}

func searchUpwards(rel string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, rel)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found above working directory: %w", rel, os.ErrNotExist)
		}
		dir = parent
	}
}
