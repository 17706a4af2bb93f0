package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const staticDir = "ui/static"

// fileServerHandler serves ui/static. Directories and missing files go to notFound so that the catch-all route
// renders the regular not found page.
func (app *application) fileServerHandler(notFound http.Handler) (http.Handler, error) {
	root, err := searchUpwards(staticDir)
	if err != nil {
		return nil, fmt.Errorf("find static files: %w", err)
	}
	static := os.DirFS(root)
	fileServer := http.FileServerFS(static)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if !fs.ValidPath(name) {
			notFound.ServeHTTP(w, r)
			return
		}
		if info, statErr := fs.Stat(static, name); statErr != nil || info.IsDir() {
			notFound.ServeHTTP(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	}), nil
}
