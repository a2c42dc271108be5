package api

import (
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// handleStatic serves frontend assets from the www root. Paths are
// resolved inside the root only; anything escaping it is a 404, never
// a directory listing or a file outside the tree.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.wwwRoot == "" {
		http.NotFound(w, r)
		return
	}

	p, err := url.PathUnescape(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		clean = "/index.html"
	}

	full := filepath.Join(s.wwwRoot, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.wwwRoot, full)
	if err != nil || rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		full = filepath.Join(full, "index.html")
		if _, err := os.Stat(full); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	http.ServeFile(w, r, full)
}
