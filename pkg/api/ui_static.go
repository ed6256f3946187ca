package api

import (
	"bytes"
	"compress/gzip"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/grammarpost/grammarpost/pkg/logger"
)

const (
	uiIndex = "index.html"

	// uiContentSecurityPolicy allows only same-origin scripts, styles and
	// fetches, which is all the form needs.
	uiContentSecurityPolicy = "default-src 'self'; img-src 'self' data:; object-src 'none'; base-uri 'self'; frame-ancestors 'none'"

	uiGzipMinSize = 1024
)

var uiHashedAssetPattern = regexp.MustCompile(`\.[a-fA-F0-9]{6,}\.`)

// uiHandler serves the form from an fs.FS. Unknown extension-less paths
// fall back to index.html.
type uiHandler struct {
	files fs.FS
	log   logger.Logger
}

func newEmbeddedUIHandler(files fs.FS, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &uiHandler{files: files, log: log}
}

func (h *uiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filePath, ok := h.resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	content, modTime, err := h.read(filePath)
	if err != nil {
		h.log.WarnContext(r.Context(), "failed to read ui asset", "path", filePath, "error", err)
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(filePath))
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	header := w.Header()
	header.Set("Content-Type", contentType)
	header.Set("X-Content-Type-Options", "nosniff")
	if filePath == uiIndex {
		header.Set("Content-Security-Policy", uiContentSecurityPolicy)
		header.Set("Referrer-Policy", "no-referrer")
	}
	setUICacheControlHeader(w, filePath)

	if shouldGzipUIResponse(r, filePath, len(content)) {
		header.Set("Content-Encoding", "gzip")
		header.Add("Vary", "Accept-Encoding")
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}

		gz := gzip.NewWriter(w)
		if _, err := gz.Write(content); err != nil {
			h.log.WarnContext(r.Context(), "failed to write gzip response", "error", err)
		}
		if err := gz.Close(); err != nil {
			h.log.WarnContext(r.Context(), "failed to close gzip writer", "error", err)
		}
		return
	}

	http.ServeContent(w, r, filePath, modTime, bytes.NewReader(content))
}

func (h *uiHandler) resolve(requestPath string) (string, bool) {
	cleanPath := path.Clean("/" + strings.TrimSpace(requestPath))
	if cleanPath == "/" {
		return uiIndex, h.exists(uiIndex)
	}

	candidate := strings.TrimPrefix(cleanPath, "/")
	if h.exists(candidate) {
		return candidate, true
	}

	// Paths with an extension are assets; a miss is a 404.
	if path.Ext(candidate) != "" {
		return "", false
	}

	return uiIndex, h.exists(uiIndex)
}

func (h *uiHandler) exists(filePath string) bool {
	info, err := fs.Stat(h.files, filePath)
	return err == nil && !info.IsDir()
}

func (h *uiHandler) read(filePath string) ([]byte, time.Time, error) {
	content, err := fs.ReadFile(h.files, filePath)
	if err != nil {
		return nil, time.Time{}, err
	}

	info, err := fs.Stat(h.files, filePath)
	if err != nil {
		return nil, time.Time{}, err
	}

	return content, info.ModTime(), nil
}

func setUICacheControlHeader(w http.ResponseWriter, filePath string) {
	base := path.Base(filePath)
	switch {
	case base == uiIndex:
		w.Header().Set("Cache-Control", "no-cache")
	case uiHashedAssetPattern.MatchString(base):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	default:
		w.Header().Set("Cache-Control", "public, max-age=300")
	}
}

func shouldGzipUIResponse(r *http.Request, filePath string, size int) bool {
	if size < uiGzipMinSize {
		return false
	}
	if !strings.Contains(strings.ToLower(r.Header.Get("Accept-Encoding")), "gzip") {
		return false
	}

	switch strings.ToLower(path.Ext(filePath)) {
	case ".html", ".css", ".js", ".mjs", ".json", ".svg":
		return true
	default:
		return false
	}
}
