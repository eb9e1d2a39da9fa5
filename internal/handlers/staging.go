package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

const (
	maxNameBase = 64
	maxNameExt  = 16
)

// stager writes multipart files to a local temp directory so the media resolver
// can upload them from disk. Every request body it reads is capped at maxBytes.
type stager struct {
	dir      string
	maxBytes int64
}

func (s stager) limit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
}

// bodyError maps a body read failure to a validation error, naming the size cap
// when it was hit.
func (s stager) bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return utils.NewValidationError(fmt.Sprintf("Request body exceeds %d bytes", s.maxBytes))
	}
	return utils.NewValidationError(message)
}

// parseMultipart limits the body to maxBytes and parses it. Files beyond the
// in-memory threshold spill to disk inside the multipart package itself.
func (s stager) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	s.limit(w, r)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		return s.bodyError(err, "Invalid multipart form")
	}
	return nil
}

// stage copies the named form file into the staging dir. It returns "" when the
// field carries no file.
func (s stager) stage(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || r.MultipartForm == nil {
			return "", nil
		}
		return "", utils.NewValidationError("Invalid " + field + " file")
	}
	defer file.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", utils.NewInternalError("Failed to stage upload", err)
	}

	out, err := os.CreateTemp(s.dir, "*-"+safeName(header.Filename))
	if err != nil {
		return "", utils.NewInternalError("Failed to stage upload", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", utils.NewInternalError("Failed to stage upload", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", utils.NewInternalError("Failed to stage upload", err)
	}
	return out.Name(), nil
}

// removeForm drops the multipart package's own temp files.
func removeForm(r *http.Request) {
	if r.MultipartForm == nil {
		return
	}
	if err := r.MultipartForm.RemoveAll(); err != nil {
		log.Printf("WARNING: failed to remove multipart temp files: %v", err)
	}
}

// cleanup removes staged files; the resolver may already have removed some.
func cleanup(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARNING: failed to remove staged file %s: %v", p, err)
		}
	}
}

// safeName reduces a client filename to ASCII word characters, at most maxNameBase
// bytes of base name plus a short extension, so the staged path stays valid.
func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)

	ext := filepath.Ext(name)
	if len(ext) > maxNameExt || ext == "." {
		ext = ""
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if len(base) > maxNameBase {
		base = base[:maxNameBase]
	}
	if strings.Trim(base, "._") == "" {
		base = "upload"
	}
	return base + ext
}

// readFields collects the named string fields from a JSON, urlencoded or multipart
// body. Absent fields are missing from the result map.
func (s stager) readFields(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	s.limit(w, r)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" || (mediaType == "" && r.ContentLength != 0) {
		raw := map[string]interface{}{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, s.bodyError(err, "Invalid request body")
		}
		for _, name := range names {
			v, ok := raw[name]
			if !ok || v == nil {
				continue
			}
			str, ok := v.(string)
			if !ok {
				return nil, utils.NewValidationError(name + " must be a string")
			}
			out[name] = str
		}
		return out, nil
	}

	if mediaType == "multipart/form-data" {
		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(s.maxBytes); err != nil {
				return nil, s.bodyError(err, "Invalid multipart form")
			}
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, s.bodyError(err, "Invalid request body")
	}
	for _, name := range names {
		if vs, ok := r.Form[name]; ok && len(vs) > 0 {
			out[name] = vs[0]
		}
	}
	return out, nil
}
