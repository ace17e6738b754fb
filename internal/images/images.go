// Package images stores generated artwork on local disk and builds the public
// URLs Printful downloads print files from.
package images

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Dir is the subdirectory generated images are written to.
const Dir = "generated"

type Store struct {
	root    string
	baseURL string
}

// NewStore creates a store writing under root. Saved images are served at
// baseURL + "/images/generated/<file>".
func NewStore(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, Dir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root returns the directory served under /images.
func (s *Store) Root() string {
	return s.root
}

// Save writes a PNG and returns its file name and public URL.
func (s *Store) Save(png []byte) (name, url string, err error) {
	if len(png) == 0 {
		return "", "", fmt.Errorf("empty image")
	}
	if ct := http.DetectContentType(png); ct != "image/png" {
		return "", "", fmt.Errorf("unexpected image type %s", ct)
	}

	name = uuid.NewString() + ".png"
	path := filepath.Join(s.root, Dir, name)

	// Write to a temp file first so the server never serves a partial image
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, png, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", "", fmt.Errorf("failed to store image: %w", err)
	}

	return name, s.URL(name), nil
}

// URL returns the public URL of a saved image.
func (s *Store) URL(name string) string {
	return s.baseURL + "/images/" + Dir + "/" + name
}

// Load reads a saved image by file name.
func (s *Store) Load(name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid image name %q", name)
	}
	return os.ReadFile(filepath.Join(s.root, Dir, name))
}

// DataURI encodes a PNG as a data: URI.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
