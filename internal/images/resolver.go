// Package images locates product pictures on disk by item identifier.
package images

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are tried in order when resolving an item.
var DefaultExtensions = []string{"jpg", "png", "jpeg"}

// Resolver finds <Folder>/<itemID>.<ext> for the first extension that
// exists as a regular file.
type Resolver struct {
	folder     string
	extensions []string
}

// NewResolver creates a resolver over folder. An empty folder resolves
// nothing.
func NewResolver(folder string, extensions ...string) *Resolver {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Resolver{folder: folder, extensions: extensions}
}

// Folder returns the directory searched.
func (r *Resolver) Folder() string { return r.folder }

// Resolve returns the image path for itemID. Identifiers that are blank or
// that would escape the folder never resolve.
func (r *Resolver) Resolve(itemID string) (string, bool) {
	if r == nil || r.folder == "" {
		return "", false
	}
	id := strings.TrimSpace(itemID)
	if !validID(id) {
		return "", false
	}

	for _, ext := range r.extensions {
		path := filepath.Join(r.folder, id+"."+ext)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}
