// Package store resolves domains to certificate files on disk. The client
// only ever reads from the store; writing issued certificates is the concern
// of whatever obtains them.
package store

import (
	"os"
	"path/filepath"
	"strings"
)

// Dir is a certificate store backed by a flat directory of PEM files, one per
// domain. It implements the client.CertificateStore interface.
type Dir struct {
	root string
}

// NewDir creates a Dir store rooted at the given directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// PathFor returns the path the certificate material for domain lives at.
// Domains are lower-cased so lookups are case-insensitive on case-sensitive
// filesystems.
func (s *Dir) PathFor(domain string) string {
	return filepath.Join(s.root, strings.ToLower(domain)+".pem")
}

// ReadFile reads the file at path.
func (s *Dir) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
