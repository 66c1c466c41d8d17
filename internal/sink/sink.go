// Package sink writes completed files to disk, the terminal step of
// the carousel tracker's emission path.
package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"satreceiver/internal/logging"
)

// FileSink writes reconstructed files under a fixed output directory,
// buffering each write into a single large block write.
type FileSink struct {
	dir string
}

// NewFileSink builds a sink rooted at dir, creating it if necessary.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileSink{dir: dir}, nil
}

// Emit writes data under name inside the sink's directory. Names are
// sanitized to their final path element so an announced name carrying
// ".." or an absolute path can never escape the output directory; a
// name that collides with an existing file gets a numeric suffix
// rather than overwriting it.
func (s *FileSink) Emit(name string, data []byte) error {
	clean := sanitizeName(name)
	path := s.resolveCollision(clean)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sink: create %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("sink: write %q: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("sink: flush %q: %w", path, err)
	}

	logging.Info("sink: wrote %q (%d bytes)", path, len(data))
	return nil
}

// sanitizeName strips any directory component and rejects the
// dot-entries that would otherwise resolve outside the sink's root.
func sanitizeName(name string) string {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) || base == "" {
		return "unnamed"
	}
	return base
}

// resolveCollision appends "-1", "-2", ... before the extension until
// it finds a path that does not already exist.
func (s *FileSink) resolveCollision(name string) string {
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(s.dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
