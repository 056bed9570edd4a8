// Package artifacts stores binary tool outputs (generated audio) on disk and
// reaps old files on a schedule.
package artifacts

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultExtension = ".mp3"

var audioExtensions = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/ogg":    ".ogg",
	"audio/opus":   ".opus",
	"audio/aac":    ".aac",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/webm":   ".webm",
	"audio/mp4":    ".m4a",
	"audio/pcm":    ".pcm",
}

// ExtensionFor maps a content type to a file extension, defaulting to .mp3.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if ext, ok := audioExtensions[mediaType]; ok {
		return ext
	}
	return defaultExtension
}

// Store is a directory of generated files.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. An empty dir means
// <os temp dir>/oatsbridge-audio.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "oatsbridge-audio")
	}
	return &Store{dir: dir}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Save writes data to a new file whose extension follows contentType and
// returns its absolute path.
func (s *Store) Save(data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}
	f, err := os.CreateTemp(s.dir, "speech_*"+ExtensionFor(contentType))
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	path, err := filepath.Abs(f.Name())
	if err != nil {
		return f.Name(), nil
	}
	return path, nil
}

// Reap deletes regular files older than maxAge and returns how many went.
func (s *Store) Reap(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read artifacts dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
