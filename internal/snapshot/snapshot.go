// Package snapshot archives raw source content to the local filesystem.
package snapshot

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gridironlabs/fantasy-stats-crawler/internal/pipeline"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Archive writes one file per fetched source under a base directory and
// returns a file:// URI. It exists for provenance: when a heuristic
// extraction looks wrong, the raw document that produced it is still around.
type Archive struct {
	baseDir string
	clock   pipeline.Clock
}

// New creates an Archive rooted at baseDir, creating it when absent.
func New(baseDir string, clock pipeline.Clock) (*Archive, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}
	return &Archive{baseDir: baseDir, clock: clock}, nil
}

// Save implements pipeline.Snapshotter.
func (a *Archive) Save(_ context.Context, source string, body []byte) (string, error) {
	name := fmt.Sprintf("%s_%s.html", safeBasename(source), a.clock.Now().Format("20060102T150405"))
	fullPath := filepath.Join(a.baseDir, name)

	// Guard against a source crafted to escape the archive root.
	cleanBase := filepath.Clean(a.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.WriteFile(fullPath, body, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return "file://" + fullPath, nil
}

func safeBasename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return hashURL(raw)
	}
	host := invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
	p := strings.Trim(u.EscapedPath(), "/")
	if p == "" {
		p = "root"
	}
	p = invalidFilenameChars.ReplaceAllString(p, "_")
	return fmt.Sprintf("%s_%s_%s", host, p, hashURL(raw)[:16])
}

func hashURL(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
