package camera

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DirProvider serves frames from image files under <root>/<facing>.
type DirProvider struct {
	root string
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{root: dir}
}

// Open lists the frames available for a facing.
func (p *DirProvider) Open(ctx context.Context, facing Facing) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(p.root, string(facing))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(mime.TypeByExtension(filepath.Ext(e.Name())), "image/") {
			frames = append(frames, filepath.Join(dir, e.Name()))
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s has no frames", ErrNoDevice, dir)
	}
	sort.Strings(frames)

	return &dirStream{frames: frames}, nil
}

type dirStream struct {
	mu     sync.Mutex
	frames []string
	next   int
	closed bool
}

// Capture encodes the next frame, cycling through the directory.
func (s *dirStream) Capture() (Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	path := s.frames[s.next%len(s.frames)]
	s.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read frame %s: %w", path, err)
	}
	return EncodePhoto(mime.TypeByExtension(filepath.Ext(path)), data), nil
}

func (s *dirStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// EncodePhoto wraps raw image bytes in a data URL.
func EncodePhoto(contentType string, data []byte) Photo {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return Photo("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
}
