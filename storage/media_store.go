package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"discover-server/models"
)

// MediaStore keeps review images and returns the public URL of each upload.
type MediaStore interface {
	Upload(ctx context.Context, image models.ReviewImage) (string, error)
}

const defaultExt = "jpeg"

// ObjectName builds "<unix-millis>-<random>.<ext>" for an uploaded file.
func ObjectName(filename string, now time.Time, rnd *rand.Rand) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = defaultExt
	}
	token := strconv.FormatInt(rnd.Int63(), 36)
	if len(token) > 6 {
		token = token[:6]
	}
	return fmt.Sprintf("%d-%s.%s", now.UnixMilli(), token, ext)
}

// ContentType falls back to image/<ext> when the client sent none.
func ContentType(image models.ReviewImage, name string) string {
	if image.ContentType != "" {
		return image.ContentType
	}
	return "image/" + strings.TrimPrefix(filepath.Ext(name), ".")
}

// MockMediaStore keeps uploads in memory.
type MockMediaStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	rnd     *rand.Rand
	Err     error
}

func NewMockMediaStore(baseURL string) *MockMediaStore {
	return &MockMediaStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string][]byte),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockMediaStore) Upload(ctx context.Context, image models.ReviewImage) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	body, err := io.ReadAll(image.Body)
	if err != nil {
		return "", fmt.Errorf("error reading image: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	name := ObjectName(image.Filename, time.Now(), m.rnd)
	m.objects[name] = body
	return m.baseURL + "/" + name, nil
}

// Objects returns the stored object names.
func (m *MockMediaStore) Objects() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		out[k] = v
	}
	return out
}
