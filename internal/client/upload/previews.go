package upload

import (
	"sync"

	"github.com/google/uuid"
)

const previewScheme = "blob:"

type preview struct {
	contentType string
	data        []byte
}

// Previews hands out revocable local URLs for selected images, in the spirit
// of object URLs: the bytes stay reachable until the URL is revoked.
type Previews struct {
	mu    sync.Mutex
	items map[string]preview
}

func NewPreviews() *Previews {
	return &Previews{items: make(map[string]preview)}
}

// Create registers data and returns its preview URL.
func (p *Previews) Create(contentType string, data []byte) string {
	url := previewScheme + uuid.NewString()
	p.mu.Lock()
	p.items[url] = preview{contentType: contentType, data: data}
	p.mu.Unlock()
	return url
}

// Get returns the bytes behind url if it has not been revoked.
func (p *Previews) Get(url string) (data []byte, contentType string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item, ok := p.items[url]
	return item.data, item.contentType, ok
}

// Revoke releases url. Revoking an unknown URL is a no-op.
func (p *Previews) Revoke(url string) {
	if url == "" {
		return
	}
	p.mu.Lock()
	delete(p.items, url)
	p.mu.Unlock()
}

// Len returns the number of live preview URLs.
func (p *Previews) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
