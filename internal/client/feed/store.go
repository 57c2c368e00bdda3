// Package feed holds the client's copy of a post feed and the operations that
// refresh it from the backend.
package feed

import (
	"sync"

	"github.com/dmitrijs2005/capgallery/internal/client/models"
)

// Store is an ordered, id-unique list of posts. It is only ever written by
// Replace, which supersedes the whole list, and Prepend, which puts a freshly
// created post at the front ahead of the next Replace.
type Store struct {
	mu        sync.RWMutex
	posts     []models.Post
	populated bool
}

// NewStore returns an empty, unpopulated feed.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current feed.
func (s *Store) Snapshot() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Populated reports whether the feed has been replaced at least once.
func (s *Store) Populated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.populated
}

// Len returns the number of posts in the feed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Replace sets the feed to posts in server order. Later duplicates of an id
// are dropped.
func (s *Store) Replace(posts []models.Post) {
	next := make([]models.Post, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		next = append(next, p)
	}

	s.mu.Lock()
	s.posts = next
	s.populated = true
	s.mu.Unlock()
}

// Prepend puts p at the front. If a post with the same id is already in the
// feed it is moved rather than duplicated.
func (s *Store) Prepend(p models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Post, 0, len(s.posts)+1)
	next = append(next, p)
	for _, existing := range s.posts {
		if existing.ID != p.ID {
			next = append(next, existing)
		}
	}
	s.posts = next
}
