package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrMissingPostID = errors.New("post has no id")

// Post is a captioned image as returned by the backend. The client never
// mutates a Post; it only reorders the collections holding it.
type Post struct {
	ID       string  `json:"id"`
	ImageURL string  `json:"image"`
	Caption  *string `json:"caption"`
}

// CaptionText returns the caption or "" if captioning has not finished.
func (p Post) CaptionText() string {
	if p.Caption == nil {
		return ""
	}
	return *p.Caption
}

type postWire struct {
	ID       json.RawMessage `json:"id"`
	MongoID  json.RawMessage `json:"_id"`
	ImageURL string          `json:"image"`
	Caption  *string         `json:"caption"`
}

// UnmarshalJSON accepts either "id" or "_id" as the identifier, as a string
// or any other JSON scalar, and keeps it opaque.
func (p *Post) UnmarshalJSON(b []byte) error {
	var w postWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	raw := w.ID
	if isEmptyRaw(raw) {
		raw = w.MongoID
	}
	id, err := opaqueID(raw)
	if err != nil {
		return err
	}

	*p = Post{ID: id, ImageURL: w.ImageURL, Caption: w.Caption}
	return nil
}

func isEmptyRaw(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func opaqueID(raw json.RawMessage) (string, error) {
	if isEmptyRaw(raw) {
		return "", ErrMissingPostID
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", ErrMissingPostID
		}
		return s, nil
	}
	return strings.TrimSpace(string(raw)), nil
}

// IndexOf returns the position of the post with id in posts, or -1.
func IndexOf(posts []Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}
