package models

// View is the top-level screen chosen by the gate.
type View string

const (
	ViewLoading View = "loading"
	ViewAuth    View = "auth"
	ViewGallery View = "gallery"
)
