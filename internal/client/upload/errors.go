package upload

import "errors"

var (
	ErrNoFile   = errors.New("no file selected")
	ErrBusy     = errors.New("upload already in progress")
	ErrNotImage = errors.New("selected file is not an image")
	ErrEmpty    = errors.New("selected file is empty")
)
