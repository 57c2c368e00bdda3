package models

// PendingUpload is a selected but not yet submitted image. PreviewURL is a
// revocable local handle for the bytes, released on successful submission or
// when another file is selected.
type PendingUpload struct {
	ID          string
	FileName    string
	ContentType string
	Data        []byte
	PreviewURL  string
}

func (p *PendingUpload) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}
