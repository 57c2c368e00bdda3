package netx

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartBody_SingleImagePart(t *testing.T) {
	payload := []byte("\xff\xd8\xff\xe0fake-jpeg")

	body, ct, err := MultipartBody("image", "photo.jpg", "image/jpeg", bytes.NewReader(payload))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(body, params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)

	assert.Equal(t, "image", part.FormName())
	assert.Equal(t, "photo.jpg", part.FileName())
	assert.Equal(t, "image/jpeg", part.Header.Get("Content-Type"))

	got, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestMultipartBody_DefaultsContentTypeAndEscapesName(t *testing.T) {
	body, ct, err := MultipartBody("image", `we"ird.png`, "", strings.NewReader("x"))
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)

	part, err := multipart.NewReader(body, params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", part.Header.Get("Content-Type"))
	assert.Equal(t, `we"ird.png`, part.FileName())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestMultipartBody_ReaderError(t *testing.T) {
	_, _, err := MultipartBody("image", "a.png", "image/png", failingReader{})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
