// Package imaging turns an uploaded image file into the two forms the rest of
// the app needs: a base64 payload for the model and a data URL for preview.
package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnreadable is returned when the upload cannot be read or is not an image.
var ErrUnreadable = errors.New("image cannot be read")

type Image struct {
	Data     []byte
	MIMEType string
}

// Encode reads r fully and resolves its MIME type. declaredMIME is the type
// reported by the client; it is trusted when it names an image type, otherwise
// the type is sniffed from the content.
func Encode(r io.Reader, declaredMIME string) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadable)
	}

	mimeType := normaliseMIME(declaredMIME)
	if !isImageMIME(mimeType) {
		mimeType = normaliseMIME(mimetype.Detect(data).String())
	}
	if !isImageMIME(mimeType) {
		return nil, fmt.Errorf("%w: detected %s", ErrUnreadable, mimeType)
	}

	return &Image{Data: data, MIMEType: mimeType}, nil
}

// Base64 returns the payload without any data-URL header.
func (img *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns a data URL suitable for an <img src>.
func (img *Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + img.Base64()
}

func normaliseMIME(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func isImageMIME(s string) bool {
	return strings.HasPrefix(s, "image/") && len(s) > len("image/")
}
