// Package images converts uploaded avatar files into the stored
// representation: a 250x250 PNG.
package images

import (
	"bytes"

	"github.com/disintegration/imaging"
)

const (
	AvatarWidth  = 250
	AvatarHeight = 250
)

// ResizeAvatar decodes an uploaded image (JPEG or PNG), scales and crops it
// to cover AvatarWidth x AvatarHeight, and re-encodes it as PNG.
func ResizeAvatar(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fill(img, AvatarWidth, AvatarHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
