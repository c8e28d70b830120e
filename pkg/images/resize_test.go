package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testImage(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestResizeAvatarJPEG(t *testing.T) {
	t.Parallel()

	src := testImage(t, 500, 300, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})

	out, err := ResizeAvatar(src)
	if err != nil {
		t.Fatalf("ResizeAvatar error: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != AvatarWidth || b.Dy() != AvatarHeight {
		t.Fatalf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), AvatarWidth, AvatarHeight)
	}
}

func TestResizeAvatarPNG(t *testing.T) {
	t.Parallel()

	src := testImage(t, 64, 64, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})

	out, err := ResizeAvatar(src)
	if err != nil {
		t.Fatalf("ResizeAvatar error: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if decoded.Bounds().Dx() != AvatarWidth {
		t.Fatalf("unexpected width %d", decoded.Bounds().Dx())
	}
}

func TestResizeAvatarGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ResizeAvatar([]byte("definitely not an image")); err == nil {
		t.Fatal("expected error for non-image input")
	}
}
