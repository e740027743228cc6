package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	avatarSize    = 250
	avatarQuality = 85
)

// NormalizeAvatar decodes an uploaded image, crops it to a centered
// square and scales it to 250x250 JPEG. Face-aware cropping is not
// available locally; center crop is the fixed policy.
func NormalizeAvatar(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	square := centerSquare(src.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, square, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: avatarQuality}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return out.Bytes(), nil
}

func centerSquare(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := w
	if h < side {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
