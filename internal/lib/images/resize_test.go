package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResizeAvatar(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"landscape", 800, 600},
		{"portrait", 300, 900},
		{"already square", 500, 500},
		{"small image upscaled", 100, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ResizeAvatar(makeTestPNG(t, tt.w, tt.h))
			require.NoError(t, err)

			decoded, err := imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, AvatarSize, decoded.Bounds().Dx())
			assert.Equal(t, AvatarSize, decoded.Bounds().Dy())
		})
	}
}

func TestResizeAvatar_NotAnImage(t *testing.T) {
	_, err := ResizeAvatar([]byte("definitely not an image"))
	assert.Error(t, err)
}
