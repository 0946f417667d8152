// Package images реализует обработку загружаемых аватаров: декодирование,
// обрезку до квадрата фиксированного размера и перекодирование в JPEG.
package images

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// AvatarSize — сторона квадрата, до которого приводится фото пользователя.
const AvatarSize = 500

// ResizeAvatar принимает изображение в памяти, обрезает его до квадрата
// AvatarSize x AvatarSize и возвращает JPEG-байты.
func ResizeAvatar(src []byte) ([]byte, error) {
	const op = "images.ResizeAvatar"

	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	square := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
