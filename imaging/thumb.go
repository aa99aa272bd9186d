package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"io"

	"github.com/nfnt/resize"

	"facekit/config"
)

type ThumbResult struct {
	ThumbSize int64
	NewX      uint16
	NewY      uint16
	OldX      uint16
	OldY      uint16
}

// Thumbnail reads an image from reader, scales it to fit within size×size
// (aspect ratio preserved, never upscaled) and writes it to writer as JPEG.
func Thumbnail(size uint, reader io.Reader, writer io.Writer) (result ThumbResult, err error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return result, err
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, img, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: config.JPEG_QUALITY}); err != nil {
		return
	}
	imageRect := newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	imageRect = img.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	result.ThumbSize, err = io.Copy(writer, &newBuf)
	return
}
