// Package imaging wraps the image codecs used across the pipeline and
// provides content hashing that is stable over pixel data rather than
// container bytes.
package imaging

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"facekit/config"
)

// Decode reads an image in any of the supported formats (BMP, JPEG, PNG,
// TIFF, plus whatever else is registered with image).
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

// Encode writes img in the format named by ext (".jpg", ".png", ".bmp",
// ".tif"...). The extension match is case-insensitive.
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: config.JPEG_QUALITY})
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, nil)
	}
	return fmt.Errorf("unsupported image extension %q", ext)
}

// HashImage returns the SHA-1 hex digest of the image's pixel data.
// Rows are hashed within the image's bounds, so a sub-image view hashes
// the same as a copy of the same pixels.
func HashImage(img image.Image) string {
	nrgba := ToNRGBA(img)
	hash := sha1.New()
	rowLen := 4 * nrgba.Rect.Dx()
	for y := nrgba.Rect.Min.Y; y < nrgba.Rect.Max.Y; y++ {
		offset := nrgba.PixOffset(nrgba.Rect.Min.X, y)
		hash.Write(nrgba.Pix[offset : offset+rowLen])
	}
	return hex.EncodeToString(hash.Sum(nil))
}

// HashImageFile decodes the file at path and returns the digest of its
// pixels, so re-encodes that preserve pixel data keep the same hash.
func HashImageFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	img, _, err := Decode(file)
	if err != nil {
		return "", err
	}
	imgHash := HashImage(img)
	log.Tracef("file: %s, hash: %s", path, imgHash)
	return imgHash, nil
}

// HashEncodeImage encodes img with the codec named by ext and returns the
// digest of the re-decoded result together with the encoded bytes. Hashing
// the decoded pixels (not the encoded bytes) keeps the digest consistent
// with HashImageFile for lossy codecs.
func HashEncodeImage(img image.Image, ext string) (string, []byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, ext); err != nil {
		return "", nil, err
	}
	encoded := buf.Bytes()
	decoded, _, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		return "", nil, err
	}
	return HashImage(decoded), encoded, nil
}

// ToNRGBA returns img as NRGBA, copying only when the underlying type
// differs.
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}
