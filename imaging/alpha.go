package imaging

import (
	"errors"
	"image"
	"image/draw"

	log "github.com/sirupsen/logrus"
)

// ErrIntensityRange is returned for alpha intensities outside [0, 100].
var ErrIntensityRange = errors.New("alpha intensity must be between 0 and 100")

// AddAlphaChannel returns img with a uniform alpha plane. The intensity is
// the transparency percentage: 0 leaves the image fully solid, 100 makes it
// fully transparent. Values outside [0, 100] are rejected before any pixel
// work happens.
func AddAlphaChannel(img image.Image, intensity int) (*image.NRGBA, error) {
	if intensity < 0 || intensity > 100 {
		return nil, ErrIntensityRange
	}
	log.Tracef("Adding alpha channel: intensity: %d", intensity)

	alpha := uint8(255 - (255*intensity)/100)
	out := ToNRGBA(img)
	if same, ok := img.(*image.NRGBA); ok && same == out {
		// Don't mutate the caller's buffer. Draw instead of a raw Pix copy
		// so sub-image views with a wider stride clone correctly.
		clone := image.NewNRGBA(out.Rect)
		draw.Draw(clone, clone.Rect, out, out.Rect.Min, draw.Src)
		out = clone
	}
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = alpha
	}
	return out, nil
}
