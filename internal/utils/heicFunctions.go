package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/adrium/goheif"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"socialmap-api/internal/logging"
)

// Checks if the MIME type indicates a HEIC or HEIF image format.
func IsHeifLike(mimeType string) bool {
	t := strings.ToLower(mimeType)
	return strings.Contains(t, "heic") || strings.Contains(t, "heif")
}

// Converts HEIC/HEIF image data to JPEG format with proper orientation handling.
// Returns the JPEG-encoded data or an error if conversion fails.
func ConvertHeicToJpeg(input []byte) ([]byte, error) {
	img, err := goheif.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("failed to decode HEIC: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, applyOrientation(img, input), &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// Reads EXIF orientation and applies correct transformations to the image
func applyOrientation(img image.Image, input []byte) image.Image {
	x, err := exif.Decode(bytes.NewReader(input))
	if err != nil {
		logging.Debug().Err(err).Msg("HEIC has no readable EXIF orientation")
		return img
	}

	orientTag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}

	orient, err := orientTag.Int(0)
	if err != nil {
		return img
	}

	return Orient(img, orient)
}

// Orient applies an EXIF orientation value:
// 1=normal, 2=flip-h, 3=180, 4=flip-v, 5=transpose, 6=270, 7=transverse, 8=90
func Orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// ConvertIfHeic converts HEIC/HEIF payloads to JPEG and renames the file
// accordingly. Other payloads are returned unchanged.
func ConvertIfHeic(name, mime string, data []byte) (string, string, []byte, error) {
	if !IsHeifLike(mime) {
		return name, mime, data, nil
	}

	converted, err := ConvertHeicToJpeg(data)
	if err != nil {
		return name, mime, data, err
	}

	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}

	return name + ".jpg", "image/jpeg", converted, nil
}
