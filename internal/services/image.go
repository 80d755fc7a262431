package services

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	apperrors "socialmap-api/internal/errors"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/utils"
)

const maxFilenameLength = 255

// ProcessedImage is an upload payload ready for blob storage.
type ProcessedImage struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	TakenAt     *time.Time
}

// decodePayload strips an optional "data:<mime>;base64," prefix and decodes
// the remaining base64 text.
func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.IndexByte(payload, ','); i >= 0 {
			payload = payload[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop the padding.
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "Invalid base64 image data", err)
	}
	return data, nil
}

// checkFilename rejects names that could escape the object prefix.
func checkFilename(name string) error {
	switch {
	case name == "":
		return apperrors.New(apperrors.ErrInvalidInput, MsgMissingFields)
	case len(name) > maxFilenameLength:
		return apperrors.New(apperrors.ErrInvalidInput, "filename must be at most 255 characters")
	case strings.Contains(name, ".."), strings.ContainsAny(name, `/\`):
		return apperrors.New(apperrors.ErrInvalidInput, "filename must not contain path separators")
	}
	return nil
}

// ProcessImage sniffs the payload type, converts HEIC/HEIF to JPEG and reads
// dimensions and capture time. Only the type check can fail; the metadata is
// best effort.
func ProcessImage(filename string, data []byte) (*ProcessedImage, error) {
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "Uploaded file is not an image")
	}

	name, contentType, converted, err := utils.ConvertIfHeic(filename, mime.String(), data)
	if err != nil {
		// Store the original bytes; browsers without HEIC support just won't render it.
		logging.Warn().Err(err).Str("filename", filename).Msg("HEIC conversion failed, storing original")
	}

	img := &ProcessedImage{
		Filename:    name,
		ContentType: contentType,
		Data:        converted,
	}
	inspectImage(img)
	return img, nil
}

// inspectImage fills in dimensions and capture time when they can be read.
func inspectImage(img *ProcessedImage) {
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}

	if takenAt, err := utils.ExtractTakenAt(img.Data); err == nil {
		t := takenAt.UTC()
		img.TakenAt = &t
	}
}
