package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ExtractTakenAt returns the capture time recorded in the image EXIF data.
// It prefers DateTime and falls back to DateTimeOriginal.
func ExtractTakenAt(imageData []byte) (time.Time, error) {
	x, err := exif.Decode(bytes.NewReader(imageData))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode EXIF: %w", err)
	}

	if dt, err := x.DateTime(); err == nil {
		return dt, nil
	}

	dateTag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, fmt.Errorf("no capture time found: %w", err)
	}
	dateStr, err := dateTag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read capture time: %w", err)
	}

	// EXIF DateTimeOriginal is typically "2006:01:02 15:04:05"
	t, err := time.Parse("2006:01:02 15:04:05", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse capture time: %w", err)
	}
	return t, nil
}

// FormatTime renders t as "Wednesday, 15 January 2025, 14:30".
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d, %02d:%02d", t.Weekday(), t.Day(), t.Month(), t.Year(), t.Hour(), t.Minute())
}
