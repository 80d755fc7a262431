package models

import "time"

// PhotoKeyPrefix prefixes every photo record key in the KV store.
const PhotoKeyPrefix = "photo_"

type Photo struct {
	Id                 string     `json:"id"`
	FilePath           string     `json:"filePath"`
	SignedURL          string     `json:"signedUrl"`
	SignedURLExpiresAt time.Time  `json:"signedUrlExpiresAt"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	UserId             *string    `json:"userId"`
	ContentType        string     `json:"contentType,omitempty"`
	LocationName       string     `json:"locationName,omitempty"` // Format: "City, Country"
	Width              int        `json:"width,omitempty"`
	Height             int        `json:"height,omitempty"`
	TakenAt            *time.Time `json:"takenAt,omitempty"` // Capture time from EXIF
	CreatedAt          time.Time  `json:"created_at"`
}

// OwnedBy reports whether the photo carries the given owner id.
func (p *Photo) OwnedBy(userID string) bool {
	return p.UserId != nil && *p.UserId == userID
}

// FeedPhoto is a photo annotated with its distance from the viewer.
type FeedPhoto struct {
	Photo
	DistanceKm *float64 `json:"distanceKm"`
}

// UploadRequest is the body of POST /photos/upload.
// Latitude and longitude are pointers so that 0 is distinguishable from absent.
type UploadRequest struct {
	Base64Data string   `json:"base64Data" validate:"required"`
	Filename   string   `json:"filename" validate:"required,max=255"`
	Latitude   *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude  *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	UserId     *string  `json:"userId,omitempty"`
}

type UploadResponse struct {
	Success   bool      `json:"success"`
	PhotoId   string    `json:"photoId"`
	FilePath  string    `json:"filePath"`
	SignedURL string    `json:"signedUrl"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UserId    *string   `json:"userId"`
	CreatedAt time.Time `json:"created_at"`
}

type PhotoListResponse struct {
	Photos []Photo `json:"photos"`
}

type FeedResponse struct {
	Photos []FeedPhoto `json:"photos"`
}

// PhotoFilter narrows a photo listing.
type PhotoFilter struct {
	UserId string
}
