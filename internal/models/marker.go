package models

import "time"

const MarkerKeyPrefix = "marker_"

type Marker struct {
	Id        string    `json:"id"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Label     *string   `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type MarkerRequest struct {
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Label     *string  `json:"label,omitempty" validate:"omitempty,max=200"`
}

type MarkerListResponse struct {
	Markers []Marker `json:"markers"`
}
