package models

// Place is a single location search result.
type Place struct {
	Id        string  `json:"id"`
	PlaceName string  `json:"place_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type PlaceSearchResponse struct {
	Results []Place `json:"results"`
}
