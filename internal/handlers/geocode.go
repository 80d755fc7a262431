package handlers

import (
	"net/http"
	"strconv"

	"socialmap-api/internal/logging"
	"socialmap-api/internal/models"
)

// HandleSearchPlaces backs the location search bar.
//
//	@Summary		Search places
//	@Description	Forward geocoding for the map search bar
//	@Tags			geocode
//	@Produce		json
//	@Param			q		query		string	true	"Search text"
//	@Param			limit	query		int		false	"Maximum results (1-10, default 5)"
//	@Success		200		{object}	models.PlaceSearchResponse
//	@Failure		502		{object}	errorResponse	"Geocoder unavailable"
//	@Failure		503		{object}	errorResponse	"Location search is disabled"
//	@Security		BearerAuth
//	@Router			/geocode/search [get]
func (h *Handler) HandleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	if h.places == nil {
		writeError(w, r, http.StatusServiceUnavailable, "Location search is disabled")
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	places, err := h.places.Search(r.Context(), query.Get("q"), limit)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Place search failed")
		writeError(w, r, http.StatusBadGateway, "Location search failed")
		return
	}

	writeJSON(w, r, http.StatusOK, models.PlaceSearchResponse{Results: places})
}
