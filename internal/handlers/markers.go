package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"socialmap-api/internal/models"
)

// HandleListMarkers returns all map markers, newest first.
//
//	@Summary		List markers
//	@Tags			markers
//	@Produce		json
//	@Success		200	{object}	models.MarkerListResponse
//	@Security		BearerAuth
//	@Router			/markers [get]
func (h *Handler) HandleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := h.markers.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch markers")
		return
	}
	writeJSON(w, r, http.StatusOK, models.MarkerListResponse{Markers: markers})
}

// HandleAddMarker stores a new marker.
//
//	@Summary		Add a marker
//	@Tags			markers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.MarkerRequest	true	"Marker position"
//	@Success		200		{object}	models.Marker
//	@Failure		400		{object}	errorResponse	"Missing required fields"
//	@Security		BearerAuth
//	@Router			/markers [post]
func (h *Handler) HandleAddMarker(w http.ResponseWriter, r *http.Request) {
	var req models.MarkerRequest
	if err := decodeBody(w, r, 16*1024, &req); err != nil {
		writeServiceError(w, r, err, "Invalid request")
		return
	}

	marker, err := h.markers.Add(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to save marker")
		return
	}
	writeJSON(w, r, http.StatusOK, marker)
}

// HandleDeleteMarker removes a marker.
//
//	@Summary		Delete a marker
//	@Tags			markers
//	@Produce		json
//	@Param			id	path		string	true	"Marker id"
//	@Success		200	{object}	successResponse
//	@Failure		404	{object}	errorResponse	"Marker not found"
//	@Security		BearerAuth
//	@Router			/markers/{id} [delete]
func (h *Handler) HandleDeleteMarker(w http.ResponseWriter, r *http.Request) {
	if err := h.markers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "Failed to delete marker")
		return
	}
	writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}
