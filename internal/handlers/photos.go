package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"socialmap-api/internal/geo"
	"socialmap-api/internal/middleware"
	"socialmap-api/internal/models"
)

// HandleUploadPhoto stores a base64 image with its coordinates.
//
//	@Summary		Upload a photo
//	@Description	Store a base64-encoded image at the given coordinates
//	@Tags			photos
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.UploadRequest	true	"Photo payload"
//	@Success		200		{object}	models.UploadResponse
//	@Failure		400		{object}	errorResponse	"Missing required fields"
//	@Failure		403		{object}	errorResponse	"userId not allowed for this caller"
//	@Failure		413		{object}	errorResponse	"Image too large"
//	@Failure		500		{object}	errorResponse	"Upload failed"
//	@Security		BearerAuth
//	@Router			/photos/upload [post]
func (h *Handler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	var req models.UploadRequest
	if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
		writeServiceError(w, r, err, "Invalid request")
		return
	}

	resp, err := h.photos.Upload(r.Context(), req, middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Upload failed")
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// HandleListPhotos returns every photo record.
//
//	@Summary		List photos
//	@Description	List all photo records, optionally only those of one user
//	@Tags			photos
//	@Produce		json
//	@Param			userId	query		string	false	"Only photos owned by this user"
//	@Success		200		{object}	models.PhotoListResponse
//	@Failure		500		{object}	errorResponse	"Failed to fetch photos"
//	@Security		BearerAuth
//	@Router			/photos [get]
func (h *Handler) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
	filter := models.PhotoFilter{UserId: strings.TrimSpace(r.URL.Query().Get("userId"))}

	photos, err := h.photos.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch photos")
		return
	}

	writeJSON(w, r, http.StatusOK, models.PhotoListResponse{Photos: photos})
}

// HandleFeed returns photos ordered for the viewer.
//
//	@Summary		Photo feed
//	@Description	Photos nearest to lat/lng first, or newest first without a position
//	@Tags			photos
//	@Produce		json
//	@Param			lat	query		number	false	"Viewer latitude"
//	@Param			lng	query		number	false	"Viewer longitude"
//	@Success		200	{object}	models.FeedResponse
//	@Failure		400	{object}	errorResponse	"Invalid coordinates"
//	@Security		BearerAuth
//	@Router			/photos/feed [get]
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	viewer, err := geo.ParsePoint(query.Get("lat"), query.Get("lng"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	feed, err := h.photos.Feed(r.Context(), viewer)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch photos")
		return
	}

	writeJSON(w, r, http.StatusOK, models.FeedResponse{Photos: feed})
}

// HandleDeletePhoto removes a photo and its stored object.
//
//	@Summary		Delete a photo
//	@Tags			photos
//	@Produce		json
//	@Param			id	path		string	true	"Photo id"
//	@Success		200	{object}	successResponse
//	@Failure		403	{object}	errorResponse	"Not the owner"
//	@Failure		404	{object}	errorResponse	"Photo not found"
//	@Security		BearerAuth
//	@Router			/photos/{id} [delete]
func (h *Handler) HandleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.photos.Delete(r.Context(), id, middleware.PrincipalFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err, "Failed to delete photo")
		return
	}

	writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}
