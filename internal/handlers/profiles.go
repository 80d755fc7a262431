package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"socialmap-api/internal/middleware"
	"socialmap-api/internal/models"
)

// HandleGetMyProfile returns the caller's profile.
//
//	@Summary		Get own profile
//	@Tags			profiles
//	@Produce		json
//	@Success		200	{object}	models.Profile
//	@Failure		401	{object}	errorResponse	"Session token required"
//	@Failure		404	{object}	errorResponse	"Profile not found"
//	@Security		BearerAuth
//	@Router			/profiles/me [get]
func (h *Handler) HandleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, middleware.PrincipalFromContext(r.Context()).UserId)
}

// HandlePutMyProfile creates or updates the caller's profile.
//
//	@Summary		Save own profile
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.ProfileUpdate	true	"Fields to change"
//	@Success		200		{object}	models.Profile
//	@Failure		400		{object}	errorResponse	"Invalid profile"
//	@Security		BearerAuth
//	@Router			/profiles/me [put]
func (h *Handler) HandlePutMyProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeBody(w, r, 64*1024, &update); err != nil {
		writeServiceError(w, r, err, "Invalid request")
		return
	}

	profile, err := h.profiles.Upsert(r.Context(), middleware.PrincipalFromContext(r.Context()).UserId, update)
	if err != nil {
		writeServiceError(w, r, err, "Failed to save profile")
		return
	}

	writeJSON(w, r, http.StatusOK, profile)
}

// HandleGetProfile returns another user's profile.
//
//	@Summary		Get a profile
//	@Tags			profiles
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	models.Profile
//	@Failure		404	{object}	errorResponse	"Profile not found"
//	@Security		BearerAuth
//	@Router			/profiles/{id} [get]
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}
