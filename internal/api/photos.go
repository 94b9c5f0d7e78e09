package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/iskkyy/LNFRP/internal/imaging"
	"github.com/iskkyy/LNFRP/internal/photos"
)

// UploadPhoto handles PUT /items/{id}/photo. The multipart field "photo" is
// normalized to JPEG and replaces any previous photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid item id")
		return
	}

	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "photo too large")
			return
		}
		jsonError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, ErrCodeBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "photo too large")
		return
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, ErrCodeValidation, "photo must be a JPEG or PNG image")
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("processing photo")
		jsonError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to process photo")
		return
	}

	key := photos.NewKey(id)
	if err := h.Photos.Put(r.Context(), key, photo.Data, photo.MIME); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("storing photo")
		jsonError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to store photo")
		return
	}

	previous, err := h.Store.SetItemPhoto(r.Context(), id, key)
	if err != nil {
		h.discardPhoto(r, key)
		writeStoreError(w, r, err, "item not found", "attach photo")
		return
	}
	h.discardPhoto(r, previous)

	jsonResponse(w, http.StatusOK, messageResponse{Message: "Photo uploaded"})
}

// GetPhoto handles GET /items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid item id")
		return
	}

	key, err := h.Store.ItemPhotoKey(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "item not found", "get photo")
		return
	}
	if key == "" {
		jsonError(w, http.StatusNotFound, ErrCodeNotFound, "item has no photo")
		return
	}

	data, mime, err := h.Photos.Get(r.Context(), key)
	if errors.Is(err, photos.ErrNotFound) {
		jsonError(w, http.StatusNotFound, ErrCodeNotFound, "item has no photo")
		return
	}
	if err != nil {
		writeStoreError(w, r, err, "", "get photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// discardPhoto deletes a photo blob that is no longer referenced. Failures
// leave an orphaned blob and are only logged.
func (h *ItemsHandler) discardPhoto(r *http.Request, key string) {
	if key == "" {
		return
	}
	if err := h.Photos.Delete(r.Context(), key); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("photo_key", key).Msg("discarding photo")
	}
}
