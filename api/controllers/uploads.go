package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/media"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type uploadResponse struct {
	Path string `json:"path"`
}

// AdminImageUpload stores a multipart image and returns its served path.
// The form field is named "image". Storage failures surface to the caller
// instead of being swallowed.
func AdminImageUpload(store *media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media store unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, store.MaxBytes()+(1<<20))
		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required"))
			return
		}
		defer func() {
			_ = file.Close()
		}()

		name, err := store.Save(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, uploadResponse{Path: name})
	}
}
