package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/services"
)

// HandleUpload stores the multipart "file" field and answers {"url": ...}.
func HandleUpload(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		e.Request.Body = http.MaxBytesReader(e.Response, e.Request.Body, services.MaxImageSize+1<<20)
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return writeError(e, http.StatusRequestEntityTooLarge, "Image is larger than 20 MB")
			}
			return writeError(e, http.StatusBadRequest, "No file uploaded")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize+1))
		if err != nil {
			log.Printf("upload: read %s: %v", header.Filename, err)
			return writeError(e, http.StatusBadRequest, "Could not read the uploaded file")
		}
		if len(data) > services.MaxImageSize {
			return writeError(e, http.StatusRequestEntityTooLarge, "Image is larger than 20 MB")
		}

		url, err := d.Images.Upload(e.Request.Context(), header.Filename, data)
		switch {
		case errors.Is(err, services.ErrUnsupportedImage):
			return writeError(e, http.StatusUnsupportedMediaType, "Only PNG, JPEG, WebP and GIF images are supported")
		case err != nil:
			log.Printf("upload: %v", err)
			return writeError(e, http.StatusInternalServerError, genericErrorMessage)
		}
		return e.JSON(http.StatusCreated, map[string]string{"url": url})
	}
}
