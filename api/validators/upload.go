package validators

import (
	"errors"
	"io"
	"net/http"
	"strings"

	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
)

// ImageUpload is a single image read from a multipart form.
type ImageUpload struct {
	Data     []byte
	MIMEType string
	Filename string
}

// ReadImageUpload reads the named multipart file field, capping the request
// at maxBytes. The MIME type comes from the part header and falls back to
// content sniffing.
func ReadImageUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*ImageUpload, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image is too large").
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no image provided").
			WithDetails(map[string]any{"field": field})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no image provided")
	}

	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file must be an image").
			WithDetails(map[string]any{"content_type": mimeType})
	}

	return &ImageUpload{Data: data, MIMEType: mimeType, Filename: header.Filename}, nil
}
