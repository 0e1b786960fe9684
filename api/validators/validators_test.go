package validators

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
)

type hoursPayload struct {
	DayOfWeek string  `json:"dayOfWeek" validate:"required"`
	Seats     int     `json:"seats" validate:"gte=1,lte=9"`
	Status    string  `json:"status,omitempty" validate:"omitempty,oneof=AVAILABLE SOLD"`
	Price     float64 `json:"price" validate:"gte=0"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seats":12,"status":"GONE","price":-1}`))
	var dest hoursPayload
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["dayOfWeek"])
	assert.Equal(t, "must be less than or equal to 9", details["seats"])
	assert.Equal(t, "must be one of: AVAILABLE SOLD", details["status"])
	assert.Equal(t, "must be greater than or equal to 0", details["price"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dayOfWeek":"Monday","seats":2,"bogus":true}`))
	var dest hoursPayload
	err := DecodeJSONBody(req, &dest)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	body := `{"dayOfWeek":"` + strings.Repeat("x", 512) + `","seats":2}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(w, req.Body, 64)

	var dest hoursPayload
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, "request body too large", pkgerrors.As(err).Message())
}

func TestPathUUID(t *testing.T) {
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("carId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	id, err := PathUUID(withParam("6f1c1f64-0a7e-4d4e-9c55-2f8e3b9f9a01"), "carId")
	require.NoError(t, err)
	assert.Equal(t, "6f1c1f64-0a7e-4d4e-9c55-2f8e3b9f9a01", id.String())

	_, err = PathUUID(withParam("nope"), "carId")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = PathUUID(withParam(" "), "carId")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "civic", SanitizeString("  civic  ", 10))
	assert.Equal(t, "abc", SanitizeString("abcdef", 3))
}

func multipartRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="car.png"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadImageUpload(t *testing.T) {
	req := multipartRequest(t, "image", "image/png", []byte("png-bytes"))
	upload, err := ReadImageUpload(httptest.NewRecorder(), req, "image", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/png", upload.MIMEType)
	assert.Equal(t, []byte("png-bytes"), upload.Data)
	assert.Equal(t, "car.png", upload.Filename)
}

func TestReadImageUploadRejects(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{"missing field", func() *http.Request { return multipartRequest(t, "photo", "image/png", []byte("x")) }},
		{"not an image", func() *http.Request { return multipartRequest(t, "image", "text/plain", []byte("hello")) }},
		{"empty file", func() *http.Request { return multipartRequest(t, "image", "image/png", nil) }},
		{"not multipart", func() *http.Request { return httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")) }},
	}
	for _, tt := range tests {
		_, err := ReadImageUpload(httptest.NewRecorder(), tt.req(), "image", 1<<20)
		assert.Truef(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "%s: expected validation error, got %v", tt.name, err)
	}
}
