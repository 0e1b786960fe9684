package listings

import (
	"encoding/base64"
	"regexp"
	"strings"
)

const (
	dataURIPrefix = "data:image/"
	fallbackExt   = "jpg"
)

var extRe = regexp.MustCompile(`^[a-z0-9]+$`)

type decodedImage struct {
	index       int
	data        []byte
	contentType string
	ext         string
}

// decodeImages keeps the entries that are well-formed base64 image data URIs,
// in input order. index is the position in the original slice.
func decodeImages(images []string) []decodedImage {
	out := make([]decodedImage, 0, len(images))
	for i, raw := range images {
		img, ok := decodeDataURI(raw)
		if !ok {
			continue
		}
		img.index = i
		out = append(out, img)
	}
	return out
}

func decodeDataURI(raw string) (decodedImage, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, dataURIPrefix) {
		return decodedImage{}, false
	}
	header, payload, ok := strings.Cut(raw, ",")
	if !ok || payload == "" {
		return decodedImage{}, false
	}
	meta := strings.TrimPrefix(header, "data:")
	if !strings.HasSuffix(meta, ";base64") {
		return decodedImage{}, false
	}
	mimeType := strings.ToLower(strings.TrimSuffix(meta, ";base64"))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return decodedImage{}, false
	}

	// Subtypes like svg+xml keep their content type but get a plain extension.
	ext := strings.TrimPrefix(mimeType, "image/")
	if !extRe.MatchString(ext) {
		ext = fallbackExt
	}
	return decodedImage{data: data, contentType: mimeType, ext: ext}, true
}
