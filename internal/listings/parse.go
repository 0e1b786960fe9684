package listings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/vision"
)

var (
	listingFields = []string{
		"make", "model", "year", "color", "bodyType", "price",
		"mileage", "fuelType", "transmission", "seats", "description", "confidence",
	}
	searchFields = []string{"make", "bodyType", "color", "confidence"}
)

// decodeObject parses the model answer into a raw object and checks that every
// required key is present. Values are not checked; the model often answers
// with strings where numbers were asked for.
func decodeObject(text string, required []string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(vision.StripCodeFences(text)), &obj); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unparseable AI response")
	}
	if obj == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unparseable AI response")
	}

	var missing []string
	for _, field := range required {
		if _, ok := obj[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(
			pkgerrors.CodeValidation,
			fmt.Sprintf("AI response is missing required fields: %s", strings.Join(missing, ", ")),
		).WithDetails(map[string]any{"missing_fields": missing})
	}
	return obj, nil
}

func parseListing(text string) (ExtractedListing, error) {
	obj, err := decodeObject(text, listingFields)
	if err != nil {
		return ExtractedListing{}, err
	}
	out := ExtractedListing{
		Make:         textOf(obj["make"]),
		Model:        textOf(obj["model"]),
		Year:         int(numberOf(obj["year"])),
		Color:        textOf(obj["color"]),
		Price:        numberOf(obj["price"]),
		Mileage:      int(numberOf(obj["mileage"])),
		BodyType:     textOf(obj["bodyType"]),
		FuelType:     textOf(obj["fuelType"]),
		Transmission: textOf(obj["transmission"]),
		Description:  textOf(obj["description"]),
		Confidence:   clampUnit(numberOf(obj["confidence"])),
	}
	if seats := int(numberOf(obj["seats"])); seats > 0 {
		out.Seats = &seats
	}
	return out, nil
}

func parseSearch(text string) (ImageSearchResult, error) {
	obj, err := decodeObject(text, searchFields)
	if err != nil {
		return ImageSearchResult{}, err
	}
	return ImageSearchResult{
		Make:       textOf(obj["make"]),
		BodyType:   textOf(obj["bodyType"]),
		Color:      textOf(obj["color"]),
		Confidence: clampUnit(numberOf(obj["confidence"])),
	}, nil
}

// textOf renders a JSON scalar as trimmed text; null is empty.
func textOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

// numberOf reads numbers written as JSON numbers or as text like "$25,000" or
// "45,000 miles". Anything unreadable is 0.
func numberOf(raw json.RawMessage) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, textOf(raw))
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
