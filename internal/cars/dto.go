package cars

import (
	"time"

	"github.com/google/uuid"

	"github.com/autoyard/autoyard-backend/internal/dealership"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/pagination"
)

// CarDTO is the public listing shape. Price is a plain JSON number.
type CarDTO struct {
	ID           uuid.UUID `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	Mileage      int       `json:"mileage"`
	Color        string    `json:"color"`
	FuelType     string    `json:"fuelType"`
	Transmission string    `json:"transmission"`
	BodyType     string    `json:"bodyType"`
	Seats        *int      `json:"seats"`
	Description  string    `json:"description"`
	Confidence   float64   `json:"confidence"`
	Status       string    `json:"status"`
	Featured     bool      `json:"featured"`
	Images       []string  `json:"images"`
	IsWishlisted bool      `json:"isWishlisted"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type SearchResult struct {
	Items      []CarDTO        `json:"items"`
	Pagination pagination.Page `json:"pagination"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type FacetsDTO struct {
	Makes         []string   `json:"makes"`
	BodyTypes     []string   `json:"bodyTypes"`
	FuelTypes     []string   `json:"fuelTypes"`
	Transmissions []string   `json:"transmissions"`
	PriceRange    PriceRange `json:"priceRange"`
}

type CarDetailDTO struct {
	Car          CarDTO                   `json:"car"`
	IsWishlisted bool                     `json:"isWishlisted"`
	Dealership   dealership.DealershipDTO `json:"dealership"`
}

// StatusUpdate is a partial admin update; nil fields are left unchanged.
type StatusUpdate struct {
	Status   *string `json:"status,omitempty"`
	Featured *bool   `json:"featured,omitempty"`
}

// FromModel converts a stored car to its public shape.
func FromModel(c models.Car, wishlisted bool) CarDTO {
	images := []string(c.Images)
	if images == nil {
		images = []string{}
	}
	return CarDTO{
		ID:           c.ID,
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		Price:        c.Price.InexactFloat64(),
		Mileage:      c.Mileage,
		Color:        c.Color,
		FuelType:     c.FuelType,
		Transmission: c.Transmission,
		BodyType:     c.BodyType,
		Seats:        c.Seats,
		Description:  c.Description,
		Confidence:   c.Confidence,
		Status:       c.Status.String(),
		Featured:     c.Featured,
		Images:       images,
		IsWishlisted: wishlisted,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
