package listings

// ExtractedListing is the draft the vision model produces for the admin form.
type ExtractedListing struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Color        string  `json:"color"`
	Price        float64 `json:"price"`
	Mileage      int     `json:"mileage"`
	BodyType     string  `json:"bodyType"`
	FuelType     string  `json:"fuelType"`
	Transmission string  `json:"transmission"`
	Seats        *int    `json:"seats"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
}

// ImageSearchResult pre-fills the browse filters from a photo.
type ImageSearchResult struct {
	Make       string  `json:"make"`
	BodyType   string  `json:"bodyType"`
	Color      string  `json:"color"`
	Confidence float64 `json:"confidence"`
}

// CarInput is the reviewed listing submitted by an admin.
type CarInput struct {
	Make         string  `json:"make" validate:"required"`
	Model        string  `json:"model" validate:"required"`
	Year         int     `json:"year" validate:"required,gte=1900,lte=2100"`
	Price        float64 `json:"price" validate:"gte=0,lte=99999999.99"`
	Mileage      int     `json:"mileage" validate:"gte=0"`
	Color        string  `json:"color" validate:"required"`
	FuelType     string  `json:"fuelType" validate:"required"`
	Transmission string  `json:"transmission" validate:"required"`
	BodyType     string  `json:"bodyType" validate:"required"`
	Seats        *int    `json:"seats,omitempty" validate:"omitempty,gte=1,lte=100"`
	Description  string  `json:"description" validate:"required"`
	Confidence   float64 `json:"confidence" validate:"gte=0,lte=1"`
	Status       string  `json:"status,omitempty" validate:"omitempty,oneof=AVAILABLE UNAVAILABLE SOLD"`
	Featured     bool    `json:"featured"`
}

// CreateRequest is the body of the create endpoint. Images are data URIs.
type CreateRequest struct {
	Car    CarInput `json:"car" validate:"required"`
	Images []string `json:"images" validate:"required,min=1"`
}
