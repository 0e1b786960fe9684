package vision

import "github.com/lithammer/dedent"

// ListingPrompt asks for every field of a listing draft.
var ListingPrompt = dedent.Dedent(`
	Analyze this car image and extract the following information:
	1. Make (manufacturer)
	2. Model
	3. Year
	4. Color
	5. Body Type (SUV, Sedan, Hatchback, etc.)
	6. Mileage
	7. Fuel Type (your best guess)
	8. Transmission type (your best guess)
	9. Price (your best guess)
	10. Seats (estimate if visible)
	11. Short description suitable for a car listing

	Format your response as a clean JSON object with these fields:
	{
	  "make": "",
	  "model": "",
	  "year": 0000,
	  "color": "",
	  "price": "",
	  "mileage": "",
	  "bodyType": "",
	  "fuelType": "",
	  "transmission": "",
	  "seats": "",
	  "description": "",
	  "confidence": 0.00
	}

	For confidence, provide a value between 0 and 1 representing how confident
	you are in your overall identification.
	Only respond with the JSON object, nothing else.
`)

// SearchPrompt asks only for the attributes used to pre-fill a search.
var SearchPrompt = dedent.Dedent(`
	Analyze this car image and extract the following information for a search query:
	1. Make (manufacturer)
	2. Body type (SUV, Sedan, Hatchback, etc.)
	3. Color

	Format your response as a clean JSON object with these fields:
	{
	  "make": "",
	  "bodyType": "",
	  "color": "",
	  "confidence": 0.0
	}

	For confidence, provide a value between 0 and 1 representing how confident
	you are in your overall identification.
	Only respond with the JSON object, nothing else.
`)
