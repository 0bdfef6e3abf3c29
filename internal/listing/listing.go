package listing

import (
	"encoding/json"
	"fmt"
)

// ValueCategory classifies a listing by how far its price sits from the
// market-expected price for its size.
type ValueCategory int

const (
	CategoryUnknown ValueCategory = iota
	CategoryExcellentDeal
	CategoryGoodDeal
	CategoryFairPrice
	CategoryAboveMarket
	CategoryOverpriced
)

func (c ValueCategory) String() string {
	switch c {
	case CategoryExcellentDeal:
		return "Excellent Deal"
	case CategoryGoodDeal:
		return "Good Deal"
	case CategoryFairPrice:
		return "Fair Price"
	case CategoryAboveMarket:
		return "Above Market"
	case CategoryOverpriced:
		return "Overpriced"
	default:
		return "Unknown"
	}
}

func (c ValueCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ValueCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("can't unmarshal value category: %w", err)
	}

	for _, candidate := range []ValueCategory{
		CategoryUnknown,
		CategoryExcellentDeal,
		CategoryGoodDeal,
		CategoryFairPrice,
		CategoryAboveMarket,
		CategoryOverpriced,
	} {
		if candidate.String() == s {
			*c = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown value category %q", s)
}

// Listing is one real-estate unit. Rooms, Neighborhood, Condition and
// AdType use their zero value for "unknown". Latitude and Longitude are
// either both set or both nil.
type Listing struct {
	Price        float64  `json:"price"`
	Size         float64  `json:"square_meters"`
	PriceDensity float64  `json:"price_per_sqm"`
	Rooms        float64  `json:"rooms,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Condition    string   `json:"condition_text,omitempty"`
	AdType       string   `json:"ad_type,omitempty"`
	Latitude     *float64 `json:"lat,omitempty"`
	Longitude    *float64 `json:"lng,omitempty"`
	Floor        *int     `json:"floor,omitempty"`
	URL          string   `json:"full_url,omitempty"`

	// Written once by the value analyzer, never by the data source.
	PredictedPrice float64       `json:"predicted_price,omitempty"`
	ValueScore     float64       `json:"value_score,omitempty"`
	Category       ValueCategory `json:"value_category,omitempty"`
	Savings        float64       `json:"savings_amount,omitempty"`
}

func (l Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil && *l.Latitude != 0 && *l.Longitude != 0
}

// ListingSet is an ordered collection of listings treated as a value:
// every transformation returns a new set, the input is never mutated.
type ListingSet []Listing

func (s ListingSet) Clone() ListingSet {
	out := make(ListingSet, len(s))
	copy(out, s)
	return out
}

func (s ListingSet) Prices() []float64 {
	out := make([]float64, len(s))
	for i, l := range s {
		out[i] = l.Price
	}
	return out
}

func (s ListingSet) Sizes() []float64 {
	out := make([]float64, len(s))
	for i, l := range s {
		out[i] = l.Size
	}
	return out
}

func (s ListingSet) PriceDensities() []float64 {
	out := make([]float64, len(s))
	for i, l := range s {
		out[i] = l.PriceDensity
	}
	return out
}
