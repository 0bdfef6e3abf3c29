package listing

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// Record is one raw listing as produced by the scraping collaborator.
// Every field is optional on the wire.
type Record struct {
	Price         *float64 `json:"price"`
	SquareMeters  *float64 `json:"square_meters"`
	PricePerSqm   *float64 `json:"price_per_sqm"`
	Rooms         *float64 `json:"rooms"`
	Neighborhood  string   `json:"neighborhood"`
	ConditionText string   `json:"condition_text"`
	AdType        string   `json:"ad_type"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	Floor         *int     `json:"floor"`
	FullURL       string   `json:"full_url"`
}

// DensityBand is the realistic price-per-sqm interval used to reject
// mispriced records during ingestion.
type DensityBand struct {
	Min float64
	Max float64
}

func (b DensityBand) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// FromRecords converts raw records into a ListingSet, skipping records
// that violate the price/size invariants or fall outside the realistic
// price-density band. Half-present coordinate pairs are dropped from the
// listing, not the listing from the set.
func FromRecords(records []Record, band DensityBand) ListingSet {
	set := make(ListingSet, 0, len(records))
	skipped := 0

	for _, r := range records {
		if r.Price == nil || *r.Price <= 0 || r.SquareMeters == nil || *r.SquareMeters <= 0 {
			skipped++
			continue
		}

		density := *r.Price / *r.SquareMeters
		if r.PricePerSqm != nil && *r.PricePerSqm > 0 {
			density = *r.PricePerSqm
		}

		if !band.contains(density) {
			skipped++
			continue
		}

		l := Listing{
			Price:        *r.Price,
			Size:         *r.SquareMeters,
			PriceDensity: density,
			Neighborhood: r.Neighborhood,
			Condition:    r.ConditionText,
			AdType:       r.AdType,
			Floor:        copyInt(r.Floor),
			URL:          r.FullURL,
		}

		if r.Rooms != nil && *r.Rooms > 0 {
			l.Rooms = *r.Rooms
		}

		if r.Lat != nil && r.Lng != nil {
			l.Latitude = copyFloat(r.Lat)
			l.Longitude = copyFloat(r.Lng)
		}

		set = append(set, l)
	}

	if skipped > 0 {
		log.Printf("skipped %d invalid listing records during ingestion", skipped)
	}

	return set
}

// LoadFile reads a JSON dump of scraped listing records.
func LoadFile(path string, band DensityBand) (ListingSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read listings file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("can't parse listings file: %w", err)
	}

	return FromRecords(records, band), nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
