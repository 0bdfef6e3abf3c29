package analysis

import "github.com/avivro/yad2analyzer-go/internal/listing"

// EngineConfig carries every tunable threshold of the analysis engine.
// It is passed explicitly into each component constructor; there is no
// process-wide mutable configuration.
type EngineConfig struct {
	// Value-score category thresholds, percent deviation from the
	// market-expected price. Lower bound inclusive per category.
	ExcellentDealThreshold float64
	GoodDealThreshold      float64
	FairPriceThreshold     float64
	AboveMarketThreshold   float64

	// Fraction of neighbors covered by the LOWESS bandwidth.
	LowessFraction float64

	// Neighborhood ranking.
	AffordabilityWeight   float64
	EfficiencyWeight      float64
	MinListingsForRanking int

	// Outlier detection.
	ZScoreThreshold    float64
	ModifiedZThreshold float64

	// Realistic price-per-sqm band enforced during ingestion.
	MinPriceDensity float64
	MaxPriceDensity float64

	// Cap on prices sampled for the normality check.
	MaxNormalitySamples int
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ExcellentDealThreshold: -15,
		GoodDealThreshold:      -5,
		FairPriceThreshold:     5,
		AboveMarketThreshold:   15,
		LowessFraction:         0.6666666,
		AffordabilityWeight:    0.7,
		EfficiencyWeight:       0.3,
		MinListingsForRanking:  3,
		ZScoreThreshold:        2.0,
		ModifiedZThreshold:     3.5,
		MinPriceDensity:        1000,
		MaxPriceDensity:        100000,
		MaxNormalitySamples:    5000,
	}
}

// Band returns the ingestion price-density band.
func (c EngineConfig) Band() listing.DensityBand {
	return listing.DensityBand{Min: c.MinPriceDensity, Max: c.MaxPriceDensity}
}
