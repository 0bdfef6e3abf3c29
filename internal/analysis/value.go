package analysis

import (
	"math"
	"sort"

	"github.com/avivro/yad2analyzer-go/internal/listing"
	"gonum.org/v1/gonum/stat"
)

// minListingsForScoring is the smallest set a market curve can be fitted
// on. Below it every listing gets the documented neutral fallback.
const minListingsForScoring = 3

// ValueAnalyzer scores listings against the LOWESS market-expected price
// for their size.
type ValueAnalyzer struct {
	cfg   EngineConfig
	trend *TrendAnalyzer
}

func NewValueAnalyzer(cfg EngineConfig) *ValueAnalyzer {
	return &ValueAnalyzer{
		cfg:   cfg,
		trend: NewTrendAnalyzer(cfg),
	}
}

// Score returns a new set where every listing carries its predicted
// price, value score, category and savings amount. Scoring reads only
// price and size, so it is an idempotent projection.
//
// With fewer than 3 listings, or when the curve fit degrades, every
// listing gets score 0, category Unknown, its own price as prediction
// and zero savings. This deliberately suppresses value signal on very
// small sets.
func (a *ValueAnalyzer) Score(set listing.ListingSet) listing.ListingSet {
	out := set.Clone()

	if len(out) < minListingsForScoring {
		return a.scoreFallback(out)
	}

	predicted, ok := a.trend.FitExpectedPrice(set.Sizes(), set.Prices())
	if !ok {
		return a.scoreFallback(out)
	}

	for i := range out {
		score := 0.0
		if predicted[i] != 0 {
			score = (out[i].Price - predicted[i]) / predicted[i] * 100
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			score = 0
		}

		out[i].PredictedPrice = predicted[i]
		out[i].ValueScore = score
		out[i].Category = a.Categorize(score)
		out[i].Savings = predicted[i] - out[i].Price
	}

	return out
}

func (a *ValueAnalyzer) scoreFallback(set listing.ListingSet) listing.ListingSet {
	for i := range set {
		set[i].PredictedPrice = set[i].Price
		set[i].ValueScore = 0
		set[i].Category = listing.CategoryUnknown
		set[i].Savings = 0
	}
	return set
}

// Categorize maps a value score onto the fixed category thresholds.
// Boundaries are inclusive on the lower category: a score of exactly
// -15 is an excellent deal, not a good one.
func (a *ValueAnalyzer) Categorize(score float64) listing.ValueCategory {
	switch {
	case score <= a.cfg.ExcellentDealThreshold:
		return listing.CategoryExcellentDeal
	case score <= a.cfg.GoodDealThreshold:
		return listing.CategoryGoodDeal
	case score <= a.cfg.FairPriceThreshold:
		return listing.CategoryFairPrice
	case score <= a.cfg.AboveMarketThreshold:
		return listing.CategoryAboveMarket
	default:
		return listing.CategoryOverpriced
	}
}

// BestDeals returns up to maxCount listings scoring at or below the
// good-deal threshold, best (most negative) first. The sort is stable,
// so ties keep insertion order.
func (a *ValueAnalyzer) BestDeals(set listing.ListingSet, maxCount int) listing.ListingSet {
	scored := a.Score(set)

	deals := make(listing.ListingSet, 0, len(scored))
	for _, l := range scored {
		if l.ValueScore <= a.cfg.GoodDealThreshold {
			deals = append(deals, l)
		}
	}

	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].ValueScore < deals[j].ValueScore
	})

	if maxCount >= 0 && len(deals) > maxCount {
		deals = deals[:maxCount]
	}

	return deals
}

// ValueDistribution counts listings per category. All five categories
// are always present in the result; scoring is run on the spot since it
// is idempotent.
func (a *ValueAnalyzer) ValueDistribution(set listing.ListingSet) map[listing.ValueCategory]int {
	distribution := map[listing.ValueCategory]int{
		listing.CategoryExcellentDeal: 0,
		listing.CategoryGoodDeal:      0,
		listing.CategoryFairPrice:     0,
		listing.CategoryAboveMarket:   0,
		listing.CategoryOverpriced:    0,
	}

	for _, l := range a.Score(set) {
		if l.Category == listing.CategoryUnknown {
			continue
		}
		distribution[l.Category]++
	}

	return distribution
}

// TrendStatistics describes the fitted market curve.
type TrendStatistics struct {
	HasTrend    bool    `json:"has_trend"`
	Slope       float64 `json:"slope"`
	Correlation float64 `json:"correlation"`
	RSquared    float64 `json:"r_squared"`
	Direction   string  `json:"direction"`
}

// TrendStatistics summarizes the LOWESS curve: size/price correlation,
// R² against the curve and an endpoint slope approximation.
func (a *ValueAnalyzer) TrendStatistics(set listing.ListingSet) TrendStatistics {
	if len(set) < minListingsForScoring {
		return TrendStatistics{Direction: "Insufficient data"}
	}

	sizes := set.Sizes()
	prices := set.Prices()

	predicted, ok := a.trend.FitExpectedPrice(sizes, prices)
	if !ok {
		return TrendStatistics{Direction: "Insufficient data"}
	}

	correlation := stat.Correlation(sizes, prices, nil)

	var ssRes, ssTot float64
	meanPrice := stat.Mean(prices, nil)
	for i := range prices {
		ssRes += (prices[i] - predicted[i]) * (prices[i] - predicted[i])
		ssTot += (prices[i] - meanPrice) * (prices[i] - meanPrice)
	}

	rSquared := 0.0
	if ssTot != 0 {
		rSquared = 1 - ssRes/ssTot
	}

	minIdx, maxIdx := 0, 0
	for i := range sizes {
		if sizes[i] < sizes[minIdx] {
			minIdx = i
		}
		if sizes[i] > sizes[maxIdx] {
			maxIdx = i
		}
	}

	slope := 0.0
	if sizes[maxIdx] != sizes[minIdx] {
		slope = (predicted[maxIdx] - predicted[minIdx]) / (sizes[maxIdx] - sizes[minIdx])
	}

	direction := "Flat (size doesn't affect price)"
	if slope > 0 {
		direction = "Positive (larger properties cost more)"
	} else if slope < 0 {
		direction = "Negative (larger properties cost less)"
	}

	return TrendStatistics{
		HasTrend:    true,
		Slope:       slope,
		Correlation: correlation,
		RSquared:    rSquared,
		Direction:   direction,
	}
}

// MarketMedians are the reference medians of the current set.
type MarketMedians struct {
	Price        float64 `json:"median_price"`
	Size         float64 `json:"median_size"`
	PriceDensity float64 `json:"median_price_per_sqm"`
}

func (a *ValueAnalyzer) MarketMedians(set listing.ListingSet) MarketMedians {
	if len(set) == 0 {
		return MarketMedians{}
	}

	return MarketMedians{
		Price:        median(set.Prices()),
		Size:         median(set.Sizes()),
		PriceDensity: median(set.PriceDensities()),
	}
}
