package analysis

import (
	"fmt"
	"sort"

	"github.com/avivro/yad2analyzer-go/internal/format"
	"github.com/avivro/yad2analyzer-go/internal/listing"
	"gonum.org/v1/gonum/stat"
)

// neutralScore is assigned when a rescale has no spread to work with.
const neutralScore = 50

// MarketAnalyzer aggregates neighborhood statistics into affordability
// rankings and textual recommendations.
type MarketAnalyzer struct {
	cfg   EngineConfig
	stats *StatisticalCalculator
	value *ValueAnalyzer
}

func NewMarketAnalyzer(cfg EngineConfig) *MarketAnalyzer {
	return &MarketAnalyzer{
		cfg:   cfg,
		stats: NewStatisticalCalculator(cfg),
		value: NewValueAnalyzer(cfg),
	}
}

// NeighborhoodRanking is one neighborhood's aggregate market position.
type NeighborhoodRanking struct {
	Neighborhood     string  `json:"neighborhood"`
	Count            int     `json:"count"`
	MeanPrice        float64 `json:"mean_price"`
	MeanPriceDensity float64 `json:"mean_price_density"`
	MeanSize         float64 `json:"mean_size"`

	// 0-100, higher = more affordable / more efficient. The real score
	// is the fixed 0.7/0.3 weighted blend of the two.
	AffordabilityScore     float64 `json:"affordability_score"`
	EfficiencyScore        float64 `json:"efficiency_score"`
	RealAffordabilityScore float64 `json:"real_affordability_score"`
}

// AnalyzeNeighborhoods ranks neighborhoods with at least
// MinListingsForRanking listings; smaller groups are dropped, not
// reported as zero. The result is sorted by real affordability score
// descending, ties broken by name for determinism.
func (m *MarketAnalyzer) AnalyzeNeighborhoods(set listing.ListingSet) []NeighborhoodRanking {
	groups := make(map[string]listing.ListingSet)
	for _, l := range set {
		if l.Neighborhood == "" {
			continue
		}
		groups[l.Neighborhood] = append(groups[l.Neighborhood], l)
	}

	rankings := make([]NeighborhoodRanking, 0, len(groups))
	for name, group := range groups {
		if len(group) < m.cfg.MinListingsForRanking {
			continue
		}

		rankings = append(rankings, NeighborhoodRanking{
			Neighborhood:     name,
			Count:            len(group),
			MeanPrice:        stat.Mean(group.Prices(), nil),
			MeanPriceDensity: stat.Mean(group.PriceDensities(), nil),
			MeanSize:         stat.Mean(group.Sizes(), nil),
		})
	}

	if len(rankings) == 0 {
		return rankings
	}

	// Affordability: cheapest mean price scores 100, most expensive 0.
	meanPrices := make([]float64, len(rankings))
	for i, r := range rankings {
		meanPrices[i] = r.MeanPrice
	}
	affordability := rescaleInverted(meanPrices)

	// Efficiency: the same rescale over size-adjusted price density.
	overallMeanSize := stat.Mean(set.Sizes(), nil)
	adjusted := make([]float64, len(rankings))
	for i, r := range rankings {
		adjusted[i] = r.MeanPriceDensity * r.MeanSize / overallMeanSize
	}
	efficiency := rescaleInverted(adjusted)

	for i := range rankings {
		rankings[i].AffordabilityScore = affordability[i]
		rankings[i].EfficiencyScore = efficiency[i]
		rankings[i].RealAffordabilityScore = m.cfg.AffordabilityWeight*affordability[i] +
			m.cfg.EfficiencyWeight*efficiency[i]
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].RealAffordabilityScore != rankings[j].RealAffordabilityScore {
			return rankings[i].RealAffordabilityScore > rankings[j].RealAffordabilityScore
		}
		return rankings[i].Neighborhood < rankings[j].Neighborhood
	})

	return rankings
}

// rescaleInverted maps values to 0-100 with the lowest value at 100.
// All-equal inputs get the neutral 50.
func rescaleInverted(values []float64) []float64 {
	min, max := minMax(values)

	out := make([]float64, len(values))
	for i, v := range values {
		if max > min {
			out[i] = (max - v) / (max - min) * 100
		} else {
			out[i] = neutralScore
		}
	}
	return out
}

// Insights is the combined market picture handed to the presentation
// layer.
type Insights struct {
	TotalListings int `json:"total_listings"`

	MostAffordable      string  `json:"most_affordable"`
	MostAffordablePrice float64 `json:"most_affordable_price"`
	MostExpensive       string  `json:"most_expensive"`
	MostExpensivePrice  float64 `json:"most_expensive_price"`
	BestValue           string  `json:"best_value"`

	// Middle 50% of the market by price quartiles.
	BudgetRangeLow  float64 `json:"budget_range_low"`
	BudgetRangeHigh float64 `json:"budget_range_high"`

	UndervaluedCount int `json:"undervalued_count"`
	OvervaluedCount  int `json:"overvalued_count"`

	Recommendations []string `json:"recommendations"`
}

// GenerateInsights combines statistics, scoring and neighborhood
// rankings into headline facts and fixed-template recommendations.
func (m *MarketAnalyzer) GenerateInsights(set listing.ListingSet) Insights {
	insights := Insights{Recommendations: []string{}}
	if len(set) == 0 {
		return insights
	}

	insights.TotalListings = len(set)

	distribution := m.stats.PriceDistribution(set)
	insights.BudgetRangeLow = distribution.Percentiles[25]
	insights.BudgetRangeHigh = distribution.Percentiles[75]

	excellent, good := 0, 0
	for _, l := range m.value.Score(set) {
		switch {
		case l.Category == listing.CategoryExcellentDeal:
			excellent++
		case l.Category == listing.CategoryGoodDeal:
			good++
		case l.ValueScore > m.cfg.AboveMarketThreshold:
			insights.OvervaluedCount++
		}
	}
	insights.UndervaluedCount = excellent + good

	rankings := m.AnalyzeNeighborhoods(set)
	if len(rankings) > 0 {
		cheapest, dearest := rankings[0], rankings[0]
		for _, r := range rankings[1:] {
			if r.MeanPrice < cheapest.MeanPrice {
				cheapest = r
			}
			if r.MeanPrice > dearest.MeanPrice {
				dearest = r
			}
		}

		insights.MostAffordable = cheapest.Neighborhood
		insights.MostAffordablePrice = cheapest.MeanPrice
		insights.MostExpensive = dearest.Neighborhood
		insights.MostExpensivePrice = dearest.MeanPrice
		insights.BestValue = rankings[0].Neighborhood
	}

	insights.Recommendations = m.recommendations(insights)

	return insights
}

func (m *MarketAnalyzer) recommendations(insights Insights) []string {
	recommendations := []string{}

	if insights.TotalListings >= 10 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Based on %d listings, consider a budget range of %s - %s for the middle 50%% of the market.",
			insights.TotalListings,
			format.Currency(insights.BudgetRangeLow, 1),
			format.Currency(insights.BudgetRangeHigh, 1),
		))
	}

	if insights.UndervaluedCount > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Found %d undervalued listings priced below the market curve.",
			insights.UndervaluedCount,
		))
	}

	if insights.MostAffordable != "" {
		recommendations = append(recommendations, fmt.Sprintf(
			"Most affordable area: %s (avg %s).",
			insights.MostAffordable,
			format.Currency(insights.MostAffordablePrice, 1),
		))

		if insights.BestValue != insights.MostAffordable {
			recommendations = append(recommendations, fmt.Sprintf(
				"Best value considering size efficiency: %s.",
				insights.BestValue,
			))
		}
	}

	return recommendations
}
