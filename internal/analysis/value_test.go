package analysis

import (
	"math"
	"testing"

	"github.com/avivro/yad2analyzer-go/internal/listing"
)

// sameSizeSet makes every listing the same size, which pins the
// predicted price to the mean price and makes value scores exact.
func sameSizeSet(prices ...float64) listing.ListingSet {
	set := make(listing.ListingSet, len(prices))
	for i, p := range prices {
		set[i] = listing.Listing{Price: p, Size: 100, PriceDensity: p / 100}
	}
	return set
}

func TestCategorizeThresholds(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	tests := []struct {
		score float64
		want  listing.ValueCategory
	}{
		{-30, listing.CategoryExcellentDeal},
		{-15, listing.CategoryExcellentDeal},
		{-14.99, listing.CategoryGoodDeal},
		{-5, listing.CategoryGoodDeal},
		{-4.99, listing.CategoryFairPrice},
		{0, listing.CategoryFairPrice},
		{5, listing.CategoryFairPrice},
		{5.01, listing.CategoryAboveMarket},
		{15, listing.CategoryAboveMarket},
		{15.01, listing.CategoryOverpriced},
		{40, listing.CategoryOverpriced},
	}

	for _, tt := range tests {
		if got := analyzer.Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestScoreSmallSetFallback(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	scored := analyzer.Score(sameSizeSet(1_000_000, 2_000_000))

	for _, l := range scored {
		if l.ValueScore != 0 || l.Category != listing.CategoryUnknown {
			t.Fatalf("small set fallback got score=%v category=%v", l.ValueScore, l.Category)
		}
		if l.PredictedPrice != l.Price || l.Savings != 0 {
			t.Fatalf("small set fallback got predicted=%v savings=%v", l.PredictedPrice, l.Savings)
		}
	}
}

func TestScoreKnownScores(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	// Mean price 1M: scores -20, 0, +20, 0.
	scored := analyzer.Score(sameSizeSet(800_000, 1_000_000, 1_200_000, 1_000_000))

	wantScores := []float64{-20, 0, 20, 0}
	wantCategories := []listing.ValueCategory{
		listing.CategoryExcellentDeal,
		listing.CategoryFairPrice,
		listing.CategoryOverpriced,
		listing.CategoryFairPrice,
	}

	for i, l := range scored {
		if math.Abs(l.ValueScore-wantScores[i]) > 1e-9 {
			t.Errorf("listing %d score = %v, want %v", i, l.ValueScore, wantScores[i])
		}
		if l.Category != wantCategories[i] {
			t.Errorf("listing %d category = %v, want %v", i, l.Category, wantCategories[i])
		}
		if math.Abs(l.Savings-(l.PredictedPrice-l.Price)) > 1e-9 {
			t.Errorf("listing %d savings = %v, want predicted-price", i, l.Savings)
		}
	}
}

func TestScoreIdempotent(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	set := sameSizeSet(800_000, 1_000_000, 1_200_000, 950_000, 1_050_000)

	once := analyzer.Score(set)
	twice := analyzer.Score(once)

	for i := range once {
		if once[i].ValueScore != twice[i].ValueScore || once[i].Category != twice[i].Category {
			t.Fatalf("scoring is not idempotent at %d: %v/%v vs %v/%v",
				i, once[i].ValueScore, once[i].Category, twice[i].ValueScore, twice[i].Category)
		}
	}
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	set := sameSizeSet(800_000, 1_000_000, 1_200_000)
	analyzer.Score(set)

	for i, l := range set {
		if l.PredictedPrice != 0 || l.Category != listing.CategoryUnknown {
			t.Fatalf("input listing %d was mutated: %+v", i, l)
		}
	}
}

func TestScorePicksTheDiscountedListing(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	set := make(listing.ListingSet, 0, 8)
	for i := 0; i < 8; i++ {
		size := float64(60 + 10*i)
		price := 15_000 * size
		if i == 3 {
			price *= 0.7
		}
		set = append(set, listing.Listing{Price: price, Size: size, PriceDensity: price / size})
	}

	scored := analyzer.Score(set)

	lowest := 0
	for i := range scored {
		if scored[i].ValueScore < scored[lowest].ValueScore {
			lowest = i
		}
	}

	if lowest != 3 {
		t.Fatalf("most negative score at %d, want the discounted listing at 3", lowest)
	}
	if scored[3].ValueScore >= 0 {
		t.Fatalf("discounted listing score = %v, want negative", scored[3].ValueScore)
	}
}

func TestBestDealsOrderingAndTruncation(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	// Mean price 1M: scores -30, -6, 0, +6, +30.
	set := sameSizeSet(700_000, 940_000, 1_000_000, 1_060_000, 1_300_000)

	deals := analyzer.BestDeals(set, 10)
	if len(deals) != 2 {
		t.Fatalf("got %d deals, want 2", len(deals))
	}
	if deals[0].Price != 700_000 || deals[1].Price != 940_000 {
		t.Fatalf("deals out of order: %v, %v", deals[0].Price, deals[1].Price)
	}
	for _, d := range deals {
		if d.ValueScore > DefaultEngineConfig().GoodDealThreshold {
			t.Fatalf("deal with score %v above the good-deal threshold", d.ValueScore)
		}
	}

	if truncated := analyzer.BestDeals(set, 1); len(truncated) != 1 || truncated[0].Price != 700_000 {
		t.Fatalf("truncation failed: %v", truncated)
	}
}

func TestBestDealsStableTies(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	set := sameSizeSet(900_000, 900_000, 1_000_000, 1_100_000, 1_100_000)
	set[0].URL = "first"
	set[1].URL = "second"

	deals := analyzer.BestDeals(set, 10)
	if len(deals) != 2 {
		t.Fatalf("got %d deals, want 2", len(deals))
	}
	if deals[0].URL != "first" || deals[1].URL != "second" {
		t.Fatalf("tie order not stable: %q, %q", deals[0].URL, deals[1].URL)
	}
}

func TestValueDistributionAllCategoriesPresent(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	categories := []listing.ValueCategory{
		listing.CategoryExcellentDeal,
		listing.CategoryGoodDeal,
		listing.CategoryFairPrice,
		listing.CategoryAboveMarket,
		listing.CategoryOverpriced,
	}

	// Below the scoring minimum: all categories present with zero counts.
	empty := analyzer.ValueDistribution(sameSizeSet(1_000_000))
	for _, c := range categories {
		if count, ok := empty[c]; !ok || count != 0 {
			t.Fatalf("category %v missing or nonzero in small-set distribution", c)
		}
	}

	// Scores -30, -10, 0, +10, +30 around the 1M mean.
	dist := analyzer.ValueDistribution(sameSizeSet(700_000, 900_000, 1_000_000, 1_100_000, 1_300_000))

	total := 0
	for _, c := range categories {
		total += dist[c]
	}
	if total != 5 {
		t.Fatalf("distribution counts sum to %d, want 5", total)
	}
	if dist[listing.CategoryExcellentDeal] != 1 || dist[listing.CategoryOverpriced] != 1 {
		t.Fatalf("unexpected tail counts: %v", dist)
	}
	if dist[listing.CategoryGoodDeal] != 1 || dist[listing.CategoryAboveMarket] != 1 || dist[listing.CategoryFairPrice] != 1 {
		t.Fatalf("unexpected middle counts: %v", dist)
	}
}

func TestMarketMedians(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	if got := analyzer.MarketMedians(nil); got != (MarketMedians{}) {
		t.Fatalf("empty set medians got %+v, want zero values", got)
	}

	set := listing.ListingSet{
		{Price: 1_000_000, Size: 80, PriceDensity: 12_500},
		{Price: 1_500_000, Size: 100, PriceDensity: 15_000},
		{Price: 2_000_000, Size: 120, PriceDensity: 16_666},
		{Price: 3_000_000, Size: 150, PriceDensity: 20_000},
	}

	got := analyzer.MarketMedians(set)
	want := MarketMedians{Price: 1_500_000, Size: 100, PriceDensity: 15_000}
	if got != want {
		t.Fatalf("medians got %+v, want %+v", got, want)
	}
}

func TestTrendStatisticsInsufficientData(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	stats := analyzer.TrendStatistics(sameSizeSet(1_000_000, 1_100_000))
	if stats.HasTrend {
		t.Fatal("expected HasTrend=false for two listings")
	}
	if stats.Direction != "Insufficient data" {
		t.Fatalf("direction got %q", stats.Direction)
	}
}

func TestTrendStatisticsPositiveSlope(t *testing.T) {
	analyzer := NewValueAnalyzer(DefaultEngineConfig())

	set := make(listing.ListingSet, 0, 6)
	for i := 0; i < 6; i++ {
		size := float64(50 + 20*i)
		set = append(set, listing.Listing{Price: 12_000 * size, Size: size, PriceDensity: 12_000})
	}

	stats := analyzer.TrendStatistics(set)
	if !stats.HasTrend {
		t.Fatal("expected HasTrend=true")
	}
	if stats.Slope <= 0 {
		t.Fatalf("slope = %v, want positive", stats.Slope)
	}
	if stats.RSquared < 0.99 {
		t.Fatalf("r² = %v, want near 1 for collinear data", stats.RSquared)
	}
	if math.Abs(stats.Correlation-1) > 1e-9 {
		t.Fatalf("correlation = %v, want 1", stats.Correlation)
	}
}
