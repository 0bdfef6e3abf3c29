package analysis

import (
	"math"
	"sort"

	"github.com/avivro/yad2analyzer-go/internal/listing"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minListingsForOutliers is the smallest sample a spread can be defined
// on; below it every outlier flag is false.
const minListingsForOutliers = 4

// Outlier detection method names.
const (
	MethodIQR            = "iqr"
	MethodZScore         = "zscore"
	MethodModifiedZScore = "modified_zscore"
)

// Fields accepted by DetectOutliers.
const (
	FieldPrice        = "price"
	FieldSize         = "size"
	FieldPriceDensity = "price_per_sqm"
	FieldRooms        = "rooms"
)

// listingCellCount is the number of cells per listing counted by the
// completeness score: price, size, price density, rooms, neighborhood,
// condition, ad type, lat, lng, floor, url.
const listingCellCount = 11

// StatisticalCalculator computes descriptive statistics and outlier
// flags over a listing set. It depends on no other component.
type StatisticalCalculator struct {
	cfg EngineConfig
}

func NewStatisticalCalculator(cfg EngineConfig) *StatisticalCalculator {
	return &StatisticalCalculator{cfg: cfg}
}

// SummaryStatistics is the descriptive summary of a listing set.
type SummaryStatistics struct {
	Count int `json:"count"`

	PriceMean   float64 `json:"price_mean"`
	PriceMedian float64 `json:"price_median"`
	PriceMin    float64 `json:"price_min"`
	PriceMax    float64 `json:"price_max"`
	PriceStdDev float64 `json:"price_stddev"`

	PriceDensityMean   float64 `json:"price_density_mean"`
	PriceDensityMedian float64 `json:"price_density_median"`

	SizeMean   float64 `json:"size_mean"`
	SizeMedian float64 `json:"size_median"`
	SizeMin    float64 `json:"size_min"`
	SizeMax    float64 `json:"size_max"`

	RoomsMean   float64 `json:"rooms_mean"`
	RoomsMedian float64 `json:"rooms_median"`

	NeighborhoodCount  int     `json:"neighborhood_count"`
	CoordinateCoverage float64 `json:"coordinate_coverage"`

	// Completeness is the percentage of non-missing cells across all
	// fields; CriticalComplete the percentage of listings with all of
	// price, size and price density present.
	Completeness     float64 `json:"completeness"`
	CriticalComplete float64 `json:"critical_complete"`
}

// Summarize never fails on an empty set; it returns the zero summary.
func (c *StatisticalCalculator) Summarize(set listing.ListingSet) SummaryStatistics {
	if len(set) == 0 {
		return SummaryStatistics{}
	}

	prices := set.Prices()
	sizes := set.Sizes()
	densities := set.PriceDensities()

	priceMin, priceMax := minMax(prices)
	sizeMin, sizeMax := minMax(sizes)

	summary := SummaryStatistics{
		Count:              len(set),
		PriceMean:          stat.Mean(prices, nil),
		PriceMedian:        median(prices),
		PriceMin:           priceMin,
		PriceMax:           priceMax,
		PriceDensityMean:   stat.Mean(densities, nil),
		PriceDensityMedian: median(densities),
		SizeMean:           stat.Mean(sizes, nil),
		SizeMedian:         median(sizes),
		SizeMin:            sizeMin,
		SizeMax:            sizeMax,
	}

	if len(set) > 1 {
		summary.PriceStdDev = stat.StdDev(prices, nil)
	}

	rooms := make([]float64, 0, len(set))
	neighborhoods := make(map[string]struct{})
	withCoordinates := 0
	presentCells := 0

	for _, l := range set {
		if l.Rooms > 0 {
			rooms = append(rooms, l.Rooms)
		}
		if l.Neighborhood != "" {
			neighborhoods[l.Neighborhood] = struct{}{}
		}
		if l.HasCoordinates() {
			withCoordinates++
		}
		presentCells += countPresentCells(l)
	}

	if len(rooms) > 0 {
		summary.RoomsMean = stat.Mean(rooms, nil)
		summary.RoomsMedian = median(rooms)
	}

	summary.NeighborhoodCount = len(neighborhoods)
	summary.CoordinateCoverage = float64(withCoordinates) / float64(len(set))

	totalCells := len(set) * listingCellCount
	summary.Completeness = float64(presentCells) / float64(totalCells) * 100

	// Ingestion already rejects listings missing critical fields, so
	// this stays at 100 for any set built through it.
	critical := 0
	for _, l := range set {
		if l.Price > 0 && l.Size > 0 && l.PriceDensity > 0 {
			critical++
		}
	}
	summary.CriticalComplete = float64(critical) / float64(len(set)) * 100

	return summary
}

func countPresentCells(l listing.Listing) int {
	cells := 0
	if l.Price > 0 {
		cells++
	}
	if l.Size > 0 {
		cells++
	}
	if l.PriceDensity > 0 {
		cells++
	}
	if l.Rooms > 0 {
		cells++
	}
	if l.Neighborhood != "" {
		cells++
	}
	if l.Condition != "" {
		cells++
	}
	if l.AdType != "" {
		cells++
	}
	if l.Latitude != nil {
		cells++
	}
	if l.Longitude != nil {
		cells++
	}
	if l.Floor != nil {
		cells++
	}
	if l.URL != "" {
		cells++
	}
	return cells
}

// DetectOutliers flags outliers in the named field with the named
// method, one flag per listing in input order. Unknown fields and
// methods, and sets with fewer than 4 usable values, produce all-false
// flags rather than an error.
func (c *StatisticalCalculator) DetectOutliers(set listing.ListingSet, field, method string) []bool {
	flags := make([]bool, len(set))

	indices, values := fieldValues(set, field)
	if len(values) < minListingsForOutliers {
		return flags
	}

	switch method {
	case MethodIQR:
		sorted := sortedCopy(values)
		q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr

		for i, v := range values {
			if v < lower || v > upper {
				flags[indices[i]] = true
			}
		}

	case MethodZScore:
		mean := stat.Mean(values, nil)
		stddev := stat.StdDev(values, nil)
		if stddev == 0 {
			return flags
		}

		for i, v := range values {
			if math.Abs((v-mean)/stddev) > c.cfg.ZScoreThreshold {
				flags[indices[i]] = true
			}
		}

	case MethodModifiedZScore:
		med := median(values)

		deviations := make([]float64, len(values))
		for i, v := range values {
			deviations[i] = math.Abs(v - med)
		}
		mad := median(deviations)
		if mad == 0 {
			return flags
		}

		for i, v := range values {
			if math.Abs(0.6745*(v-med)/mad) > c.cfg.ModifiedZThreshold {
				flags[indices[i]] = true
			}
		}
	}

	return flags
}

// fieldValues extracts the usable values of a field along with the
// listing index each came from. Unknown fields yield no values.
func fieldValues(set listing.ListingSet, field string) ([]int, []float64) {
	indices := make([]int, 0, len(set))
	values := make([]float64, 0, len(set))

	for i, l := range set {
		var v float64
		switch field {
		case FieldPrice:
			v = l.Price
		case FieldSize:
			v = l.Size
		case FieldPriceDensity:
			v = l.PriceDensity
		case FieldRooms:
			v = l.Rooms
		default:
			return nil, nil
		}

		if v <= 0 {
			continue
		}

		indices = append(indices, i)
		values = append(values, v)
	}

	return indices, values
}

// DistributionStats describes the shape of the price distribution.
type DistributionStats struct {
	Percentiles            map[int]float64 `json:"percentiles"`
	Skewness               float64         `json:"skewness"`
	Kurtosis               float64         `json:"kurtosis"`
	CoefficientOfVariation float64         `json:"coefficient_of_variation"`
	JarqueBera             float64         `json:"jarque_bera"`
	Normal                 bool            `json:"is_normal_distribution"`
}

var distributionPercentiles = []int{10, 25, 50, 75, 90, 95, 99}

// PriceDistribution computes price percentiles and shape moments over
// the full series, plus a Jarque-Bera normality indicator over at most
// the first MaxNormalitySamples prices. Without a single sample all
// fields default to zero/false.
func (c *StatisticalCalculator) PriceDistribution(set listing.ListingSet) DistributionStats {
	stats := DistributionStats{Percentiles: make(map[int]float64, len(distributionPercentiles))}
	for _, p := range distributionPercentiles {
		stats.Percentiles[p] = 0
	}

	if len(set) == 0 {
		return stats
	}

	prices := set.Prices()

	sorted := sortedCopy(prices)
	for _, p := range distributionPercentiles {
		stats.Percentiles[p] = stat.Quantile(float64(p)/100, stat.Empirical, sorted, nil)
	}

	if mean := stat.Mean(prices, nil); mean != 0 && len(prices) > 1 {
		stats.CoefficientOfVariation = stat.StdDev(prices, nil) / mean
	}

	skew, kurt, ok := shapeMoments(prices)
	if !ok {
		return stats
	}

	stats.Skewness = skew
	stats.Kurtosis = kurt

	// Only the normality indicator runs on a capped sample; the
	// percentiles and moments above always cover the full series.
	sample := prices
	if len(sample) > c.cfg.MaxNormalitySamples {
		sample = sample[:c.cfg.MaxNormalitySamples]
		if skew, kurt, ok = shapeMoments(sample); !ok {
			return stats
		}
	}

	n := float64(len(sample))
	jb := n / 6 * (skew*skew + kurt*kurt/4)
	stats.JarqueBera = jb

	chi2 := distuv.ChiSquared{K: 2}
	stats.Normal = chi2.Survival(jb) > 0.05

	return stats
}

// shapeMoments computes population skewness and excess kurtosis. Both
// need at least two distinct values to be defined.
func shapeMoments(values []float64) (skew, kurtosis float64, ok bool) {
	if len(values) < 2 {
		return 0, 0, false
	}

	m2 := stat.Moment(2, values, nil)
	if m2 == 0 {
		return 0, 0, false
	}

	skew = stat.Moment(3, values, nil) / math.Pow(m2, 1.5)
	kurtosis = stat.Moment(4, values, nil)/(m2*m2) - 3
	if math.IsNaN(skew) || math.IsNaN(kurtosis) {
		return 0, 0, false
	}

	return skew, kurtosis, true
}

func median(values []float64) float64 {
	return stat.Quantile(0.5, stat.Empirical, sortedCopy(values), nil)
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
