package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TrendAnalyzer fits a smooth expected-price curve over (size, price)
// pairs using LOWESS: for each point, a tricube-weighted linear
// regression over the fraction of nearest neighbors covered by the
// configured bandwidth. It holds no mutable state and is safe to use
// from multiple goroutines.
type TrendAnalyzer struct {
	frac float64
}

func NewTrendAnalyzer(cfg EngineConfig) *TrendAnalyzer {
	return &TrendAnalyzer{frac: cfg.LowessFraction}
}

// FitExpectedPrice returns one expected price per input point, in input
// order. With fewer than 3 points, or on any numerical failure, the
// actual prices are echoed back and ok is false.
func (t *TrendAnalyzer) FitExpectedPrice(sizes, prices []float64) (predicted []float64, ok bool) {
	n := len(sizes)
	if n < 3 || len(prices) != n {
		return echo(prices), false
	}

	// The smoother runs over size-sorted points; results are scattered
	// back so callers never observe the reordering.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sizes[order[a]] < sizes[order[b]]
	})

	xs := make([]float64, n)
	ys := make([]float64, n)
	for rank, idx := range order {
		xs[rank] = sizes[idx]
		ys[rank] = prices[idx]
	}

	window := int(t.frac * float64(n))
	if window < 2 {
		window = 2
	}
	if window > n {
		window = n
	}

	fitted := make([]float64, n)
	weights := make([]float64, n)

	for i := 0; i < n; i++ {
		bandwidth := neighborBandwidth(xs, xs[i], window)

		if bandwidth == 0 {
			// Every neighbor shares the query x; a line is undefined.
			fitted[i] = meanAtX(xs, ys, xs[i])
			continue
		}

		for j := 0; j < n; j++ {
			weights[j] = tricube(math.Abs(xs[j]-xs[i]) / bandwidth)
		}

		alpha, beta := stat.LinearRegression(xs, ys, weights, false)
		value := alpha + beta*xs[i]

		if math.IsNaN(value) || math.IsInf(value, 0) {
			value = stat.Mean(ys, weights)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return echo(prices), false
		}

		fitted[i] = value
	}

	predicted = make([]float64, n)
	for rank, idx := range order {
		predicted[idx] = fitted[rank]
	}

	return predicted, true
}

// neighborBandwidth is the distance from x to its window-th nearest
// neighbor (the query point itself included).
func neighborBandwidth(xs []float64, x float64, window int) float64 {
	distances := make([]float64, len(xs))
	for i, v := range xs {
		distances[i] = math.Abs(v - x)
	}
	sort.Float64s(distances)

	return distances[window-1]
}

// meanAtX averages the y values of points sharing the query x.
func meanAtX(xs, ys []float64, x float64) float64 {
	var sum float64
	var count int
	for i, v := range xs {
		if v == x {
			sum += ys[i]
			count++
		}
	}
	return sum / float64(count)
}

func tricube(u float64) float64 {
	if u >= 1 {
		return 0
	}
	c := 1 - u*u*u
	return c * c * c
}

func echo(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
