package analysis

import (
	"sort"

	"github.com/avivro/yad2analyzer-go/internal/format"
	"github.com/avivro/yad2analyzer-go/internal/listing"
	"github.com/avivro/yad2analyzer-go/internal/utils"
)

// Defaults used to keep filter controls populated when the current set
// is empty.
const (
	defaultPriceMax = 5_000_000
	defaultSizeMax  = 200
	defaultRoomsMin = 1
	defaultRoomsMax = 10
	defaultFloorMax = 40
)

const marksPerRange = 3

// RangeOptions describes one numeric filter control.
type RangeOptions struct {
	Min   float64       `json:"min"`
	Max   float64       `json:"max"`
	Marks []format.Mark `json:"marks"`
}

// Option is one selectable value of a categorical filter control.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FilterOptions is the filter-control metadata derived from a listing set.
type FilterOptions struct {
	Price                RangeOptions `json:"price"`
	Size                 RangeOptions `json:"size"`
	Rooms                RangeOptions `json:"rooms"`
	Floor                RangeOptions `json:"floor"`
	Neighborhoods        []Option     `json:"neighborhoods"`
	ExcludeNeighborhoods []Option     `json:"exclude_neighborhoods"`
	Conditions           []Option     `json:"conditions"`
	AdTypes              []Option     `json:"ad_types"`
}

// FilterOptions computes control metadata from the current, possibly
// filtered, set. An empty set yields the documented defaults instead of
// failing so the caller's controls stay populated.
func (e *PropertyFilterEngine) FilterOptions(set listing.ListingSet) FilterOptions {
	if len(set) == 0 {
		return emptyFilterOptions()
	}

	priceMin, priceMax := minMax(set.Prices())
	sizeMin, sizeMax := minMax(set.Sizes())

	opts := FilterOptions{
		Price: RangeOptions{
			Min:   priceMin,
			Max:   priceMax,
			Marks: format.PriceMarks(priceMin, priceMax, marksPerRange),
		},
		Size: RangeOptions{
			Min:   sizeMin,
			Max:   sizeMax,
			Marks: format.NumberMarks(sizeMin, sizeMax, marksPerRange, "m²"),
		},
		Rooms: roomsOptions(set),
		Floor: floorOptions(set),
	}

	neighborhoods := categoricalValues(set, func(l listing.Listing) string { return l.Neighborhood })
	conditions := categoricalValues(set, func(l listing.Listing) string { return l.Condition })
	adTypes := categoricalValues(set, func(l listing.Listing) string { return l.AdType })

	opts.Neighborhoods = withAllSentinel("All Neighborhoods", neighborhoods)
	opts.ExcludeNeighborhoods = plainOptions(neighborhoods)
	opts.Conditions = withAllSentinel("All Conditions", conditions)
	opts.AdTypes = withAllSentinel("All", adTypes)

	return opts
}

func roomsOptions(set listing.ListingSet) RangeOptions {
	rooms := make([]float64, 0, len(set))
	for _, l := range set {
		if l.Rooms > 0 {
			rooms = append(rooms, l.Rooms)
		}
	}

	if len(rooms) == 0 {
		return defaultRoomsOptions()
	}

	min, max := minMax(rooms)
	return RangeOptions{
		Min:   min,
		Max:   max,
		Marks: format.NumberMarks(min, max, 2, ""),
	}
}

func floorOptions(set listing.ListingSet) RangeOptions {
	floors := make([]float64, 0, len(set))
	for _, l := range set {
		if l.Floor != nil {
			floors = append(floors, float64(*l.Floor))
		}
	}

	if len(floors) == 0 {
		return defaultFloorOptions()
	}

	min, max := minMax(floors)
	return RangeOptions{
		Min:   min,
		Max:   max,
		Marks: format.NumberMarks(min, max, 2, ""),
	}
}

func categoricalValues(set listing.ListingSet, field func(listing.Listing) string) []string {
	values := make([]string, 0, len(set))
	for _, l := range set {
		if v := field(l); v != "" {
			values = append(values, v)
		}
	}

	values = utils.Unique(values)
	sort.Strings(values)

	return values
}

func withAllSentinel(allLabel string, values []string) []Option {
	options := make([]Option, 0, len(values)+1)
	options = append(options, Option{Label: allLabel, Value: AllOption})
	for _, v := range values {
		options = append(options, Option{Label: v, Value: v})
	}
	return options
}

func plainOptions(values []string) []Option {
	options := make([]Option, 0, len(values))
	for _, v := range values {
		options = append(options, Option{Label: v, Value: v})
	}
	return options
}

func emptyFilterOptions() FilterOptions {
	noData := []Option{{Label: "No data", Value: "none"}}

	return FilterOptions{
		Price: RangeOptions{
			Min:   0,
			Max:   defaultPriceMax,
			Marks: format.PriceMarks(0, defaultPriceMax, marksPerRange),
		},
		Size: RangeOptions{
			Min:   0,
			Max:   defaultSizeMax,
			Marks: format.NumberMarks(0, defaultSizeMax, marksPerRange, "m²"),
		},
		Rooms:                defaultRoomsOptions(),
		Floor:                defaultFloorOptions(),
		Neighborhoods:        noData,
		ExcludeNeighborhoods: []Option{},
		Conditions:           noData,
		AdTypes:              noData,
	}
}

func defaultRoomsOptions() RangeOptions {
	return RangeOptions{
		Min:   defaultRoomsMin,
		Max:   defaultRoomsMax,
		Marks: format.NumberMarks(defaultRoomsMin, defaultRoomsMax, 2, ""),
	}
}

func defaultFloorOptions() RangeOptions {
	return RangeOptions{
		Min:   0,
		Max:   defaultFloorMax,
		Marks: format.NumberMarks(0, defaultFloorMax, 2, ""),
	}
}

func minMax(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
