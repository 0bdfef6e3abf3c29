package analysis

import (
	"log"

	"github.com/avivro/yad2analyzer-go/internal/listing"
)

// AllOption is the wildcard value for categorical filters.
const AllOption = "all"

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int
	Max int
}

// FilterSpecification names the optional predicates applied to a listing
// set. A nil/empty field means "no constraint".
type FilterSpecification struct {
	PriceRange           *Range
	SizeRange            *Range
	RoomRange            *Range
	FloorRange           *IntRange
	Neighborhood         string
	ExcludeNeighborhoods []string
	Condition            string
	AdType               string
}

// PropertyFilterEngine applies filter specifications and derives filter
// option metadata from listing sets.
type PropertyFilterEngine struct {
	cfg EngineConfig
}

func NewPropertyFilterEngine(cfg EngineConfig) *PropertyFilterEngine {
	return &PropertyFilterEngine{cfg: cfg}
}

// Apply filters the set with every predicate of the specification. The
// stage order below is fixed; it only affects the per-stage survivor
// counts in the log, the final result is the same for any order. An
// empty result is a valid terminal state, not an error.
func (e *PropertyFilterEngine) Apply(set listing.ListingSet, spec FilterSpecification) listing.ListingSet {
	out := set.Clone()

	log.Printf("starting filter process with %d listings", len(out))

	if spec.PriceRange != nil {
		out = filterStage(out, "price", func(l listing.Listing) bool {
			return l.Price >= spec.PriceRange.Min && l.Price <= spec.PriceRange.Max
		})
	}

	if spec.SizeRange != nil {
		out = filterStage(out, "size", func(l listing.Listing) bool {
			return l.Size >= spec.SizeRange.Min && l.Size <= spec.SizeRange.Max
		})
	}

	if spec.Neighborhood != "" && spec.Neighborhood != AllOption {
		out = filterStage(out, "neighborhood", func(l listing.Listing) bool {
			return l.Neighborhood == spec.Neighborhood
		})
	}

	if len(spec.ExcludeNeighborhoods) > 0 {
		excluded := make(map[string]struct{}, len(spec.ExcludeNeighborhoods))
		for _, n := range spec.ExcludeNeighborhoods {
			excluded[n] = struct{}{}
		}

		out = filterStage(out, "exclude neighborhoods", func(l listing.Listing) bool {
			_, ok := excluded[l.Neighborhood]
			return !ok
		})
	}

	if spec.RoomRange != nil {
		// Listings with unknown room count never satisfy a room range.
		out = filterStage(out, "rooms", func(l listing.Listing) bool {
			return l.Rooms > 0 && l.Rooms >= spec.RoomRange.Min && l.Rooms <= spec.RoomRange.Max
		})
	}

	if spec.FloorRange != nil {
		out = filterStage(out, "floor", func(l listing.Listing) bool {
			return l.Floor != nil && *l.Floor >= spec.FloorRange.Min && *l.Floor <= spec.FloorRange.Max
		})
	}

	if spec.Condition != "" && spec.Condition != AllOption {
		out = filterStage(out, "condition", func(l listing.Listing) bool {
			return l.Condition == spec.Condition
		})
	}

	if spec.AdType != "" && spec.AdType != AllOption {
		out = filterStage(out, "ad type", func(l listing.Listing) bool {
			return l.AdType == spec.AdType
		})
	}

	log.Printf("filter process complete: %d listings remaining", len(out))

	return out
}

func filterStage(set listing.ListingSet, name string, keep func(listing.Listing) bool) listing.ListingSet {
	out := make(listing.ListingSet, 0, len(set))
	for _, l := range set {
		if keep(l) {
			out = append(out, l)
		}
	}

	log.Printf("%s filter: %d -> %d listings", name, len(set), len(out))

	return out
}
