package analysis

import (
	"testing"

	"github.com/avivro/yad2analyzer-go/internal/listing"
)

func TestFilterOptionsEmptyDefaults(t *testing.T) {
	engine := NewPropertyFilterEngine(DefaultEngineConfig())

	opts := engine.FilterOptions(nil)

	if opts.Price.Min != 0 || opts.Price.Max != 5_000_000 {
		t.Fatalf("default price range got [%v, %v]", opts.Price.Min, opts.Price.Max)
	}
	if got := opts.Price.Marks[len(opts.Price.Marks)-1].Label; got != "₪5.0M" {
		t.Fatalf("default price max mark got %q", got)
	}
	if opts.Size.Max != 200 || opts.Rooms.Max != 10 || opts.Floor.Max != 40 {
		t.Fatalf("default ranges got size=%v rooms=%v floor=%v", opts.Size.Max, opts.Rooms.Max, opts.Floor.Max)
	}
	if len(opts.Neighborhoods) != 1 || opts.Neighborhoods[0].Value != "none" {
		t.Fatalf("default neighborhoods got %v", opts.Neighborhoods)
	}
	if len(opts.ExcludeNeighborhoods) != 0 {
		t.Fatalf("default exclude options got %v", opts.ExcludeNeighborhoods)
	}
}

func TestFilterOptionsFromSet(t *testing.T) {
	engine := NewPropertyFilterEngine(DefaultEngineConfig())

	opts := engine.FilterOptions(testSet())

	if opts.Price.Min != 1_000_000 || opts.Price.Max != 2_200_000 {
		t.Fatalf("price range got [%v, %v]", opts.Price.Min, opts.Price.Max)
	}
	if opts.Size.Min != 80 || opts.Size.Max != 150 {
		t.Fatalf("size range got [%v, %v]", opts.Size.Min, opts.Size.Max)
	}

	// Rooms=0 listings must not drag the room range down to zero.
	if opts.Rooms.Min != 3 || opts.Rooms.Max != 5 {
		t.Fatalf("rooms range got [%v, %v]", opts.Rooms.Min, opts.Rooms.Max)
	}

	if got := opts.Neighborhoods[0]; got.Value != AllOption {
		t.Fatalf("first neighborhood option got %v, want the %q sentinel", got, AllOption)
	}

	// Sorted unique values after the sentinel.
	wantNeighborhoods := []string{"Carmel", "Denya", "Sharon"}
	for i, want := range wantNeighborhoods {
		if got := opts.Neighborhoods[i+1].Value; got != want {
			t.Fatalf("neighborhood option %d got %q, want %q", i+1, got, want)
		}
	}

	if len(opts.ExcludeNeighborhoods) != 3 {
		t.Fatalf("exclude options got %d, want 3", len(opts.ExcludeNeighborhoods))
	}
	if got := opts.AdTypes[0].Label; got != "All" {
		t.Fatalf("first ad type option got %q", got)
	}
	if len(opts.Price.Marks) != 3 {
		t.Fatalf("price marks got %d, want 3", len(opts.Price.Marks))
	}
}

func TestFilterOptionsNoFloors(t *testing.T) {
	engine := NewPropertyFilterEngine(DefaultEngineConfig())

	set := listing.ListingSet{
		{Price: 1_000_000, Size: 80, PriceDensity: 12_500},
		{Price: 1_200_000, Size: 90, PriceDensity: 13_333},
	}

	opts := engine.FilterOptions(set)
	if opts.Floor.Min != 0 || opts.Floor.Max != 40 {
		t.Fatalf("floor range without data got [%v, %v], want default [0, 40]", opts.Floor.Min, opts.Floor.Max)
	}
}
