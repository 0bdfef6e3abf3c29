// Package geo restricts listing sets to a geographic area. The engine
// itself stays geometry-free; this runs before filtering.
package geo

import (
	"fmt"

	"github.com/avivro/yad2analyzer-go/internal/listing"
	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
)

func geosBoundsToOrbBound(bounds *geos.Bounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{bounds.MinX, bounds.MinY},
		Max: orb.Point{bounds.MaxX, bounds.MaxY},
	}
}

// FilterWithinGeoJSON keeps the listings whose coordinates fall inside
// the GeoJSON polygon. Listings without coordinates are dropped: an
// area filter cannot place them.
func FilterWithinGeoJSON(geojson string, set listing.ListingSet) (listing.ListingSet, error) {
	geom, err := geos.NewGeomFromGeoJSON(geojson)
	if err != nil {
		return nil, fmt.Errorf("can't parse geojson: %w", err)
	}

	// Cheap bounding-box pre-check before the exact containment test.
	bound := geosBoundsToOrbBound(geom.Bounds())

	out := make(listing.ListingSet, 0, len(set))
	for _, l := range set {
		if !l.HasCoordinates() {
			continue
		}

		point := orb.Point{*l.Longitude, *l.Latitude}
		if !bound.Contains(point) {
			continue
		}

		if geom.Contains(geos.NewPoint([]float64{point.X(), point.Y()})) {
			out = append(out, l)
		}
	}

	return out, nil
}
