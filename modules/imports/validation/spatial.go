package validation

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

// SpatialValidator is level 5: building coordinates must fall inside the
// configured survey region and footprints must be structurally sound
// polygons. Region bounds come from configuration, not from the container.
type SpatialValidator struct {
	bound orb.Bound
}

func NewSpatialValidator(opts configuration.SpatialOptions) SpatialValidator {
	return SpatialValidator{
		bound: orb.Bound{
			Min: orb.Point{opts.MinLongitude, opts.MinLatitude},
			Max: orb.Point{opts.MaxLongitude, opts.MaxLatitude},
		},
	}
}

func (SpatialValidator) Level() int   { return 5 }
func (SpatialValidator) Name() string { return "spatial" }

func (v SpatialValidator) Validate(_ context.Context, snap *Snapshot) (int, error) {
	checked := 0
	for _, b := range snap.Buildings {
		if !eligible(&b.Record) {
			continue
		}
		checked++
		v.building(b)
	}
	return checked, nil
}

func (v SpatialValidator) building(b *staging.Building) {
	if b.Latitude != nil && b.Longitude != nil {
		p := orb.Point{*b.Longitude, *b.Latitude}
		if !v.bound.Contains(p) {
			b.AddError(CodeOutOfBounds, "latitude",
				fmt.Sprintf("point (%f, %f) lies outside the survey region", *b.Latitude, *b.Longitude))
		}
	}
	if b.FootprintWKT == "" {
		return
	}
	geom, err := wkt.Unmarshal(b.FootprintWKT)
	if err != nil {
		b.AddError(CodeBadGeometry, "footprint_wkt", fmt.Sprintf("unparseable WKT: %v", err))
		return
	}
	poly, ok := geom.(orb.Polygon)
	if !ok {
		b.AddError(CodeBadGeometry, "footprint_wkt",
			fmt.Sprintf("footprint must be a polygon, got %s", geom.GeoJSONType()))
		return
	}
	if len(poly) == 0 {
		b.AddError(CodeBadGeometry, "footprint_wkt", "footprint polygon has no rings")
		return
	}
	outside := false
	for i, ring := range poly {
		if len(ring) < 4 {
			b.AddError(CodeBadGeometry, "footprint_wkt",
				fmt.Sprintf("ring %d has %d points, a closed ring needs at least 4", i, len(ring)))
			continue
		}
		if !ring.Closed() {
			b.AddError(CodeBadGeometry, "footprint_wkt", fmt.Sprintf("ring %d is not closed", i))
		}
		for _, p := range ring {
			if !v.bound.Contains(p) {
				outside = true
			}
		}
	}
	if math.Abs(planar.Area(poly)) == 0 {
		b.AddError(CodeBadGeometry, "footprint_wkt", "footprint polygon has zero area")
	}
	if outside {
		b.AddError(CodeOutOfBounds, "footprint_wkt", "footprint extends outside the survey region")
	}
}
