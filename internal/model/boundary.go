package model

import "github.com/twpayne/go-geom"

// Polygon is one shell ring plus the hole rings it encloses.
type Polygon struct {
	Shell *geom.LinearRing
	Holes []*geom.LinearRing
}

// Boundary is one record from a boundary shapefile: a geographic code plus
// its polygons. Holes are attached to their enclosing shell at load time so
// a hole in one polygon cannot mask a point inside another. Read-only after
// loading.
type Boundary struct {
	Code     string
	Name     string
	Polygons []Polygon
}

// Bounds returns the bounding box covering every shell ring.
func (b *Boundary) Bounds() *geom.Bounds {
	bounds := geom.NewBounds(geom.XY)
	for _, p := range b.Polygons {
		bounds.Extend(p.Shell)
	}
	return bounds
}
