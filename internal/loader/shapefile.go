package loader

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/ascending-macs/mobility-cli/internal/model"
)

// LoadBoundaries reads polygon records from a boundary shapefile. Rings are
// classified by orientation (shapefile convention: outer rings clockwise,
// holes counter-clockwise) and each hole is attached to its enclosing
// shell. Records without the code field or without any shell ring are
// skipped and counted.
func LoadBoundaries(spec ShapeSpec) ([]model.Boundary, error) {
	reader, err := shp.Open(spec.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", spec.Path)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := fieldIndex(reader, spec.CodeField)
	if codeIdx < 0 {
		return nil, formatErr("loader: shapefile %s missing field %q", spec.Path, spec.CodeField)
	}
	nameIdx := fieldIndex(reader, spec.NameField)

	var boundaries []model.Boundary
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		code := strings.TrimSpace(strings.TrimRight(reader.Attribute(codeIdx), "\x00"))
		if code == "" {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly.NumParts == 0 || len(poly.Points) == 0 {
			skipped++
			continue
		}

		b := model.Boundary{Code: code}
		if nameIdx >= 0 {
			b.Name = strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		}

		var holes []*geom.LinearRing
		for i := int32(0); i < poly.NumParts; i++ {
			start := poly.Parts[i]
			end := int32(len(poly.Points))
			if i+1 < poly.NumParts {
				end = poly.Parts[i+1]
			}

			flat := make([]float64, 0, (end-start)*2)
			for j := start; j < end; j++ {
				flat = append(flat, poly.Points[j].X, poly.Points[j].Y)
			}
			if len(flat) < 8 { // a closed ring needs at least 4 points
				continue
			}

			ring := geom.NewLinearRingFlat(geom.XY, flat)
			if signedArea(flat) > 0 {
				holes = append(holes, ring)
			} else {
				b.Polygons = append(b.Polygons, model.Polygon{Shell: ring})
			}
		}

		if len(b.Polygons) == 0 {
			skipped++
			continue
		}

		// Attach each hole to the shell that encloses it; a hole must
		// never mask points inside a sibling shell. Holes enclosed by no
		// shell are malformed and dropped.
		for _, hole := range holes {
			v := geom.Coord{hole.FlatCoords()[0], hole.FlatCoords()[1]}
			for i := range b.Polygons {
				if xy.IsPointInRing(geom.XY, v, b.Polygons[i].Shell.FlatCoords()) {
					b.Polygons[i].Holes = append(b.Polygons[i].Holes, hole)
					break
				}
			}
		}

		boundaries = append(boundaries, b)
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped shapefile records",
			zap.String("path", spec.Path),
			zap.Int("skipped", skipped),
		)
	}
	zap.L().Info("loader: boundaries loaded",
		zap.String("path", spec.Path),
		zap.Int("boundaries", len(boundaries)),
	)

	return boundaries, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	if name == "" {
		return -1
	}
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// signedArea computes the shoelace signed area of a flat XY ring. Positive
// means counter-clockwise winding.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[i*2]*flat[j*2+1] - flat[j*2]*flat[i*2+1]
	}
	return sum / 2
}
