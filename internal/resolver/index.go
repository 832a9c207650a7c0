// Package resolver maps school points to the enclosing boundary polygon at
// each hierarchy level, then derives county and commuting zone codes.
package resolver

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/ascending-macs/mobility-cli/internal/model"
)

// pointRectSide is the side length of the degenerate query rectangle used
// for point lookups; rtreego requires strictly positive extents.
const pointRectSide = 1e-9

// Index is an immutable point-in-polygon index over one boundary level:
// an R-tree over polygon bounding boxes for candidate pruning, with an
// exact ray-crossing test per candidate.
type Index struct {
	tree *rtreego.Rtree
}

type indexEntry struct {
	// order preserves shapefile record order; overlap ties resolve to the
	// earliest record, a documented ambiguity rather than a correction.
	order    int
	boundary *model.Boundary
	rect     rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.rect }

// NewIndex builds the index for one level. The boundary slice is not
// copied; callers must not mutate it afterwards.
func NewIndex(level model.Level, boundaries []model.Boundary) (*Index, error) {
	tree := rtreego.NewTree(2, 2, 32)
	for i := range boundaries {
		b := &boundaries[i]
		bounds := b.Bounds()
		lengths := []float64{
			maxFloat(bounds.Max(0)-bounds.Min(0), pointRectSide),
			maxFloat(bounds.Max(1)-bounds.Min(1), pointRectSide),
		}
		rect, err := rtreego.NewRect(rtreego.Point{bounds.Min(0), bounds.Min(1)}, lengths)
		if err != nil {
			return nil, eris.Wrapf(err, "resolver: index %s boundary %s", level, b.Code)
		}
		tree.Insert(&indexEntry{order: i, boundary: b, rect: rect})
	}
	return &Index{tree: tree}, nil
}

// Locate returns the code of the first boundary, in input order, whose
// polygon contains the point. The second return is false when the point
// lies outside every indexed boundary.
func (ix *Index) Locate(lon, lat float64) (string, bool) {
	rect, err := rtreego.NewRect(rtreego.Point{lon, lat}, []float64{pointRectSide, pointRectSide})
	if err != nil {
		return "", false
	}

	hits := ix.tree.SearchIntersect(rect)
	if len(hits) == 0 {
		return "", false
	}

	entries := make([]*indexEntry, 0, len(hits))
	for _, h := range hits {
		entries = append(entries, h.(*indexEntry))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	c := geom.Coord{lon, lat}
	for _, e := range entries {
		if contains(e.boundary, c) {
			return e.boundary.Code, true
		}
	}
	return "", false
}

// contains performs the exact containment test: inside some shell ring and
// not inside any of that shell's own holes.
func contains(b *model.Boundary, c geom.Coord) bool {
	for _, p := range b.Polygons {
		if !xy.IsPointInRing(geom.XY, c, p.Shell.FlatCoords()) {
			continue
		}
		inHole := false
		for _, hole := range p.Holes {
			if xy.IsPointInRing(geom.XY, c, hole.FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
