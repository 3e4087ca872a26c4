package importer

import (
	"fmt"
	"math"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// chainTolerance is the maximum endpoint distance in mm for two loose
// segments to be considered connected.
const chainTolerance = 0.01

type point2D struct {
	X, Y float64
}

// segment is a line between two points, used for chaining disconnected LINE
// and ARC entities into closed shapes.
type segment struct {
	start point2D
	end   point2D
}

// ImportDXF imports design requirements from a DXF file. Glass is always cut
// as rectangles, so each closed shape (LWPOLYLINE, CIRCLE, or chain of
// connected LINEs/ARCs) becomes one design sized to the shape's bounding box,
// with quantity 1.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes [][]point2D
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := lwPolylinePoints(e)
			if len(pts) >= 3 {
				shapes = append(shapes, pts)
			} else {
				result.Warnings = append(result.Warnings,
					"skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			shapes = append(shapes, circlePoints(e, 64))

		case *entity.Arc:
			pts := arcPoints(e, 32)
			for i := 0; i < len(pts)-1; i++ {
				segments = append(segments, segment{start: pts[i], end: pts[i+1]})
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: point2D{X: e.Start[0], Y: e.Start[1]},
				end:   point2D{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are skipped.
		}
	}

	shapes = append(shapes, chainSegments(segments)...)

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "no closed shapes found in DXF file")
		return result
	}

	for i, shape := range shapes {
		width, height := boundingSize(shape)
		if width < 0.01 || height < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipped degenerate shape (%.2f x %.2f mm)", width, height))
			continue
		}

		result.Requirements = append(result.Requirements, model.Requirement{
			Design:   model.NewDesign(fmt.Sprintf("DXF shape %d", i+1), width, height, defaultThickness),
			Quantity: 1,
		})
	}

	if len(result.Requirements) == 0 {
		result.Errors = append(result.Errors, "no usable shapes found in DXF file")
	}

	return result
}

// lwPolylinePoints converts an LWPOLYLINE to its vertex points. Bulged
// vertices interpolate an arc so curved edges still report a correct
// bounding box.
func lwPolylinePoints(lw *entity.LwPolyline) []point2D {
	var pts []point2D
	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arc := bulgeArcPoints(current, next, bulge, 32)
			pts = append(pts, arc[:len(arc)-1]...)
		} else {
			pts = append(pts, current)
		}
	}
	return pts
}

// bulgeArcPoints interpolates an arc defined by two endpoints and a DXF bulge
// factor (the tangent of a quarter of the included angle).
func bulgeArcPoints(p1, p2 point2D, bulge float64, numSegments int) []point2D {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return []point2D{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	pts := make([]point2D, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, point2D{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circlePoints approximates a circle as a regular polygon.
func circlePoints(c *entity.Circle, numSegments int) []point2D {
	pts := make([]point2D, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		pts[i] = point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// arcPoints converts a DXF ARC entity to a series of line points.
func arcPoints(a *entity.Arc, numSegments int) []point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// chainSegments connects loose segments into closed shapes. Open chains are
// discarded; a rectangle needs a closed outline to measure.
func chainSegments(segs []segment) [][]point2D {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var shapes [][]point2D

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []point2D{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1]) {
			shapes = append(shapes, chain[:len(chain)-1])
		}
	}

	return shapes
}

func pointsClose(a, b point2D) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx+dy*dy) <= chainTolerance
}

// boundingSize returns the width and height of a shape's bounding box.
func boundingSize(pts []point2D) (float64, float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return maxX - minX, maxY - minY
}
