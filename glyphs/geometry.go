package glyphs

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Point is a position in font units.
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Transform is an affine transformation
//
//	⎡ a b c ⎤
//	⎣ d e f ⎦
//
// mapping (x,y) to (a·x + b·y + c, d·x + e·y + f). It has the memory layout
// of f64.Aff3, which carries no operations; those are defined here.
type Transform f64.Aff3

// Identity is the identity transform.
var Identity = Transform{1, 0, 0, 0, 1, 0}

// Translate creates a translation.
func Translate(dx, dy float64) Transform {
	return Transform{1, 0, dx, 0, 1, dy}
}

// Scale creates a scaling.
func Scale(sx, sy float64) Transform {
	return Transform{sx, 0, 0, 0, sy, 0}
}

// FromMatrix creates a transform from the 6-element matrix notation
// {xx, xy, yx, yy, tx, ty}, as used by PostScript and Glyphs 2.
func FromMatrix(xx, xy, yx, yy, tx, ty float64) Transform {
	return Transform{xx, yx, tx, xy, yy, ty}
}

// FromPlacement creates a transform from a position, scale factors and a
// rotation angle in degrees, as used by Glyphs 3. Scaling is applied first,
// then rotation, then translation.
func FromPlacement(pos Point, sx, sy, angle float64) Transform {
	if angle == 0 {
		return Transform{sx, 0, pos.X, 0, sy, pos.Y}
	}
	sin, cos := math.Sincos(angle * math.Pi / 180)
	return Transform{cos * sx, -sin * sy, pos.X, sin * sx, cos * sy, pos.Y}
}

// Apply maps a point.
func (m Transform) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Then returns the transform which applies m first, then n.
func (m Transform) Then(n Transform) Transform {
	return Transform{
		n[0]*m[0] + n[1]*m[3],
		n[0]*m[1] + n[1]*m[4],
		n[0]*m[2] + n[1]*m[5] + n[2],
		n[3]*m[0] + n[4]*m[3],
		n[3]*m[1] + n[4]*m[4],
		n[3]*m[2] + n[4]*m[5] + n[5],
	}
}

// IsIdentity is true for the identity transform. The zero value of
// Transform, which components read without a transform have, counts as
// identity as well.
func (m Transform) IsIdentity() bool {
	return m == Identity || m == Transform{}
}

// Normalized returns Identity for the zero transform, m otherwise.
func (m Transform) Normalized() Transform {
	if m == (Transform{}) {
		return Identity
	}
	return m
}

// --- Bounds ----------------------------------------------------------------

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max Point
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) String() string {
	return fmt.Sprintf("[%v %v]", r.Min, r.Max)
}

type bbox struct {
	r     Rect
	empty bool
}

func newBBox() bbox { return bbox{empty: true} }

func (b *bbox) add(p Point) {
	if b.empty {
		b.r = Rect{Min: p, Max: p}
		b.empty = false
		return
	}
	b.r.Min.X = math.Min(b.r.Min.X, p.X)
	b.r.Min.Y = math.Min(b.r.Min.Y, p.Y)
	b.r.Max.X = math.Max(b.r.Max.X, p.X)
	b.r.Max.Y = math.Max(b.r.Max.Y, p.Y)
}

// Bounds returns the exact bounding box of the outlines of a layer, including
// curve extrema. Components are not taken into account; layers have to be
// decomposed beforehand. If a layer has no outline, ok is false.
func (l *Layer) Bounds() (r Rect, ok bool) {
	b := newBBox()
	for _, p := range l.Paths() {
		p.addBounds(&b)
	}
	return b.r, !b.empty
}

// Bounds returns the exact bounding box of a path.
func (p Path) Bounds() (r Rect, ok bool) {
	b := newBBox()
	p.addBounds(&b)
	return b.r, !b.empty
}

func (p Path) addBounds(b *bbox) {
	n := len(p.Nodes)
	for k, node := range p.Nodes {
		if node.Type == OffCurve {
			continue
		}
		b.add(node.Pos)
		// collect off-curve points preceding node
		var ctrl []Point
		j := k - 1
		for steps := 0; steps < n-1; steps++ {
			if j < 0 {
				if !p.Closed {
					break
				}
				j = n - 1
			}
			if p.Nodes[j].Type != OffCurve {
				break
			}
			ctrl = append([]Point{p.Nodes[j].Pos}, ctrl...)
			j--
		}
		if len(ctrl) == 0 || j < 0 || p.Nodes[j].Type == OffCurve {
			for _, c := range ctrl { // dangling off-curves of an open path
				b.add(c)
			}
			continue
		}
		start := p.Nodes[j].Pos
		switch {
		case node.Type == QCurve || len(ctrl) == 1:
			addQuadraticSpline(b, start, ctrl, node.Pos)
		case len(ctrl) == 2:
			addCubic(b, start, ctrl[0], ctrl[1], node.Pos)
		default:
			for _, c := range ctrl {
				b.add(c)
			}
		}
	}
}

// addQuadraticSpline adds the extrema of a TrueType-style quadratic spline
// with implied on-curve points between consecutive off-curve points.
func addQuadraticSpline(b *bbox, start Point, ctrl []Point, end Point) {
	p0 := start
	for i, c := range ctrl {
		p2 := end
		if i < len(ctrl)-1 {
			p2 = Point{(c.X + ctrl[i+1].X) / 2, (c.Y + ctrl[i+1].Y) / 2}
			b.add(p2)
		}
		addQuadratic(b, p0, c, p2)
		p0 = p2
	}
}

func addQuadratic(b *bbox, p0, p1, p2 Point) {
	at := func(t float64) Point {
		mt := 1 - t
		return Point{
			X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
			Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
		}
	}
	for _, t := range []float64{
		quadraticExtremum(p0.X, p1.X, p2.X),
		quadraticExtremum(p0.Y, p1.Y, p2.Y),
	} {
		if t > 0 && t < 1 {
			b.add(at(t))
		}
	}
}

func quadraticExtremum(a, b, c float64) float64 {
	d := a - 2*b + c
	if d == 0 {
		return -1
	}
	return (a - b) / d
}

func addCubic(b *bbox, p0, p1, p2, p3 Point) {
	at := func(t float64) Point {
		mt := 1 - t
		return Point{
			X: mt*mt*mt*p0.X + 3*mt*mt*t*p1.X + 3*mt*t*t*p2.X + t*t*t*p3.X,
			Y: mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y,
		}
	}
	for _, t := range cubicExtrema(p0.X, p1.X, p2.X, p3.X) {
		b.add(at(t))
	}
	for _, t := range cubicExtrema(p0.Y, p1.Y, p2.Y, p3.Y) {
		b.add(at(t))
	}
}

// cubicExtrema returns the parameters t ∈ (0,1) where the derivative of a
// one-dimensional cubic Bézier curve vanishes.
func cubicExtrema(p0, p1, p2, p3 float64) []float64 {
	a := -p0 + 3*p1 - 3*p2 + p3
	b := 2 * (p0 - 2*p1 + p2)
	c := p1 - p0
	var roots []float64
	if math.Abs(a) < 1e-12 {
		if b != 0 {
			roots = append(roots, -c/b)
		}
	} else {
		disc := b*b - 4*a*c
		if disc >= 0 {
			sq := math.Sqrt(disc)
			roots = append(roots, (-b+sq)/(2*a), (-b-sq)/(2*a))
		}
	}
	var ts []float64
	for _, t := range roots {
		if t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	return ts
}
