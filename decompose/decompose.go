/*
Package decompose replaces component references of glyph layers by concrete
outlines.

Ordinary components are replaced by copies of the referenced glyph's paths
for the same master, transformed by the component's transform. Smart
components reference a glyph declaring smart axes. They carry at most one
axis value v, which selects the position

	t = (v - bottom) / (top - bottom)

between the two part layers of the referenced glyph for the host master
("part 1" at t=0, "part 2" at t=1). Nodes are interpolated linearly and
rounded to integer coordinates, rounding halves to even.

Decomposed layers have paths only. Paths of the layer itself come first,
followed by the paths of its components in component order.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package decompose

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.math.glyphs'
func tracer() tracing.Trace {
	return tracing.Select("font.math.glyphs")
}

// Configuration errors of font sources.
var (
	ErrMultiAxis    = errors.New("multi-axis smart components not supported")
	ErrMissingPart  = errors.New("missing smart component part layer")
	ErrUnknownAxis  = errors.New("unknown smart axis")
	ErrCycle        = errors.New("component reference cycle")
	ErrUnknownGlyph = errors.New("component references unknown glyph")
	ErrMissingLayer = errors.New("component glyph has no layer for master")
	ErrIncompatible = errors.New("incompatible smart component parts")
)

// Font decomposes all layers of all glyphs of f in place. Smart glyphs are
// processed first, then all other glyphs. Layers are replaced, not modified:
// references to layers held by a client stay valid and unchanged.
func Font(f *glyphs.Font) error {
	d := newDecomposer(f)
	count := 0
	for _, smartPass := range []bool{true, false} {
		for _, g := range f.Glyphs {
			if (g.Kind() == glyphs.SmartContainer) != smartPass {
				continue
			}
			for i, l := range g.Layers {
				dl, err := d.resolve(g.Name, l)
				if err != nil {
					return err
				}
				if dl != l {
					count++
				}
				g.Layers[i] = dl
			}
		}
	}
	tracer().Infof("decomposed %d layers of font %q", count, f.FamilyName)
	return nil
}

// Layer returns a decomposed copy of layer l, or l itself if it has no
// components. Components are looked up in f.
func Layer(f *glyphs.Font, l *glyphs.Layer) (*glyphs.Layer, error) {
	return newDecomposer(f).resolve(l.Name, l)
}

// SmartPaths interpolates the paths of two part layers at position t and
// applies transform m to the result. Paths are paired in order and have to
// have the same number of nodes. Node types and smooth flags are taken from
// part 1.
func SmartPaths(part1, part2 []glyphs.Path, t float64, m glyphs.Transform) ([]glyphs.Path, error) {
	if len(part1) != len(part2) {
		return nil, fmt.Errorf("%w: %d paths vs. %d paths", ErrIncompatible, len(part1), len(part2))
	}
	m = m.Normalized()
	paths := make([]glyphs.Path, len(part1))
	for i, p1 := range part1 {
		p2 := part2[i]
		if len(p1.Nodes) != len(p2.Nodes) {
			return nil, fmt.Errorf("%w: path %d has %d vs. %d nodes", ErrIncompatible,
				i, len(p1.Nodes), len(p2.Nodes))
		}
		p := glyphs.Path{Closed: p1.Closed, Nodes: make([]glyphs.Node, len(p1.Nodes))}
		for j, n1 := range p1.Nodes {
			n2 := p2.Nodes[j]
			pos := glyphs.Point{
				X: math.RoundToEven(n1.Pos.X*(1-t) + n2.Pos.X*t),
				Y: math.RoundToEven(n1.Pos.Y*(1-t) + n2.Pos.Y*t),
			}
			p.Nodes[j] = glyphs.Node{Pos: m.Apply(pos), Type: n1.Type, Smooth: n1.Smooth}
		}
		paths[i] = p
	}
	return paths, nil
}

// --- Decomposer ------------------------------------------------------------

type decomposer struct {
	font     *glyphs.Font
	done     map[*glyphs.Layer]*glyphs.Layer
	visiting map[*glyphs.Layer]bool
}

func newDecomposer(f *glyphs.Font) *decomposer {
	return &decomposer{
		font:     f,
		done:     make(map[*glyphs.Layer]*glyphs.Layer),
		visiting: make(map[*glyphs.Layer]bool),
	}
}

// resolve decomposes a layer, resolving referenced layers first.
func (d *decomposer) resolve(owner string, l *glyphs.Layer) (*glyphs.Layer, error) {
	if !l.HasComponents() {
		return l, nil
	}
	if dl, ok := d.done[l]; ok {
		return dl, nil
	}
	if d.visiting[l] {
		return nil, fmt.Errorf("%w: glyph %s, layer %s", ErrCycle, owner, l.LayerID)
	}
	d.visiting[l] = true
	defer delete(d.visiting, l)
	//
	var shapes []glyphs.Shape
	for _, p := range l.Paths() {
		shapes = append(shapes, glyphs.PathShape(p.Clone()))
	}
	for _, c := range l.Components() {
		paths, err := d.component(owner, l.MasterID(), c)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			shapes = append(shapes, glyphs.PathShape(p))
		}
	}
	dl := l.WithShapes(shapes)
	d.done[l] = dl
	return dl, nil
}

func (d *decomposer) component(owner, master string, c glyphs.Component) ([]glyphs.Path, error) {
	ref := d.font.Glyph(c.Ref)
	if ref == nil {
		return nil, fmt.Errorf("%w: glyph %s references %q", ErrUnknownGlyph, owner, c.Ref)
	}
	if ref.Kind() == glyphs.SmartContainer {
		return d.smart(owner, master, ref, c)
	}
	rl := ref.MasterLayer(master)
	if rl == nil {
		return nil, fmt.Errorf("%w: glyph %s references %s, master %s", ErrMissingLayer,
			owner, ref.Name, master)
	}
	rl, err := d.resolve(ref.Name, rl)
	if err != nil {
		return nil, err
	}
	m := c.Transform.Normalized()
	src := rl.Paths()
	paths := make([]glyphs.Path, len(src))
	for i, p := range src {
		paths[i] = p.Transformed(m)
	}
	return paths, nil
}

func (d *decomposer) smart(owner, master string, ref *glyphs.Glyph, c glyphs.Component) ([]glyphs.Path, error) {
	axis, t, err := position(ref, c)
	if err != nil {
		return nil, fmt.Errorf("glyph %s: %w", owner, err)
	}
	var parts [2]*glyphs.Layer
	for n := 1; n <= 2; n++ {
		pl := ref.PartLayer(master, axis, n)
		if pl == nil {
			return nil, fmt.Errorf("%w: part %d of glyph %s, master %s, axis %s (used by %s)",
				ErrMissingPart, n, ref.Name, master, axis, owner)
		}
		if parts[n-1], err = d.resolve(ref.Name, pl); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("%s: smart component %s at %s=%.3f", owner, ref.Name, axis, t)
	paths, err := SmartPaths(parts[0].Paths(), parts[1].Paths(), t, c.Transform)
	if err != nil {
		return nil, fmt.Errorf("glyph %s, master %s: %w", ref.Name, master, err)
	}
	return paths, nil
}

// position returns the smart axis and the interpolation position t of a
// smart component. Without a value, t is 0 on the first axis of ref.
func position(ref *glyphs.Glyph, c glyphs.Component) (string, float64, error) {
	name, v, n := c.SmartValue()
	switch {
	case n == 0:
		return ref.SmartAxes[0].Name, 0, nil
	case n > 1:
		return "", 0, fmt.Errorf("%w: component %s has %d axis values", ErrMultiAxis, ref.Name, n)
	}
	axis, ok := ref.Axis(name)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q for component %s", ErrUnknownAxis, name, ref.Name)
	}
	if axis.Top == axis.Bottom {
		return name, 0, nil
	}
	return name, (v - axis.Bottom) / (axis.Top - axis.Bottom), nil
}
