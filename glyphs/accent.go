package glyphs

// maxNesting limits the depth of component references followed when
// collecting outlines.
const maxNesting = 16

// TopAccent derives the horizontal position where accents attach to a layer.
// It uses, in this order:
//
//   - the x-position of anchor "top" of the layer
//   - the "top" anchor of the first component's glyph, for the same master
//   - the average x-position of the topmost on-curve nodes of the outline
//
// Ordinary components are resolved for the outline fallback; smart components
// are ignored, as their outline depends on decomposition.
func (f *Font) TopAccent(l *Layer) (float64, bool) {
	if a, ok := l.Anchor("top"); ok {
		return a.Pos.X, true
	}
	if comps := l.Components(); len(comps) > 0 {
		if g := f.Glyph(comps[0].Ref); g != nil {
			if cl := g.MasterLayer(l.MasterID()); cl != nil {
				if a, ok := cl.Anchor("top"); ok {
					return comps[0].Transform.Normalized().Apply(a.Pos).X, true
				}
			}
		}
	}
	paths := f.flatPaths(l, Identity, 0)
	b := newBBox()
	for _, p := range paths {
		p.addBounds(&b)
	}
	if b.empty {
		return 0, false
	}
	top := b.r.Max.Y
	var sum float64
	var n int
	for _, p := range paths {
		for _, node := range p.Nodes {
			if node.Type != OffCurve && node.Pos.Y == top {
				sum += node.Pos.X
				n++
			}
		}
	}
	if n == 0 { // topmost point is a curve extremum
		return (b.r.Min.X + b.r.Max.X) / 2, true
	}
	return sum / float64(n), true
}

// flatPaths returns the paths of a layer together with the paths of its
// ordinary components, transformed into the layer's coordinate space.
func (f *Font) flatPaths(l *Layer, m Transform, depth int) []Path {
	var paths []Path
	for _, s := range l.Shapes {
		switch s.Kind {
		case ShapePath:
			paths = append(paths, s.Path.Transformed(m))
		case ShapeComponent:
			if depth >= maxNesting {
				continue
			}
			g := f.Glyph(s.Component.Ref)
			if g == nil || g.Kind() == SmartContainer {
				continue
			}
			if cl := g.MasterLayer(l.MasterID()); cl != nil {
				cm := s.Component.Transform.Normalized().Then(m)
				paths = append(paths, f.flatPaths(cl, cm, depth+1)...)
			}
		}
	}
	return paths
}
