package glyphs

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"howett.net/plist"
)

// sourceTree keeps the property list entries of a source as read, so that
// writing a source preserves everything this package does not model.
type sourceTree struct {
	root   map[string]any
	glyphs map[string]map[string]any
	layers map[string]map[string]map[string]any // glyph → layer ID → entries
}

func newSourceTree(root map[string]any, glyphList []any) *sourceTree {
	t := &sourceTree{
		root:   root,
		glyphs: make(map[string]map[string]any, len(glyphList)),
		layers: make(map[string]map[string]map[string]any, len(glyphList)),
	}
	for _, g := range glyphList {
		d := dict(g)
		name := str(d["glyphname"])
		if name == "" {
			continue
		}
		t.glyphs[name] = d
		t.layers[name] = make(map[string]map[string]any)
		for _, l := range list(d["layers"]) {
			ld := dict(l)
			t.layers[name][str(ld["layerId"])] = ld
		}
	}
	return t
}

// Marshal encodes f as a single-file Glyphs source in OpenStep property list
// format, using the file format version f has been read from. Paths and
// components are written from the glyph layers of f, so a decomposed font is
// written without component references. Other entries of a source read by
// this package are kept as read.
func Marshal(f *Font) ([]byte, error) {
	v3 := f.FormatVersion >= 3
	root := f.encodeRoot(v3)
	glyphList := make([]any, 0, len(f.Glyphs))
	for _, g := range f.Glyphs {
		glyphList = append(glyphList, f.encodeGlyph(g, v3))
	}
	root["glyphs"] = glyphList
	data, err := plist.Marshal(root, plist.OpenStepFormat)
	if err != nil {
		return nil, fmt.Errorf("encoding font %q: %w", f.FamilyName, err)
	}
	return data, nil
}

// WriteFile writes f to a `.glyphs` file at path.
func (f *Font) WriteFile(path string) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	tracer().Debugf("writing %d glyphs to %s", len(f.Glyphs), path)
	return os.WriteFile(path, data, 0o644)
}

func (f *Font) encodeRoot(v3 bool) map[string]any {
	root := make(map[string]any)
	if f.tree != nil {
		for k, v := range f.tree.root {
			root[k] = v
		}
		return root
	}
	root[".formatVersion"] = num(float64(f.FormatVersion))
	root["familyName"] = f.FamilyName
	root["unitsPerEm"] = num(float64(f.UnitsPerEm))
	var masters []any
	for _, m := range f.Masters {
		d := map[string]any{"id": m.ID, "name": m.Name}
		if v3 {
			d["axesValues"] = []any{num(m.Weight)}
		} else {
			d["weightValue"] = num(m.Weight)
		}
		masters = append(masters, d)
	}
	root["fontMaster"] = masters
	var instances []any
	for _, inst := range f.Instances {
		d := map[string]any{"name": inst.Name}
		if !inst.Active {
			d["exports"] = "0"
		}
		if v3 {
			d["axesValues"] = []any{num(inst.Weight)}
		} else {
			d["interpolationWeight"] = num(inst.Weight)
		}
		if len(inst.Interpolations) > 0 {
			ip := make(map[string]any, len(inst.Interpolations))
			for id, c := range inst.Interpolations {
				ip[id] = num(c)
			}
			d["instanceInterpolations"] = ip
		}
		var params []any
		for _, p := range inst.CustomParameters {
			params = append(params, map[string]any{"name": p.Name, "value": p.Value})
		}
		if params != nil {
			d["customParameters"] = params
		}
		instances = append(instances, d)
	}
	if instances != nil {
		root["instances"] = instances
	}
	return root
}

func (f *Font) encodeGlyph(g *Glyph, v3 bool) map[string]any {
	d := make(map[string]any)
	var rawLayers map[string]map[string]any
	if f.tree != nil {
		for k, v := range f.tree.glyphs[g.Name] {
			d[k] = v
		}
		rawLayers = f.tree.layers[g.Name]
	}
	if len(d) == 0 {
		d["glyphname"] = g.Name
		if !g.Export {
			d["export"] = "0"
		}
		if g.Production != "" {
			d["production"] = g.Production
		}
		if len(g.Unicodes) > 0 {
			d["unicode"] = encodeUnicodes(g.Unicodes, v3)
		}
		var axes []any
		for _, a := range g.SmartAxes {
			axes = append(axes, map[string]any{
				"name":        a.Name,
				"bottomValue": num(a.Bottom),
				"topValue":    num(a.Top),
			})
		}
		if axes != nil {
			d["partsSettings"] = axes
		}
	}
	layers := make([]any, 0, len(g.Layers))
	for _, l := range g.Layers {
		layers = append(layers, encodeLayer(l, rawLayers[l.LayerID], v3))
	}
	d["layers"] = layers
	return d
}

func encodeLayer(l *Layer, raw map[string]any, v3 bool) map[string]any {
	d := make(map[string]any, len(raw)+4)
	for k, v := range raw {
		d[k] = v
	}
	if raw == nil {
		d["layerId"] = l.LayerID
		d["width"] = num(l.Width)
		if l.AssociatedMasterID != "" {
			d["associatedMasterId"] = l.AssociatedMasterID
		}
		if l.Name != "" {
			d["name"] = l.Name
		}
		if len(l.PartSelection) > 0 {
			ps := make(map[string]any, len(l.PartSelection))
			for axis, n := range l.PartSelection {
				ps[axis] = num(float64(n))
			}
			d["partSelection"] = ps
		}
		if len(l.UserData) > 0 {
			d["userData"] = l.UserData
		}
		var anchors []any
		for _, a := range l.Anchors {
			ad := map[string]any{"name": a.Name}
			if v3 {
				ad["pos"] = []any{num(a.Pos.X), num(a.Pos.Y)}
			} else {
				ad["position"] = fmt.Sprintf("{%s, %s}", num(a.Pos.X), num(a.Pos.Y))
			}
			anchors = append(anchors, ad)
		}
		if anchors != nil {
			d["anchors"] = anchors
		}
	}
	delete(d, "shapes")
	delete(d, "paths")
	delete(d, "components")
	var paths, comps []any
	for _, s := range l.Shapes {
		switch s.Kind {
		case ShapePath:
			paths = append(paths, encodePath(s.Path, v3))
		case ShapeComponent:
			if v3 {
				paths = append(paths, encodeComponent3(s.Component))
			} else {
				comps = append(comps, encodeComponent2(s.Component))
			}
		}
	}
	switch {
	case v3 && paths != nil:
		d["shapes"] = paths
	case !v3 && paths != nil:
		d["paths"] = paths
	}
	if comps != nil {
		d["components"] = comps
	}
	return d
}

func encodePath(p Path, v3 bool) map[string]any {
	nodes := make([]any, len(p.Nodes))
	for i, n := range p.Nodes {
		if v3 {
			t := [...]string{Line: "l", Curve: "c", OffCurve: "o", QCurve: "q"}[n.Type]
			if n.Smooth {
				t += "s"
			}
			nodes[i] = []any{num(n.Pos.X), num(n.Pos.Y), t}
			continue
		}
		s := fmt.Sprintf("%s %s %s", num(n.Pos.X), num(n.Pos.Y), [...]string{
			Line: "LINE", Curve: "CURVE", OffCurve: "OFFCURVE", QCurve: "QCURVE",
		}[n.Type])
		if n.Smooth {
			s += " SMOOTH"
		}
		nodes[i] = s
	}
	closed := "0"
	if p.Closed {
		closed = "1"
	}
	return map[string]any{"closed": closed, "nodes": nodes}
}

// encodeComponent3 splits a transform into position, scale and rotation.
// Skewed transforms cannot be noted in Glyphs 3 placement notation and lose
// their skew.
func encodeComponent3(c Component) map[string]any {
	m := c.Transform.Normalized()
	d := map[string]any{"ref": c.Ref}
	if m[2] != 0 || m[5] != 0 {
		d["pos"] = []any{num(m[2]), num(m[5])}
	}
	sx := math.Hypot(m[0], m[3])
	angle := math.Atan2(m[3], m[0]) * 180 / math.Pi
	sy := 0.0
	if sx != 0 {
		sy = (m[0]*m[4] - m[1]*m[3]) / sx
	}
	if angle != 0 {
		d["angle"] = num(angle)
	}
	if sx != 1 || sy != 1 {
		d["scale"] = []any{num(sx), num(sy)}
	}
	if piece := encodePiece(c.Values); piece != nil {
		d["piece"] = piece
	}
	return d
}

func encodeComponent2(c Component) map[string]any {
	m := c.Transform.Normalized()
	d := map[string]any{"name": c.Ref}
	if !m.IsIdentity() {
		// {xx, xy, yx, yy, tx, ty}, inverse of FromMatrix
		d["transform"] = fmt.Sprintf("{%s, %s, %s, %s, %s, %s}",
			num(m[0]), num(m[3]), num(m[1]), num(m[4]), num(m[2]), num(m[5]))
	}
	if piece := encodePiece(c.Values); piece != nil {
		d["piece"] = piece
	}
	return d
}

func encodePiece(values map[string]float64) map[string]any {
	if len(values) == 0 {
		return nil
	}
	piece := make(map[string]any, len(values))
	for axis, v := range values {
		piece[axis] = num(v)
	}
	return piece
}

func encodeUnicodes(runes []rune, v3 bool) any {
	if v3 {
		if len(runes) == 1 {
			return num(float64(runes[0]))
		}
		l := make([]any, len(runes))
		for i, r := range runes {
			l[i] = num(float64(r))
		}
		return l
	}
	s := ""
	for i, r := range runes {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%04X", r)
	}
	return s
}

// num formats a number the way Glyphs writes it to OpenStep property lists.
func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
