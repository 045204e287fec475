package glyphs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"howett.net/plist"
)

// ErrFormat is returned for sources which are not readable Glyphs files.
var ErrFormat = errors.New("malformed Glyphs source")

// ReadFile reads a font source, either a single-file `.glyphs` source or a
// `.glyphspackage` directory.
func ReadFile(path string) (*Font, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return readPackage(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	font, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return font, nil
}

// Parse decodes a font source in Glyphs 2 or Glyphs 3 file format.
func Parse(data []byte) (*Font, error) {
	root, err := unmarshalDict(data)
	if err != nil {
		return nil, err
	}
	return decodeFont(root, list(root["glyphs"]))
}

func unmarshalDict(data []byte) (map[string]any, error) {
	var v any
	if _, err := plist.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	d := dict(v)
	if d == nil {
		return nil, fmt.Errorf("%w: top level object is not a dictionary", ErrFormat)
	}
	return d, nil
}

// readPackage reads a `.glyphspackage` directory, which splits a source into
// fontinfo.plist, one file per glyph in glyphs/, and the glyph order in
// order.plist.
func readPackage(dir string) (*Font, error) {
	data, err := os.ReadFile(filepath.Join(dir, "fontinfo.plist"))
	if err != nil {
		return nil, err
	}
	root, err := unmarshalDict(data)
	if err != nil {
		return nil, fmt.Errorf("fontinfo.plist: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "glyphs", "*.glyph"))
	if err != nil {
		return nil, err
	}
	byName := make(map[string]any, len(files))
	var names []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		g, err := unmarshalDict(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
		name := str(g["glyphname"])
		byName[name] = g
		names = append(names, name)
	}
	sort.Strings(names)
	var order []string
	if data, err = os.ReadFile(filepath.Join(dir, "order.plist")); err == nil {
		var v any
		if _, err = plist.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("order.plist: %w: %v", ErrFormat, err)
		}
		for _, n := range list(v) {
			order = append(order, str(n))
		}
	}
	var glyphs []any
	seen := make(map[string]bool, len(names))
	for _, name := range append(order, names...) {
		if g, ok := byName[name]; ok && !seen[name] {
			glyphs = append(glyphs, g)
			seen[name] = true
		}
	}
	tracer().Debugf("package %s has %d glyph files", filepath.Base(dir), len(files))
	return decodeFont(root, glyphs)
}

// --- Decoding --------------------------------------------------------------

func decodeFont(root map[string]any, glyphList []any) (*Font, error) {
	f := &Font{
		FamilyName:    str(root["familyName"]),
		UnitsPerEm:    int(numOr(root["unitsPerEm"], 1000)),
		FormatVersion: int(numOr(root[".formatVersion"], 2)),
	}
	v3 := f.FormatVersion >= 3
	f.tree = newSourceTree(root, glyphList)
	for _, m := range list(root["fontMaster"]) {
		master, err := decodeMaster(dict(m), v3)
		if err != nil {
			return nil, err
		}
		f.Masters = append(f.Masters, master)
	}
	if len(f.Masters) == 0 {
		return nil, fmt.Errorf("%w: font has no masters", ErrFormat)
	}
	for _, g := range glyphList {
		glyph, err := decodeGlyph(dict(g), v3)
		if err != nil {
			return nil, err
		}
		f.Glyphs = append(f.Glyphs, glyph)
	}
	for _, i := range list(root["instances"]) {
		d := dict(i)
		if str(d["type"]) == "variable" {
			continue
		}
		f.Instances = append(f.Instances, decodeInstance(d, v3))
	}
	f.Reindex()
	tracer().Infof("font %q (format %d): %d masters, %d glyphs, %d instances",
		f.FamilyName, f.FormatVersion, len(f.Masters), len(f.Glyphs), len(f.Instances))
	return f, nil
}

func decodeMaster(d map[string]any, v3 bool) (Master, error) {
	m := Master{ID: str(d["id"]), Name: str(d["name"])}
	if m.ID == "" {
		return m, fmt.Errorf("%w: master without id", ErrFormat)
	}
	if m.Name == "" { // Glyphs 2 composes master names
		var parts []string
		for _, key := range []string{"weight", "width", "custom"} {
			if s := str(d[key]); s != "" && s != "Regular" {
				parts = append(parts, s)
			}
		}
		if m.Name = strings.Join(parts, " "); m.Name == "" {
			m.Name = "Regular"
		}
	}
	if axes := numbers(d["axesValues"]); v3 && len(axes) > 0 {
		m.Weight = axes[0]
	} else {
		m.Weight = numOr(d["weightValue"], 100)
	}
	return m, nil
}

func decodeInstance(d map[string]any, v3 bool) Instance {
	inst := Instance{
		Name:   str(d["name"]),
		Active: boolOr(d["exports"], true),
	}
	if axes := numbers(d["axesValues"]); v3 && len(axes) > 0 {
		inst.Weight = axes[0]
	} else {
		inst.Weight = numOr(d["interpolationWeight"], 100)
	}
	if ip := dict(d["instanceInterpolations"]); len(ip) > 0 {
		inst.Interpolations = make(map[string]float64, len(ip))
		for id, c := range ip {
			inst.Interpolations[id] = numOr(c, 0)
		}
	}
	for _, p := range list(d["customParameters"]) {
		pd := dict(p)
		inst.CustomParameters = append(inst.CustomParameters, CustomParameter{
			Name:  str(pd["name"]),
			Value: plainValue(pd["value"]),
		})
	}
	return inst
}

func decodeGlyph(d map[string]any, v3 bool) (*Glyph, error) {
	g := &Glyph{
		Name:        str(d["glyphname"]),
		Export:      boolOr(d["export"], true),
		Category:    str(d["category"]),
		Subcategory: str(d["subCategory"]),
		Production:  str(d["production"]),
	}
	if g.Name == "" {
		return nil, fmt.Errorf("%w: glyph without name", ErrFormat)
	}
	g.Unicodes = decodeUnicodes(d["unicode"], v3)
	for _, a := range list(d["partsSettings"]) {
		ad := dict(a)
		g.SmartAxes = append(g.SmartAxes, SmartAxis{
			Name:   str(ad["name"]),
			Bottom: numOr(ad["bottomValue"], 0),
			Top:    numOr(ad["topValue"], 0),
		})
	}
	for _, l := range list(d["layers"]) {
		layer, err := decodeLayer(dict(l), v3)
		if err != nil {
			return nil, fmt.Errorf("glyph %s: %w", g.Name, err)
		}
		g.Layers = append(g.Layers, layer)
	}
	return g, nil
}

// Glyphs 2 notes code points in hex, separated by commas. Glyphs 3 notes them
// in decimal, either a single number or an array.
func decodeUnicodes(v any, v3 bool) []rune {
	var items []string
	if l := list(v); l != nil {
		for _, x := range l {
			items = append(items, str(x))
		}
	} else if s := str(v); s != "" {
		items = strings.Split(s, ",")
	}
	base := 16
	if v3 {
		base = 10
	}
	var runes []rune
	for _, item := range items {
		if n, err := strconv.ParseInt(strings.TrimSpace(item), base, 32); err == nil {
			runes = append(runes, rune(n))
		}
	}
	return runes
}

func decodeLayer(d map[string]any, v3 bool) (*Layer, error) {
	l := &Layer{
		LayerID:            str(d["layerId"]),
		AssociatedMasterID: str(d["associatedMasterId"]),
		Name:               str(d["name"]),
		Width:              numOr(d["width"], 0),
	}
	if l.LayerID == "" {
		return nil, fmt.Errorf("%w: layer without id", ErrFormat)
	}
	if ps := dict(d["partSelection"]); len(ps) > 0 {
		l.PartSelection = make(map[string]int, len(ps))
		for axis, n := range ps {
			l.PartSelection[axis] = int(numOr(n, 0))
		}
	}
	if ud, ok := plainValue(d["userData"]).(map[string]any); ok {
		l.UserData = ud
	}
	for _, a := range list(d["anchors"]) {
		ad := dict(a)
		var pos []float64
		if v3 {
			pos = numbers(ad["pos"])
		} else {
			pos = numbers(ad["position"])
		}
		anchor := Anchor{Name: str(ad["name"])}
		if len(pos) == 2 {
			anchor.Pos = Point{pos[0], pos[1]}
		}
		l.Anchors = append(l.Anchors, anchor)
	}
	if v3 {
		for _, s := range list(d["shapes"]) {
			sd := dict(s)
			if _, isRef := sd["ref"]; isRef {
				l.Shapes = append(l.Shapes, ComponentShape(decodeComponent3(sd)))
				continue
			}
			p, err := decodePath(sd, decodeNode3)
			if err != nil {
				return nil, err
			}
			l.Shapes = append(l.Shapes, PathShape(p))
		}
		return l, nil
	}
	for _, s := range list(d["paths"]) {
		p, err := decodePath(dict(s), decodeNode2)
		if err != nil {
			return nil, err
		}
		l.Shapes = append(l.Shapes, PathShape(p))
	}
	for _, c := range list(d["components"]) {
		l.Shapes = append(l.Shapes, ComponentShape(decodeComponent2(dict(c))))
	}
	return l, nil
}

func decodePath(d map[string]any, decodeNode func(any) (Node, error)) (Path, error) {
	p := Path{Closed: boolOr(d["closed"], false)}
	for _, n := range list(d["nodes"]) {
		node, err := decodeNode(n)
		if err != nil {
			return p, err
		}
		p.Nodes = append(p.Nodes, node)
	}
	return p, nil
}

// decodeNode2 decodes nodes in notation "x y TYPE [SMOOTH]".
func decodeNode2(v any) (Node, error) {
	fields := strings.Fields(str(v))
	if len(fields) < 3 {
		return Node{}, fmt.Errorf("%w: node %q", ErrFormat, str(v))
	}
	x, errx := strconv.ParseFloat(fields[0], 64)
	y, erry := strconv.ParseFloat(fields[1], 64)
	if errx != nil || erry != nil {
		return Node{}, fmt.Errorf("%w: node %q", ErrFormat, str(v))
	}
	node := Node{Pos: Point{x, y}}
	switch strings.ToUpper(fields[2]) {
	case "LINE":
		node.Type = Line
	case "CURVE":
		node.Type = Curve
	case "QCURVE":
		node.Type = QCurve
	case "OFFCURVE":
		node.Type = OffCurve
	default:
		return Node{}, fmt.Errorf("%w: node type %q", ErrFormat, fields[2])
	}
	node.Smooth = len(fields) > 3 && strings.ToUpper(fields[3]) == "SMOOTH"
	return node, nil
}

// decodeNode3 decodes nodes in notation (x,y,t), where t is one of l, c, o, q,
// with suffix s for smooth nodes.
func decodeNode3(v any) (Node, error) {
	items := list(v)
	if len(items) < 3 {
		return Node{}, fmt.Errorf("%w: node %v", ErrFormat, v)
	}
	x, okx := toNumber(items[0])
	y, oky := toNumber(items[1])
	if !okx || !oky {
		return Node{}, fmt.Errorf("%w: node %v", ErrFormat, v)
	}
	node := Node{Pos: Point{x, y}}
	t := str(items[2])
	if strings.HasSuffix(t, "s") {
		node.Smooth = true
		t = strings.TrimSuffix(t, "s")
	}
	switch t {
	case "l":
		node.Type = Line
	case "c":
		node.Type = Curve
	case "q":
		node.Type = QCurve
	case "o":
		node.Type = OffCurve
	default:
		return Node{}, fmt.Errorf("%w: node type %q", ErrFormat, str(items[2]))
	}
	return node, nil
}

func decodeComponent2(d map[string]any) Component {
	c := Component{Ref: str(d["name"]), Transform: Identity}
	if m := numbers(d["transform"]); len(m) == 6 {
		c.Transform = FromMatrix(m[0], m[1], m[2], m[3], m[4], m[5])
	}
	c.Values = decodePiece(d["piece"])
	return c
}

func decodeComponent3(d map[string]any) Component {
	c := Component{Ref: str(d["ref"])}
	pos := Point{}
	if p := numbers(d["pos"]); len(p) == 2 {
		pos = Point{p[0], p[1]}
	}
	sx, sy := 1.0, 1.0
	if s := numbers(d["scale"]); len(s) == 2 {
		sx, sy = s[0], s[1]
	}
	c.Transform = FromPlacement(pos, sx, sy, numOr(d["angle"], 0))
	c.Values = decodePiece(d["piece"])
	return c
}

func decodePiece(v any) map[string]float64 {
	d := dict(v)
	if len(d) == 0 {
		return nil
	}
	values := make(map[string]float64, len(d))
	for axis, x := range d {
		values[axis] = numOr(x, 0)
	}
	return values
}
