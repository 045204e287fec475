package glyphs

import (
	"sort"
	"strings"
)

// Font is a multi-master font source.
type Font struct {
	FamilyName    string
	UnitsPerEm    int
	FormatVersion int // 2 or 3, the Glyphs file format the font has been read from
	Masters       []Master
	Glyphs        []*Glyph
	Instances     []Instance
	index         map[string]*Glyph
	tree          *sourceTree // entries as read, for writing the source back
}

// NewFont creates a font from its parts and indexes its glyphs by name.
func NewFont(family string, masters []Master, glyphs []*Glyph, instances []Instance) *Font {
	f := &Font{
		FamilyName:    family,
		UnitsPerEm:    1000,
		FormatVersion: 3,
		Masters:       masters,
		Glyphs:        glyphs,
		Instances:     instances,
	}
	f.Reindex()
	return f
}

// Reindex rebuilds the name index of glyphs. It has to be called after
// f.Glyphs has been modified.
func (f *Font) Reindex() {
	f.index = make(map[string]*Glyph, len(f.Glyphs))
	for _, g := range f.Glyphs {
		f.index[g.Name] = g
	}
}

// Glyph returns the glyph with a given name, or nil.
func (f *Font) Glyph(name string) *Glyph {
	if f.index == nil {
		f.Reindex()
	}
	return f.index[name]
}

// GlyphNames returns the names of all glyphs in source order.
func (f *Font) GlyphNames() []string {
	names := make([]string, len(f.Glyphs))
	for i, g := range f.Glyphs {
		names[i] = g.Name
	}
	return names
}

// Master returns the master with a given ID.
func (f *Font) Master(id string) (Master, bool) {
	for _, m := range f.Masters {
		if m.ID == id {
			return m, true
		}
	}
	return Master{}, false
}

// Master is a font source at one specific weight.
type Master struct {
	ID     string
	Name   string
	Weight float64 // position on the weight axis
}

// CustomParameter is a named, untyped value attached to an instance.
type CustomParameter struct {
	Name  string
	Value any
}

// Instance is a named, producible font variant.
type Instance struct {
	Name             string
	Active           bool
	Weight           float64            // position on the weight axis
	Interpolations   map[string]float64 // master ID → coefficient; may be empty
	CustomParameters []CustomParameter
}

// Parameter returns the value of the first custom parameter with a given name.
func (inst Instance) Parameter(name string) (any, bool) {
	for _, p := range inst.CustomParameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// RemovedGlyphs returns the glyph names listed in custom parameter "Remove Glyphs".
func (inst Instance) RemovedGlyphs() []string {
	v, ok := inst.Parameter("Remove Glyphs")
	if !ok {
		return nil
	}
	var names []string
	for _, item := range list(v) {
		if s := strings.TrimSpace(str(item)); s != "" {
			names = append(names, s)
		}
	}
	if s, isString := v.(string); isString {
		for _, n := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' }) {
			names = append(names, n)
		}
	}
	return names
}

// --- Glyphs ----------------------------------------------------------------

// GlyphKind tells ordinary glyphs apart from smart glyph containers.
type GlyphKind int

const (
	Ordinary       GlyphKind = iota // a glyph without smart axes
	SmartContainer                  // a glyph declaring smart axes, placed as smart component
)

func (k GlyphKind) String() string {
	if k == SmartContainer {
		return "smart"
	}
	return "ordinary"
}

// SmartAxis is a parametric axis of a smart glyph.
type SmartAxis struct {
	Name   string
	Bottom float64
	Top    float64
}

// Glyph is a glyph of the font source, with one or more layers per master.
type Glyph struct {
	Name        string
	Export      bool
	Category    string
	Subcategory string
	Production  string // production name, if set in the source
	Unicodes    []rune
	SmartAxes   []SmartAxis
	Layers      []*Layer
}

// Kind returns the kind of a glyph.
func (g *Glyph) Kind() GlyphKind {
	if len(g.SmartAxes) > 0 {
		return SmartContainer
	}
	return Ordinary
}

// Axis returns the smart axis with a given name.
func (g *Glyph) Axis(name string) (SmartAxis, bool) {
	for _, a := range g.SmartAxes {
		if a.Name == name {
			return a, true
		}
	}
	return SmartAxis{}, false
}

// MasterLayer returns the master layer of g for a master, or nil.
func (g *Glyph) MasterLayer(masterID string) *Layer {
	for _, l := range g.Layers {
		if l.LayerID == masterID {
			return l
		}
	}
	return nil
}

// PartLayer returns the layer of a smart glyph, associated with a master,
// which is selected as part n (1 or 2) for a smart axis.
func (g *Glyph) PartLayer(masterID, axis string, n int) *Layer {
	for _, l := range g.Layers {
		if l.MasterID() == masterID && l.PartSelection[axis] == n {
			return l
		}
	}
	return nil
}

// --- Layers ----------------------------------------------------------------

// Layer is one drawing of a glyph, either a master layer or a layer
// associated with a master (e.g. smart component parts).
type Layer struct {
	LayerID            string
	AssociatedMasterID string
	Name               string
	Width              float64
	Shapes             []Shape
	Anchors            []Anchor
	PartSelection      map[string]int // smart axis name → part (1 or 2)
	UserData           map[string]any
}

// MasterID returns the ID of the master a layer belongs to.
func (l *Layer) MasterID() string {
	if l.AssociatedMasterID != "" {
		return l.AssociatedMasterID
	}
	return l.LayerID
}

// IsMasterLayer reports whether l is the main layer of its master.
func (l *Layer) IsMasterLayer() bool {
	return l.AssociatedMasterID == "" || l.AssociatedMasterID == l.LayerID
}

// Paths returns the paths of a layer, in drawing order.
func (l *Layer) Paths() []Path {
	var paths []Path
	for _, s := range l.Shapes {
		if s.Kind == ShapePath {
			paths = append(paths, s.Path)
		}
	}
	return paths
}

// Components returns the component references of a layer, in drawing order.
func (l *Layer) Components() []Component {
	var comps []Component
	for _, s := range l.Shapes {
		if s.Kind == ShapeComponent {
			comps = append(comps, s.Component)
		}
	}
	return comps
}

// HasComponents reports whether a layer still references other glyphs.
func (l *Layer) HasComponents() bool {
	for _, s := range l.Shapes {
		if s.Kind == ShapeComponent {
			return true
		}
	}
	return false
}

// WithShapes returns a copy of l with its shapes replaced.
func (l *Layer) WithShapes(shapes []Shape) *Layer {
	c := *l
	c.Shapes = shapes
	return &c
}

// Anchor returns the anchor of a layer with a given name.
func (l *Layer) Anchor(name string) (Anchor, bool) {
	for _, a := range l.Anchors {
		if a.Name == name {
			return a, true
		}
	}
	return Anchor{}, false
}

// UserValue looks up a numeric entry of the layer's user data. Entries are
// found either on the top level or within a nested dictionary, as in
//
//	userData = { math = { topAccent = 250; }; };
//
// Nested dictionaries are searched in key order.
func (l *Layer) UserValue(key string) (float64, bool) {
	if l.UserData == nil {
		return 0, false
	}
	if v, ok := l.UserData[key]; ok {
		return toNumber(v)
	}
	keys := make([]string, 0, len(l.UserData))
	for k := range l.UserData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if d, ok := l.UserData[k].(map[string]any); ok {
			if v, ok := d[key]; ok {
				return toNumber(v)
			}
		}
	}
	return 0, false
}

// Anchor is a named attachment point.
type Anchor struct {
	Name string
	Pos  Point
}

// --- Shapes ----------------------------------------------------------------

// ShapeKind tells paths apart from component references.
type ShapeKind int

const (
	ShapePath ShapeKind = iota
	ShapeComponent
)

// Shape is an element of a layer: either a path or a component reference.
type Shape struct {
	Kind      ShapeKind
	Path      Path
	Component Component
}

// PathShape wraps a path as a shape.
func PathShape(p Path) Shape {
	return Shape{Kind: ShapePath, Path: p}
}

// ComponentShape wraps a component reference as a shape.
func ComponentShape(c Component) Shape {
	return Shape{Kind: ShapeComponent, Component: c}
}

// NodeType is the type of a path node.
type NodeType uint8

const (
	Line NodeType = iota
	Curve
	OffCurve
	QCurve
)

func (t NodeType) String() string {
	switch t {
	case Curve:
		return "curve"
	case OffCurve:
		return "offcurve"
	case QCurve:
		return "qcurve"
	}
	return "line"
}

// Node is a point of a path.
type Node struct {
	Pos    Point
	Type   NodeType
	Smooth bool
}

// Path is a sequence of nodes. Off-curve nodes belong to the on-curve node
// following them, wrapping around for closed paths.
type Path struct {
	Nodes  []Node
	Closed bool
}

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	return Path{Nodes: append([]Node(nil), p.Nodes...), Closed: p.Closed}
}

// Transformed returns a copy of p with m applied to all nodes.
func (p Path) Transformed(m Transform) Path {
	q := p.Clone()
	for i := range q.Nodes {
		q.Nodes[i].Pos = m.Apply(q.Nodes[i].Pos)
	}
	return q
}

// Component is a placed reference to another glyph.
type Component struct {
	Ref       string
	Transform Transform
	Values    map[string]float64 // smart axis values ("piece")
}

// SmartValue returns the single axis value of a smart component. n is the
// number of values set; axis and value are valid only for n == 1.
func (c Component) SmartValue() (axis string, value float64, n int) {
	for k, v := range c.Values {
		axis, value = k, v
	}
	return axis, value, len(c.Values)
}
