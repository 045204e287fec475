package mathdata

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Values are the per-master values of a quantity, in master index order.
type Values []int

// UnmarshalTOML reads an array of numbers. A single number is read as a
// list of length 1. Fractional values are rounded.
func (v *Values) UnmarshalTOML(data any) error {
	toInt := func(x any) (int, error) {
		switch n := x.(type) {
		case int64:
			return int(n), nil
		case float64:
			return int(math.RoundToEven(n)), nil
		}
		return 0, fmt.Errorf("expected number, have %v", x)
	}
	if items, ok := data.([]any); ok {
		*v = make(Values, 0, len(items))
		for _, item := range items {
			n, err := toInt(item)
			if err != nil {
				return err
			}
			*v = append(*v, n)
		}
		return nil
	}
	n, err := toInt(data)
	if err != nil {
		return err
	}
	*v = Values{n}
	return nil
}

// NameList is a list of glyph name patterns, given either as a single string
// or as an array of strings.
type NameList []string

// UnmarshalTOML reads a string or an array of strings.
func (nl *NameList) UnmarshalTOML(data any) error {
	switch x := data.(type) {
	case string:
		*nl = NameList{x}
		return nil
	case []any:
		*nl = make(NameList, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected glyph name, have %v", item)
			}
			*nl = append(*nl, s)
		}
		return nil
	}
	return fmt.Errorf("expected glyph name or list of glyph names, have %v", data)
}

// Expanded returns the glyph names of a name list, with patterns expanded.
func (nl NameList) Expanded() []string {
	var names []string
	for _, s := range nl {
		names = append(names, ExpandName(s)...)
	}
	return names
}

// Document is the master data document as read from TOML.
//
//	[MathConstants]
//	AxisHeight = [200, 280, 320]
//
//	[MathGlyphInfo]
//	ExtendedShapes = ["parenleft?.size#4"]
//	ItalicCorrection.f = [50, 60, 70]
//
//	[MathVariants]
//	MinConnectorOverlap = [20, 20, 20]
//	VerticalVariants.parenleft = "parenleft?.size#4"
//
//	[MathVariants.VerticalComponents.parenleft]
//	parts = [
//	    { name = "parenleft.bot" },
//	    { name = "parenleft.ext", extender = true },
//	    { name = "parenleft.top" },
//	]
type Document struct {
	MathConstants map[string]Values `toml:"MathConstants"`
	MathGlyphInfo GlyphInfoDoc      `toml:"MathGlyphInfo"`
	MathVariants  VariantsDoc       `toml:"MathVariants"`
}

// GlyphInfoDoc is section MathGlyphInfo of a master data document.
type GlyphInfoDoc struct {
	ItalicCorrection map[string]Values `toml:"ItalicCorrection"`
	TopAccent        map[string]Values `toml:"TopAccent"`
	ExtendedShapes   NameList          `toml:"ExtendedShapes"`
}

// VariantsDoc is section MathVariants of a master data document.
type VariantsDoc struct {
	MinConnectorOverlap  Values                 `toml:"MinConnectorOverlap"`
	VerticalVariants     map[string]NameList    `toml:"VerticalVariants"`
	HorizontalVariants   map[string]NameList    `toml:"HorizontalVariants"`
	VerticalComponents   map[string]AssemblyDoc `toml:"VerticalComponents"`
	HorizontalComponents map[string]AssemblyDoc `toml:"HorizontalComponents"`
}

// AssemblyDoc defines the glyph assembly of a stretchy glyph.
type AssemblyDoc struct {
	Italic Values    `toml:"italic"`
	Parts  []PartDoc `toml:"parts"`
}

// PartDoc defines a part of a glyph assembly. Values not set explicitly are
// derived from the font source.
type PartDoc struct {
	Name           string `toml:"name"`
	Extender       bool   `toml:"extender"`
	StartConnector Values `toml:"startConnector"`
	EndConnector   Values `toml:"endConnector"`
	FullAdvance    Values `toml:"fullAdvance"`
}

// ParseDocument parses a master data document.
func ParseDocument(text string) (*Document, error) {
	doc := &Document{}
	md, err := toml.Decode(text, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		tracer().Infof("master data: ignoring unknown keys %s", strings.Join(keys, ", "))
	}
	return doc, nil
}

// ReadDocument reads a master data document from a file.
func ReadDocument(path string) (*Document, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// --- Name patterns ---------------------------------------------------------

// ExpandName expands a glyph name pattern:
//
//	base?suffix#N  →  base, base+suffix01, …, base+suffixNN
//	base#N         →  base01, …, baseNN
//
// Any other name stands for itself.
func ExpandName(s string) []string {
	if strings.Count(s, "?") == 1 {
		base, suffix, _ := strings.Cut(s, "?")
		names := []string{base}
		for _, sfx := range expandHash(suffix) {
			names = append(names, base+sfx)
		}
		return names
	}
	return expandHash(s)
}

func expandHash(s string) []string {
	if strings.Count(s, "#") != 1 {
		return []string{s}
	}
	base, num, _ := strings.Cut(s, "#")
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return []string{s}
	}
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("%s%02d", base, i+1)
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
