package otquery

import (
	"github.com/npillmayer/otmath/ot"
)

// FontType returns the kind of outlines of a font, as indicated by the
// SFNT version of its table directory.
func FontType(otf *ot.Font) string {
	if otf == nil || otf.Header == nil {
		return "<empty>"
	}
	switch otf.Header.FontType {
	case ot.FontTypeCFF:
		return "OpenType"
	case ot.FontTypeTrueType:
		return "TrueType"
	case ot.FontTypeApple:
		return "Apple TrueType"
	}
	return "unknown"
}

// MathSummary gives an overview of the MATH table of a font.
type MathSummary struct {
	MajorVersion, MinorVersion uint16
	AxisHeight                 int
	MinConnectorOverlap        int
	ItalicCorrections          int // number of glyphs with an italic correction
	TopAccents                 int // number of glyphs with a top accent attachment
	ExtendedShapes             int
	HasKernInfo                bool
	Constructions              [2]int // glyphs with a construction, indexed by ot.MathDirection
	Assemblies                 [2]int // glyphs with an assembly, indexed by ot.MathDirection
}

// MathInfo summarizes the MATH table of a font.
// Returns (summary, true) on success, or (zero, false) if the font has no MATH table.
func MathInfo(otf *ot.Font) (MathSummary, bool) {
	var info MathSummary
	if otf == nil || otf.Math == nil {
		return info, false
	}
	m := otf.Math
	info.MajorVersion, info.MinorVersion = m.Version()
	info.AxisHeight, _ = m.ConstantByName("AxisHeight")
	info.MinConnectorOverlap = int(m.MinConnectorOverlap())
	info.ItalicCorrections = len(m.ItalicsCorrectionGlyphs())
	info.TopAccents = len(m.TopAccentGlyphs())
	info.ExtendedShapes = m.ExtendedShapes().Len()
	info.HasKernInfo = m.HasKernInfo()
	for _, dir := range []ot.MathDirection{ot.MathVertical, ot.MathHorizontal} {
		glyphs := m.ConstructionGlyphs(dir)
		info.Constructions[dir] = len(glyphs)
		for i := range glyphs {
			c, err := m.ConstructionAt(dir, i)
			if err != nil {
				tracer().Errorf("MATH %s construction #%d: %v", dir, i, err)
				continue
			}
			if c.Assembly.IsSome() {
				info.Assemblies[dir]++
			}
		}
	}
	return info, true
}
