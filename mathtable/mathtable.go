/*
Package mathtable creates OpenType MATH tables for font instances.

A MathTable holds the math data of a single font instance: the global math
constants, glyph-specific metrics and the constructions of stretchy glyphs.
Tables are instantiated from per-master data (see package mathdata) with an
interpolation (see package interp), and are encoded to the binary format of
OpenType table 'MATH'. Glyphs are referenced by name; names are resolved to
glyph IDs of a concrete compiled font at encoding time.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package mathtable

import (
	"fmt"

	"github.com/npillmayer/otmath/interp"
	"github.com/npillmayer/otmath/mathdata"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.math'
func tracer() tracing.Trace {
	return tracing.Select("font.math")
}

// MathTable is the math data of a font instance.
type MathTable struct {
	Constants           Constants
	MinConnectorOverlap int
	ItalicCorrection    map[string]int
	TopAccent           map[string]int
	ExtendedShapes      []string
	Variants            [2]map[string][]Variant // indexed by ot.MathDirection
	Assemblies          [2]map[string]Assembly  // indexed by ot.MathDirection
	warnings            []Warning
}

// Variant is a size variant of a glyph with its advance in the direction of
// growth.
type Variant struct {
	Glyph   string
	Advance int
}

// Part is a part of a glyph assembly.
type Part struct {
	Glyph          string
	StartConnector int
	EndConnector   int
	FullAdvance    int
	Extender       bool
}

// Flags returns the part flags of part p as encoded in a GlyphPartRecord.
func (p Part) Flags() uint16 {
	if p.Extender {
		return ot.PartFlagExtender
	}
	return ot.PartFlagReserved
}

// Assembly is the recipe for building a glyph of arbitrary size from parts.
type Assembly struct {
	Italic int
	Parts  []Part
}

// Warning is a cross-reference problem found while instantiating or encoding
// a math table. The affected entry has been left out.
type Warning struct {
	Glyph string
	Issue string
}

func (w Warning) String() string {
	return fmt.Sprintf("glyph %q: %s", w.Glyph, w.Issue)
}

// Warnings returns the warnings collected for table t.
func (t *MathTable) Warnings() []Warning {
	return append([]Warning(nil), t.warnings...)
}

func (t *MathTable) warn(glyph, issue string) {
	w := Warning{Glyph: glyph, Issue: issue}
	tracer().Infof("MATH: %s", w)
	t.warnings = append(t.warnings, w)
}

// New creates an empty math table.
func New() *MathTable {
	t := &MathTable{
		ItalicCorrection: make(map[string]int),
		TopAccent:        make(map[string]int),
	}
	for dir := range t.Variants {
		t.Variants[dir] = make(map[string][]Variant)
		t.Assemblies[dir] = make(map[string]Assembly)
	}
	return t
}

// Instantiate creates the math table of a font instance. Glyphs listed in
// removed are left out of the italic correction and top accent tables.
func Instantiate(md *mathdata.MasterData, ip interp.Interpolation, removed []string) (*MathTable, error) {
	if err := ip.Validate(md.MasterCount); err != nil {
		return nil, err
	}
	t := New()
	for name, values := range md.Constants {
		if err := t.Constants.Set(name, ip.Round(values)); err != nil {
			return nil, err
		}
	}
	t.MinConnectorOverlap = ip.Round(md.MinConnectorOverlap)
	skip := make(map[string]bool, len(removed))
	for _, name := range removed {
		if !md.HasGlyph(name) {
			t.warn(name, "listed for removal but not in font source")
		}
		skip[name] = true
	}
	for name, values := range md.ItalicCorrection {
		if !skip[name] {
			t.ItalicCorrection[name] = ip.Round(values)
		}
	}
	for name, values := range md.TopAccent {
		if !skip[name] {
			t.TopAccent[name] = ip.Round(values)
		}
	}
	t.ExtendedShapes = append(t.ExtendedShapes, md.ExtendedShapes...)
	for dir := range md.Variants {
		for base, variants := range md.Variants[dir] {
			vs := make([]Variant, len(variants))
			for i, v := range variants {
				vs[i] = Variant{Glyph: v.Glyph, Advance: ip.Round(v.Advance)}
			}
			t.Variants[dir][base] = vs
		}
		for base, asm := range md.Assemblies[dir] {
			a := Assembly{Italic: ip.Round(asm.Italic), Parts: make([]Part, len(asm.Parts))}
			for i, p := range asm.Parts {
				a.Parts[i] = Part{
					Glyph:          p.Glyph,
					StartConnector: ip.Round(p.StartConnector),
					EndConnector:   ip.Round(p.EndConnector),
					FullAdvance:    ip.Round(p.FullAdvance),
					Extender:       p.Extender,
				}
			}
			t.Assemblies[dir][base] = a
		}
	}
	tracer().Debugf("instantiated MATH table with interpolation %v", ip)
	return t, nil
}
