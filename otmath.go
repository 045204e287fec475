/*
Package otmath builds OpenType MATH tables for multi-master math fonts.

A math font family is designed in a Glyphs source with several masters, and
produced as a set of compiled OpenType instances. The math data of the
family is kept per master: global math constants, italic corrections and
top accent positions of glyphs, and the size variants and assemblies of
stretchy glyphs. For each instance, this data is interpolated and written
into the compiled font as table 'MATH'.

We use the following terms:

▪︎ A "master" is a design of the font family at a certain position of the
weight axis. Every glyph has one outline per master.

▪︎ An "instance" is a producible font of the family, described as a
weighted sum of masters. An example is "Fira Math Regular".

▪︎ "Master data" is a list of values per quantity, one for each master.

The pipeline is split into packages: glyphs reads font sources, decompose
flattens smart components and nested components, interp describes
instances, mathdata loads master data, and mathtable instantiates and
encodes MATH tables. Package build runs the complete pipeline.

# Links

OpenType MATH table:
https://learn.microsoft.com/en-us/typography/opentype/spec/math

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otmath

import (
	"context"
	"fmt"
	"os"

	"github.com/npillmayer/otmath/build"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/otmath/otquery"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.math'
func tracer() tracing.Trace {
	return tracing.Select("font.math")
}

// Build builds a math font family as configured by cfg.
func Build(ctx context.Context, cfg *build.Config) (*build.Report, error) {
	return build.Build(ctx, cfg)
}

// ReadFont reads and parses a compiled OpenType font.
func ReadFont(path string) (*ot.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	otf, err := FromBinary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return otf, nil
}

// FromBinary parses raw OpenType bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream.
// It must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*ot.Font, error) {
	otf, err := ot.Parse(data)
	if err != nil {
		return nil, err
	}
	for _, issue := range otf.Issues() {
		tracer().Infof("font: %s", issue)
	}
	return otf, nil
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist or if records cannot be
// decoded by the current name-table reader.
func FamilyName(f *ot.Font) (family, subfamily string) {
	for nameId, stringValue := range otquery.NamesRange(f) {
		switch nameId {
		case sfnt.NameIDFamily:
			if family == "" {
				family = stringValue
			}
		case sfnt.NameIDSubfamily:
			if subfamily == "" {
				subfamily = stringValue
			}
		}
	}
	return
}

// HasMath reports whether a font carries a MATH table which can be decoded.
func HasMath(f *ot.Font) bool {
	return f != nil && f.Math != nil
}
