/*
Package ot provides access to the tables of OpenType font files, with a focus
on the MATH table.

Intended audience for this package are tools which post-process compiled fonts:
they read a font's table directory, inspect or replace single tables and write
the font back. Package `ot` therefore interprets only a few tables:

▪︎ 'head' and 'maxp' for general font information

▪︎ 'MATH' for math layout data (constants, glyph info and glyph constructions)

All other tables are exposed as opaque byte segments. This is enough to
re-assemble a font with a replaced table: see Font.ReplaceTable and Assemble.

Parsing keeps the initial font binary in memory and does not copy out tables
into separate buffers. Typed tables are views onto the font data and decode
their records on demand.

# Status

No font collections nor variable fonts are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

// AssertEqualInt panics if a != b. It guards invariants of binary structures,
// which would otherwise silently produce corrupt tables.
func AssertEqualInt(name string, a, b int) {
	if a != b {
		panic(fmt.Sprintf("assertion [%s] failed: %d != %d", name, a, b))
	}
}
