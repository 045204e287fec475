/*
Package glyphs models multi-master font sources and reads them from files
of the Glyphs font editor.

A source consists of masters (the designs at fixed positions on the weight
axis), glyphs with one or more layers per master, and instances, which are
the fonts to be produced from the masters. Layers hold shapes, i.e. paths and
placed references to other glyphs (components). Glyphs declaring smart axes
are "smart glyphs": components referencing them carry an axis value and are
resolved by interpolating between two part layers (see package decompose).

Both the Glyphs 2 and the Glyphs 3 file formats are read, either as a single
`.glyphs` file or as a `.glyphspackage` directory. Only the parts of a source
relevant for building math tables are kept.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyphs

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.math.glyphs'
func tracer() tracing.Trace {
	return tracing.Select("font.math.glyphs")
}
