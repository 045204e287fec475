/*
Package mathdata loads the per-master math data of a font.

Math data comes from two sources: a TOML document with global math
constants, per-glyph metrics and the definitions of stretchy glyphs, and
per-glyph annotations in the user data of the master layers of the font
source. Metrics which depend on glyph geometry, i.e. advances of size
variants and of assembly parts, are measured from the (decomposed) outlines.

All quantities are lists of values, one per master in master index order.
Lists with fewer values than there are masters are repaired by replicating
their first value; this, and references to glyphs missing from the font
source, are reported as warnings but do not stop loading.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package mathdata

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.math'
func tracer() tracing.Trace {
	return tracing.Select("font.math")
}
