/*
Package otquery answers questions about compiled OpenType fonts.

Queries decode the few tables a math font build has to check ('head',
'maxp', 'name' and 'MATH') from a parsed ot.Font and return plain values,
suitable for printing by command line tools.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
