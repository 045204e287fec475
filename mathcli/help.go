package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(getOptArg(op.args, 0))
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	switch strings.ToLower(topic) {
	case "variants", "assembly", "construction":
		pterm.Info.Println("MathVariants / GlyphAssembly")
		pterm.Println(`
	A glyph may grow vertically or horizontally, e.g. a parenthesis or an arrow.
	Its construction lists pre-built size variants, each with its advance in the
	direction of growth:
	+-------------------+---------+
	| Variant glyph     | Advance |
	+-------------------+---------+
	If no variant is large enough, the glyph is assembled from parts. Extender
	parts may be repeated; parts overlap by at least MinConnectorOverlap:
	+------+-----------------+---------------+--------------+----------+
	| Part | Start connector | End connector | Full advance | Extender |
	+------+-----------------+---------------+--------------+----------+

	variants v|h [glyph]   size variants of a glyph, or all glyphs with a construction
	assembly v|h [glyph]   glyph assembly of a glyph
	`)
	case "italic", "accent", "extended", "glyphinfo":
		pterm.Info.Println("MathGlyphInfo")
		pterm.Println(`
	MathGlyphInfo holds per-glyph metrics:
	italic corrections, top accent attachment positions and the set of
	extended shapes. Values are kept in arrays parallel to a coverage table.

	italic [glyph]         italic correction(s)
	accent [glyph]         top accent attachment(s)
	extended               extended shape glyphs
	`)
	case "constant", "constants":
		pterm.Info.Println("MathConstants")
		pterm.Println(`
	MathConstants holds 56 global values in font units or percent.

	constants              print all constants
	constant <name>        print a single constant, e.g. AxisHeight
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	constants              print all math constants
	constant <name>        print a single math constant
	italic [glyph]         italic corrections
	accent [glyph]         top accent attachments
	extended               extended shapes
	variants v|h [glyph]   size variants
	assembly v|h <glyph>   glyph assembly
	glyph <name|gid>       math data of a glyph
	help [topic]           topics: constants, glyphinfo, variants
	quit                   leave

	Glyphs are given by name or by glyph ID (e.g. #42).
	`)
	}
}
