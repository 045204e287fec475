package main

import (
	"fmt"

	"github.com/benoitkugler/textlayout/fonts/glyphsnames"
	"github.com/npillmayer/otmath/ot"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

func constantsOp(intp *Intp, op *Op) (error, bool) {
	data := [][]string{
		{"#", "Constant", "Value"},
	}
	for i, name := range ot.MathConstantNames {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			name,
			fmt.Sprintf("%d", intp.math.Constant(i)),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func constantOp(intp *Intp, op *Op) (error, bool) {
	name := getOptArg(op.args, 0)
	v, ok := intp.math.ConstantByName(name)
	if !ok {
		return fmt.Errorf("unknown math constant %q", name), false
	}
	pterm.Printf("%s = %d\n", name, v)
	return nil, false
}

func italicOp(intp *Intp, op *Op) (error, bool) {
	return intp.printValueTable("italic correction", op,
		intp.math.ItalicsCorrectionGlyphs(), intp.math.ItalicsCorrectionValues(),
		intp.math.ItalicsCorrection)
}

func accentOp(intp *Intp, op *Op) (error, bool) {
	return intp.printValueTable("top accent attachment", op,
		intp.math.TopAccentGlyphs(), intp.math.TopAccentValues(),
		intp.math.TopAccentAttachment)
}

// printValueTable prints either the value for a single glyph (if given as an
// argument) or all pairs of glyphs and values.
func (intp *Intp) printValueTable(what string, op *Op, glyphs []ot.GlyphIndex, values []int16,
	lookup func(ot.GlyphIndex) ot.Option[int16]) (error, bool) {
	//
	if arg := getOptArg(op.args, 0); arg != "" {
		gid, err := intp.glyph(arg)
		if err != nil {
			return err, false
		}
		v, ok := lookup(gid).Unwrap()
		if !ok {
			pterm.Printf("%s has no %s\n", intp.glyphName(gid), what)
			return nil, false
		}
		pterm.Printf("%s of %s = %d\n", what, intp.glyphName(gid), v)
		return nil, false
	}
	pterm.Printf("%d glyphs with %s\n", len(glyphs), what)
	if len(glyphs) == 0 {
		return nil, false
	}
	data := [][]string{
		{"GID", "Glyph", "Value"},
	}
	for i, gid := range glyphs {
		value := "?"
		if i < len(values) {
			value = fmt.Sprintf("%d", values[i])
		}
		data = append(data, []string{fmt.Sprintf("%d", gid), intp.glyphName(gid), value})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func extendedOp(intp *Intp, op *Op) (error, bool) {
	glyphs := intp.math.ExtendedShapes().Glyphs()
	pterm.Printf("%d extended shapes\n", len(glyphs))
	for _, gid := range glyphs {
		pterm.Printf("  %5d  %s\n", gid, intp.glyphName(gid))
	}
	return nil, false
}

func (intp *Intp) construction(op *Op) (ot.MathGlyphConstruction, ot.GlyphIndex, error) {
	dir, err := direction(getOptArg(op.args, 0))
	if err != nil {
		return ot.MathGlyphConstruction{}, 0, err
	}
	arg := getOptArg(op.args, 1)
	if arg == "" {
		glyphs := intp.math.ConstructionGlyphs(dir)
		names := make([]string, len(glyphs))
		for i, gid := range glyphs {
			names[i] = intp.glyphName(gid)
		}
		pterm.Printf("%d glyphs with %s constructions: %v\n", len(glyphs), dir, names)
		return ot.MathGlyphConstruction{}, 0, errNoGlyph
	}
	gid, err := intp.glyph(arg)
	if err != nil {
		return ot.MathGlyphConstruction{}, 0, err
	}
	c, ok := intp.math.Construction(dir, gid).Unwrap()
	if !ok {
		return c, gid, fmt.Errorf("%s has no %s construction", intp.glyphName(gid), dir)
	}
	return c, gid, nil
}

func variantsOp(intp *Intp, op *Op) (error, bool) {
	c, gid, err := intp.construction(op)
	if err == errNoGlyph {
		return nil, false
	} else if err != nil {
		return err, false
	}
	pterm.Printf("%s has %d size variants\n", intp.glyphName(gid), len(c.Variants))
	data := [][]string{
		{"GID", "Variant", "Advance"},
	}
	for _, v := range c.Variants {
		data = append(data, []string{
			fmt.Sprintf("%d", v.Glyph),
			intp.glyphName(v.Glyph),
			fmt.Sprintf("%d", v.Advance),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func assemblyOp(intp *Intp, op *Op) (error, bool) {
	c, gid, err := intp.construction(op)
	if err == errNoGlyph {
		return nil, false
	} else if err != nil {
		return err, false
	}
	asm, ok := c.Assembly.Unwrap()
	if !ok {
		pterm.Printf("%s has no glyph assembly\n", intp.glyphName(gid))
		return nil, false
	}
	pterm.Printf("%s: assembly of %d parts, italic correction %d\n",
		intp.glyphName(gid), len(asm.Parts), asm.ItalicsCorrection)
	data := [][]string{
		{"GID", "Part", "Start", "End", "Full", "Extender"},
	}
	for _, p := range asm.Parts {
		ext := ""
		if p.IsExtender() {
			ext = "yes"
		}
		data = append(data, []string{
			fmt.Sprintf("%d", p.Glyph),
			intp.glyphName(p.Glyph),
			fmt.Sprintf("%d", p.StartConnector),
			fmt.Sprintf("%d", p.EndConnector),
			fmt.Sprintf("%d", p.FullAdvance),
			ext,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func glyphOp(intp *Intp, op *Op) (error, bool) {
	gid, err := intp.glyph(getOptArg(op.args, 0))
	if err != nil {
		return err, false
	}
	name := intp.glyphName(gid)
	pterm.Printf("glyph %d = %s\n", gid, name)
	if r, ok := glyphsnames.GlyphToRune(name); ok && r > 0 {
		pterm.Printf("  %#U %s\n", r, runenames.Name(r))
	}
	if intp.math == nil {
		return nil, false
	}
	if v, ok := intp.math.ItalicsCorrection(gid).Unwrap(); ok {
		pterm.Printf("  italic correction     %d\n", v)
	}
	if v, ok := intp.math.TopAccentAttachment(gid).Unwrap(); ok {
		pterm.Printf("  top accent attachment %d\n", v)
	}
	if intp.math.ExtendedShapes().Contains(gid) {
		pterm.Printf("  is an extended shape\n")
	}
	for _, dir := range []ot.MathDirection{ot.MathVertical, ot.MathHorizontal} {
		if c, ok := intp.math.Construction(dir, gid).Unwrap(); ok {
			pterm.Printf("  %s construction: %d variants, assembly: %v\n",
				dir, len(c.Variants), c.Assembly.IsSome())
		}
	}
	return nil, false
}
