package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/otmath"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/otmath/otquery"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(mustFlagString(flags["trace"], "trace"))
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	otf, err := otmath.ReadFont(fontPath)
	if err != nil {
		fatalf("cannot load font %s: %v", fontPath, err)
	}

	fmt.Printf("Path: %s\n", fontPath)
	fmt.Printf("Type: %s\n", otquery.FontType(otf))
	names := otquery.NameInfo(otf)
	for _, key := range []string{"family", "subfamily", "version", "postscript"} {
		if v := names[key]; v != "" {
			fmt.Printf("%s: %s\n", strings.ToUpper(key[:1])+key[1:], v)
		}
	}

	tags := otf.TableTags()
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	fmt.Printf("Tables (%d):", len(tags))
	for _, tag := range tags {
		fmt.Printf(" %s", tag.String())
	}
	fmt.Println()

	if h, ok := otquery.HeadInfo(otf); ok {
		fmt.Printf("Revision: %.3f, units/em: %d, modified: %s\n",
			h.Revision(), h.UnitsPerEm, h.ModifiedTime().Format("2006-01-02"))
		if !otquery.ChecksumOK(otf) {
			pterm.Warning.Println("font checksum does not match head.checkSumAdjustment")
		}
	}
	if m, ok := otquery.MaxPInfo(otf); ok {
		fmt.Printf("Glyphs: %d\n", m.NumGlyphs)
	}
	printMathSummary(otf)

	issues := otf.Issues()
	fmt.Printf("Issues: %d\n", len(issues))
	if mustFlagBool(flags["errors"], "errors") {
		for _, issue := range issues {
			fmt.Printf("issue: %s\n", issue)
		}
	}
}

func printMathSummary(otf *ot.Font) {
	m, ok := otquery.MathInfo(otf)
	if !ok {
		fmt.Println("MATH: none")
		return
	}
	off, size := otf.Table(ot.T("MATH")).Extent()
	fmt.Printf("MATH: version %d.%d, offset=%d size=%d\n", m.MajorVersion, m.MinorVersion, off, size)
	data := [][]string{
		{"Property", "Value"},
		{"AxisHeight", fmt.Sprintf("%d", m.AxisHeight)},
		{"MinConnectorOverlap", fmt.Sprintf("%d", m.MinConnectorOverlap)},
		{"Italic corrections", fmt.Sprintf("%d", m.ItalicCorrections)},
		{"Top accents", fmt.Sprintf("%d", m.TopAccents)},
		{"Extended shapes", fmt.Sprintf("%d", m.ExtendedShapes)},
		{"Kern info", fmt.Sprintf("%v", m.HasKernInfo)},
		{"Constructions (v/h)", fmt.Sprintf("%d / %d", m.Constructions[ot.MathVertical], m.Constructions[ot.MathHorizontal])},
		{"Assemblies (v/h)", fmt.Sprintf("%d / %d", m.Assemblies[ot.MathVertical], m.Assemblies[ot.MathHorizontal])},
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
