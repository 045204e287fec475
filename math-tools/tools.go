/*
Command math-tools builds math font families and inspects their fonts.

	math-tools build <source> <mathdata>           compile instances and add MATH tables
	math-tools math <source> <mathdata> <fontdir>  add MATH tables to compiled fonts
	math-tools font <font>                         print a font summary
	math-tools accents <source>                    print top accent hints per master
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/npillmayer/otmath"
	"github.com/npillmayer/otmath/build"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("math-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for building OpenType MATH tables of multi-master math fonts.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("build").
		SetDescription("Compile all active instances of a font source and add MATH tables.").
		SetShortDescription("build font family").
		AddArgument("source", "Glyphs source (.glyphs or .glyphspackage)", "").
		AddArgument("mathdata", "TOML master data", "").
		AddFlag("output,o", "output directory", commando.String, "build").
		AddFlag("compiler,c", "compiler command template", commando.String, build.DefaultCompiler).
		AddFlag("workers,w", "parallel compiler runs (0 = one per CPU)", commando.Int, 0).
		AddFlag("skip-compile,s", "use fonts already present in the output directory", commando.Bool, nil).
		AddFlag("instance,i", "instances to build (comma separated, - for all)", commando.String, "-").
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Info").
		SetAction(runBuildCommand)

	commando.
		Register("math").
		SetDescription("Add MATH tables to compiled instances of a font source.").
		SetShortDescription("add MATH tables").
		AddArgument("source", "Glyphs source (.glyphs or .glyphspackage)", "").
		AddArgument("mathdata", "TOML master data", "").
		AddArgument("fontdir", "directory of compiled fonts", "build").
		AddFlag("instance,i", "instances to process (comma separated, - for all)", commando.String, "-").
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Info").
		SetAction(runMathCommand)

	commando.
		Register("font").
		SetDescription("Print diagnostics and MATH table information for an OpenType font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "OpenType font file path", "").
		AddFlag("errors,e", "list the issues found in the font", commando.Bool, nil).
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runFontCommand)

	commando.
		Register("accents").
		SetDescription("Print top accent attachment hints from anchors and outlines, per master. The MATH table uses the master data only.").
		SetShortDescription("top accent hints").
		AddArgument("source", "Glyphs source (.glyphs or .glyphspackage)", "").
		AddFlag("glyphs,g", "glyphs to show (comma separated, - for all)", commando.String, "-").
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runAccentsCommand)

	commando.Parse(nil)
}

func runBuildCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(mustFlagString(flags["trace"], "trace"))
	cfg := &build.Config{
		Source:      strings.TrimSpace(args["source"].Value),
		MathData:    strings.TrimSpace(args["mathdata"].Value),
		OutputDir:   mustFlagString(flags["output"], "output"),
		Compiler:    mustFlagString(flags["compiler"], "compiler"),
		Workers:     mustFlagInt(flags["workers"], "workers"),
		SkipCompile: mustFlagBool(flags["skip-compile"], "skip-compile"),
		Instances:   splitList(mustFlagString(flags["instance"], "instance")),
	}
	runBuild(cfg)
}

func runMathCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(mustFlagString(flags["trace"], "trace"))
	cfg := &build.Config{
		Source:      strings.TrimSpace(args["source"].Value),
		MathData:    strings.TrimSpace(args["mathdata"].Value),
		OutputDir:   strings.TrimSpace(args["fontdir"].Value),
		SkipCompile: true,
		Instances:   splitList(mustFlagString(flags["instance"], "instance")),
	}
	runBuild(cfg)
}

func runBuild(cfg *build.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	report, err := otmath.Build(ctx, cfg)
	if report != nil {
		printReport(report)
	}
	if err != nil {
		fatalf("build failed: %v", err)
	}
	pterm.Success.Printf("built %d instances\n", len(report.Instances))
}

func printReport(report *build.Report) {
	if len(report.Warnings) > 0 {
		pterm.Warning.Printf("%d master data warnings\n", len(report.Warnings))
		for _, w := range report.Warnings {
			pterm.Println("  " + w.String())
		}
	}
	if len(report.Instances) > 0 {
		data := [][]string{
			{"Instance", "Font", "Warnings"},
		}
		for _, inst := range report.Instances {
			data = append(data, []string{inst.Instance, inst.Path, fmt.Sprintf("%d", len(inst.Table.Warnings()))})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		for _, inst := range report.Instances {
			for _, w := range inst.Table.Warnings() {
				pterm.Printf("  %s: %s\n", inst.Instance, w)
			}
		}
	}
	for _, s := range report.Stages {
		pterm.Printf("%-40s %s\n", s.Name, s.Elapsed)
	}
}

// --- Helpers ----------------------------------------------------------

func setupTracing(level string) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":        "go",
		"trace.font.math":        level,
		"trace.font.math.glyphs": level,
		"trace.font.opentype":    "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

// splitList splits a comma separated list; "-" denotes an empty list.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "-" || s == "" {
		return nil
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return strings.TrimSpace(s)
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "math-tools: "+format+"\n", args...)
	os.Exit(1)
}
