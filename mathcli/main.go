/*
Command mathcli is an interactive inspector for the MATH table of a
compiled OpenType font.

Usage:

	mathcli -font Math-Regular.otf [-trace Debug|Info|Error]

Enter 'help' at the prompt for a list of commands.
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otmath"
	"github.com/npillmayer/otmath/internal/fontload"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.math'
func tracer() tracing.Trace {
	return tracing.Select("font.math")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.font.math":     "Info",
		"trace.font.opentype": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	flag.Parse()
	if *fontname == "" && flag.NArg() > 0 {
		*fontname = flag.Arg(0)
	}
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to the MATH table inspector")
	//
	// set up REPL
	repl, err := readline.New("math > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname); err != nil {
		pterm.Error.Println(err)
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font  *ot.Font
	math  *ot.MathTable
	order *fontload.GlyphOrder // may be nil for fonts without glyph names
	repl  *readline.Instance
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		op := parseCommand(line)
		err, quit := intp.execute(op)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a parsed command line.
type Op struct {
	code int
	args []string
}

const (
	QUIT int = iota
	HELP
	CONSTANTS
	CONSTANT
	ITALIC
	ACCENT
	EXTENDED
	VARIANTS
	ASSEMBLY
	GLYPH
)

var opMap = map[string]int{
	"quit":      QUIT,
	"exit":      QUIT,
	"help":      HELP,
	"constants": CONSTANTS,
	"constant":  CONSTANT,
	"italic":    ITALIC,
	"accent":    ACCENT,
	"extended":  EXTENDED,
	"variants":  VARIANTS,
	"assembly":  ASSEMBLY,
	"glyph":     GLYPH,
}

// parseCommand splits a command line into an op-code and its arguments.
// Unknown commands show the help text.
func parseCommand(line string) *Op {
	words := strings.Fields(line)
	if len(words) == 0 {
		return &Op{code: HELP}
	}
	code, ok := opMap[strings.ToLower(words[0])]
	if !ok {
		tracer().Infof("unknown command %q", words[0])
		return &Op{code: HELP}
	}
	return &Op{code: code, args: words[1:]}
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:      quitOp,
	HELP:      helpOp,
	CONSTANTS: constantsOp,
	CONSTANT:  constantOp,
	ITALIC:    italicOp,
	ACCENT:    accentOp,
	EXTENDED:  extendedOp,
	VARIANTS:  variantsOp,
	ASSEMBLY:  assemblyOp,
	GLYPH:     glyphOp,
}

func (intp *Intp) execute(op *Op) (err error, stop bool) {
	tracer().Debugf("op = %v", op)
	f, ok := commandFn[op.code]
	if !ok {
		return fmt.Errorf("unknown command code: %d", op.code), false
	}
	if op.code != QUIT && op.code != HELP && op.code != GLYPH && intp.math == nil {
		return errNoMath, false
	}
	return f(intp, op)
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(path string) (err error) {
	if path == "" {
		return errors.New("no font given, use -font <file>")
	}
	if intp.font, err = otmath.ReadFont(path); err != nil {
		return err
	}
	intp.math = intp.font.Math
	family, subfamily := otmath.FamilyName(intp.font)
	pterm.Printf("font %s %s, tables: %v\n", family, subfamily, intp.font.TableTags())
	if intp.math == nil {
		pterm.Warning.Println("font has no MATH table")
	}
	sf, err := fontload.ParseOpenTypeFont(intp.font.Binary())
	if err != nil {
		tracer().Infof("glyph names not available: %v", err)
		return nil
	}
	if intp.order, err = sf.GlyphOrder(nil, nil); err != nil {
		tracer().Infof("glyph names not available: %v", err)
		intp.order = nil
	}
	return nil
}

// ----------------------------------------------------------------------

var errNoMath = errors.New("font has no MATH table")
var errNoGlyph = errors.New("glyph argument missing")

// glyph resolves a glyph argument, either a glyph name or a numeric glyph ID.
func (intp *Intp) glyph(arg string) (ot.GlyphIndex, error) {
	if arg == "" {
		return 0, errNoGlyph
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(arg, "#")); err == nil {
		if n < 0 || n > 0xffff {
			return 0, fmt.Errorf("glyph ID out of range: %d", n)
		}
		return ot.GlyphIndex(n), nil
	}
	if intp.order == nil {
		return 0, fmt.Errorf("font has no glyph names, use a glyph ID instead of %q", arg)
	}
	gid, ok := intp.order.GlyphID(arg)
	if !ok {
		return 0, fmt.Errorf("no glyph named %q", arg)
	}
	return gid, nil
}

// glyphName returns a printable name for a glyph.
func (intp *Intp) glyphName(gid ot.GlyphIndex) string {
	if intp.order != nil {
		if name := intp.order.GlyphName(gid); name != "" {
			return name
		}
	}
	return fmt.Sprintf("#%d", gid)
}

func direction(arg string) (ot.MathDirection, error) {
	switch strings.ToLower(arg) {
	case "v", "vertical":
		return ot.MathVertical, nil
	case "h", "horizontal":
		return ot.MathHorizontal, nil
	}
	return ot.MathVertical, fmt.Errorf("direction must be v or h, is %q", arg)
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}
