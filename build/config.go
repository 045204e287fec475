package build

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/npillmayer/otmath/glyphs"
)

// DefaultCompiler is the command template used to compile a font instance.
// Placeholders {source}, {instance}, {output} and {outdir} are replaced for
// each instance; {source} denotes a decomposed copy of Config.Source.
const DefaultCompiler = "fontmake -g {source} -i {instance} -o otf --output-path {output}"

// ErrConfig is returned for invalid build configurations.
var ErrConfig = errors.New("invalid build configuration")

// Config holds the settings of a build. Build does not change it.
type Config struct {
	Source      string   // Glyphs source, a .glyphs file or a .glyphspackage directory
	MathData    string   // TOML master data
	OutputDir   string   // compiled fonts are read from and written to here
	Compiler    string   // command template, see DefaultCompiler
	Workers     int      // parallel compiler runs; < 1 means one per CPU
	SkipCompile bool     // use fonts already present in OutputDir
	Instances   []string // instance names to build; empty means all active ones
	Runner      Runner   // runs compiler commands; nil means os/exec
}

// Runner runs an external command.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// execRunner runs commands as sub-processes.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		tracer().Errorf("%s failed:\n%s", argv[0], strings.TrimSpace(string(out)))
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	tracer().Debugf("%s: %s", argv[0], strings.TrimSpace(string(out)))
	return nil
}

// Validate checks cfg for missing settings.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("%w: no configuration", ErrConfig)
	}
	if cfg.Source == "" {
		return fmt.Errorf("%w: no font source", ErrConfig)
	}
	if cfg.MathData == "" {
		return fmt.Errorf("%w: no master data document", ErrConfig)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("%w: no output directory", ErrConfig)
	}
	if !cfg.SkipCompile && len(strings.Fields(cfg.compiler())) == 0 {
		return fmt.Errorf("%w: empty compiler command", ErrConfig)
	}
	return nil
}

func (cfg *Config) compiler() string {
	if cfg.Compiler == "" {
		return DefaultCompiler
	}
	return cfg.Compiler
}

func (cfg *Config) workers() int {
	if cfg.Workers < 1 {
		return runtime.NumCPU()
	}
	return cfg.Workers
}

func (cfg *Config) runner() Runner {
	if cfg.Runner == nil {
		return execRunner{}
	}
	return cfg.Runner
}

// command returns the compiler command line for an instance. source is the
// decomposed copy of cfg.Source.
func (cfg *Config) command(inst glyphs.Instance, source, output string) []string {
	r := strings.NewReplacer(
		"{source}", source,
		"{instance}", inst.Name,
		"{output}", output,
		"{outdir}", cfg.OutputDir,
	)
	argv := strings.Fields(cfg.compiler())
	for i, arg := range argv {
		argv[i] = r.Replace(arg)
	}
	return argv
}

// selectInstances returns the active instances of f which pass the instance
// filter of cfg, in source order.
func (cfg *Config) selectInstances(f *glyphs.Font) ([]glyphs.Instance, error) {
	var selected []glyphs.Instance
	for _, inst := range f.Instances {
		if !inst.Active {
			tracer().Debugf("skipping inactive instance %s", inst.Name)
			continue
		}
		if len(cfg.Instances) > 0 && !slices.Contains(cfg.Instances, inst.Name) {
			continue
		}
		selected = append(selected, inst)
	}
	for _, name := range cfg.Instances {
		if !slices.ContainsFunc(selected, func(inst glyphs.Instance) bool { return inst.Name == name }) {
			return nil, fmt.Errorf("%w: no active instance %q", ErrConfig, name)
		}
	}
	return selected, nil
}

// OutputPath returns the path of the compiled font of an instance:
// the family name without spaces, a dash and the instance name.
func OutputPath(dir, familyName, instance string) string {
	family := strings.ReplaceAll(familyName, " ", "")
	return filepath.Join(dir, family+"-"+instance+".otf")
}
