/*
Package build runs the build pipeline of a math font family.

A build loads a Glyphs font source, decomposes its smart components and
nested components, loads the per-master math data and compiles every
selected instance to an OpenType font with an external compiler. The
compiler reads a decomposed copy of the source, written to a temporary
directory, never the source itself. Finally,
a MATH table is instantiated for each instance and written into the
compiled font.

Compiler runs are executed in parallel. If one of them fails, the others
are cancelled and the build fails as a whole. All other stages run
sequentially.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/npillmayer/otmath/decompose"
	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/otmath/internal/fontload"
	"github.com/npillmayer/otmath/interp"
	"github.com/npillmayer/otmath/mathdata"
	"github.com/npillmayer/otmath/mathtable"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
)

// tracer writes to trace with key 'font.math'
func tracer() tracing.Trace {
	return tracing.Select("font.math")
}

// Project is a font source together with its math data, ready to produce
// MATH tables for instances.
type Project struct {
	Font    *glyphs.Font
	Masters *interp.MasterSet
	Data    *mathdata.MasterData
}

// Stage is the timing of a build stage.
type Stage struct {
	Name    string
	Elapsed time.Duration
}

// InstanceResult describes the font built for an instance.
type InstanceResult struct {
	Instance string
	Path     string
	Table    *mathtable.MathTable
}

// Report summarizes a build.
type Report struct {
	Stages    []Stage
	Instances []InstanceResult
	Warnings  []mathdata.Warning // warnings from loading master data
}

func (r *Report) stage(name string, f func() error) error {
	tracer().Infof("%s ...", name)
	start := time.Now()
	err := f()
	elapsed := time.Since(start)
	r.Stages = append(r.Stages, Stage{Name: name, Elapsed: elapsed})
	if err != nil {
		tracer().Errorf("%s failed after %s: %v", name, elapsed.Round(time.Millisecond), err)
		return err
	}
	tracer().Infof("%s: elapsed %s", name, elapsed.Round(time.Millisecond))
	return nil
}

// Build runs all stages of a build.
func Build(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	report := &Report{}
	project, err := prepare(cfg, report)
	if err != nil {
		return report, err
	}
	report.Warnings = project.Data.Warnings()
	instances, err := cfg.selectInstances(project.Font)
	if err != nil {
		return report, err
	}
	if len(instances) == 0 {
		tracer().Infof("no active instances in %s", cfg.Source)
		return report, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return report, err
	}
	if !cfg.SkipCompile {
		workDir, err := os.MkdirTemp("", "otmath-")
		if err != nil {
			return report, err
		}
		defer os.RemoveAll(workDir)
		var source string
		err = report.stage("Writing decomposed source", func() (err error) {
			source, err = writeDecomposed(project.Font, cfg.Source, workDir)
			return
		})
		if err != nil {
			return report, err
		}
		err = report.stage("Compiling instances", func() error {
			return compile(ctx, cfg, project.Font, source, instances)
		})
		if err != nil {
			return report, err
		}
	}
	err = report.stage("Adding MATH tables", func() error {
		for _, inst := range instances {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := OutputPath(cfg.OutputDir, project.Font.FamilyName, inst.Name)
			tbl, err := project.AddMath(inst, path)
			if err != nil {
				return fmt.Errorf("instance %s: %w", inst.Name, err)
			}
			report.Instances = append(report.Instances, InstanceResult{
				Instance: inst.Name,
				Path:     path,
				Table:    tbl,
			})
		}
		return nil
	})
	return report, err
}

// Prepare loads the font source and the master data of a build.
func Prepare(cfg *Config) (*Project, error) {
	return prepare(cfg, &Report{})
}

func prepare(cfg *Config, report *Report) (*Project, error) {
	p := &Project{}
	err := report.stage(fmt.Sprintf("Parsing font source %q", cfg.Source), func() (err error) {
		p.Font, err = glyphs.ReadFile(cfg.Source)
		return
	})
	if err != nil {
		return nil, err
	}
	p.Masters = interp.NewMasterSet(p.Font.Masters)
	tracer().Debugf("masters: %s", p.Masters)
	err = report.stage("Decomposing components", func() error {
		return decompose.Font(p.Font)
	})
	if err != nil {
		return nil, err
	}
	err = report.stage(fmt.Sprintf("Loading master data %q", cfg.MathData), func() error {
		doc, err := mathdata.ReadDocument(cfg.MathData)
		if err != nil {
			return err
		}
		p.Data, err = mathdata.Load(doc, p.Font, p.Masters)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// writeDecomposed writes the decomposed font f to a single-file source in
// dir, named after the original source. Compilers never see smart components.
func writeDecomposed(f *glyphs.Font, original, dir string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)) + ".glyphs"
	path := filepath.Join(dir, name)
	if err := f.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// compile runs the compiler for all instances on the decomposed source, with
// at most cfg.Workers runs at a time. The first failure cancels all other runs.
func compile(ctx context.Context, cfg *Config, f *glyphs.Font, source string, instances []glyphs.Instance) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	runner := cfg.runner()
	for _, inst := range instances {
		output := OutputPath(cfg.OutputDir, f.FamilyName, inst.Name)
		argv := cfg.command(inst, source, output)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tracer().Debugf("compiling instance %s: %v", inst.Name, argv)
			start := time.Now()
			if err := runner.Run(ctx, argv); err != nil {
				return fmt.Errorf("compiling instance %s: %w", inst.Name, err)
			}
			if _, err := os.Stat(output); err != nil {
				return fmt.Errorf("compiling instance %s: no output: %w", inst.Name, err)
			}
			tracer().Infof("compiled %s in %s", output, time.Since(start).Round(time.Millisecond))
			return nil
		})
	}
	return g.Wait()
}

// AddMath instantiates the MATH table for an instance and writes it into
// the compiled font at path, replacing any prior MATH table. Glyphs of CFF
// fonts are renamed to their production names.
func (p *Project) AddMath(inst glyphs.Instance, path string) (*mathtable.MathTable, error) {
	sf, err := fontload.LoadOpenTypeFont(path)
	if err != nil {
		return nil, err
	}
	order, err := sf.GlyphOrder(p.Font, inst.RemovedGlyphs())
	if err != nil {
		return nil, err
	}
	ip, err := interp.FromInstance(p.Masters, inst)
	if err != nil {
		return nil, err
	}
	tbl, err := mathtable.Instantiate(p.Data, ip, inst.RemovedGlyphs())
	if err != nil {
		return nil, err
	}
	data, err := tbl.Encode(order)
	if err != nil {
		return nil, err
	}
	otf, err := ot.Parse(sf.Binary)
	if err != nil {
		return nil, err
	}
	tables := []ot.TableData{{Tag: ot.T("MATH"), Data: data}}
	cff, err := otf.RenameCFFGlyphs(fontload.ProductionNames(p.Font))
	if err != nil {
		return nil, err
	}
	if cff != nil {
		tables = append(tables, ot.TableData{Tag: ot.T("CFF "), Data: cff})
	}
	out, err := otf.ReplaceTables(tables...)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, err
	}
	tracer().Infof("added MATH table (%d bytes, %d warnings) to %s", len(data), len(tbl.Warnings()), path)
	return tbl, nil
}
