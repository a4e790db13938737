package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/backmassage/dicomtonifti/internal/config"
	"github.com/backmassage/dicomtonifti/internal/dicomio"
	"github.com/backmassage/dicomtonifti/internal/display"
	"github.com/backmassage/dicomtonifti/internal/logging"
	"github.com/backmassage/dicomtonifti/internal/naming"
	"github.com/backmassage/dicomtonifti/internal/nifti"
	"github.com/backmassage/dicomtonifti/internal/planner"
)

// Runner holds the state of one invocation. Create it with [NewRunner];
// the exported fields may be replaced before calling [Runner.Run].
type Runner struct {
	Cfg *config.Config
	Log *logging.Logger
	Collaborators

	Stdout   io.Writer                                  // output-path echo and --list table
	MkdirAll func(path string, perm os.FileMode) error // study directory creation
	GOOS     string                                     // selects wildcard expansion

	visited  VisitedSet
	resolver *naming.CollisionResolver
	stats    RunStats
	manifest *Manifest
}

// NewRunner returns a Runner wired to the real readers and writer.
func NewRunner(cfg *config.Config, log *logging.Logger) *Runner {
	return &Runner{
		Cfg:           cfg,
		Log:           log,
		Collaborators: DefaultCollaborators(cfg),
		Stdout:        os.Stdout,
		MkdirAll:      os.MkdirAll,
		GOOS:          runtime.GOOS,
		visited:       NewVisitedSet(),
		resolver:      naming.NewCollisionResolver(),
	}
}

// Run is the top-level entry point: expand inputs, group them, and convert
// every series. The first error ends the run and is returned; the caller
// reports it and exits non-zero.
func (r *Runner) Run(ctx context.Context) (stats RunStats, err error) {
	r.stats = RunStats{Started: time.Now()}
	if r.Cfg.Manifest != "" {
		r.manifest = &Manifest{
			RunID:   r.Log.RunID(),
			Started: r.stats.Started,
			Mode:    r.mode(),
			DryRun:  r.Cfg.DryRun,
			Inputs:  r.Cfg.Inputs,
			Output:  r.Cfg.Output,
		}
		defer func() {
			r.manifest.Finished = time.Now()
			if err != nil {
				r.manifest.Error = err.Error()
			}
			if saveErr := r.manifest.Save(r.Cfg.Manifest); saveErr != nil {
				r.Log.Error("Cannot write manifest %s: %v", r.Cfg.Manifest, saveErr)
			}
		}()
	}
	defer func() {
		r.stats.Elapsed = time.Since(r.stats.Started)
		stats = r.stats
		r.logSummary(err)
	}()

	paths, err := ExpandPatterns(r.Cfg.Inputs, r.GOOS)
	if err != nil {
		return r.stats, err
	}
	files := Expand(paths, WalkOptions{
		Recurse:        r.Cfg.Recurse,
		FollowSymlinks: r.Cfg.FollowSymlinks,
	}, r.visited, r.Log)
	r.stats.Files = len(files)
	if len(files) == 0 {
		r.Log.Warn("No input files found")
		return r.stats, nil
	}
	r.Log.Debug("Found %d files", len(files))

	g, err := r.Sorter.Sort(ctx, files)
	if err != nil {
		return r.stats, err
	}
	r.stats.Studies = g.NumberOfStudies()
	r.stats.Series = g.NumberOfSeries()
	r.Log.Info("Grouped %d files into %d series in %d studies", len(files), r.stats.Series, r.stats.Studies)

	switch {
	case r.Cfg.ListOnly:
		return r.stats, r.List(g)
	case r.Cfg.Batch:
		return r.stats, r.runBatch(ctx, g)
	default:
		return r.stats, r.runSingle(ctx, g)
	}
}

func (r *Runner) mode() string {
	switch {
	case r.Cfg.ListOnly:
		return "list"
	case r.Cfg.Batch:
		return "batch"
	default:
		return "single"
	}
}

// SingleOutputPath applies the compression suffix rule of single mode:
// ".gz" is appended unless the name already ends in it.
func SingleOutputPath(output string, compress bool) string {
	if compress && !nifti.IsCompressedName(output) {
		return output + ".gz"
	}
	return output
}

// runSingle converts every file, in grouped order, into the one output.
func (r *Runner) runSingle(ctx context.Context, g *dicomio.Grouping) error {
	out := SingleOutputPath(r.Cfg.Output, r.Cfg.Compress)
	return r.ConvertSeries(ctx, g.OutputFileNames(), out, 0, 0)
}

// runBatch converts each series into its own file named from metadata.
// The study directory is created once, when the study's first series is
// reached.
func (r *Runner) runBatch(ctx context.Context, g *dicomio.Grouping) error {
	for j := 0; j < g.NumberOfStudies(); j++ {
		first := g.FirstSeriesInStudy(j)
		end := first + g.NumberOfSeriesInStudy(j)
		for k := first; k < end; k++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			files := g.FileNamesForSeries(k)
			meta, err := r.Metadata.ReadMetadata(files[0])
			if err != nil {
				return err
			}

			out := naming.OutputPath(r.Cfg.Output, meta)
			if r.Cfg.Compress {
				out += ".gz"
			}
			if resolved := r.resolver.Resolve(files[0], out); resolved != out {
				r.Log.Warn("Output %s already used in this run, writing %s", out, resolved)
				out = resolved
			}

			if k == first && !r.Cfg.DryRun {
				dir := naming.StudyDir(out)
				if err := r.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("cannot create directory: %s", dir)
				}
			}

			if !r.Cfg.Silent {
				fmt.Fprintln(r.Stdout, out)
			}
			if err := r.ConvertSeries(ctx, files, out, j, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConvertSeries runs one series through read, geometry check and write.
// study and series are the grouping ordinals, recorded in the manifest.
func (r *Runner) ConvertSeries(ctx context.Context, files []string, out string, study, series int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := r.Log.With("study", study, "series", series)
	log.Debug("Reading %d files for %s", len(files), out)

	img, err := r.Volumes.ReadVolume(ctx, files)
	if err != nil {
		return err
	}

	res := r.Converter.Convert(img.Patient, img.Volume)
	plan, err := planner.BuildPlan(r.Cfg, img.Patient, res.Matrix, img.FileIndices)
	if err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}
	plan.OutputPath = out
	log.Debug("Slice order: reader reordered=%v, converter reordered=%v, qfac=%g",
		plan.ReaderReordered, plan.ConverterReordered, plan.QFac)

	rec := SeriesRecord{
		Study:           study,
		Series:          series,
		Output:          out,
		Files:           len(files),
		Dims:            res.Volume.Dims,
		QFac:            plan.QFac,
		SlicesReordered: plan.SlicesReordered,
	}

	if r.Cfg.DryRun {
		log.Success("[DRY] Would write %s (%s %s)", out, display.FormatDims(res.Volume.Dims), res.Volume.Type)
	} else {
		n, err := r.Writer.Write(out, res.Volume, plan)
		if err != nil {
			return err
		}
		rec.Bytes = n
		r.stats.BytesWritten += n
		log.Success("Wrote %s (%s)", out, display.FormatBytes(n))
	}

	r.stats.Converted++
	if r.manifest != nil {
		r.manifest.Series = append(r.manifest.Series, rec)
	}
	return nil
}

func (r *Runner) logSummary(err error) {
	if err != nil {
		r.Log.Debug("Run stopped after %d of %d series", r.stats.Converted, r.stats.Series)
		return
	}
	r.Log.Debug("Done: %d series from %d files in %s, %s written",
		r.stats.Converted, r.stats.Files, r.stats.Elapsed.Round(time.Millisecond),
		display.FormatBytes(r.stats.BytesWritten))
}
