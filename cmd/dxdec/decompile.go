package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/dxdec"
	"github.com/gogpu/dxdec/diag"
	"github.com/gogpu/dxdec/hlsl"
)

type decompileFlags struct {
	outDir     string
	entry      string
	config     string
	noAnalysis bool
	defaults   bool
	comments   bool
	verbose    bool
	stats      bool
	jobs       int
}

// result is the outcome of decompiling one program.
type result struct {
	path    string
	code    string
	info    *hlsl.TranslationInfo
	bag     *diag.Bag
	err     error
	elapsed time.Duration
}

func newDecompileCmd(g *globalFlags) *cobra.Command {
	f := &decompileFlags{}
	cmd := &cobra.Command{
		Use:   "decompile [flags] <program>...",
		Short: "Decompile program dumps to HLSL",
		Long: `Decompile reads program dumps (.yaml, .yml, .msgpack, .mpk) and writes HLSL.

Without --out-dir the HLSL goes to stdout in argument order. With it, each
program is written to <out-dir>/<name>.hlsl.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompile(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", "", "write <name>.hlsl files to this directory")
	cmd.Flags().StringVar(&f.entry, "entry", "", "entry point name (default VertexMain or PixelMain)")
	cmd.Flags().StringVar(&f.config, "config", "", "TOML options file")
	cmd.Flags().BoolVar(&f.noAnalysis, "no-analysis", false, "translate instructions directly without graph analysis")
	cmd.Flags().BoolVar(&f.defaults, "defaults", false, "emit constant default values")
	cmd.Flags().BoolVar(&f.comments, "comments", false, "write the disassembly of each instruction as a comment")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "list suppressed assignments as comments")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "print a summary table")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "programs decompiled in parallel (default GOMAXPROCS)")
	return cmd
}

// options merges the config file with the command line. Flags only ever
// switch features on.
func (f *decompileFlags) options() (*dxdec.Options, error) {
	opts := dxdec.DefaultOptions()
	if f.config != "" {
		var err error
		if opts, err = dxdec.LoadOptions(f.config); err != nil {
			return nil, err
		}
	}
	if f.entry != "" {
		opts.EntryPoint = f.entry
	}
	opts.SkipAnalysis = opts.SkipAnalysis || f.noAnalysis
	opts.OutputDefaultValues = opts.OutputDefaultValues || f.defaults
	opts.AddComments = opts.AddComments || f.comments
	opts.Verbose = opts.Verbose || f.verbose
	return opts, nil
}

func runDecompile(cmd *cobra.Command, g *globalFlags, f *decompileFlags, paths []string) error {
	opts, err := f.options()
	if err != nil {
		return err
	}
	log, err := g.logger(cmd)
	if err != nil {
		return err
	}
	colored, err := g.useColor(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if f.outDir != "" {
		if err := os.MkdirAll(f.outDir, 0o755); err != nil {
			return err
		}
	}

	results, err := decompileAll(cmd.Context(), paths, opts, f.jobs, g.maxDiagnostics, log)
	if err != nil {
		return err
	}

	p := newPalette(colored)
	failed := 0
	for i := range results {
		r := &results[i]
		p.printDiagnostics(cmd.ErrOrStderr(), r)
		if r.err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", p.err.Sprint("error:"), r.err)
			continue
		}
		if err := writeResult(cmd.OutOrStdout(), f.outDir, r, len(results) > 1); err != nil {
			return err
		}
	}

	if f.stats {
		writeStats(cmd.ErrOrStderr(), results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d programs failed", failed, len(results))
	}
	return nil
}

// decompileAll decompiles paths concurrently. Results keep the order of
// paths; a failing program does not stop the others.
func decompileAll(ctx context.Context, paths []string, opts *dxdec.Options, jobs, maxDiagnostics int, log *slog.Logger) ([]result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			results[i] = decompileOne(path, opts, maxDiagnostics, log)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func decompileOne(path string, base *dxdec.Options, maxDiagnostics int, log *slog.Logger) result {
	opts := *base
	bag := diag.NewBag(maxDiagnostics)
	opts.Diagnostics = bag
	opts.Logger = log.With(slog.String("file", path))

	start := time.Now()
	code, info, err := dxdec.DecompileFile(path, &opts)
	elapsed := time.Since(start)
	bag.Sort()
	opts.Logger.Debug("decompiled", slog.Duration("elapsed", elapsed), slog.Bool("ok", err == nil))
	return result{path: path, code: code, info: info, bag: bag, err: err, elapsed: elapsed}
}

// outputName maps "dir/water.ps.yaml" to "water.ps.hlsl".
func outputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".hlsl"
}

func writeResult(stdout io.Writer, outDir string, r *result, banner bool) error {
	if outDir != "" {
		return os.WriteFile(filepath.Join(outDir, outputName(r.path)), []byte(r.code), 0o644)
	}
	if banner {
		if _, err := fmt.Fprintf(stdout, "// %s\n", r.path); err != nil {
			return err
		}
	}
	_, err := io.WriteString(stdout, r.code)
	return err
}

// palette colors diagnostic output.
type palette struct {
	err  *color.Color
	warn *color.Color
	info *color.Color
	path *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		path: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// printDiagnostics writes the warnings and errors of r. Informational
// diagnostics only show up in the --stats counts.
func (p palette) printDiagnostics(w io.Writer, r *result) {
	if r.bag == nil {
		return
	}
	for _, d := range r.bag.Items() {
		if d.Severity == diag.SevInfo {
			continue
		}
		where := p.path.Sprint(r.path)
		if d.Instruction != diag.NoInstruction {
			where += ":" + strconv.Itoa(d.Instruction)
		}
		sev := p.severity(d.Severity).Sprintf("%s %s", strings.ToLower(d.Severity.String()), d.Code.ID())
		fmt.Fprintf(w, "%s: %s: %s\n", where, sev, d.Message)
	}
	if n := r.bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "%s: %d more diagnostics dropped\n", p.path.Sprint(r.path), n)
	}
}

func writeStats(w io.Writer, results []result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Program", "Profile", "Strategy", "Fallbacks", "Statements", "Skipped", "Diagnostics", "Time"})
	for i := range results {
		r := &results[i]
		diags := "0"
		if r.bag != nil {
			diags = strconv.Itoa(r.bag.Len())
		}
		if r.err != nil {
			table.Append([]string{r.path, "-", "error", "-", "-", "-", diags, r.elapsed.Round(time.Microsecond).String()})
			continue
		}
		fallbacks := make([]string, len(r.info.Failed))
		for j, s := range r.info.Failed {
			fallbacks[j] = s.String()
		}
		table.Append([]string{
			r.path,
			r.info.Profile,
			r.info.Strategy.String(),
			strings.Join(fallbacks, ","),
			strconv.Itoa(r.info.Emitted),
			strconv.Itoa(r.info.Skipped),
			diags,
			r.elapsed.Round(time.Microsecond).String(),
		})
	}
	table.Render()
}
