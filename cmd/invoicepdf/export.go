package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	invoicepdf "github.com/alnah/go-invoicepdf"
	"github.com/alnah/go-invoicepdf/internal/docfile"
	"github.com/alnah/go-invoicepdf/internal/fileutil"
	"github.com/alnah/go-invoicepdf/internal/ledger"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ErrInvalidExtension is returned for explicit inputs that are not
// document files.
var ErrInvalidExtension = errors.New("file must have .yaml or .yml extension")

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (*invoicepdf.Exporter, error)
	Release(*invoicepdf.Exporter)
	Size() int
}

// Compile-time check that ExporterPool implements Pool.
var _ Pool = (*invoicepdf.ExporterPool)(nil)

// exportJob is one document to export.
type exportJob struct {
	File      string // source document file
	Index     int    // position of the document in File
	Count     int    // documents in File
	Doc       docfile.Document
	OutputDir string
}

// Source names the job for messages: the file, plus "#n" for
// multi-document files.
func (j exportJob) Source() string {
	if j.Count <= 1 {
		return j.File
	}
	return fmt.Sprintf("%s#%d", j.File, j.Index+1)
}

// exportResult holds the outcome of a single export.
type exportResult struct {
	Source     string
	OutputPath string
	Pages      int
	Total      string
	Alerts     []string
	Err        error
	Duration   time.Duration
}

// exportParams groups settings shared across the batch.
type exportParams struct {
	html   bool
	now    func() time.Time
	logger zerolog.Logger
}

// runExport exports every document in the given files and directories.
func runExport(ctx context.Context, args []string, env *Environment) (err error) {
	flags, inputs, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	s, err := loadSettings(flags.common, flags.browser, runFlags{output: flags.output, workers: flags.workers}, env)
	if err != nil {
		return err
	}
	defer func() { err = s.annotate(err) }()

	files, err := discoverDocuments(inputs)
	if err != nil {
		return err
	}
	jobs, err := loadJobs(files, s.cfg.Output.DefaultDir, s.documentDefaults(), env.Now())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w in %s", ErrNoDocuments, strings.Join(inputs, ", "))
	}

	poolSize := invoicepdf.ResolvePoolSize(s.cfg.Browser.Workers)
	if poolSize > len(jobs) {
		poolSize = len(jobs)
	}
	s.logger.Debug().Int("pool", poolSize).Int("documents", len(jobs)).Msg("starting export")

	pool := invoicepdf.NewExporterPool(poolSize, s.exporterOptions()...)
	defer func() {
		if err := pool.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("closing browsers")
		}
	}()

	results := exportBatch(ctx, pool, jobs, exportParams{
		html:   flags.html,
		now:    env.Now,
		logger: s.logger,
	})

	failed, firstErr := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d export(s) failed: %w", failed, firstErr)
	}
	return nil
}

// discoverDocuments expands inputs into document files. Directories are
// walked recursively; explicit files must carry a document extension.
func discoverDocuments(inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !docfile.IsDocumentFile(input) {
				return nil, fmt.Errorf("%w: %w: %s", ErrUsage, ErrInvalidExtension, input)
			}
			files = append(files, input)
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if !d.IsDir() && docfile.IsDocumentFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// loadJobs parses every file and applies header defaults. A bad file fails
// the whole run before any browser starts.
func loadJobs(files []string, outputDir string, defs docfile.Defaults, now time.Time) ([]exportJob, error) {
	var jobs []exportJob
	for _, file := range files {
		docs, err := docfile.Load(file)
		if err != nil {
			return nil, err
		}

		dir := outputDir
		if dir == "" {
			dir = filepath.Dir(file)
		}

		for i, doc := range docs {
			resolved, err := doc.WithDefaults(defs, now)
			if err != nil {
				return nil, fmt.Errorf("%s: document %d: %w", file, i+1, err)
			}
			jobs = append(jobs, exportJob{
				File:      file,
				Index:     i,
				Count:     len(docs),
				Doc:       resolved,
				OutputDir: dir,
			})
		}
	}
	return jobs, nil
}

// exportBatch processes jobs concurrently using the exporter pool.
func exportBatch(ctx context.Context, pool Pool, jobs []exportJob, params exportParams) []exportResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(jobs) {
		concurrency = len(jobs)
	}

	results := make([]exportResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			exp, err := pool.Acquire(ctx)
			if err != nil {
				// No browser for this worker, mark what it would have taken as failed
				for idx := range queue {
					results[idx] = exportResult{Source: jobs[idx].Source(), Err: err}
				}
				return
			}
			defer pool.Release(exp)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = exportResult{Source: jobs[idx].Source(), Err: ctx.Err()}
					continue
				}
				results[idx] = exportOne(ctx, exp, jobs[idx], params)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// exportOne fills a fresh form with the job's document and exports it.
func exportOne(ctx context.Context, exp *invoicepdf.Exporter, job exportJob, params exportParams) exportResult {
	start := time.Now()
	result := exportResult{Source: job.Source()}
	finish := func(err error) exportResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := os.MkdirAll(job.OutputDir, dirPermissions); err != nil {
		return finish(fmt.Errorf("creating output directory: %w", err))
	}

	logger := params.logger.With().Str("source", result.Source).Logger()
	form := invoicepdf.NewForm(
		invoicepdf.WithExporter(exp),
		invoicepdf.WithOutputDir(job.OutputDir),
		invoicepdf.WithNow(params.now),
		invoicepdf.WithFormLogger(logger),
		invoicepdf.WithNotifier(invoicepdf.NotifyFunc(func(msg string) {
			result.Alerts = append(result.Alerts, msg)
		})),
	)

	if err := form.Fill(ctx, job.Doc); err != nil {
		return finish(fmt.Errorf("filling form: %w", err))
	}
	result.Total = ledger.FormatYen(form.Snapshot().Total)

	out, err := form.Dispatch(ctx, invoicepdf.Event{Kind: invoicepdf.ActionExport})
	if err != nil {
		return finish(err)
	}
	result.OutputPath = out.Path
	result.Pages = out.Pages

	if params.html {
		if err := writeHTML(ctx, exp, form.Snapshot(), out.Path); err != nil {
			return finish(err)
		}
	}

	return finish(nil)
}

// writeHTML writes the rendered document next to its PDF.
func writeHTML(ctx context.Context, exp *invoicepdf.Exporter, s ledger.Session, pdfPath string) error {
	html, err := exp.RenderHTML(ctx, ledger.HideAffordances(s))
	if err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	// #nosec G306 -- HTML files are meant to be readable
	if err := fileutil.WriteFileAtomic(htmlOutputPath(pdfPath), []byte(html), filePermissions); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

// htmlOutputPath returns the HTML path corresponding to a PDF path.
func htmlOutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + ".html"
}

// printResults outputs export results and returns the failure count and
// the first error. Documents exported to the same path are reported, since
// only the last one survives.
func printResults(results []exportResult, quiet, verbose bool, env *Environment) (int, error) {
	var (
		failed   int
		firstErr error
		written  = map[string][]string{}
	)

	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Source, r.Err)
			for _, alert := range r.Alerts {
				fmt.Fprintf(env.Stderr, "  %s\n", alert)
			}
			continue
		}
		written[r.OutputPath] = append(written[r.OutputPath], r.Source)

		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d page(s), %s, %v)\n",
				r.Source, r.OutputPath, r.Pages, r.Total, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	for _, r := range results {
		sources := written[r.OutputPath]
		if r.Err != nil || len(sources) < 2 || sources[0] != r.Source {
			continue
		}
		fmt.Fprintf(env.Stderr, "WARNING %s was written by %s; only one document remains\n",
			r.OutputPath, strings.Join(sources, ", "))
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}

	return failed, firstErr
}
