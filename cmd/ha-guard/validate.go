package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/hassops/ha-guard/pkg/config"
	"github.com/hassops/ha-guard/pkg/console"
	"github.com/hassops/ha-guard/pkg/hass"
	"github.com/hassops/ha-guard/pkg/logger"
	"github.com/hassops/ha-guard/pkg/registry"
	"github.com/hassops/ha-guard/pkg/report"
	"github.com/hassops/ha-guard/pkg/validator"
)

var validateLog = logger.New("cli:validate")

type validateOptions struct {
	schemaName string
	jsonOutput bool
	live       bool
	strict     bool
	watch      bool
}

// fileResult is one file's outcome, also the JSON output shape.
type fileResult struct {
	File     string         `json:"file"`
	Result   *report.Result `json:"result"`
	Semantic *report.Result `json:"semantic,omitempty"`
	Err      string         `json:"error,omitempty"`
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate YAML files (or stdin) against a schema",
		Long: `Validate one or more YAML files against a Home Assistant schema.
With no file arguments the document is read from stdin. With --live the
document's entity, service and area references are also checked against
a running instance (HA_GUARD_BASE_URL and HA_GUARD_TOKEN).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.schemaName, "schema", "ha.automation", "schema to validate against (see 'ha-guard schemas')")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "emit machine-readable JSON instead of styled text")
	cmd.Flags().BoolVar(&opts.live, "live", false, "also check references against a live instance")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "treat warnings as failures")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "revalidate files whenever they change")
	return cmd
}

func runValidate(ctx context.Context, opts *validateOptions, files []string) error {
	pipeline, err := validator.NewDefaultPipeline()
	if err != nil {
		return err
	}
	if _, err := pipeline.Schemas().Get(opts.schemaName); err != nil {
		return fmt.Errorf("unknown schema %q; run 'ha-guard schemas' to list them", opts.schemaName)
	}

	var cache *registry.Cache
	if opts.live {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.RequireLive(); err != nil {
			return err
		}
		client := hass.NewClient(cfg.BaseURL, cfg.Token, hass.WithTimeout(cfg.HTTPTimeout))
		cache = registry.NewCache(client, cfg.CacheTTL)
	}

	if len(files) == 0 {
		if opts.watch {
			return fmt.Errorf("--watch requires file arguments")
		}
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		results := []fileResult{validateOne(ctx, pipeline, cache, opts, "<stdin>", source)}
		return reportResults(opts, results)
	}

	if opts.watch {
		return watchFiles(ctx, pipeline, cache, opts, files)
	}

	results := validateFiles(ctx, pipeline, cache, opts, files)
	return reportResults(opts, results)
}

// validateFiles runs the files in parallel, preserving argument order in
// the results.
func validateFiles(ctx context.Context, pipeline *validator.Pipeline, cache *registry.Cache, opts *validateOptions, files []string) []fileResult {
	results := make([]fileResult, len(files))
	p := pool.New().WithMaxGoroutines(8)
	for i, file := range files {
		p.Go(func() {
			source, err := os.ReadFile(file)
			if err != nil {
				results[i] = fileResult{File: file, Err: err.Error()}
				return
			}
			results[i] = validateOne(ctx, pipeline, cache, opts, file, source)
		})
	}
	p.Wait()
	return results
}

func validateOne(ctx context.Context, pipeline *validator.Pipeline, cache *registry.Cache, opts *validateOptions, name string, source []byte) fileResult {
	validateLog.Printf("Validating %s against %s", name, opts.schemaName)
	if cache == nil {
		res, err := pipeline.Validate(opts.schemaName, source)
		if err != nil {
			return fileResult{File: name, Err: err.Error()}
		}
		return fileResult{File: name, Result: res}
	}
	static, semantic, err := pipeline.ValidateLive(ctx, opts.schemaName, source, cache)
	if err != nil && static == nil {
		return fileResult{File: name, Err: err.Error()}
	}
	fr := fileResult{File: name, Result: static, Semantic: semantic}
	if err != nil {
		// Static findings stand; the registry failure rides alongside.
		fr.Err = err.Error()
	}
	return fr
}

// reportResults prints every result and returns an error when any file
// failed, so the process exits non-zero.
func reportResults(opts *validateOptions, results []fileResult) error {
	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			printResult(r)
		}
	}

	failed := 0
	for _, r := range results {
		if resultFailed(opts, r) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed validation", failed, len(results))
	}
	return nil
}

func resultFailed(opts *validateOptions, r fileResult) bool {
	if r.Err != "" {
		return true
	}
	for _, res := range []*report.Result{r.Result, r.Semantic} {
		if res == nil {
			continue
		}
		if !res.Valid {
			return true
		}
		if opts.strict && len(res.Warnings) > 0 {
			return true
		}
	}
	return false
}

func printResult(r fileResult) {
	if r.Result != nil {
		fmt.Println(console.RenderResult(r.File, r.Result))
	}
	if r.Semantic != nil {
		fmt.Println(console.RenderResult(r.File+" (live)", r.Semantic))
	}
	if r.Err != "" {
		fmt.Println(console.FormatErrorMessage(r.File + ": " + r.Err))
	}
}

// watchFiles revalidates on every write to one of the files until
// interrupted.
func watchFiles(ctx context.Context, pipeline *validator.Pipeline, cache *registry.Cache, opts *validateOptions, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		// Watch the directory: editors replace files on save, which
		// drops a watch registered on the file itself.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watching %s: %w", file, err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() {
		results := validateFiles(ctx, pipeline, cache, opts, files)
		if err := reportResults(opts, results); err != nil {
			fmt.Println(console.FormatWarningMessage(err.Error()))
		}
	}
	run()
	fmt.Println(console.FormatInfoMessage("Watching for changes. Ctrl-C to stop."))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				validateLog.Printf("Change detected: %s", event.Name)
				run()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage("watch error: "+werr.Error()))
		}
	}
}
