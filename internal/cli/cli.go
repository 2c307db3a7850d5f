// Package cli wires protodig's subcommands together with spf13/cobra,
// following the flat command-builder style the teacher uses for its
// admin tool (cmd/schema-registry-admin).
package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/binaryforensics/protodig/internal/altwriter"
	"github.com/binaryforensics/protodig/internal/binsniff"
	"github.com/binaryforensics/protodig/internal/config"
	"github.com/binaryforensics/protodig/internal/descriptor"
	"github.com/binaryforensics/protodig/internal/lint"
	"github.com/binaryforensics/protodig/internal/logging"
	"github.com/binaryforensics/protodig/internal/metrics"
	"github.com/binaryforensics/protodig/internal/protosource"
	"github.com/binaryforensics/protodig/internal/registry"
	"github.com/binaryforensics/protodig/internal/scanner"
	"github.com/binaryforensics/protodig/internal/watch"
	"github.com/binaryforensics/protodig/internal/writer"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

type extractFlags struct {
	file             string
	dir              string
	output           string
	configPath       string
	format           string
	writerBackend    string
	conflictStrategy string
	maxDescriptors   int
	force            bool
	dryRun           bool
	listOnly         bool
	metricsAddr      string
	workers          int
	verbosity        int
	verify           bool
}

// NewRootCommand builds protodig's command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "protodig",
		Short: "Recover embedded Protobuf schemas from compiled binaries",
		Long:  "protodig scans binaries for embedded FileDescriptorProto byte ranges and reconstructs readable .proto sources from them.",
	}

	root.AddCommand(newExtractCommand(), newWatchCommand(), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("protodig %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}

func newExtractCommand() *cobra.Command {
	f := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract embedded .proto schemas from a binary or directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), f, cmd.Flags())
		},
	}

	cmd.Flags().StringVar(&f.file, "file", "", "single binary to scan")
	cmd.Flags().StringVar(&f.dir, "dir", "", "directory to scan recursively")
	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "output directory for recovered .proto files")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&f.format, "format", "proto", "output naming: proto (by descriptor file name and go_package) or filename (by source binary)")
	cmd.Flags().StringVar(&f.writerBackend, "writer", "structural", "rendering backend: structural or protoprint")
	cmd.Flags().StringVar(&f.conflictStrategy, "conflict-strategy", "hash-suffix", "conflict resolution: hash-suffix, source-suffix, skip-conflicts")
	cmd.Flags().IntVar(&f.maxDescriptors, "max-descriptors", 0, "stop after recovering this many descriptors per file (0 = unlimited)")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite existing output files")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "scan and report without writing any files")
	cmd.Flags().BoolVar(&f.listOnly, "list-only", false, "print recovered file names without reconstructing sources")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().IntVar(&f.workers, "workers", 4, "number of concurrent file-scan workers for --dir")
	cmd.Flags().CountVarP(&f.verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "best-effort compile recovered sources against each other after the batch completes")

	return cmd
}

func newWatchCommand() *cobra.Command {
	f := &extractFlags{}
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and re-extract whenever a file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.dir = args[0]
			return runWatch(cmd.Context(), f, settle, cmd.Flags())
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "output directory for recovered .proto files")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&f.writerBackend, "writer", "structural", "rendering backend: structural or protoprint")
	cmd.Flags().StringVar(&f.conflictStrategy, "conflict-strategy", "hash-suffix", "conflict resolution: hash-suffix, source-suffix, skip-conflicts")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite existing output files")
	cmd.Flags().IntVar(&f.workers, "workers", 4, "number of concurrent file-scan workers")
	cmd.Flags().CountVarP(&f.verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "quiet period before re-scanning a changed file")

	return cmd
}

// runExtract resolves configuration, sets up logging/metrics, and drives
// a single-file or directory scan.
func runExtract(ctx context.Context, f *extractFlags, flags *pflag.FlagSet) error {
	if (f.file == "") == (f.dir == "") {
		return fmt.Errorf("exactly one of --file or --dir must be set")
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyExtractFlags(cfg, f, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Logging, f.verbosity)
	runID := uuid.New().String()
	logger = logger.With(slog.String("run_id", runID))

	metricsAddr := f.metricsAddr
	if metricsAddr == "" && cfg.Metrics.Enabled {
		metricsAddr = cfg.Metrics.Addr
	}
	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New()
		if err := m.Serve(metricsAddr); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		logger.Info("metrics endpoint listening", slog.String("addr", metricsAddr))
	}

	reg := registry.New()
	strategy, err := registry.ParseConflictStrategy(cfg.Output.ConflictStrategy)
	if err != nil {
		return err
	}

	run := &runner{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		registry: reg,
		strategy: strategy,
		dryRun:   f.dryRun,
		listOnly: f.listOnly,
		format:   f.format,
	}
	if f.verify {
		run.sources = make(map[string]string)
	}

	if f.file != "" {
		run.scanFile(f.file)
	} else {
		run.scanDir(ctx, f.dir, f.workers)
	}

	stats := reg.Stats()
	logger.Info("extraction complete",
		slog.Int("found", stats.TotalFound),
		slog.Int("written", stats.Written),
		slog.Int("duplicates_skipped", stats.DuplicatesSkipped),
		slog.Int("conflicts_renamed", stats.ConflictsRenamed),
	)

	if f.verify {
		run.runVerify(ctx)
	}
	return nil
}

func runWatch(ctx context.Context, f *extractFlags, settle time.Duration, flags *pflag.FlagSet) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyExtractFlags(cfg, f, flags)

	logger := logging.New(cfg.Logging, f.verbosity)
	reg := registry.New()
	strategy, err := registry.ParseConflictStrategy(cfg.Output.ConflictStrategy)
	if err != nil {
		return err
	}

	run := &runner{cfg: cfg, logger: logger, registry: reg, strategy: strategy}

	logger.Info("watching directory", slog.String("dir", f.dir))
	return watch.Run(ctx, f.dir, settle, logger, func(paths []string) {
		for _, p := range paths {
			if binsniff.LikelyBinary(p) {
				run.scanFile(p)
			}
		}
	})
}

// applyExtractFlags layers explicitly-set CLI flags over a loaded config
// file. Only flags the user actually passed (flags.Changed) take
// precedence; cobra always populates a flag's default even when the user
// never typed it, so checking Changed is the only way a YAML config value
// survives past this point.
func applyExtractFlags(cfg *config.Config, f *extractFlags, flags *pflag.FlagSet) {
	if flags.Changed("output") {
		cfg.Output.Directory = f.output
	}
	if flags.Changed("writer") {
		cfg.Writer.Backend = f.writerBackend
	}
	if flags.Changed("conflict-strategy") {
		cfg.Output.ConflictStrategy = f.conflictStrategy
	}
	cfg.Output.Force = cfg.Output.Force || f.force
	if flags.Changed("max-descriptors") {
		cfg.Scanner.MaxResults = f.maxDescriptors
	}
}

// runner holds the shared state for one extraction invocation.
type runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	registry *registry.Registry
	strategy registry.ConflictStrategy
	dryRun   bool
	listOnly bool
	format   string

	// sources accumulates reconstructed text keyed by output filename
	// for --verify. Left nil when verification wasn't requested, so
	// scanFile's hot path skips the lock entirely.
	sourcesMu sync.Mutex
	sources   map[string]string
}

// runVerify best-effort compiles every reconstructed source from this run
// against the others, surfacing results as forensic signal. It never
// affects the exit code: a malformed reconstruction was already written
// (or reported) by the time this runs.
func (r *runner) runVerify(ctx context.Context) {
	if len(r.sources) == 0 {
		return
	}
	results := lint.Verify(ctx, r.sources)
	invalid := 0
	for _, res := range results {
		if res.Valid {
			continue
		}
		invalid++
		r.logger.Warn("verification failed", slog.String("path", res.Path), slog.String("error", res.Err.Error()))
	}
	r.logger.Info("verification complete", slog.Int("checked", len(results)), slog.Int("invalid", invalid))
}

func (r *runner) scanDir(ctx context.Context, dir string, workers int) {
	if workers < 1 {
		workers = 1
	}

	paths := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range paths {
				select {
				case <-ctx.Done():
					return
				default:
				}
				r.scanFile(p)
			}
		}()
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.logger.Warn("walk error", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !binsniff.LikelyBinary(path) {
			if r.metrics != nil {
				r.metrics.RecordFileSkipped("non-binary")
			}
			return nil
		}
		paths <- path
		return nil
	})
	close(paths)
	wg.Wait()

	if err != nil {
		r.logger.Error("directory walk failed", slog.String("error", err.Error()))
	}
}

func (r *runner) scanFile(path string) {
	start := time.Now()
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from an explicit CLI scan target
	if err != nil {
		r.logger.Warn("read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	scanCfg := scanner.Config{
		MaxResults:        r.cfg.Scanner.MaxResults,
		MinDescriptorSize: r.cfg.Scanner.MinDescriptorSize,
		MaxDescriptorSize: r.cfg.Scanner.MaxDescriptorSize,
	}
	results := scanner.Scan(data, scanCfg)
	if r.metrics != nil {
		r.metrics.FilesScanned.Inc()
		r.metrics.ObserveScanDuration(time.Since(start))
	}

	for _, res := range results {
		if r.metrics != nil {
			r.metrics.DescriptorsFound.Inc()
		}
		r.handleDescriptor(path, res)
	}

	r.logger.Debug("scanned file", slog.String("path", path), slog.Int("descriptors", len(results)))
}

func (r *runner) handleDescriptor(sourcePath string, res scanner.Result) {
	fd, err := descriptor.Decode(res.Data)
	if r.metrics != nil {
		r.metrics.RecordDescriptorDecode(err == nil)
	}
	if err != nil {
		r.logger.Debug("invalid candidate descriptor", slog.String("source", sourcePath), slog.String("error", err.Error()))
		return
	}

	outputName := descriptor.OutputFilename(fd)
	if r.format == "filename" {
		outputName = filenameFromSource(sourcePath, fd)
	}
	if r.listOnly {
		fmt.Println(outputName)
		return
	}

	content, stats, err := r.render(fd)
	if err != nil {
		r.logger.Warn("reconstruction failed", slog.String("name", outputName), slog.String("error", err.Error()))
		if r.metrics != nil {
			r.metrics.RecordWrite("error")
		}
		return
	}
	r.logger.Debug("reconstructed descriptor",
		slog.String("name", outputName),
		slog.Int("messages", stats.Messages),
		slog.Int("fields", stats.Fields),
		slog.Int("enums", stats.Enums),
		slog.Int("services", stats.Services),
	)

	if r.sources != nil {
		r.sourcesMu.Lock()
		r.sources[outputName] = content
		r.sourcesMu.Unlock()
	}

	hash := registry.ContentHash(content)
	outputPath, ok := r.registry.Register(outputName, hash, r.cfg.Output.Directory, sourcePath, r.strategy)
	if !ok {
		if r.metrics != nil {
			r.metrics.RecordWrite("skipped")
		}
		return
	}

	if r.dryRun {
		r.logger.Info("would write", slog.String("path", outputPath))
		return
	}

	if err := writer.Write(outputPath, r.cfg.Output.Directory, content, r.cfg.Output.Force); err != nil {
		r.logger.Warn("write failed", slog.String("path", outputPath), slog.String("error", err.Error()))
		if r.metrics != nil {
			r.metrics.RecordWrite("error")
		}
		return
	}
	r.registry.RecordWritten()
	if r.metrics != nil {
		r.metrics.RecordWrite("written")
	}
	r.logger.Info("wrote descriptor", slog.String("path", outputPath), slog.String("source", sourcePath))
}

// filenameFromSource names the recovered file after the binary it came
// from rather than its declared file name, for batches where many
// descriptors share a name and the source binary is the more useful
// label.
func filenameFromSource(sourcePath string, fd *descriptorpb.FileDescriptorProto) string {
	base := filepath.Base(sourcePath)
	base = base[:len(base)-len(filepath.Ext(base))]
	if base == "" {
		return descriptor.OutputFilename(fd)
	}
	return base + ".proto"
}

func (r *runner) render(fd *descriptorpb.FileDescriptorProto) (string, protosource.StatsSink, error) {
	if r.cfg.Writer.Backend == "protoprint" {
		if out, err := altwriter.Render(fd); err == nil {
			stats := &protosource.StatsSink{}
			_, _ = protosource.ReconstructTo(fd, protosource.Config{IndentStr: r.cfg.Writer.IndentStr}, stats)
			return out, *stats, nil
		}
		// fall through to the always-succeeding structural writer
	}
	stats := &protosource.StatsSink{}
	out, err := protosource.ReconstructTo(fd, protosource.Config{IndentStr: r.cfg.Writer.IndentStr}, stats)
	return out, *stats, err
}
