// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"hapsindex/internal/cli"
	"hapsindex/internal/cmdutil"
	"hapsindex/internal/haps"
	"hapsindex/internal/indexer"
	"hapsindex/internal/version"
	"hapsindex/internal/writers"
)

// Exit statuses.
const (
	exitOK       = 0
	exitUsage    = 2
	exitFailure  = 3
	exitCanceled = 130
)

const progressInterval = 5 * time.Second

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	flush := func() int {
		if err := outw.Flush(); writers.IsBrokenPipe(err) {
			return exitOK
		} else if err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return exitFailure
		}
		return exitOK
	}

	fs := cli.NewFlagSet("hapsindex")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		fs.SetOutput(outw)
		fs.Usage()
		return flush()
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return flush()
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		if code := flush(); code != exitOK {
			return code
		}
		return exitUsage
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "hapsindex version %s\n", version.Version)
		return flush()
	}

	logger, err := cmdutil.NewLogger(stderr, opts.LogFormat, opts.LogLevel, opts.Quiet)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitUsage
	}
	logger = logger.With("run_id", uuid.NewString())

	if s := strconv.FormatInt(opts.SegmentLength, 10); s != opts.SegmentLengthArg {
		cmdutil.Warnf(stderr, opts.Quiet, "segment length %q read as %s", opts.SegmentLengthArg, s)
	}

	toStdout := opts.Output == "-"
	if !opts.Quiet && !toStdout {
		printBanner(outw, opts)
		if code := flush(); code != exitOK {
			return code
		}
	}

	r := &runner{
		cfg:    indexer.Config{SegmentLength: opts.SegmentLength, Threshold: opts.Threshold},
		output: opts.Output,
		stdout: outw,
		log:    logger,
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	err = cmdutil.RunAll(parent, threads, opts.Inputs, r.index)
	if ferr := outw.Flush(); err == nil {
		err = ferr
	}
	return exitCode(err, stderr)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func printBanner(w io.Writer, o cli.Options) {
	_, _ = fmt.Fprintln(w, "Index haps files")
	_, _ = fmt.Fprintln(w, "------------------")
	for _, in := range o.Inputs {
		_, _ = fmt.Fprintf(w, "haps file prefix: %s\n", in.Prefix)
	}
	_, _ = fmt.Fprintf(w, "Block length: %d\n", o.SegmentLength)
	_, _ = fmt.Fprintf(w, "Mutation threshold: %d\n", o.Threshold)
	_, _ = fmt.Fprintln(w, "------------------")
}

// exitCode reports err on stderr and maps it to a process status.
func exitCode(err error, stderr io.Writer) int {
	var ce *indexer.ConfigError
	switch {
	case err == nil, writers.IsBrokenPipe(err):
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitCanceled
	case errors.As(err, &ce):
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	default:
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}
}

// runner indexes one input per call; calls may run concurrently.
type runner struct {
	cfg    indexer.Config
	output string
	stdout io.Writer
	log    *slog.Logger
}

func (r *runner) writer(prefix string) (*writers.IndexWriter, error) {
	switch r.output {
	case "-":
		return writers.NewStream(r.stdout), nil
	case "":
		return writers.Create(prefix + ".index")
	default:
		return writers.Create(r.output)
	}
}

// index runs one pass. The writer is staged before the input is opened so
// that every failure, including a missing input, leaves no index behind.
func (r *runner) index(ctx context.Context, in haps.Input) (err error) {
	log := r.log.With("prefix", in.Prefix)
	start := time.Now()

	w, err := r.writer(in.Prefix)
	if err != nil {
		return err
	}
	var st indexer.Stats
	defer func() {
		if err == nil {
			return
		}
		if aerr := w.Abort(); aerr != nil {
			log.Warn("could not remove index", "error", aerr)
		}
		if errors.Is(err, context.Canceled) {
			log.Warn("indexing canceled", "records", st.Records)
		}
	}()

	path, err := in.Locate()
	if err != nil {
		return err
	}
	src, err := haps.OpenFile(path)
	if err != nil {
		return err
	}
	defer src.Close()
	if src.Compression != haps.Plain {
		if w.Path() != "-" {
			return indexer.NewConfigError("input", path,
				fmt.Errorf("%s-compressed: offsets would not address the file on disk; index it to stdout with -o -", src.Compression))
		}
		log.Info("compressed input; offsets address the decompressed stream",
			"input", path, "compression", src.Compression.String())
	}
	log.Debug("indexing", "input", path, "output", w.Path(),
		"segment_length", r.cfg.SegmentLength, "threshold", r.cfg.Threshold)

	progress := rate.Sometimes{Interval: progressInterval}
	st, err = indexer.Build(ctx, src, r.cfg, w.Write,
		indexer.WithProgress(0, func(s indexer.Stats) {
			progress.Do(func() {
				log.Info("progress", "records", s.Records, "bytes", s.Bytes, "indexed", s.Indexed)
			})
		}))
	if err != nil {
		return err
	}
	if err = w.Commit(); err != nil {
		return err
	}

	log.Info("index written",
		"output", w.Path(),
		"records", st.Records,
		"mutated", st.Mutated,
		"segments", st.Segments,
		"indexed", st.Indexed,
		"bytes", st.Bytes,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
