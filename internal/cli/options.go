// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"hapsindex/internal/cliutil"
	"hapsindex/internal/haps"
	"hapsindex/internal/indexer"
	"hapsindex/internal/version"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	Inputs           []haps.Input
	SegmentLength    int64
	SegmentLengthArg string // as typed, for the banner and warnings

	// Indexing
	Threshold int

	// Output
	Output string // "" = <prefix>.index, "-" = stdout

	// Performance
	Threads int

	// Logging
	Quiet     bool
	LogFormat string
	LogLevel  string

	Version bool
}

// NewFlagSet returns a ContinueOnError FlagSet with hapsindex usage text.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() { usage(fs.Output(), name, fs) }
	return fs
}

func usage(out io.Writer, name string, fs *flag.FlagSet) {
	def := func(flagName string) string {
		if f := fs.Lookup(flagName); f != nil {
			return f.DefValue
		}
		return ""
	}
	fmt.Fprintf(out, "%s - sparse segment index for .haps genotype files\n\n", name)
	fmt.Fprintf(out, "Version: %s\n\n", version.Version)

	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s [options] <haps_prefix>... <segment_length>\n", name)

	fmt.Fprintln(out, "\nArguments:")
	fmt.Fprintln(out, "  haps_prefix                 Reads <prefix>.haps (or .haps.gz/.zst/.lz4), writes <prefix>.index;")
	fmt.Fprintln(out, "                              a path ending in .haps[.gz|.zst|.lz4] or a glob is accepted too;")
	fmt.Fprintln(out, "                              compressed input can only be indexed to stdout (-o -)")
	fmt.Fprintln(out, "  segment_length              Segment width in bp (positive whole number)")

	fmt.Fprintln(out, "\nIndexing:")
	fmt.Fprintf(out, "  -m, --threshold int         Min. mutated records for a segment to be indexed [%s]\n", def("threshold"))

	fmt.Fprintln(out, "\nOutput:")
	fmt.Fprintln(out, "  -o, --output path           Index destination ('-' = stdout; single prefix only) [<prefix>.index]")

	fmt.Fprintln(out, "\nPerformance:")
	fmt.Fprintf(out, "  -t, --threads int           Prefixes indexed in parallel (0=all CPUs) [%s]\n", def("threads"))

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  -q, --quiet                 Suppress banner, progress and warnings [%s]\n", def("quiet"))
	fmt.Fprintf(out, "      --log-format string     Log format: text | json [%s]\n", def("log-format"))
	fmt.Fprintf(out, "      --log-level string      Log level: debug | info | warn | error [%s]\n", def("log-level"))

	fmt.Fprintln(out, "\nMiscellaneous:")
	fmt.Fprintln(out, "  -v, --version               Print version and exit")
	fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
}

// ParseArgs registers and parses all flags, returns an Options struct.
// Segment length problems come back as *indexer.ConfigError.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.IntVar(&opt.Threshold, "threshold", indexer.DefaultThreshold, "min. mutated records per indexed segment")
	fs.IntVar(&opt.Threshold, "m", indexer.DefaultThreshold, "alias of --threshold")
	fs.StringVar(&opt.Output, "output", "", "index destination ('-' = stdout)")
	fs.StringVar(&opt.Output, "o", "", "alias of --output")
	fs.IntVar(&opt.Threads, "threads", 0, "prefixes indexed in parallel (0 = all CPUs)")
	fs.IntVar(&opt.Threads, "t", 0, "alias of --threads")
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress banner, progress and warnings")
	fs.BoolVar(&opt.Quiet, "q", false, "alias of --quiet")
	fs.StringVar(&opt.LogFormat, "log-format", "text", "log format: text | json")
	fs.StringVar(&opt.LogLevel, "log-level", "info", "log level: debug | info | warn | error")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit")
	fs.BoolVar(&help, "h", false, "show this help message")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	if len(posArgs) < 2 {
		return opt, errors.New("need at least one haps_prefix and a segment_length")
	}
	last := len(posArgs) - 1
	opt.SegmentLengthArg = posArgs[last]
	n, err := indexer.ParseSegmentLength(opt.SegmentLengthArg)
	if err != nil {
		return opt, err
	}
	opt.SegmentLength = n
	if opt.Inputs, err = cliutil.ExpandInputs(posArgs[:last]); err != nil {
		return opt, err
	}

	// Validation
	if opt.Threshold < 0 {
		return opt, indexer.NewConfigError("mutation threshold", fmt.Sprint(opt.Threshold), errors.New("must be >= 0"))
	}
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be >= 0")
	}
	if opt.Output != "" && len(opt.Inputs) > 1 {
		return opt, errors.New("--output needs exactly one haps_prefix")
	}
	switch strings.ToLower(opt.LogFormat) {
	case "text", "json":
	default:
		return opt, fmt.Errorf("invalid --log-format %q", opt.LogFormat)
	}
	return opt, nil
}
