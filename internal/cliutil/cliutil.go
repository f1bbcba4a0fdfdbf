// internal/cliutil/cliutil.go
package cliutil

import (
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"hapsindex/internal/haps"
)

// BoolFlags returns names of flags that don't require a value.
func BoolFlags(fs *flag.FlagSet) map[string]bool {
	m := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			m[f.Name] = true
		}
	})
	return m
}

// looksNumeric reports whether arg is a signed number such as "-5" or
// "-1e3"; those are positionals, not flags.
func looksNumeric(arg string) bool {
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}

// SplitFlagsAndPositionals separates flag-like args from positionals so
// flags may follow the positionals. '--' ends flag parsing.
func SplitFlagsAndPositionals(fs *flag.FlagSet, argv []string) (flagArgs, posArgs []string) {
	boolFlags := BoolFlags(fs)
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			posArgs = append(posArgs, argv[i+1:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") || looksNumeric(arg) {
			posArgs = append(posArgs, arg)
			continue
		}
		flagArgs = append(flagArgs, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if !boolFlags[name] && i+1 < len(argv) {
			flagArgs = append(flagArgs, argv[i+1])
			i++
		}
	}
	return
}

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

// ExpandInputs turns positionals into inputs. A path naming a .haps file
// (optionally compressed) is read as given and its index is named after
// the path without the extension; a bare prefix is resolved when opened.
// Glob patterns are matched against the filesystem and only .haps inputs
// are kept. Inputs sharing a prefix would write the same index, so only
// the first is kept.
func ExpandInputs(posArgs []string) ([]haps.Input, error) {
	var out []haps.Input
	seen := map[string]bool{}
	add := func(in haps.Input) {
		if !seen[in.Prefix] {
			seen[in.Prefix] = true
			out = append(out, in)
		}
	}
	for _, a := range posArgs {
		if !hasGlobMeta(a) {
			if p, ok := haps.TrimSuffix(a); ok {
				add(haps.Input{Prefix: p, Path: a})
			} else {
				add(haps.Input{Prefix: a})
			}
			continue
		}
		m, err := filepath.Glob(a)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %v", a, err)
		}
		n := 0
		for _, path := range m {
			if p, ok := haps.TrimSuffix(path); ok {
				add(haps.Input{Prefix: p, Path: path})
				n++
			}
		}
		if n == 0 {
			return nil, fmt.Errorf("no .haps input matched %q", a)
		}
	}
	return out, nil
}
