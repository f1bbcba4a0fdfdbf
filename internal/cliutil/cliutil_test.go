package cliutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"hapsindex/internal/haps"
)

func TestSplitFlagsAndPositionals(t *testing.T) {
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	var b bool
	fs.BoolVar(&b, "bool", false, "")
	flagArgs, posArgs := SplitFlagsAndPositionals(fs, []string{"--bool", "pos1", "--", "pos2"})
	if len(flagArgs) != 1 || len(posArgs) != 2 || posArgs[0] != "pos1" || posArgs[1] != "pos2" {
		t.Fatalf("unexpected split: %v / %v", flagArgs, posArgs)
	}
}

func TestSplitFlagsAfterPositionals(t *testing.T) {
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	var n int
	fs.IntVar(&n, "threshold", 100, "")
	flagArgs, posArgs := SplitFlagsAndPositionals(fs, []string{"chr1", "1000", "--threshold", "5"})
	if len(flagArgs) != 2 || flagArgs[1] != "5" {
		t.Fatalf("flags: %v", flagArgs)
	}
	if len(posArgs) != 2 || posArgs[0] != "chr1" || posArgs[1] != "1000" {
		t.Fatalf("positionals: %v", posArgs)
	}
}

func TestSplitNegativeNumberIsPositional(t *testing.T) {
	fs := flag.NewFlagSet("x", flag.ContinueOnError)
	_, posArgs := SplitFlagsAndPositionals(fs, []string{"chr1", "-1000"})
	if len(posArgs) != 2 || posArgs[1] != "-1000" {
		t.Fatalf("want -1000 kept as positional, got %v", posArgs)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.haps", "b.haps.gz", "a.index", "notes.txt"} {
		_ = os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644)
	}
	got, err := ExpandInputs([]string{filepath.Join(dir, "*")})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []haps.Input{
		{Prefix: filepath.Join(dir, "a"), Path: filepath.Join(dir, "a.haps")},
		{Prefix: filepath.Join(dir, "b"), Path: filepath.Join(dir, "b.haps.gz")},
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expand: got %v want %v", got, want)
	}
}

func TestExpandInputsLiteral(t *testing.T) {
	got, err := ExpandInputs([]string{"data/chr1", "data/chr2.haps.gz", "data/chr1.haps"})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []haps.Input{
		{Prefix: "data/chr1"},
		{Prefix: "data/chr2", Path: "data/chr2.haps.gz"},
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected inputs: %v", got)
	}
}

// A named compressed file is read even when a plain sibling exists.
func TestExpandInputsKeepsNamedFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.haps", "c.haps.gz"} {
		_ = os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644)
	}
	named := filepath.Join(dir, "c.haps.gz")
	got, err := ExpandInputs([]string{named})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(got) != 1 || got[0].Path != named || got[0].Prefix != filepath.Join(dir, "c") {
		t.Fatalf("unexpected inputs: %v", got)
	}
}

func TestExpandInputsNoMatch(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "a.index"), []byte("x"), 0o644)
	if _, err := ExpandInputs([]string{filepath.Join(dir, "*")}); err == nil {
		t.Fatal("expected error when glob matches no .haps input")
	}
}
