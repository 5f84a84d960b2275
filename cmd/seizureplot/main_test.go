package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/neuralclassy/seizureplot"
)

const exampleCSV = "y,f0,f1,f2\n" +
	"1,0.1,0.2,0.3\n" +
	"0,0.4,0.5,0.6\n" +
	"0,0.7,0.8,0.9\n" +
	"0,1.0,1.1,1.2\n"

func parseOptions(t *testing.T, args ...string) Options {
	t.Helper()
	var opts Options
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		t.Fatalf("ParseArgs(%v) error = %v", args, err)
	}
	return opts
}

func writeInput(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "assignment_data.csv")
	if err := os.WriteFile(input, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return input, filepath.Join(dir, "plot.png")
}

func TestOptionDefaults(t *testing.T) {
	opts := parseOptions(t)

	if opts.Input != "assignment_data.csv" || opts.LabelColumn != "y" || opts.Output != "plot.png" {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	if !reflect.DeepEqual(opts.Rows, []int{0, 1, 2}) {
		t.Fatalf("rows = %v, want [0 1 2]", opts.Rows)
	}

	cfg := opts.plotConfig()
	if cfg.Title != "Seizure positive vs negative" || cfg.XLabel != "milliseconds" || cfg.YLabel != "I don't know" {
		t.Fatalf("unexpected plot config %+v", cfg)
	}
	if len(cfg.XTicks) != 30 || cfg.XTicks[29] != 2900 {
		t.Fatalf("unexpected ticks %v", cfg.XTicks)
	}
}

func TestOptionOverrides(t *testing.T) {
	opts := parseOptions(t, "-i", "data.txt", "--rows", "4", "--rows", "5", "--xtick-count", "0", "--relaxed", "--log-level", "debug")

	if opts.Input != "data.txt" || !opts.Relaxed || opts.LogLevel != "debug" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if !reflect.DeepEqual(opts.Rows, []int{4, 5}) {
		t.Fatalf("rows = %v, want [4 5]", opts.Rows)
	}
	if ticks := opts.plotConfig().XTicks; len(ticks) != 0 {
		t.Fatalf("expected no ticks, got %v", ticks)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	var opts Options
	if _, err := flags.ParseArgs(&opts, []string{"--log-level", "loud"}); err == nil {
		t.Fatalf("expected an error for an unknown log level")
	}
}

func TestRun(t *testing.T) {
	input, output := writeInput(t, exampleCSV)
	opts := parseOptions(t, "-i", input, "-o", output)

	var stdout bytes.Buffer
	if err := run(context.Background(), opts, &stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	printed := stdout.String()
	if !strings.Contains(printed, "[4x5] DataFrame") {
		t.Errorf("dataset not printed:\n%s", printed)
	}
	if !strings.Contains(printed, "[3x5] DataFrame") {
		t.Errorf("selected negative rows not printed:\n%s", printed)
	}
	if strings.Index(printed, "[4x5]") > strings.Index(printed, "[3x5]") {
		t.Errorf("dataset should be printed before the selection:\n%s", printed)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("plot not saved: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("saved plot is not a PNG")
	}
}

func TestRunOverlayPositive(t *testing.T) {
	input, output := writeInput(t, exampleCSV)
	output = strings.TrimSuffix(output, ".png") + ".svg"
	opts := parseOptions(t, "-i", input, "-o", output, "--overlay-positive")

	if err := run(context.Background(), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("plot not saved: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("saved plot is not an SVG")
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("MissingInput", func(t *testing.T) {
		opts := parseOptions(t, "-i", filepath.Join(t.TempDir(), "missing.csv"))
		err := run(context.Background(), opts, &bytes.Buffer{})

		var accessErr *seizureplot.FileAccessError
		if !errors.As(err, &accessErr) {
			t.Fatalf("expected *FileAccessError, got %v", err)
		}
	})

	t.Run("MalformedInput", func(t *testing.T) {
		input, _ := writeInput(t, "y,f0\n0,1,2\n")
		opts := parseOptions(t, "-i", input)
		err := run(context.Background(), opts, &bytes.Buffer{})

		var parseErr *seizureplot.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError, got %v", err)
		}
	})

	t.Run("TooFewNegativeRows", func(t *testing.T) {
		input, output := writeInput(t, "y,f0\n0,1\n1,2\n0,3\n")
		opts := parseOptions(t, "-i", input, "-o", output)
		err := run(context.Background(), opts, &bytes.Buffer{})

		var rangeErr *seizureplot.IndexOutOfRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("expected *IndexOutOfRangeError, got %v", err)
		}
		if rangeErr.Index != 2 || rangeErr.Len != 2 {
			t.Fatalf("unexpected error %+v", rangeErr)
		}
		if _, err := os.Stat(output); !os.IsNotExist(err) {
			t.Fatalf("no plot should be written after a failure")
		}
	})

	t.Run("OverlayWithoutPositiveRows", func(t *testing.T) {
		input, output := writeInput(t, "y,f0\n0,1\n0,2\n0,3\n")
		opts := parseOptions(t, "-i", input, "-o", output, "--overlay-positive")
		err := run(context.Background(), opts, &bytes.Buffer{})

		var rangeErr *seizureplot.IndexOutOfRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("expected *IndexOutOfRangeError, got %v", err)
		}
	})
}

func TestRunServe(t *testing.T) {
	input, output := writeInput(t, exampleCSV)
	opts := parseOptions(t, "-i", input, "-o", output, "--serve", "127.0.0.1:0")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := run(ctx, opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("serving should not save the plot")
	}
}
