package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"
	"github.com/neuralclassy/seizureplot"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Input       string `short:"i" long:"input" description:"CSV file with a header row and a 0/1 label column" default:"assignment_data.csv"`
	LabelColumn string `long:"label" description:"Name of the label column" default:"y"`
	Relaxed     bool   `long:"relaxed" description:"Split lines on commas or runs of spaces and tabs instead of parsing strict CSV"`

	Rows    []int `long:"rows" description:"Positions in the negative partition to print (repeatable)" default:"0" default:"1" default:"2"`
	PlotRow int   `long:"plot-row" description:"Position in the negative partition to plot" default:"0"`

	OverlayPositive bool `long:"overlay-positive" description:"Also draw the first positive row on the same axes"`

	Title      string  `long:"title" description:"Plot title" default:"Seizure positive vs negative"`
	XLabel     string  `long:"xlabel" description:"X axis label" default:"milliseconds"`
	YLabel     string  `long:"ylabel" description:"Y axis label" default:"I don't know"`
	XTickStep  float64 `long:"xtick-step" description:"Distance between x ticks" default:"100"`
	XTickCount int     `long:"xtick-count" description:"Number of x ticks, 0 lets the plot choose" default:"30"`
	Width      float64 `long:"width" description:"Image width in points, 0 for the default"`
	Height     float64 `long:"height" description:"Image height in points, 0 for the default"`

	Output string `short:"o" long:"output" description:"Where to save the plot, the extension picks the format" default:"plot.png"`
	Serve  string `long:"serve" description:"Show the plot in the browser by serving it on this address instead of saving it" value-name:"ADDR"`

	LogLevel string `long:"log-level" description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
}

func (o Options) plotConfig() seizureplot.PlotConfig {
	return seizureplot.PlotConfig{
		Title:  o.Title,
		XTicks: seizureplot.Ticks(0, o.XTickStep, o.XTickCount),
		XLabel: o.XLabel,
		YLabel: o.YLabel,
		Width:  o.Width,
		Height: o.Height,
	}
}

// run is the whole script: load, print, split, select, print, plot. Any error
// ends it.
func run(ctx context.Context, opts Options, stdout io.Writer) error {
	ds, err := seizureplot.Load(ctx, opts.Input, seizureplot.LoadOptions{
		LabelColumn: opts.LabelColumn,
		Relaxed:     opts.Relaxed,
	})
	if err != nil {
		return err
	}

	if err := seizureplot.PrintDataset(stdout, ds); err != nil {
		return err
	}

	positive, negative := seizureplot.Split(ds)
	logrus.WithFields(logrus.Fields{
		"positive": positive.Len(),
		"negative": negative.Len(),
	}).Info("split dataset by label")

	selected, err := seizureplot.SelectRows(negative, opts.Rows...)
	if err != nil {
		return fmt.Errorf("select negative rows: %w", err)
	}
	if err := seizureplot.PrintRows(stdout, negative.Columns, selected); err != nil {
		return err
	}

	plotted, err := seizureplot.SelectRows(negative, opts.PlotRow)
	if err != nil {
		return fmt.Errorf("select negative row to plot: %w", err)
	}

	p, err := seizureplot.RenderLinePlot(plotted[0], opts.plotConfig())
	if err != nil {
		return err
	}

	if opts.OverlayPositive {
		first, err := seizureplot.SelectRows(positive, 0)
		if err != nil {
			return fmt.Errorf("select positive row to overlay: %w", err)
		}
		if err := p.Overlay(seizureplot.SeriesName(first[0]), first[0]); err != nil {
			return err
		}
	}

	if opts.Serve != "" {
		server := seizureplot.NewHttpServer(p, p.Metadata(ds.FeatureColumns()), opts.Serve)
		return server.Run(ctx)
	}

	return p.Save(opts.Output)
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		logrus.WithError(err).Fatal("seizureplot failed")
	}
}
