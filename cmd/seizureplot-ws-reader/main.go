package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"

	"github.com/jessevdk/go-flags"
	"github.com/neuralclassy/seizureplot"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
)

// Config holds the configuration for the WS reader
type Config struct {
	ServerURL string
	Output    io.Writer
	Logger    logrus.FieldLogger
}

// WSReader reads the /ws2 stream of a seizureplot server and writes the
// plotted points as CSV.
type WSReader struct {
	config    Config
	csvWriter *csv.Writer
}

func NewWSReader(config Config) *WSReader {
	if config.Logger == nil {
		config.Logger = logrus.WithField("tag", "WSReader")
	}

	return &WSReader{
		config:    config,
		csvWriter: csv.NewWriter(config.Output),
	}
}

func streamURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws2"

	return u.String(), nil
}

// Connect dials the server and copies frames to the output until the stream
// ends or the connection closes.
func (w *WSReader) Connect(ctx context.Context) error {
	wsURL, err := streamURL(w.config.ServerURL)
	if err != nil {
		return err
	}

	w.config.Logger.WithField("url", wsURL).Info("connecting to websocket")

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := w.csvWriter.Write([]string{"series_id", "x", "y"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for {
		_, message, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				w.config.Logger.Info("connection closed normally")
				break
			}
			w.csvWriter.Flush()
			return fmt.Errorf("read message: %w", err)
		}

		err = w.processFrame(message)
		if err == io.EOF {
			break
		} else if err != nil {
			w.config.Logger.WithError(err).Error("error processing frame")
		}
	}

	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

// processFrame returns io.EOF once the STREAM_END frame arrives.
func (w *WSReader) processFrame(message []byte) error {
	frame, err := seizureplot.DecodeFrame(message)
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	switch payload := frame.Payload.(type) {
	case seizureplot.SeriesData:
		return w.writeSeries(payload)
	case seizureplot.Metadata:
		w.config.Logger.WithFields(logrus.Fields{
			"title":  payload.PlotConfig.Title,
			"series": len(payload.Series),
		}).Debug("received metadata")
		return nil
	case seizureplot.StreamEnd:
		logger := w.config.Logger.WithField("message", payload.Msg)
		if payload.Error {
			logger.Error("stream ended with error")
			return errors.New(payload.Msg)
		}
		logger.Info("stream ended")
		return io.EOF
	default:
		return fmt.Errorf("unexpected payload %T", frame.Payload)
	}
}

func (w *WSReader) writeSeries(series seizureplot.SeriesData) error {
	seriesID := strconv.FormatUint(uint64(series.SeriesID), 10)

	for i := range series.X {
		row := []string{
			seriesID,
			strconv.FormatFloat(series.X[i], 'g', -1, 64),
			strconv.FormatFloat(series.Y[i], 'g', -1, 64),
		}
		if err := w.csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

type Options struct {
	URL string `long:"url" description:"URL of the seizureplot server" default:"http://localhost:5274"`
}

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logrus.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reader := NewWSReader(Config{
		ServerURL: opts.URL,
		Output:    os.Stdout,
	})
	if err := reader.Connect(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to read stream")
	}
}
