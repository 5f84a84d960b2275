package seizureplot

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
)

//go:embed webui
var webuiFiles embed.FS

const shutdownTimeout = 5 * time.Second

// HttpServer shows a rendered Plot in the browser. Besides the page itself it
// serves the chart as an image, its metadata as JSON and the plotted points as
// a stream of binary frames on /ws2.
type HttpServer struct {
	plot     *Plot
	metadata Metadata
	addr     string
	mux      *http.ServeMux
	logger   logrus.FieldLogger
}

func NewHttpServer(plot *Plot, metadata Metadata, addr string) *HttpServer {
	s := &HttpServer{
		plot:     plot,
		metadata: metadata,
		addr:     addr,
		mux:      http.NewServeMux(),
		logger:   logrus.WithField("tag", "HttpServer"),
	}

	subFS, err := fs.Sub(webuiFiles, "webui")
	if err != nil {
		panic(err)
	}

	s.mux.Handle("/", http.FileServer(http.FS(subFS)))
	s.mux.HandleFunc("/metadata", s.handleMetadata)
	s.mux.HandleFunc("/plot.svg", s.handlePlot("svg", "image/svg+xml"))
	s.mux.HandleFunc("/plot.png", s.handlePlot("png", "image/png"))
	s.mux.HandleFunc("/ws2", s.handleWebSocket)

	return s
}

func (s *HttpServer) Handler() http.Handler {
	return s.mux
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "content-type")
	w.Header().Set("Access-Control-Allow-Methods", "*")
}

func (s *HttpServer) handleMetadata(w http.ResponseWriter, req *http.Request) {
	setCORSHeaders(w)
	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(s.metadata)
	if err != nil {
		s.logger.WithError(err).Warn("failed to write metadata")
	}
}

func (s *HttpServer) handlePlot(format string, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		setCORSHeaders(w)
		w.Header().Set("Content-Type", contentType)

		// Rendering straight into the response means a failure can only be
		// logged, the status line is already out.
		if err := s.plot.Render(w, format); err != nil {
			s.logger.WithError(err).WithField("format", format).Error("failed to render plot")
		}
	}
}

// The whole chart fits in a handful of frames: the metadata, one SERIES frame
// per line, then STREAM_END. After that the socket is closed normally.
func (s *HttpServer) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.WithError(err).Warn("failed to accept new websocket connection")
		return
	}

	// Clients never send anything, so stop reading and let CloseRead cancel
	// the context if they go away.
	ctx := c.CloseRead(req.Context())

	payloads := []any{s.metadata}
	for _, series := range s.plot.Series() {
		data := SeriesData{
			SeriesID: series.Info.ID,
			X:        make([]float64, len(series.Points)),
			Y:        make([]float64, len(series.Points)),
		}
		for i, point := range series.Points {
			data.X[i] = point.X
			data.Y[i] = point.Y
		}
		payloads = append(payloads, data)
	}
	payloads = append(payloads, StreamEnd{Msg: "plot complete"})

	for _, payload := range payloads {
		frame, err := EncodeFrame(payload)
		if err != nil {
			s.logger.WithError(err).Error("failed to encode frame")
			c.Close(websocket.StatusInternalError, "encode failed")
			return
		}

		if err := c.Write(ctx, websocket.MessageBinary, frame); err != nil {
			s.logger.WithError(err).Warn("websocket write failed and closed")
			return
		}
	}

	s.logger.WithField("frames", len(payloads)).Debug("stream sent")
	c.Close(websocket.StatusNormalClosure, "stream ended")
}

// Serve handles connections on listener until ctx is cancelled.
func (s *HttpServer) Serve(ctx context.Context, listener net.Listener) error {
	url := "http://" + listener.Addr().String()
	s.logger.Infof("starting HTTP server at %s", url)
	openBrowser(url)

	server := &http.Server{Handler: s.mux}
	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(listener)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.logger.Info("HTTP server stopped")
		return nil
	}
}

func (s *HttpServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}
