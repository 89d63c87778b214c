// Package debugserver exposes the debug command channel over HTTP and a
// websocket. Everything it receives is pushed into a debugcmd.Queue that the
// frame loop polls, so requests never touch game state directly.
//
//	curl -X POST --data 'teleport 5 5; screenshot /tmp/a.png' localhost:7777/debug/inject
//	curl localhost:7777/debug/state
package debugserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/debugcmd"
	"github.com/goofansu/tankgame/internal/dump"
	"github.com/goofansu/tankgame/internal/logging"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 2 * time.Second
)

// StateSource provides the latest published world snapshot.
type StateSource interface {
	PublishedState() (dump.State, bool)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server routes debug requests into a command queue.
type Server struct {
	queue  *debugcmd.Queue
	state  StateSource
	log    logrus.FieldLogger
	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// WithState enables GET /debug/state.
func WithState(src StateSource) Option {
	return func(s *Server) { s.state = src }
}

// New builds the router. q must not be nil.
func New(q *debugcmd.Queue, opts ...Option) *Server {
	s := &Server{queue: q}
	for _, o := range opts {
		o(s)
	}
	s.log = logging.Or(s.log, logging.CatNet)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	d := r.Group("/debug")
	d.POST("/inject", s.handleInject)
	d.POST("/screenshot", s.handleScreenshot)
	d.POST("/quit", s.handleQuit)
	d.GET("/state", s.handleState)
	d.GET("/ws", s.handleWS)
	s.router = r
	return s
}

// Handler returns the HTTP handler, for tests or embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Infof("Debug server listening on %s", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("debug server: %w", err)
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("debug server: shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("debug server: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"status": c.Writer.Status(),
		"took":   time.Since(start).String(),
	}).Debug("Debug server: request")
}

func (s *Server) handleInject(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.String(http.StatusBadRequest, "read body: %v\n", err)
		return
	}
	text := string(body)
	if strings.TrimSpace(text) == "" {
		c.String(http.StatusBadRequest, "empty script\n")
		return
	}
	s.queue.Push(text)
	s.log.Infof("Debug server: queued %d bytes of script", len(text))
	c.String(http.StatusAccepted, "queued\n")
}

func (s *Server) handleScreenshot(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" {
		c.String(http.StatusBadRequest, "missing path\n")
		return
	}
	s.queue.Push("screenshot " + path)
	c.String(http.StatusAccepted, "queued\n")
}

func (s *Server) handleQuit(c *gin.Context) {
	s.queue.Push("quit")
	c.String(http.StatusAccepted, "queued\n")
}

func (s *Server) handleState(c *gin.Context) {
	if s.state == nil {
		c.String(http.StatusNotFound, "state publishing disabled\n")
		return
	}
	st, ok := s.state.PublishedState()
	if !ok {
		c.String(http.StatusServiceUnavailable, "no frame yet\n")
		return
	}
	var b bytes.Buffer
	if err := dump.Format(&b, st); err != nil {
		c.String(http.StatusInternalServerError, "format: %v\n", err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", b.Bytes())
}

// handleWS queues every text message and answers "queued <n>", n counting
// the messages accepted on this connection.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("Debug server: websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	n := 0
	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.WithError(err).Warn("Debug server: websocket closed")
			}
			return
		}
		if typ != websocket.TextMessage || strings.TrimSpace(string(msg)) == "" {
			continue
		}
		s.queue.Push(string(msg))
		n++
		if err := conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("queued %d", n))); err != nil {
			return
		}
	}
}
