package sensing

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/chrispappas/golang-generics-set/set"
	"github.com/gin-gonic/gin"
	"github.com/lzwang26/stress-sensing-mitigation/assets"
	"github.com/lzwang26/stress-sensing-mitigation/broker"
	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Server streams frames to browser clients over a websocket and
// serves the embedded live-plot page. It subscribes to the shared
// frame broker; it never touches a session's buffer.
type Server struct {
	engine   *gin.Engine
	broker   *broker.Broker[*schema.Frame]
	sessions map[string]*Session
	logger   *slog.Logger
}

func NewServer(
	br *broker.Broker[*schema.Frame],
	logger *slog.Logger,
	sessions ...*Session,
) *Server {
	s := &Server{
		engine:   gin.Default(),
		broker:   br,
		sessions: map[string]*Session{},
		logger:   logger,
	}

	for _, sess := range sessions {
		s.sessions[sess.Series()] = sess
	}

	s.setupRoutes()
	return s
}

func (s *Server) GetEngine() *gin.Engine {
	return s.engine
}

func (s *Server) setupRoutes() {
	r := s.engine

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/index.html")
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	s.StaticFiles(assets.FS,
		"index.html", "text/html",
		"graphs.js", "application/javascript",
	)

	r.GET("/ws", s.handleWS)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

type wsRequest struct {
	// Series to stream; empty means all.
	Series []string `json:"series"`

	// Backfill requests recorded history from T >= Backfill seconds.
	Backfill *float64 `json:"backfill,omitempty"`
}

func (s *Server) handleWS(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	defer func() {
		_ = conn.Close(websocket.StatusInternalError, "closed unexpectedly")
	}()

	_, reqBytes, err := conn.Read(ctx)
	if err != nil {
		s.logger.Warn("ws read", "err", err)
		return
	}
	conn.CloseRead(ctx)

	var req wsRequest
	if err := json.Unmarshal(reqBytes, &req); err != nil {
		s.logger.Warn("ws request", "err", errors.Wrap(err, "unmarshal json"))
		return
	}

	seriesNames := req.Series
	if len(seriesNames) == 0 {
		for name := range s.sessions {
			seriesNames = append(seriesNames, name)
		}
	}
	wanted := set.FromSlice(seriesNames)

	// initial data: recorded history if asked for, then the latest
	// frame of each requested session
	for _, name := range seriesNames {
		sess, ok := s.sessions[name]
		if !ok {
			continue
		}

		if req.Backfill != nil && sess.Recorder() != nil {
			if err := s.writeBackfill(c, conn, sess, *req.Backfill); err != nil {
				s.logger.Warn("ws backfill", "err", err)
				return
			}
		}

		if frame := sess.Latest(); frame != nil {
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				s.logger.Warn("ws write", "err", err)
				return
			}
		}
	}

	msgCh := s.broker.Subscribe()
	defer s.broker.Unsubscribe(msgCh)

	for frame := range msgCh {
		if !wanted.Has(frame.Series) {
			continue
		}
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			s.logger.Warn("ws write", "err", err)
			return
		}
	}
}

// writeBackfill sends recorded history as a plain frame: data only,
// the client takes bounds from live frames.
func (s *Server) writeBackfill(
	c *gin.Context,
	conn *websocket.Conn,
	sess *Session,
	start float64,
) error {
	window, err := sess.Recorder().LoadWindow(sess.Series(), start)
	if err != nil {
		return errors.Wrap(err, "load window")
	}
	if len(window) == 0 {
		return nil
	}

	frame := &schema.Frame{Series: sess.Series()}
	frame.Times = make([]float64, len(window))
	frame.Values = make([]float64, len(window))
	for i, sample := range window {
		frame.Times[i] = sample.T
		frame.Values[i] = sample.Value
	}

	return wsjson.Write(c.Request.Context(), conn, frame)
}

func (s *Server) Run(address string) error {
	if err := s.engine.Run(address); err != nil {
		return errors.Wrap(err, "run")
	}
	return nil
}

func (s *Server) StaticFiles(fsys fs.FS, files ...string) {
	for i := 0; i < len(files); i += 2 {
		name := files[i]
		ct := files[i+1]
		s.engine.GET("/"+name, func(c *gin.Context) {
			header := c.Writer.Header()
			header["Content-Type"] = []string{ct}
			content, err := fs.ReadFile(fsys, name)
			if err != nil {
				c.Status(404)
				return
			}
			_, _ = c.Writer.Write(content)
		})
	}
}
