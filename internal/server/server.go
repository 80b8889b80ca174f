package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Entropy136/intention-test-extension/internal/common/cnst"
	"github.com/Entropy136/intention-test-extension/internal/generator"
	"github.com/Entropy136/intention-test-extension/internal/session"
	"github.com/Entropy136/intention-test-extension/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server is the HTTP layer of the generation backend. It owns payload
// validation and the session lifecycle around each request; the session
// core and the generation runner do the rest.
type Server struct {
	logger       *zap.Logger
	registry     *session.Registry
	executor     session.Executor
	metrics      *metrics.Metrics
	defaultJUnit int
}

// NewServer wires the HTTP layer. metrics may be nil (disabled).
func NewServer(logger *zap.Logger, registry *session.Registry, executor session.Executor, m *metrics.Metrics, defaultJUnit int) *Server {
	if defaultJUnit == 0 {
		defaultJUnit = 5
	}
	return &Server{
		logger:       logger.Named("server"),
		registry:     registry,
		executor:     executor,
		metrics:      m,
		defaultJUnit: defaultJUnit,
	}
}

// RegisterRoutes registers all routes on the given router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.Use(s.loggerMiddleware())
	router.Use(s.recoveryMiddleware())
	if s.metrics != nil {
		router.Use(s.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	router.POST("/api/v1/generate", s.handleGenerate)
	router.GET("/api/v1/sessions", s.handleSessions)
	router.GET("/healthz", s.handleHealthz)
}

// handleGenerate dispatches on the payload's type discriminator: query
// starts a generation and streams its events on this connection, stop
// cancels a running one by id.
func (s *Server) handleGenerate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	switch typ := RequestType(body); typ {
	case cnst.RequestTypeQuery:
		s.handleQuery(c, body)
	case cnst.RequestTypeStop:
		s.handleStop(c, body)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported request type: " + typ})
	}
}

func (s *Server) handleQuery(c *gin.Context, body []byte) {
	req, err := ParseQueryPayload(body, s.defaultJUnit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := session.New(req.SessionID, req.Data, req.JUnitVersion, NewStreamWriter(c.Writer), s.executor)
	if err != nil {
		// construction failure: the session is never registered
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.registry.Register(sess)
	s.logger.Info("session registered",
		zap.String("session_id", sess.ID()),
		zap.String("focal_method", req.Data.TargetFocalMethod))

	start := time.Now()
	status := cnst.StatusFinish
	defer func() {
		// deregistration happens on every path: finish, error, and stop
		s.registry.Remove(sess.ID())
		if s.metrics != nil {
			s.metrics.GenerationDone(status, start)
		}
		s.logger.Info("session removed",
			zap.String("session_id", sess.ID()),
			zap.String("status", status))
	}()

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)

	if err := sess.WriteStartMessage(); err != nil {
		status = cnst.StatusError
		s.logger.Warn("failed to write start event",
			zap.String("session_id", sess.ID()), zap.Error(err))
		return
	}

	if err := sess.Executor().Execute(c.Request.Context(), sess); err != nil {
		status = cnst.StatusError
		reason := "generation failed: " + err.Error()
		if errors.Is(err, generator.ErrStopped) {
			reason = "stopped by client"
		}
		s.logger.Warn("generation terminated with error",
			zap.String("session_id", sess.ID()), zap.Error(err))
		if werr := sess.WriteErrorMessage(reason); werr != nil {
			s.logger.Warn("failed to write error event",
				zap.String("session_id", sess.ID()), zap.Error(werr))
		}
		return
	}

	if err := sess.WriteFinishMessage(); err != nil {
		status = cnst.StatusError
		s.logger.Warn("failed to write finish event",
			zap.String("session_id", sess.ID()), zap.Error(err))
	}
}

func (s *Server) handleStop(c *gin.Context, body []byte) {
	id := SessionIDField(body)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	// Unknown or already-finished ids are a harmless no-op.
	sess, ok := s.registry.Get(id)
	if ok {
		sess.RequestStop()
	}
	s.logger.Info("stop requested",
		zap.String("session_id", id),
		zap.Bool("found", ok))
	c.JSON(http.StatusOK, gin.H{"status": "ok", "stopping": ok})
}

func (s *Server) handleSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.registry.ListActiveIDs()})
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
