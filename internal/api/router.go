package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibegrapher/internal/events"
	"vibegrapher/internal/services"
)

// Server wires the HTTP surface over the service container and the event
// hub.
type Server struct {
	services *services.Services
	hub      *events.Hub
}

func NewServer(svcs *services.Services, hub *events.Hub) *Server {
	return &Server{services: svcs, hub: hub}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/projects", s.createProject)
	r.GET("/projects", s.listProjects)
	r.GET("/projects/:id", s.getProject)
	r.POST("/projects/:id/sessions", s.createSession)
	r.GET("/ws/projects/:id", s.subscribeEvents)

	r.GET("/sessions/:id", s.getSession)
	r.DELETE("/sessions/:id", s.clearSession)
	r.POST("/sessions/:id/messages", s.postMessage)
	r.GET("/sessions/:id/messages", s.getMessages)
	r.GET("/sessions/:id/diffs/pending", s.getPendingDiffs)

	r.GET("/diffs/:id", s.getDiff)
	r.POST("/diffs/:id/review", s.reviewDiff)
	r.POST("/diffs/:id/commit", s.commitDiff)
	r.POST("/diffs/:id/refine-message", s.refineDiffMessage)
	r.POST("/diffs/:id/tests", s.runDiffTests)

	return r
}

// abortWithError maps service errors onto HTTP statuses. Stale base and
// busy pipelines get 409 with distinguishable codes so clients can react
// instead of blindly retrying.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStaleBase):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "stale_base"})
	case errors.Is(err, services.ErrPipelineBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "pipeline_busy"})
	case errors.Is(err, services.ErrDiffTerminal), errors.Is(err, services.ErrDiffNotApproved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "invalid_status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
