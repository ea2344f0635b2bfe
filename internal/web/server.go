package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timetracker/internal/service"
)

// Server exposes the tracker over HTTP.
type Server struct {
	auth   *service.AuthService
	tasks  *service.TaskService
	timers *service.TimerService
	stats  *service.StatsService
	router *gin.Engine
}

func NewServer(auth *service.AuthService, tasks *service.TaskService, timers *service.TimerService, stats *service.StatsService) *Server {
	router := gin.Default()

	s := &Server{
		auth:   auth,
		tasks:  tasks,
		timers: timers,
		stats:  stats,
		router: router,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	router.POST("/auth/register", s.handleRegister)
	router.POST("/auth/login", s.handleLogin)

	authed := router.Group("/", s.requireAuth())
	{
		authed.POST("/tasks", s.handleCreateTask)
		authed.GET("/tasks", s.handleListTasks)
		authed.GET("/tasks/active-timer", s.handleActiveTimer)
		authed.GET("/tasks/:id", s.handleGetTask)
		authed.PATCH("/tasks/:id", s.handleUpdateTask)
		authed.DELETE("/tasks/:id", s.handleDeleteTask)
		authed.POST("/tasks/:id/start-timer", s.handleStartTimer)
		authed.POST("/tasks/:id/stop-timer", s.handleStopTimer)
		authed.GET("/dashboard/stats", s.handleStats)
	}

	return s
}

// Handler returns the root handler, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
