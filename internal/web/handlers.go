package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"timetracker/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		badRequestOr500(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         gin.H{"id": user.ID, "email": user.Email},
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), currentUserID(c), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		badRequestOr500(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context(), currentUserID(c))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.tasks.GetTask(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), currentUserID(c), c.Param("id"), service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.DeleteTask(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		taskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStartTimer(c *gin.Context) {
	entry, err := s.timers.StartTimer(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		timerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleStopTimer(c *gin.Context) {
	entry, err := s.timers.StopTimer(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		timerError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleActiveTimer(c *gin.Context) {
	entry, err := s.timers.ActiveTimer(c.Request.Context(), currentUserID(c))
	if err != nil {
		serverError(c, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.stats.GetStats(c.Request.Context(), currentUserID(c))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// taskError maps task lookup failures; timerError additionally maps the
// timer conflict pair onto 409.
func taskError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	badRequestOr500(c, err)
}

func timerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTimerRunning), errors.Is(err, service.ErrNoActiveTimer):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		serverError(c, err)
	}
}

// badRequestOr500 treats validation errors from the service layer as 400;
// wrapped storage failures stay opaque.
func badRequestOr500(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	serverError(c, err)
}

func serverError(c *gin.Context, err error) {
	log.Printf("internal error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
