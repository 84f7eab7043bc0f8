package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finwise/finwise-backend/internal/http/response"
	"github.com/finwise/finwise-backend/internal/pkg/ctxutil"
	"github.com/finwise/finwise-backend/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GET /progress
func (ph *ProgressHandler) Get(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	record, err := ph.progressService.Get(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondServiceError(c, "get_progress_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": record})
}

// POST /progress/init
// Creates the zero-valued record when none exists; never resets an existing one.
func (ph *ProgressHandler) Init(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	record, created, err := ph.progressService.CreateIfAbsent(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondServiceError(c, "init_progress_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": record, "created": created})
}

// POST /progress/points
// body: { "points": 10 }
func (ph *ProgressHandler) AddPoints(c *gin.Context) {
	var req struct {
		Points int `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	record, err := ph.progressService.AddPoints(c.Request.Context(), rd.UserID, req.Points)
	if err != nil {
		response.RespondServiceError(c, "add_points_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": record})
}

// POST /progress/modules/complete
// body: { "topic_id": "budgeting", "module_id": "budgeting-101" }
func (ph *ProgressHandler) CompleteModule(c *gin.Context) {
	var req struct {
		TopicID  string `json:"topic_id"`
		ModuleID string `json:"module_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	record, err := ph.progressService.CompleteModule(c.Request.Context(), rd.UserID, req.TopicID, req.ModuleID)
	if err != nil {
		response.RespondServiceError(c, "complete_module_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": record})
}

// POST /progress/topics/complete
// body: { "topic_id": "budgeting" }
func (ph *ProgressHandler) CompleteTopic(c *gin.Context) {
	var req struct {
		TopicID string `json:"topic_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	record, err := ph.progressService.MarkTopicCompleted(c.Request.Context(), rd.UserID, req.TopicID)
	if err != nil {
		response.RespondServiceError(c, "complete_topic_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"progress": record})
}
