package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finwise/finwise-backend/internal/http/response"
	"github.com/finwise/finwise-backend/internal/pkg/ctxutil"
	"github.com/finwise/finwise-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "get_me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /me/learning-style
// body: { "learning_style": "visual" }
func (uh *UserHandler) SetLearningStyle(c *gin.Context) {
	var req struct {
		LearningStyle string `json:"learning_style"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	u, err := uh.userService.SetLearningStyle(c.Request.Context(), rd.UserID, req.LearningStyle)
	if err != nil {
		response.RespondServiceError(c, "set_learning_style_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// PATCH /me/topics
// body: { "topics": ["budgeting", "saving"] }
func (uh *UserHandler) SetPreferredTopics(c *gin.Context) {
	var req struct {
		Topics []string `json:"topics"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	u, err := uh.userService.SetPreferredTopics(c.Request.Context(), rd.UserID, req.Topics)
	if err != nil {
		response.RespondServiceError(c, "set_topics_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// PATCH /me/knowledge-level
// body: { "knowledge_level": 2 }
func (uh *UserHandler) SetKnowledgeLevel(c *gin.Context) {
	var req struct {
		KnowledgeLevel int `json:"knowledge_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	u, err := uh.userService.SetKnowledgeLevel(c.Request.Context(), rd.UserID, req.KnowledgeLevel)
	if err != nil {
		response.RespondServiceError(c, "set_knowledge_level_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// PATCH /me/age
// body: { "age": 23 }
func (uh *UserHandler) SetAge(c *gin.Context) {
	var req struct {
		Age int `json:"age"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	u, err := uh.userService.SetAge(c.Request.Context(), rd.UserID, req.Age)
	if err != nil {
		response.RespondServiceError(c, "set_age_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}
