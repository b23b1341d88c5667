package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tadweer/tadweer-site/errors"
	"github.com/tadweer/tadweer-site/types"
)

// SuggestionHandler serves the suggestions endpoint used by the site widget and admins.
type SuggestionHandler struct {
	service SuggestionServiceInterface
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(service SuggestionServiceInterface) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// RegisterRoutes mounts the handler on group. Unsupported methods on the same
// path are answered by the engine's NoMethod handler.
func (h *SuggestionHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.OPTIONS("", h.Preflight)
	group.GET("", h.Get)
	group.POST("", h.Create)
	group.PATCH("", h.UpdateStatus)
}

// Preflight answers CORS preflight requests. The CORS middleware has already set the headers.
func (h *SuggestionHandler) Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Get tracks one suggestion publicly when tracking_id is given, otherwise lists
// every suggestion for an admin.
func (h *SuggestionHandler) Get(c *gin.Context) {
	if trackingID := c.Query("tracking_id"); trackingID != "" {
		tracked, err := h.service.TrackByPublicID(c.Request.Context(), trackingID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, tracked)
		return
	}

	suggestions, err := h.service.ListAll(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// Create stores a public submission.
func (h *SuggestionHandler) Create(c *gin.Context) {
	var req types.SuggestionCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateStatus changes a suggestion's status. Credentials are checked before the body is read.
func (h *SuggestionHandler) UpdateStatus(c *gin.Context) {
	authorization := c.GetHeader("Authorization")
	if err := h.service.Authorize(authorization); err != nil {
		_ = c.Error(err)
		return
	}

	var req types.SuggestionStatusUpdate
	if !bindJSONOrError(c, &req) {
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), authorization, req); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// MethodNotAllowed reports any verb the endpoint does not serve.
func MethodNotAllowed(c *gin.Context) {
	_ = c.Error(apperrors.MethodNotAllowed(c.Request.Method))
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return false
	}
	return true
}
