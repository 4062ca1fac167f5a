package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-announcements/internal/middleware"
	"github.com/noah-isme/sma-announcements/internal/models"
	"github.com/noah-isme/sma-announcements/internal/service"
	appErrors "github.com/noah-isme/sma-announcements/pkg/errors"
	"github.com/noah-isme/sma-announcements/pkg/response"
)

type announcementService interface {
	List(ctx context.Context) ([]models.Announcement, bool, error)
	ListActive(ctx context.Context) ([]models.Announcement, bool, error)
	Create(ctx context.Context, req service.CreateAnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, id string, req service.UpdateAnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id, teacherUsername string) error
}

// AnnouncementHandler wires announcement services to HTTP routes.
type AnnouncementHandler struct {
	announcements announcementService
}

// NewAnnouncementHandler constructs a new AnnouncementHandler.
func NewAnnouncementHandler(announcements announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// Register mounts the announcement routes under /announcements.
func (h *AnnouncementHandler) Register(r gin.IRouter) {
	group := r.Group("/announcements")
	group.GET("/", h.List)
	group.GET("/active", h.ListActive)
	group.POST("/", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Success 200 {array} models.Announcement
// @Router /announcements/ [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	items, cacheHit, err := h.announcements.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, items)
}

// ListActive godoc
// @Summary List announcements active today
// @Tags Announcements
// @Produce json
// @Success 200 {array} models.Announcement
// @Router /announcements/active [get]
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	items, cacheHit, err := h.announcements.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, items)
}

// Create godoc
// @Summary Create announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.CreateAnnouncementRequest true "Title and message"
// @Param expire_date query string true "Expiration date (YYYY-MM-DD)"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param teacher_username query string true "Teacher username"
// @Success 201 {object} models.Announcement
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /announcements/ [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}
	req.ExpireDate = c.Query("expire_date")
	req.StartDate = optionalQuery(c, "start_date")
	req.TeacherUsername = c.Query("teacher_username")

	announcement, err := h.announcements.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, announcement)
}

// Update godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Param payload body service.UpdateAnnouncementRequest false "Title and/or message"
// @Param expire_date query string false "Expiration date (YYYY-MM-DD)"
// @Param start_date query string false "Start date (YYYY-MM-DD), empty clears it"
// @Param teacher_username query string true "Teacher username"
// @Success 200 {object} models.Announcement
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req service.UpdateAnnouncementRequest
	// The body is optional; date-only updates travel in the query string.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
			return
		}
	}
	req.ExpireDate = optionalQuery(c, "expire_date")
	req.StartDate = optionalQuery(c, "start_date")
	req.TeacherUsername = c.Query("teacher_username")

	announcement, err := h.announcements.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcement)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Param teacher_username query string true "Teacher username"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.announcements.Delete(c.Request.Context(), c.Param("id"), c.Query("teacher_username")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Message{Message: "Announcement deleted"})
}

// optionalQuery distinguishes an absent parameter from an empty one.
func optionalQuery(c *gin.Context, key string) *string {
	value, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &value
}
