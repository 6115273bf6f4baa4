package dashboard

import (
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/board"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/config"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/order"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

// api bundles the dependencies the handlers share.
type api struct {
	store  *store.Store
	cfg    *config.Config
	boards map[string]*board.Board
}

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, a *api) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// Pages.
	router.GET("/", a.handleIndex)

	// Board API.
	router.GET("/api/board/:variant", a.handleBoard)
	router.GET("/api/stats", a.handleStats)

	// Items.
	router.POST("/api/items", a.handleCreateItem)
	router.GET("/api/items/:id", a.handleGetItem)
	router.PATCH("/api/items/:id", a.handleUpdateItem)
	router.DELETE("/api/items/:id", a.handleDeleteItem)
	router.POST("/api/items/:id/move", a.handleMoveItem)

	// Comments.
	router.POST("/api/items/:id/comments", a.handleAddComment)
	router.PATCH("/api/items/:id/comments/:commentID", a.handleEditComment)
	router.DELETE("/api/items/:id/comments/:commentID", a.handleDeleteComment)

	// Push stream.
	router.GET("/api/events/:variant", a.handleEvents)
}

func (a *api) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "layout.html", gin.H{
		"Project":  a.cfg.Project,
		"Variants": models.Variants,
		"Statuses": models.Statuses,
	})
}

// boardFor resolves the :variant param, writing the error response
// itself when the variant is unknown.
func (a *api) boardFor(c *gin.Context) (*board.Board, bool) {
	variant := c.Param("variant")
	b, ok := a.boards[variant]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown variant: " + variant})
		return nil, false
	}
	return b, true
}

func (a *api) handleBoard(c *gin.Context) {
	b, ok := a.boardFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"variant": b.Variant(),
		"lanes":   b.Lanes(),
		"counts":  b.Counts(),
	})
}

func (a *api) handleStats(c *gin.Context) {
	stats, err := StatsSummary(a.store.DB())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	upcoming, err := UpcomingPosts(a.store.DB(), 7*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"variants": stats,
		"upcoming": upcoming,
	})
}

type createItemRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Variant       string     `json:"variant" binding:"required"`
	Tags          []string   `json:"tags"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

func (a *api) handleCreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, ok := a.boards[req.Variant]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown variant: " + req.Variant})
		return
	}

	item, err := b.CreateItem(req.Title)
	if err != nil {
		writeItemError(c, err)
		return
	}
	if req.Description != "" || len(req.Tags) > 0 || req.ScheduledDate != nil {
		fields := store.UpdateFields{ScheduledDate: req.ScheduledDate}
		if req.Description != "" {
			fields.Description = &req.Description
		}
		if len(req.Tags) > 0 {
			fields.Tags = &req.Tags
		}
		item, err = b.UpdateItem(item.ID, fields)
		if err != nil {
			writeItemError(c, err)
			return
		}
	}
	c.JSON(http.StatusCreated, item)
}

func (a *api) handleGetItem(c *gin.Context) {
	item, err := a.store.Get(c.Param("id"))
	if err != nil {
		writeItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type updateItemRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	Tags          *[]string  `json:"tags"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

func (a *api) handleUpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := a.store.Update(c.Param("id"), store.UpdateFields{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Tags:          req.Tags,
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		writeItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *api) handleDeleteItem(c *gin.Context) {
	if err := a.store.Delete(c.Param("id")); err != nil {
		writeItemError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type moveItemRequest struct {
	TargetStatus string `json:"targetStatus" binding:"required"`
	BeforeID     string `json:"beforeId"`
}

// handleMoveItem applies one drop: before a specific card when beforeId
// is given, otherwise at the end of the lane. It uses the board's
// stateless moves rather than the drag gesture, since the admin and the
// client can both post moves against the same board at once.
func (a *api) handleMoveItem(c *gin.Context) {
	var req moveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.TargetStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + req.TargetStatus})
		return
	}

	item, err := a.store.Get(c.Param("id"))
	if err != nil {
		writeItemError(c, err)
		return
	}
	b, ok := a.boards[item.Variant]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown variant: " + item.Variant})
		return
	}

	if req.BeforeID != "" {
		target, err := a.store.Get(req.BeforeID)
		if err != nil {
			writeItemError(c, err)
			return
		}
		if err := b.MoveBefore(item.ID, *target); err != nil {
			writeItemError(c, err)
			return
		}
	} else if err := b.MoveToLaneEnd(item.ID, req.TargetStatus); err != nil {
		writeItemError(c, err)
		return
	}

	moved, err := a.store.Get(item.ID)
	if err != nil {
		writeItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, moved)
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
	Role string `json:"role"`
}

func (a *api) handleAddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := a.store.Get(c.Param("id"))
	if err != nil {
		writeItemError(c, err)
		return
	}
	b := a.boards[item.Variant]
	author := a.cfg.UserFor(req.Role)
	comment, err := b.AddComment(item.ID, req.Text, author)
	if err != nil {
		writeItemError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (a *api) handleEditComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := a.store.Get(c.Param("id"))
	if err != nil {
		writeItemError(c, err)
		return
	}
	b := a.boards[item.Variant]
	if err := b.EditComment(item.ID, c.Param("commentID"), req.Text); err != nil {
		writeItemError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) handleDeleteComment(c *gin.Context) {
	item, err := a.store.Get(c.Param("id"))
	if err != nil {
		writeItemError(c, err)
		return
	}
	b := a.boards[item.Variant]
	if err := b.DeleteComment(item.ID, c.Param("commentID")); err != nil {
		writeItemError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeItemError maps store and board errors onto HTTP statuses.
func writeItemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, board.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, board.ErrEmptyTitle), errors.Is(err, board.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrTargetNotInLane):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
