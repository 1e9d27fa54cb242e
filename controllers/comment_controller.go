package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/forum/models"
	"github.com/campuslink/forum/permissions"
	"github.com/campuslink/forum/utils"
)

// CommentController manages threaded discussion under posts.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

func commentRules() []permissions.Rule {
	return []permissions.Rule{permissions.AuthenticatedOrReadOnly{}, permissions.AuthorOrStaffOnly{}}
}

func (cc *CommentController) loadComment(ctx *gin.Context, id uint) (*models.Comment, bool) {
	var comment models.Comment
	err := cc.db.Preload("Author").First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40430, "comment not found")
		return nil, false
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load comment")
		return nil, false
	}
	return &comment, true
}

// ListComments returns comments newest-first, filterable by post id and
// author id.
func (cc *CommentController) ListComments(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	postID := strings.TrimSpace(ctx.Query("post"))
	authorID := strings.TrimSpace(ctx.Query("author"))

	query := cc.db.Model(&models.Comment{}).Order("created_at DESC")
	if postID != "" {
		query = query.Where("post_id = ?", postID)
	}
	if authorID != "" {
		query = query.Where("author_id = ?", authorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := query.Preload("Author").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list comments")
		return
	}

	views, err := buildCommentViews(cc.db, comments, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to serialize comments")
		return
	}
	utils.Success(ctx, pageEnvelope(ctx, total, page, pageSize, views))
}

// GetComment returns a single comment.
func (cc *CommentController) GetComment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	comment, ok := cc.loadComment(ctx, id)
	if !ok {
		return
	}
	view, err := buildCommentView(cc.db, *comment, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to serialize comment")
		return
	}
	utils.Success(ctx, view)
}

// CreateComment lets any authenticated user reply to a post, optionally
// nesting under a parent comment on the same post.
func (cc *CommentController) CreateComment(ctx *gin.Context) {
	if !checkRules(ctx, commentRules()) {
		return
	}

	var req struct {
		Post    uint   `json:"post" binding:"required"`
		Content string `json:"content" binding:"required"`
		Parent  *uint  `json:"parent"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "content cannot be empty")
		return
	}

	var post models.Post
	if err := cc.db.First(&post, req.Post).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "unknown post")
		return
	}

	// A reply's parent must live under the same post; cross-post nesting
	// is rejected rather than silently stored.
	if req.Parent != nil {
		var parent models.Comment
		if err := cc.db.First(&parent, *req.Parent).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40033, "unknown parent comment")
			return
		}
		if parent.PostID != post.ID {
			utils.Error(ctx, http.StatusBadRequest, 40034, "parent comment belongs to a different post")
			return
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: principal(ctx).ID,
		Content:  content,
		ParentID: req.Parent,
	}
	if err := cc.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to create comment")
		return
	}

	loaded, ok := cc.loadComment(ctx, comment.ID)
	if !ok {
		return
	}
	view, err := buildCommentView(cc.db, *loaded, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to serialize comment")
		return
	}
	utils.Success(ctx, view)
}

// UpdateComment applies a partial update; author or staff only.
func (cc *CommentController) UpdateComment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if !checkRules(ctx, commentRules()) {
		return
	}
	comment, ok := cc.loadComment(ctx, id)
	if !ok {
		return
	}
	if !checkObjectRules(ctx, commentRules(), comment) {
		return
	}

	var req struct {
		Content *string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if req.Content != nil {
		content := utils.Sanitize(*req.Content)
		if strings.TrimSpace(content) == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "content cannot be empty")
			return
		}
		comment.Content = content
	}

	if err := cc.db.Save(comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to update comment")
		return
	}

	view, err := buildCommentView(cc.db, *comment, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to serialize comment")
		return
	}
	utils.Success(ctx, view)
}

// DeleteComment removes a comment and its whole reply subtree.
func (cc *CommentController) DeleteComment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if !checkRules(ctx, commentRules()) {
		return
	}
	comment, ok := cc.loadComment(ctx, id)
	if !ok {
		return
	}
	if !checkObjectRules(ctx, commentRules(), comment) {
		return
	}

	if err := models.DeleteCommentCascade(cc.db, comment.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// VoteComment toggles the caller's vote on a comment.
func (cc *CommentController) VoteComment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	comment, ok := cc.loadComment(ctx, id)
	if !ok {
		return
	}

	var req struct {
		Value int `json:"value"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote value"})
		return
	}

	outcome, err := models.ToggleVote(cc.db, principal(ctx).ID, models.CommentTarget(comment.ID), req.Value)
	if errors.Is(err, models.ErrInvalidVoteValue) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote value"})
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to record vote")
		return
	}

	if outcome == models.VoteRemoved {
		ctx.JSON(http.StatusOK, gin.H{"status": "vote removed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "voted", "value": req.Value})
}
