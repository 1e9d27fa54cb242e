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

// PostImageController exposes attachments read-only plus individual delete.
// Attachments are only ever created through post create/update.
type PostImageController struct {
	db *gorm.DB
}

// NewPostImageController creates a new PostImageController instance.
func NewPostImageController(db *gorm.DB) *PostImageController {
	return &PostImageController{db: db}
}

// ListPostImages returns attachments, filterable by post id.
func (ic *PostImageController) ListPostImages(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	postID := strings.TrimSpace(ctx.Query("post"))

	query := ic.db.Model(&models.PostImage{}).Order("created_at DESC")
	if postID != "" {
		query = query.Where("post_id = ?", postID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to count images")
		return
	}

	var images []models.PostImage
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&images).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list images")
		return
	}

	views := make([]PostImageView, 0, len(images))
	for _, img := range images {
		views = append(views, postImageView(img))
	}
	utils.Success(ctx, pageEnvelope(ctx, total, page, pageSize, views))
}

// GetPostImage returns a single attachment.
func (ic *PostImageController) GetPostImage(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var img models.PostImage
	if err := ic.db.First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "image not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load image")
		return
	}
	utils.Success(ctx, postImageView(img))
}

// DeletePostImage removes an attachment; ownership is judged against the
// owning post's author.
func (ic *PostImageController) DeletePostImage(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var img models.PostImage
	if err := ic.db.First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "image not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load image")
		return
	}

	var post models.Post
	if err := ic.db.First(&post, img.PostID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load owning post")
		return
	}
	rules := []permissions.Rule{permissions.AuthorOrStaffOnly{}}
	if !checkObjectRules(ctx, rules, &post) {
		return
	}

	if err := ic.db.Delete(&models.PostImage{}, img.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to delete image")
		return
	}
	utils.Success(ctx, gin.H{"message": "image deleted"})
}
