package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/forum/models"
	"github.com/campuslink/forum/permissions"
	"github.com/campuslink/forum/utils"
)

// CategoryController manages the post taxonomy.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

func categoryRules() []permissions.Rule {
	return []permissions.Rule{permissions.FacultyOrAdminGate{}, permissions.CategoryOwnerOrAdmin{}}
}

// invalidateCategoryCache drops every cached category listing. Post writes
// call this too because listings carry live post counts.
func invalidateCategoryCache() {
	utils.InvalidateByPrefix("cache:categories:")
}

// ListCategories returns all categories annotated with live post counts,
// most active first.
func (cc *CategoryController) ListCategories(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:categories:list:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	rows, err := models.ListCategoriesByPostCount(cc.db)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list categories")
		return
	}

	// Page over the annotated rows; the whole taxonomy is small.
	total := int64(len(rows))
	start := (page - 1) * pageSize
	if start > len(rows) {
		start = len(rows)
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}

	views := make([]CategoryView, 0, end-start)
	for _, row := range rows[start:end] {
		c := row.Category
		if c.CreatedByID != nil {
			var owner models.User
			if err := cc.db.First(&owner, *c.CreatedByID).Error; err == nil {
				c.CreatedBy = &owner
			}
		}
		views = append(views, categoryView(c, row.PostCount))
	}

	payload := pageEnvelope(ctx, total, page, pageSize, views)
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// GetCategory returns a single category.
func (cc *CategoryController) GetCategory(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var category models.Category
	if err := cc.db.Preload("CreatedBy").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load category")
		return
	}
	var postCount int64
	if err := cc.db.Model(&models.Post{}).Where("category_id = ?", category.ID).Count(&postCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to count posts")
		return
	}
	utils.Success(ctx, categoryView(category, postCount))
}

// CreateCategory lets faculty, admins and staff add taxonomy nodes.
func (cc *CategoryController) CreateCategory(ctx *gin.Context) {
	if !checkRules(ctx, categoryRules()) {
		return
	}

	var req struct {
		Name        string `json:"name" form:"name" binding:"required,min=1,max=100"`
		Slug        string `json:"slug" form:"slug"`
		Description string `json:"description" form:"description"`
		Icon        string `json:"icon" form:"icon"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if !utils.ValidSlug(slug) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "slug must be URL-safe")
		return
	}

	var clash int64
	if err := cc.db.Model(&models.Category{}).Where("name = ? OR slug = ?", name, slug).Count(&clash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to create category")
		return
	}
	if clash > 0 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "category name or slug already exists")
		return
	}

	p := principal(ctx)
	ownerID := p.ID
	category := models.Category{
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		IconURL:     req.Icon,
		CreatedByID: &ownerID,
	}
	if err := cc.db.Create(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to create category")
		return
	}

	invalidateCategoryCache()
	utils.Success(ctx, categoryView(category, 0))
}

// UpdateCategory applies a partial update; owner, admin or staff only.
func (cc *CategoryController) UpdateCategory(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if !checkRules(ctx, categoryRules()) {
		return
	}

	var category models.Category
	if err := cc.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load category")
		return
	}
	if !checkObjectRules(ctx, categoryRules(), &category) {
		return
	}

	var req struct {
		Name        *string `json:"name" form:"name"`
		Slug        *string `json:"slug" form:"slug"`
		Description *string `json:"description" form:"description"`
		Icon        *string `json:"icon" form:"icon"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40013, "name cannot be empty")
			return
		}
		category.Name = name
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if !utils.ValidSlug(slug) {
			utils.Error(ctx, http.StatusBadRequest, 40011, "slug must be URL-safe")
			return
		}
		category.Slug = slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Icon != nil {
		category.IconURL = *req.Icon
	}

	var clash int64
	if err := cc.db.Model(&models.Category{}).
		Where("(name = ? OR slug = ?) AND id <> ?", category.Name, category.Slug, category.ID).
		Count(&clash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to update category")
		return
	}
	if clash > 0 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "category name or slug already exists")
		return
	}

	if err := cc.db.Save(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to update category")
		return
	}

	invalidateCategoryCache()

	var postCount int64
	_ = cc.db.Model(&models.Post{}).Where("category_id = ?", category.ID).Count(&postCount).Error
	utils.Success(ctx, categoryView(category, postCount))
}

// DeleteCategory removes a category and cascades to every post under it.
func (cc *CategoryController) DeleteCategory(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if !checkRules(ctx, categoryRules()) {
		return
	}

	var category models.Category
	if err := cc.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load category")
		return
	}
	if !checkObjectRules(ctx, categoryRules(), &category) {
		return
	}

	if err := models.DeleteCategoryCascade(cc.db, category.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to delete category")
		return
	}

	invalidateCategoryCache()
	utils.Success(ctx, gin.H{"message": "category deleted"})
}
