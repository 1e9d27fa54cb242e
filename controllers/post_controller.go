package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/forum/models"
	"github.com/campuslink/forum/permissions"
	"github.com/campuslink/forum/utils"
)

// PostController manages CRUD operations for posts plus the vote and save
// toggle actions.
type PostController struct {
	db    *gorm.DB
	store utils.BlobStore
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB, store utils.BlobStore) *PostController {
	return &PostController{db: db, store: store}
}

func postRules() []permissions.Rule {
	return []permissions.Rule{permissions.FacultyOrAdminGate{}, permissions.AuthorOrStaffOnly{}}
}

func (pc *PostController) loadPost(ctx *gin.Context, id uint) (*models.Post, bool) {
	var post models.Post
	err := pc.db.Preload("Author").Preload("Category").Preload("Images").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
		return nil, false
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load post")
		return nil, false
	}
	return &post, true
}

// ListPosts returns a page of posts. Supports substring search over
// title/content/author username and exact filters on category slug and
// author id; filters combine with AND.
func (pc *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	categorySlug := strings.TrimSpace(ctx.Query("category"))
	authorID := strings.TrimSpace(ctx.Query("author"))

	query := pc.db.Model(&models.Post{}).Order("posts.created_at DESC")
	if search != "" {
		like := "%" + search + "%"
		query = query.
			Joins("JOIN users ON users.id = posts.author_id").
			Where("posts.title LIKE ? OR posts.content LIKE ? OR users.username LIKE ?", like, like, like)
	}
	if categorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	if authorID != "" {
		query = query.Where("posts.author_id = ?", authorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Preload("Author").Preload("Category").Preload("Images").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	views, err := buildPostViews(pc.db, posts, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to serialize posts")
		return
	}
	utils.Success(ctx, pageEnvelope(ctx, total, page, pageSize, views))
}

// GetPost returns a single post.
func (pc *PostController) GetPost(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	post, ok := pc.loadPost(ctx, id)
	if !ok {
		return
	}
	view, err := buildPostView(pc.db, *post, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to serialize post")
		return
	}
	utils.Success(ctx, view)
}

// storeUploads saves every multipart file under the given form field and
// returns their public URLs.
func (pc *PostController) storeUploads(form *multipart.Form, field, subdir string) ([]string, error) {
	if form == nil {
		return nil, nil
	}
	urls := make([]string, 0, len(form.File[field]))
	for _, fh := range form.File[field] {
		url, err := pc.store.Store(fh, subdir)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// storeSingleUpload saves at most one multipart file under the field.
func (pc *PostController) storeSingleUpload(form *multipart.Form, field, subdir string) (string, error) {
	if form == nil || len(form.File[field]) == 0 {
		return "", nil
	}
	return pc.store.Store(form.File[field][0], subdir)
}

// CreatePost lets faculty, admins and staff publish posts, optionally with
// attached images submitted alongside.
func (pc *PostController) CreatePost(ctx *gin.Context) {
	if !checkRules(ctx, postRules()) {
		return
	}

	var req struct {
		Title    string `json:"title" form:"title" binding:"required,min=1,max=300"`
		Content  string `json:"content" form:"content"`
		Category uint   `json:"category" form:"category" binding:"required"`
		PostType string `json:"post_type" form:"post_type"`
		LinkURL  string `json:"link_url" form:"link_url"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	postType := req.PostType
	if postType == "" {
		postType = models.PostTypeText
	}
	if !models.ValidPostType(postType) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid post type")
		return
	}

	var category models.Category
	if err := pc.db.First(&category, req.Category).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "unknown category")
		return
	}

	form, _ := ctx.MultipartForm()
	imageURL, err := pc.storeSingleUpload(form, "image", "post_images")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "image upload failed")
		return
	}
	videoURL, err := pc.storeSingleUpload(form, "video", "post_videos")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "video upload failed")
		return
	}
	attachmentURLs, err := pc.storeUploads(form, "uploaded_images", "post_images")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "image upload failed")
		return
	}

	post := models.Post{
		AuthorID:   principal(ctx).ID,
		CategoryID: category.ID,
		Title:      title,
		Content:    utils.Sanitize(req.Content),
		PostType:   postType,
		ImageURL:   imageURL,
		VideoURL:   videoURL,
		LinkURL:    strings.TrimSpace(req.LinkURL),
	}
	if err := models.CreatePostWithImages(pc.db, &post, attachmentURLs); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to create post")
		return
	}

	invalidateCategoryCache()

	loaded, ok := pc.loadPost(ctx, post.ID)
	if !ok {
		return
	}
	view, err := buildPostView(pc.db, *loaded, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to serialize post")
		return
	}
	utils.Success(ctx, view)
}

// UpdatePost applies attribute-level patch semantics and appends any newly
// submitted images; it never replaces existing attachments. Ownership is
// decided at object level so authors keep control of their prior posts
// even after a role change.
func (pc *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if !checkRules(ctx, postRules()) {
		return
	}
	post, ok := pc.loadPost(ctx, id)
	if !ok {
		return
	}
	if !checkObjectRules(ctx, postRules(), post) {
		return
	}

	var req struct {
		Title    *string `json:"title" form:"title"`
		Content  *string `json:"content" form:"content"`
		Category *uint   `json:"category" form:"category"`
		PostType *string `json:"post_type" form:"post_type"`
		LinkURL  *string `json:"link_url" form:"link_url"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
			return
		}
		post.Title = title
	}
	if req.Content != nil {
		post.Content = utils.Sanitize(*req.Content)
	}
	if req.Category != nil {
		var category models.Category
		if err := pc.db.First(&category, *req.Category).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "unknown category")
			return
		}
		post.CategoryID = category.ID
	}
	if req.PostType != nil {
		if !models.ValidPostType(*req.PostType) {
			utils.Error(ctx, http.StatusBadRequest, 40022, "invalid post type")
			return
		}
		post.PostType = *req.PostType
	}
	if req.LinkURL != nil {
		post.LinkURL = strings.TrimSpace(*req.LinkURL)
	}

	form, _ := ctx.MultipartForm()
	if url, err := pc.storeSingleUpload(form, "image", "post_images"); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "image upload failed")
		return
	} else if url != "" {
		post.ImageURL = url
	}
	if url, err := pc.storeSingleUpload(form, "video", "post_videos"); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "video upload failed")
		return
	} else if url != "" {
		post.VideoURL = url
	}
	attachmentURLs, err := pc.storeUploads(form, "uploaded_images", "post_images")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "image upload failed")
		return
	}

	if err := pc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		for _, url := range attachmentURLs {
			if err := tx.Create(&models.PostImage{PostID: post.ID, ImageURL: url}).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to update post")
		return
	}

	loaded, ok := pc.loadPost(ctx, post.ID)
	if !ok {
		return
	}
	view, err := buildPostView(pc.db, *loaded, principal(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to serialize post")
		return
	}
	utils.Success(ctx, view)
}

// DeletePost removes a post and everything referencing it.
func (pc *PostController) DeletePost(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if !checkRules(ctx, postRules()) {
		return
	}
	post, ok := pc.loadPost(ctx, id)
	if !ok {
		return
	}
	if !checkObjectRules(ctx, postRules(), post) {
		return
	}

	if err := models.DeletePostCascade(pc.db, post.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to delete post")
		return
	}

	invalidateCategoryCache()
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// VotePost toggles the caller's vote on a post. Response bodies follow the
// client contract verbatim.
func (pc *PostController) VotePost(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	post, ok := pc.loadPost(ctx, id)
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

	outcome, err := models.ToggleVote(pc.db, principal(ctx).ID, models.PostTarget(post.ID), req.Value)
	if errors.Is(err, models.ErrInvalidVoteValue) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote value"})
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to record vote")
		return
	}

	if outcome == models.VoteRemoved {
		ctx.JSON(http.StatusOK, gin.H{"status": "vote removed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "voted", "value": req.Value})
}

// SavePost toggles the caller's bookmark on a post.
func (pc *PostController) SavePost(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	post, ok := pc.loadPost(ctx, id)
	if !ok {
		return
	}

	saved, err := models.ToggleSave(pc.db, principal(ctx).ID, post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to toggle save")
		return
	}

	status := "unsaved"
	if saved {
		status = "saved"
	}
	ctx.JSON(http.StatusOK, gin.H{"status": status, "is_saved": saved})
}

// ListSavedPosts returns the caller's bookmarks, newest first.
func (pc *PostController) ListSavedPosts(ctx *gin.Context) {
	p := principal(ctx)
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := pc.db.Model(&models.SavedPost{}).Where("user_id = ?", p.ID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to count saved posts")
		return
	}

	var saved []models.SavedPost
	if err := pc.db.Where("user_id = ?", p.ID).Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&saved).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to list saved posts")
		return
	}

	views := make([]SavedPostView, 0, len(saved))
	for _, s := range saved {
		var post models.Post
		if err := pc.db.Preload("Author").Preload("Category").Preload("Images").First(&post, s.PostID).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load saved post")
			return
		}
		pv, err := buildPostView(pc.db, post, p)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to serialize post")
			return
		}
		views = append(views, SavedPostView{ID: s.ID, User: s.UserID, Post: pv, CreatedAt: s.CreatedAt})
	}

	utils.Success(ctx, pageEnvelope(ctx, total, page, pageSize, views))
}
