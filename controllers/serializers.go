package controllers

import (
	"time"

	"gorm.io/gorm"

	"github.com/campuslink/forum/models"
	"github.com/campuslink/forum/permissions"
	"github.com/campuslink/forum/utils"
)

// View structs are the outward representations. Derived fields (vote_count,
// user_vote, comment_count, is_saved) are pure read-time projections,
// recomputed on every serialization and never persisted.

// UserView is the compact author representation nested into resources.
type UserView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func userView(u models.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// CategoryView carries the category with its live post count.
type CategoryView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   *UserView `json:"created_by"`
	PostCount   int64     `json:"post_count"`
}

func categoryView(c models.Category, postCount int64) CategoryView {
	v := CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.IconURL,
		CreatedAt:   c.CreatedAt,
		PostCount:   postCount,
	}
	if c.CreatedBy != nil {
		uv := userView(*c.CreatedBy)
		v.CreatedBy = &uv
	}
	return v
}

// PostImageView renders an attachment as a resolvable URL.
type PostImageView struct {
	ID        uint      `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

func postImageView(img models.PostImage) PostImageView {
	return PostImageView{ID: img.ID, Image: img.ImageURL, CreatedAt: img.CreatedAt}
}

// PostView is the full post representation with nested category and
// computed fields.
type PostView struct {
	ID             uint            `json:"id"`
	Author         UserView        `json:"author"`
	Category       uint            `json:"category"`
	CategoryDetail CategoryView    `json:"category_detail"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	PostType       string          `json:"post_type"`
	Image          string          `json:"image"`
	Images         []PostImageView `json:"images"`
	Video          string          `json:"video"`
	LinkURL        string          `json:"link_url"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	VoteCount      int64           `json:"vote_count"`
	CommentCount   int64           `json:"comment_count"`
	UserVote       int             `json:"user_vote"`
	IsSaved        bool            `json:"is_saved"`
}

// categoryPostCounts returns the number of posts per category for the given
// category ids, in one grouped query.
func categoryPostCounts(db *gorm.DB, categoryIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		CategoryID uint
		N          int64
	}
	if err := db.Model(&models.Post{}).
		Select("category_id, COUNT(*) AS n").
		Where("category_id IN ?", utils.UniqueUint(categoryIDs)).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	return counts, nil
}

// buildPostView assembles the outward post representation. The post must be
// loaded with its Author, Category and Images associations.
func buildPostView(db *gorm.DB, post models.Post, p permissions.Principal) (PostView, error) {
	counts, err := categoryPostCounts(db, []uint{post.CategoryID})
	if err != nil {
		return PostView{}, err
	}
	return assemblePostView(db, post, p, counts[post.CategoryID])
}

func assemblePostView(db *gorm.DB, post models.Post, p permissions.Principal, categoryPosts int64) (PostView, error) {
	target := models.PostTarget(post.ID)

	voteCount, err := models.VoteCount(db, target)
	if err != nil {
		return PostView{}, err
	}
	userVote, err := models.UserVote(db, p.ID, target)
	if err != nil {
		return PostView{}, err
	}
	saved, err := models.IsSaved(db, p.ID, post.ID)
	if err != nil {
		return PostView{}, err
	}
	var commentCount int64
	if err := db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error; err != nil {
		return PostView{}, err
	}
	images := make([]PostImageView, 0, len(post.Images))
	for _, img := range post.Images {
		images = append(images, postImageView(img))
	}

	return PostView{
		ID:             post.ID,
		Author:         userView(post.Author),
		Category:       post.CategoryID,
		CategoryDetail: categoryView(post.Category, categoryPosts),
		Title:          post.Title,
		Content:        post.Content,
		PostType:       post.PostType,
		Image:          post.ImageURL,
		Images:         images,
		Video:          post.VideoURL,
		LinkURL:        post.LinkURL,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
		VoteCount:      voteCount,
		CommentCount:   commentCount,
		UserVote:       userVote,
		IsSaved:        saved,
	}, nil
}

func buildPostViews(db *gorm.DB, posts []models.Post, p permissions.Principal) ([]PostView, error) {
	categoryIDs := make([]uint, 0, len(posts))
	for _, post := range posts {
		categoryIDs = append(categoryIDs, post.CategoryID)
	}
	counts, err := categoryPostCounts(db, categoryIDs)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		v, err := assemblePostView(db, post, p, counts[post.CategoryID])
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// CommentView is the outward comment representation.
type CommentView struct {
	ID        uint      `json:"id"`
	Post      uint      `json:"post"`
	Author    UserView  `json:"author"`
	Content   string    `json:"content"`
	Parent    *uint     `json:"parent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	VoteCount int64     `json:"vote_count"`
	UserVote  int       `json:"user_vote"`
}

func buildCommentView(db *gorm.DB, c models.Comment, p permissions.Principal) (CommentView, error) {
	target := models.CommentTarget(c.ID)
	voteCount, err := models.VoteCount(db, target)
	if err != nil {
		return CommentView{}, err
	}
	userVote, err := models.UserVote(db, p.ID, target)
	if err != nil {
		return CommentView{}, err
	}
	return CommentView{
		ID:        c.ID,
		Post:      c.PostID,
		Author:    userView(c.Author),
		Content:   c.Content,
		Parent:    c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		VoteCount: voteCount,
		UserVote:  userVote,
	}, nil
}

func buildCommentViews(db *gorm.DB, comments []models.Comment, p permissions.Principal) ([]CommentView, error) {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		v, err := buildCommentView(db, c, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// SavedPostView wraps a bookmark with its full post representation.
type SavedPostView struct {
	ID        uint      `json:"id"`
	User      uint      `json:"user"`
	Post      PostView  `json:"post"`
	CreatedAt time.Time `json:"created_at"`
}
