package models

import (
	"time"

	"gorm.io/gorm"
)

// Post type discriminators.
const (
	PostTypeText  = "TEXT"
	PostTypeImage = "IMAGE"
	PostTypeVideo = "VIDEO"
	PostTypeLink  = "LINK"
	PostTypeMixed = "MIXED"
)

// ValidPostType reports whether t is one of the known discriminators.
func ValidPostType(t string) bool {
	switch t {
	case PostTypeText, PostTypeImage, PostTypeVideo, PostTypeLink, PostTypeMixed:
		return true
	}
	return false
}

// Post is a user-authored content item filed under a category.
type Post struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	AuthorID   uint        `gorm:"index;not null" json:"author_id"`
	CategoryID uint        `gorm:"index;not null" json:"category_id"`
	Title      string      `gorm:"size:300;not null" json:"title"`
	Content    string      `gorm:"type:text" json:"content"`
	PostType   string      `gorm:"size:20;default:'TEXT'" json:"post_type"`
	ImageURL   string      `gorm:"size:512" json:"image"`
	VideoURL   string      `gorm:"size:512" json:"video"`
	LinkURL    string      `gorm:"size:512" json:"link_url"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Author     User        `json:"author"`
	Category   Category    `json:"category"`
	Images     []PostImage `json:"images"`
}

// OwnerID implements permissions.Ownable.
func (p *Post) OwnerID() (uint, bool) { return p.AuthorID, true }

// PostImage is an attachment owned exclusively by its post. Attachments are
// only created through post create/update; this table never outlives its post.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	ImageURL  string    `gorm:"size:512;not null" json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePostWithImages inserts the post and all of its attachment rows as
// one transaction so a failed attachment insert never leaves a post with a
// partial image set.
func CreatePostWithImages(db *gorm.DB, post *Post, imageURLs []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, url := range imageURLs {
			if err := tx.Create(&PostImage{PostID: post.ID, ImageURL: url}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendPostImages adds attachment rows to an existing post. Updates never
// replace prior attachments, they only append.
func AppendPostImages(db *gorm.DB, postID uint, imageURLs []string) error {
	if len(imageURLs) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, url := range imageURLs {
			if err := tx.Create(&PostImage{PostID: postID, ImageURL: url}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePostCascade removes a post and every row referencing it:
// attachments, comments (with their votes), votes and saved entries.
func DeletePostCascade(db *gorm.DB, postID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return deletePostCascadeTx(tx, postID)
	})
}

func deletePostCascadeTx(tx *gorm.DB, postID uint) error {
	var commentIDs []uint
	if err := tx.Model(&Comment{}).Where("post_id = ?", postID).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if len(commentIDs) > 0 {
		if err := tx.Where("comment_id IN ?", commentIDs).Delete(&Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&Comment{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("post_id = ?", postID).Delete(&PostImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id = ?", postID).Delete(&Vote{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id = ?", postID).Delete(&SavedPost{}).Error; err != nil {
		return err
	}
	return tx.Delete(&Post{}, postID).Error
}
