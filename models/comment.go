package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply under a post. ParentID, when set, points at another
// comment on the same post and forms the reply tree; traversal always goes
// through id lookups, children are never embedded.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ParentID  *uint     `gorm:"index" json:"parent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `json:"author"`
}

// OwnerID implements permissions.Ownable.
func (c *Comment) OwnerID() (uint, bool) { return c.AuthorID, true }

// CollectCommentSubtree returns the ids of the comment and all of its
// descendant replies, walking the parent links breadth-first.
func CollectCommentSubtree(db *gorm.DB, commentID uint) ([]uint, error) {
	all := []uint{commentID}
	frontier := []uint{commentID}
	for len(frontier) > 0 {
		var children []uint
		if err := db.Model(&Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		all = append(all, children...)
		frontier = children
	}
	return all, nil
}

// DeleteCommentCascade removes a comment, its whole reply subtree and every
// vote cast on any of those comments, in one transaction.
func DeleteCommentCascade(db *gorm.DB, commentID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ids, err := CollectCommentSubtree(tx, commentID)
		if err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&Vote{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&Comment{}).Error
	})
}
