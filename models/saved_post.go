package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// SavedPost is a per-user bookmark on a post, at most one row per
// (user, post).
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleSave flips the bookmark state for (user, post) in one transaction:
// no row creates one, an existing row is deleted. Returns the resulting
// saved state.
func ToggleSave(db *gorm.DB, userID, postID uint) (saved bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing SavedPost
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			saved = true
			return tx.Create(&SavedPost{UserID: userID, PostID: postID}).Error
		}
		if err != nil {
			return err
		}
		saved = false
		return tx.Delete(&SavedPost{}, existing.ID).Error
	})
	return saved, err
}

// IsSaved reports whether the user has bookmarked the post. Anonymous
// callers (userID 0) are never saved.
func IsSaved(db *gorm.DB, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := db.Model(&SavedPost{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}
