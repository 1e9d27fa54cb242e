package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is a taxonomy node for posts. Name and slug are globally unique.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IconURL     string    `gorm:"size:512" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedByID *uint     `gorm:"index" json:"-"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// OwnerID implements permissions.Ownable. A category whose creator was
// deleted has no owner.
func (c *Category) OwnerID() (uint, bool) {
	if c.CreatedByID == nil {
		return 0, false
	}
	return *c.CreatedByID, true
}

// CategoryWithCount carries the live post count annotation for listings.
type CategoryWithCount struct {
	Category
	PostCount int64 `json:"post_count"`
}

// ListCategoriesByPostCount returns all categories annotated with their
// current post count, most active first.
func ListCategoriesByPostCount(db *gorm.DB) ([]CategoryWithCount, error) {
	var rows []CategoryWithCount
	err := db.Model(&Category{}).
		Select("categories.*, COUNT(posts.id) AS post_count").
		Joins("LEFT JOIN posts ON posts.category_id = categories.id").
		Group("categories.id").
		Order("post_count DESC").
		Find(&rows).Error
	return rows, err
}

// DeleteCategoryCascade removes a category together with every post filed
// under it, and everything those posts own. Runs in one transaction.
func DeleteCategoryCascade(db *gorm.DB, categoryID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&Post{}).Where("category_id = ?", categoryID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		for _, id := range postIDs {
			if err := deletePostCascadeTx(tx, id); err != nil {
				return err
			}
		}
		return tx.Delete(&Category{}, categoryID).Error
	})
}
