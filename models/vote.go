package models

import (
	"errors"

	"gorm.io/gorm"
)

// Vote is one signed vote by a user on exactly one target: a post or a
// comment. The paired unique indexes keep it to at most one row per
// (user, post) and per (user, comment).
type Vote struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	UserID    uint  `gorm:"not null;uniqueIndex:idx_vote_user_post;uniqueIndex:idx_vote_user_comment" json:"user_id"`
	PostID    *uint `gorm:"uniqueIndex:idx_vote_user_post" json:"post_id"`
	CommentID *uint `gorm:"uniqueIndex:idx_vote_user_comment" json:"comment_id"`
	Value     int   `gorm:"not null" json:"value"`
}

// ErrInvalidVoteValue rejects any vote value outside {+1, -1}.
var ErrInvalidVoteValue = errors.New("invalid vote value")

// VoteOutcome describes which edge of the toggle automaton was taken.
type VoteOutcome int

const (
	// VoteCast covers both a fresh vote and a flipped one; the caller's
	// vote on the target is now the requested value.
	VoteCast VoteOutcome = iota
	// VoteRemoved means the same value was cast twice in a row and the
	// row was deleted.
	VoteRemoved
)

// VoteTarget selects the column the toggle keys on.
type VoteTarget struct {
	PostID    *uint
	CommentID *uint
}

// PostTarget keys a vote toggle on a post.
func PostTarget(id uint) VoteTarget { return VoteTarget{PostID: &id} }

// CommentTarget keys a vote toggle on a comment.
func CommentTarget(id uint) VoteTarget { return VoteTarget{CommentID: &id} }

func (t VoteTarget) scope(db *gorm.DB, userID uint) *gorm.DB {
	if t.PostID != nil {
		return db.Where("user_id = ? AND post_id = ?", userID, *t.PostID)
	}
	return db.Where("user_id = ? AND comment_id = ?", userID, *t.CommentID)
}

// ToggleVote runs the three-state vote automaton for (user, target) as a
// single transaction: no existing row creates one, an equal existing value
// deletes the row, an opposite value is flipped in place. Concurrent
// double-submission is fenced by the unique index; a losing writer's insert
// fails and the whole transaction rolls back.
func ToggleVote(db *gorm.DB, userID uint, target VoteTarget, value int) (VoteOutcome, error) {
	if value != 1 && value != -1 {
		return 0, ErrInvalidVoteValue
	}
	outcome := VoteCast
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing Vote
		err := target.scope(tx, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&Vote{
				UserID:    userID,
				PostID:    target.PostID,
				CommentID: target.CommentID,
				Value:     value,
			}).Error
		case err != nil:
			return err
		case existing.Value == value:
			outcome = VoteRemoved
			return tx.Delete(&Vote{}, existing.ID).Error
		default:
			return tx.Model(&Vote{}).Where("id = ?", existing.ID).Update("value", value).Error
		}
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// VoteCount computes count(+1) - count(-1) for the target. Never stored,
// recomputed per serialization.
func VoteCount(db *gorm.DB, target VoteTarget) (int64, error) {
	var sum *int64
	err := target.tally(db).Select("SUM(value)").Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

// UserVote returns the caller's own vote value on the target, or 0 when the
// caller has no vote (or is anonymous, in which case userID is 0).
func UserVote(db *gorm.DB, userID uint, target VoteTarget) (int, error) {
	if userID == 0 {
		return 0, nil
	}
	var v Vote
	err := target.scope(db, userID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

func (t VoteTarget) tally(db *gorm.DB) *gorm.DB {
	if t.PostID != nil {
		return db.Model(&Vote{}).Where("post_id = ?", *t.PostID)
	}
	return db.Model(&Vote{}).Where("comment_id = ?", *t.CommentID)
}
