package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleVoteRejectsBadValues(t *testing.T) {
	db := newTestDB(t)
	for _, v := range []int{0, 2, -2, 100} {
		_, err := ToggleVote(db, 1, PostTarget(1), v)
		assert.ErrorIs(t, err, ErrInvalidVoteValue, "value %d", v)
	}
	assert.Equal(t, int64(0), countRows(t, db, &Vote{}))
}

func TestToggleVoteDoubleCastRemovesRow(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "sam", RoleStudent)
	author := seedUser(t, db, "prof", RoleFaculty)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")

	outcome, err := ToggleVote(db, u.ID, PostTarget(post.ID), 1)
	assert.NoError(t, err)
	assert.Equal(t, VoteCast, outcome)

	count, err := VoteCount(db, PostTarget(post.ID))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	outcome, err = ToggleVote(db, u.ID, PostTarget(post.ID), 1)
	assert.NoError(t, err)
	assert.Equal(t, VoteRemoved, outcome)

	assert.Equal(t, int64(0), countRows(t, db, &Vote{}))
	uv, err := UserVote(db, u.ID, PostTarget(post.ID))
	assert.NoError(t, err)
	assert.Equal(t, 0, uv)
}

func TestToggleVoteFlipUpdatesInPlace(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "sam", RoleStudent)
	author := seedUser(t, db, "prof", RoleFaculty)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")

	_, err := ToggleVote(db, u.ID, PostTarget(post.ID), 1)
	assert.NoError(t, err)
	outcome, err := ToggleVote(db, u.ID, PostTarget(post.ID), -1)
	assert.NoError(t, err)
	assert.Equal(t, VoteCast, outcome)

	// Exactly one row, flipped, never two.
	assert.Equal(t, int64(1), countRows(t, db, &Vote{}))
	uv, err := UserVote(db, u.ID, PostTarget(post.ID))
	assert.NoError(t, err)
	assert.Equal(t, -1, uv)
}

func TestVoteCountIdentityOverToggleSequences(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "prof", RoleFaculty)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")

	voters := []User{
		seedUser(t, db, "a", RoleStudent),
		seedUser(t, db, "b", RoleStudent),
		seedUser(t, db, "c", RoleStudent),
	}

	// Arbitrary toggle sequence across three voters.
	sequence := []struct {
		voter int
		value int
	}{
		{0, 1}, {1, 1}, {2, -1}, {0, -1}, {1, 1}, {2, -1}, {0, -1},
	}
	for _, step := range sequence {
		_, err := ToggleVote(db, voters[step.voter].ID, PostTarget(post.ID), step.value)
		assert.NoError(t, err)
	}

	var ups, downs int64
	assert.NoError(t, db.Model(&Vote{}).Where("post_id = ? AND value = 1", post.ID).Count(&ups).Error)
	assert.NoError(t, db.Model(&Vote{}).Where("post_id = ? AND value = -1", post.ID).Count(&downs).Error)

	count, err := VoteCount(db, PostTarget(post.ID))
	assert.NoError(t, err)
	assert.Equal(t, ups-downs, count)
}

func TestCommentVotesAreIndependentOfPostVotes(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "sam", RoleStudent)
	author := seedUser(t, db, "prof", RoleFaculty)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")
	comment := Comment{PostID: post.ID, AuthorID: author.ID, Content: "hi"}
	assert.NoError(t, db.Create(&comment).Error)

	_, err := ToggleVote(db, u.ID, PostTarget(post.ID), 1)
	assert.NoError(t, err)
	_, err = ToggleVote(db, u.ID, CommentTarget(comment.ID), -1)
	assert.NoError(t, err)

	assert.Equal(t, int64(2), countRows(t, db, &Vote{}))

	pc, _ := VoteCount(db, PostTarget(post.ID))
	cc, _ := VoteCount(db, CommentTarget(comment.ID))
	assert.Equal(t, int64(1), pc)
	assert.Equal(t, int64(-1), cc)
}

func TestToggleSaveIsIdempotentPair(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "sam", RoleStudent)
	author := seedUser(t, db, "prof", RoleFaculty)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")

	saved, err := ToggleSave(db, u.ID, post.ID)
	assert.NoError(t, err)
	assert.True(t, saved)

	isSaved, err := IsSaved(db, u.ID, post.ID)
	assert.NoError(t, err)
	assert.True(t, isSaved)

	saved, err = ToggleSave(db, u.ID, post.ID)
	assert.NoError(t, err)
	assert.False(t, saved)

	isSaved, err = IsSaved(db, u.ID, post.ID)
	assert.NoError(t, err)
	assert.False(t, isSaved)
	assert.Equal(t, int64(0), countRows(t, db, &SavedPost{}))
}

func TestAnonymousDerivedFieldsAreZero(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "sam", RoleStudent)
	author := seedUser(t, db, "prof", RoleFaculty)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")

	_, err := ToggleVote(db, u.ID, PostTarget(post.ID), 1)
	assert.NoError(t, err)
	_, err = ToggleSave(db, u.ID, post.ID)
	assert.NoError(t, err)

	// userID 0 is the anonymous caller.
	uv, err := UserVote(db, 0, PostTarget(post.ID))
	assert.NoError(t, err)
	assert.Equal(t, 0, uv)
	isSaved, err := IsSaved(db, 0, post.ID)
	assert.NoError(t, err)
	assert.False(t, isSaved)
}
