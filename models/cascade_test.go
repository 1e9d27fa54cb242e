package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedComment(t *testing.T, db *gorm.DB, postID, authorID uint, parentID *uint) Comment {
	t.Helper()
	c := Comment{PostID: postID, AuthorID: authorID, Content: "reply", ParentID: parentID}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return c
}

func TestDeleteCommentCascadeRemovesSubtree(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "prof", RoleFaculty)
	voter := seedUser(t, db, "sam", RoleStudent)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")

	// root -> child1, child2; child1 -> grandchild
	root := seedComment(t, db, post.ID, author.ID, nil)
	child1 := seedComment(t, db, post.ID, voter.ID, &root.ID)
	seedComment(t, db, post.ID, voter.ID, &root.ID)
	grandchild := seedComment(t, db, post.ID, author.ID, &child1.ID)
	other := seedComment(t, db, post.ID, voter.ID, nil)

	_, err := ToggleVote(db, voter.ID, CommentTarget(grandchild.ID), 1)
	assert.NoError(t, err)

	ids, err := CollectCommentSubtree(db, root.ID)
	assert.NoError(t, err)
	assert.Len(t, ids, 4)

	assert.NoError(t, DeleteCommentCascade(db, root.ID))

	// Only the unrelated comment survives, and the subtree's votes are gone.
	assert.Equal(t, int64(1), countRows(t, db, &Comment{}))
	var survivor Comment
	assert.NoError(t, db.First(&survivor).Error)
	assert.Equal(t, other.ID, survivor.ID)
	assert.Equal(t, int64(0), countRows(t, db, &Vote{}))
}

func TestDeletePostCascade(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "prof", RoleFaculty)
	voter := seedUser(t, db, "sam", RoleStudent)
	cat := seedCategory(t, db, "Events", "events", author.ID)
	post := seedPost(t, db, author.ID, cat.ID, "Fest")
	keep := seedPost(t, db, author.ID, cat.ID, "Other")

	assert.NoError(t, db.Create(&PostImage{PostID: post.ID, ImageURL: "/static/a.png"}).Error)
	c := seedComment(t, db, post.ID, voter.ID, nil)
	_, err := ToggleVote(db, voter.ID, PostTarget(post.ID), 1)
	assert.NoError(t, err)
	_, err = ToggleVote(db, voter.ID, CommentTarget(c.ID), 1)
	assert.NoError(t, err)
	_, err = ToggleSave(db, voter.ID, post.ID)
	assert.NoError(t, err)

	assert.NoError(t, DeletePostCascade(db, post.ID))

	assert.Equal(t, int64(1), countRows(t, db, &Post{}))
	assert.Equal(t, int64(0), countRows(t, db, &PostImage{}))
	assert.Equal(t, int64(0), countRows(t, db, &Comment{}))
	assert.Equal(t, int64(0), countRows(t, db, &Vote{}))
	assert.Equal(t, int64(0), countRows(t, db, &SavedPost{}))

	var remaining Post
	assert.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, keep.ID, remaining.ID)
}

func TestDeleteCategoryCascadeIsTransitive(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "prof", RoleFaculty)
	voter := seedUser(t, db, "sam", RoleStudent)
	doomed := seedCategory(t, db, "Doomed", "doomed", author.ID)
	kept := seedCategory(t, db, "Kept", "kept", author.ID)

	p1 := seedPost(t, db, author.ID, doomed.ID, "one")
	p2 := seedPost(t, db, author.ID, doomed.ID, "two")
	other := seedPost(t, db, author.ID, kept.ID, "three")

	c := seedComment(t, db, p1.ID, voter.ID, nil)
	assert.NoError(t, db.Create(&PostImage{PostID: p2.ID, ImageURL: "/static/b.png"}).Error)
	_, err := ToggleVote(db, voter.ID, PostTarget(p1.ID), 1)
	assert.NoError(t, err)
	_, err = ToggleVote(db, voter.ID, CommentTarget(c.ID), -1)
	assert.NoError(t, err)
	_, err = ToggleSave(db, voter.ID, p2.ID)
	assert.NoError(t, err)

	assert.NoError(t, DeleteCategoryCascade(db, doomed.ID))

	assert.Equal(t, int64(1), countRows(t, db, &Category{}))
	assert.Equal(t, int64(1), countRows(t, db, &Post{}))
	assert.Equal(t, int64(0), countRows(t, db, &Comment{}))
	assert.Equal(t, int64(0), countRows(t, db, &Vote{}))
	assert.Equal(t, int64(0), countRows(t, db, &PostImage{}))
	assert.Equal(t, int64(0), countRows(t, db, &SavedPost{}))

	var remaining Post
	assert.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, other.ID, remaining.ID)
}
