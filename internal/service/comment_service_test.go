package service

import (
	"context"
	"strings"
	"testing"

	"travelcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comment(id, postID uint, parent *uint, status bool) models.CommunityPostComment {
	return models.CommunityPostComment{
		Base:            models.Base{ID: id},
		Content:         "c",
		UserID:          1,
		CommunityPostID: postID,
		ParentID:        parent,
		Status:          status,
	}
}

func newCommentService(postComments *postCommentRepoStub) *CommentService {
	return NewCommentService(nil, postComments, liveSet{1: true}, liveSet{1: true, 2: true}, liveSet{1: true})
}

func TestCommentService_CreatePostComment_Hierarchy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newPostCommentRepoStub(
		comment(1, 1, nil, true),
		comment(2, 2, nil, true),
		comment(3, 1, nil, false),
	)
	svc := newCommentService(repo)

	t.Run("parent on another post", func(t *testing.T) {
		_, err := svc.CreatePostComment(ctx, CreatePostCommentInput{UserID: 1, PostID: 1, ParentID: uintPtr(2), Content: "hi"})
		assertValidationKind(t, err, models.KindHierarchy)
	})

	t.Run("hidden parent", func(t *testing.T) {
		_, err := svc.CreatePostComment(ctx, CreatePostCommentInput{UserID: 1, PostID: 1, ParentID: uintPtr(3), Content: "hi"})
		assertValidationKind(t, err, models.KindHierarchy)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := svc.CreatePostComment(ctx, CreatePostCommentInput{UserID: 1, PostID: 1, ParentID: uintPtr(77), Content: "hi"})
		assertValidationKind(t, err, models.KindReferential)
	})

	t.Run("inactive post", func(t *testing.T) {
		_, err := svc.CreatePostComment(ctx, CreatePostCommentInput{UserID: 1, PostID: 9, Content: "hi"})
		assertValidationKind(t, err, models.KindReferential)
	})

	t.Run("content too long", func(t *testing.T) {
		_, err := svc.CreatePostComment(ctx, CreatePostCommentInput{UserID: 1, PostID: 1, Content: strings.Repeat("x", 10001)})
		assertValidationKind(t, err, models.KindField)
	})

	t.Run("reply on same post", func(t *testing.T) {
		reply, err := svc.CreatePostComment(ctx, CreatePostCommentInput{UserID: 1, PostID: 1, ParentID: uintPtr(1), Content: "agreed"})
		require.NoError(t, err)
		require.NotNil(t, reply.ParentID)
		assert.Equal(t, uint(1), *reply.ParentID)
	})
}

func TestCommentService_ListThread_PrunesHiddenSubtrees(t *testing.T) {
	t.Parallel()

	// 1
	// ├── 2
	// │   └── 4
	// └── 3 (hidden)
	//     └── 5
	//         └── 6
	// 7
	repo := newPostCommentRepoStub(
		comment(1, 1, nil, true),
		comment(2, 1, uintPtr(1), true),
		comment(3, 1, uintPtr(1), false),
		comment(4, 1, uintPtr(2), true),
		comment(5, 1, uintPtr(3), true),
		comment(6, 1, uintPtr(5), true),
		comment(7, 1, nil, true),
		comment(8, 2, nil, true),
	)
	svc := newCommentService(repo)

	roots, err := svc.ListThread(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, uint(1), roots[0].ID)
	assert.Equal(t, uint(7), roots[1].ID)

	require.Len(t, roots[0].Replies, 1)
	assert.Equal(t, uint(2), roots[0].Replies[0].ID)
	require.Len(t, roots[0].Replies[0].Replies, 1)
	assert.Equal(t, uint(4), roots[0].Replies[0].Replies[0].ID)
	assert.Empty(t, roots[1].Replies)
}

func TestCommentService_ListThread_DeepChain(t *testing.T) {
	t.Parallel()

	const depth = 5000
	seed := []models.CommunityPostComment{comment(1, 1, nil, true)}
	for id := uint(2); id <= depth; id++ {
		seed = append(seed, comment(id, 1, uintPtr(id-1), true))
	}
	svc := newCommentService(newPostCommentRepoStub(seed...))

	roots, err := svc.ListThread(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, roots, 1)

	n := 0
	for node := roots[0]; node != nil; n++ {
		if len(node.Replies) == 0 {
			node = nil
			continue
		}
		node = node.Replies[0]
	}
	assert.Equal(t, depth, n)
}

func TestCommentService_HideAndCountReplies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newPostCommentRepoStub(
		comment(1, 1, nil, true),
		comment(2, 1, uintPtr(1), true),
		comment(3, 1, uintPtr(1), true),
		comment(4, 1, uintPtr(2), true),
	)
	svc := newCommentService(repo)

	count, err := svc.CountReplies(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.HidePostComment(ctx, 3))
	count, err = svc.CountReplies(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.RestorePostComment(ctx, 3))
	count, err = svc.CountReplies(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.CountReplies(ctx, 99)
	assert.True(t, models.IsNotFound(err))
}
