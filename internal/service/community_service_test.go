package service

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/repository/memstore"
	"faaqs_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommunity(t *testing.T) (*CommunityService, *model.UserProfile) {
	t.Helper()
	db := memstore.Open()
	users := memstore.NewUserRepository(db)
	name := "Awa"
	author := &model.UserProfile{Email: "awa@example.com", DisplayName: &name, Role: model.Student}
	require.NoError(t, users.Create(context.Background(), author))
	return NewCommunityService(memstore.NewPostRepository(db), users, 0), author
}

func TestCreatePostIsApproved(t *testing.T) {
	svc, author := newCommunity(t)

	post, err := svc.CreatePost(context.Background(), author.UID, PostRequest{
		Title:   "  Conseils pour l'ENA ",
		Content: "Révisez le droit public.",
		Tags:    []string{"ena", " ena", "droit", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PostApproved, post.Status)
	assert.Equal(t, "Conseils pour l'ENA", post.Title)
	assert.Equal(t, "Awa", post.AuthorName)
	assert.Equal(t, "awa@example.com", post.AuthorEmail)
	assert.Equal(t, []string{"ena", "droit"}, post.Tags)
}

func TestCreatePostValidation(t *testing.T) {
	svc, author := newCommunity(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, author.UID, PostRequest{Title: " ", Content: "x"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.CreatePost(ctx, author.UID, PostRequest{Title: strings.Repeat("a", 201), Content: "x"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.CreatePost(ctx, author.UID, PostRequest{Title: "t", Content: "x", Tags: []string{"1", "2", "3", "4", "5", "6"}})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestLikeIsIdempotent(t *testing.T) {
	svc, author := newCommunity(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, author.UID, PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = svc.LikePost(ctx, post.ID, "u1", false)
	require.NoError(t, err)
	post, err = svc.LikePost(ctx, post.ID, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, post.Likes)

	post, err = svc.UnlikePost(ctx, post.ID, "u2", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, post.Likes)

	post, liked, err := svc.ToggleLike(ctx, post.ID, "u1", false)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, post.Likes)
}

func TestReplyAndReplyLike(t *testing.T) {
	svc, author := newCommunity(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, author.UID, PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	reply, err := svc.Reply(ctx, post.ID, author.UID, false, ReplyRequest{Content: "Merci !"})
	require.NoError(t, err)
	assert.Equal(t, "Awa", reply.AuthorName)

	_, liked, err := svc.ToggleReplyLike(ctx, post.ID, reply.ID, "u1", false)
	require.NoError(t, err)
	assert.True(t, liked)

	stored, err := svc.GetPost(ctx, post.ID, false)
	require.NoError(t, err)
	require.Len(t, stored.Replies, 1)
	assert.Equal(t, []string{"u1"}, stored.Replies[0].Likes)

	_, _, err = svc.ToggleReplyLike(ctx, post.ID, "missing", "u1", false)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestReportAppendsEveryTime(t *testing.T) {
	svc, author := newCommunity(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, author.UID, PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = svc.Report(ctx, post.ID, "u1", false, ReportRequest{})
	require.NoError(t, err)
	post, err = svc.Report(ctx, post.ID, "u1", false, ReportRequest{Reason: "spam"})
	require.NoError(t, err)

	require.Len(t, post.Reports, 2)
	assert.Equal(t, model.DefaultReportText, post.Reports[0].Reason)
	assert.Equal(t, "spam", post.Reports[1].Reason)
}

func TestModerationHidesRejectedPosts(t *testing.T) {
	svc, author := newCommunity(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, author.UID, PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, post.ID)
	require.NoError(t, err)

	list, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = svc.GetPost(ctx, post.ID, false)
	assert.ErrorIs(t, err, util.ErrNotFound)

	all, err := svc.AdminListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Approve(ctx, post.ID)
	require.NoError(t, err)
	list, err = svc.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeletePost(ctx, post.ID))
	_, err = svc.GetPost(ctx, post.ID, true)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestRejectedPostRejectsStudentInteractions(t *testing.T) {
	svc, author := newCommunity(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, author.UID, PostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	reply, err := svc.Reply(ctx, post.ID, author.UID, false, ReplyRequest{Content: "r"})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, post.ID)
	require.NoError(t, err)

	_, err = svc.LikePost(ctx, post.ID, "u1", false)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = svc.UnlikePost(ctx, post.ID, "u1", false)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, _, err = svc.ToggleLike(ctx, post.ID, "u1", false)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = svc.Reply(ctx, post.ID, author.UID, false, ReplyRequest{Content: "encore"})
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, _, err = svc.ToggleReplyLike(ctx, post.ID, reply.ID, "u1", false)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = svc.Report(ctx, post.ID, "u1", false, ReportRequest{Reason: "spam"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	stored, err := svc.GetPost(ctx, post.ID, true)
	require.NoError(t, err)
	assert.Empty(t, stored.Likes)
	assert.Len(t, stored.Replies, 1)
	assert.Empty(t, stored.Reports)

	// 管理员仍可操作
	_, err = svc.Report(ctx, post.ID, "admin", true, ReportRequest{})
	assert.NoError(t, err)
}

func TestListPostsRespectsLimit(t *testing.T) {
	svc, author := newCommunity(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.CreatePost(ctx, author.UID, PostRequest{Title: "t", Content: "c"})
		require.NoError(t, err)
	}

	svc.SetListLimit(2)
	list, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
