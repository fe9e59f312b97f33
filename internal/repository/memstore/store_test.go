package memstore

import (
	"context"
	"errors"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressNewestFirst(t *testing.T) {
	db := Open()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	db.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	repo := NewProgressRepository(db)
	ctx := context.Background()

	for _, p := range []model.UserProgress{
		{UserID: "u1", QuizID: "a", ProgrammeID: "ena"},
		{UserID: "u1", QuizID: "b", ProgrammeID: "police"},
		{UserID: "u1", QuizID: "c", ProgrammeID: "ena"},
		{UserID: "u2", QuizID: "d", ProgrammeID: "ena"},
	} {
		p := p
		require.NoError(t, repo.Append(ctx, &p))
	}

	all, err := repo.ListByUser(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].QuizID, all[1].QuizID, all[2].QuizID})

	ena, err := repo.ListByUser(ctx, "u1", "ena")
	require.NoError(t, err)
	assert.Len(t, ena, 2)

	none, err := repo.ListByUser(ctx, "nobody", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadsReturnCopies(t *testing.T) {
	db := Open()
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &model.CommunityPost{Title: "t", Status: model.PostApproved, Likes: []string{}}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	got.Likes = append(got.Likes, "u1")

	again, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Likes)
}

func TestUpdateFieldsOnlyWritesNamedFields(t *testing.T) {
	db := Open()
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &model.CommunityPost{Title: "t", Status: model.PostApproved, Likes: []string{}}
	require.NoError(t, repo.Create(ctx, post))

	post.Title = "changed"
	post.Likes = []string{"u1"}
	require.NoError(t, repo.UpdateFields(ctx, post, "likes"))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, []string{"u1"}, got.Likes)
}

func TestUsersUniqueEmailAndPassword(t *testing.T) {
	db := Open()
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.UserProfile{Email: "a@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, &model.UserProfile{Email: "a@example.com"}), util.ErrEmailRegistered)

	got, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.Password)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestFailureMakesStoreUnavailable(t *testing.T) {
	db := Open()
	repo := NewQuizRepository(db)
	db.SetFailure(errors.New("offline"))

	err := repo.Create(context.Background(), &model.Quiz{Title: "q"})
	assert.ErrorIs(t, err, util.ErrBackendUnavailable)

	db.SetFailure(nil)
	assert.NoError(t, repo.Create(context.Background(), &model.Quiz{Title: "q"}))
}

func TestProgressSameInstantKeepsInsertionOrder(t *testing.T) {
	db := Open()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	db.Now = func() time.Time { return at }
	repo := NewProgressRepository(db)
	ctx := context.Background()

	for _, quizID := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Append(ctx, &model.UserProgress{UserID: "u1", QuizID: quizID}))
	}

	list, err := repo.ListByUser(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].QuizID, list[1].QuizID, list[2].QuizID})
}
