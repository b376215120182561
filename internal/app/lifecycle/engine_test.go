package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

const (
	ownerID int64 = 1
	aliceID int64 = 2
	bobID   int64 = 3
	carolID int64 = 4
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(func() time.Time { return fixedNow })
}

func validContent() models.PostContent {
	return models.PostContent{
		Title:        "Need a calculus tutor",
		Description:  "Two sessions a week",
		PostType:     models.PostTypeRequest,
		Category:     models.CategoryTutoring,
		Location:     "Snell Library",
		Availability: "2025-03-01,2025-03-15",
	}
}

func newAggregate(t *testing.T, e *Engine, participants ...int64) *Aggregate {
	t.Helper()
	post, err := e.NewPost(100, models.NewActor(ownerID, models.RoleUser), validContent())
	require.NoError(t, err)

	agg := NewAggregate(post, nil)
	for _, id := range participants {
		_, err := e.Participate(agg, models.NewActor(id, models.RoleUser))
		require.NoError(t, err)
	}
	return agg
}

func owner() models.Actor { return models.NewActor(ownerID, models.RoleUser) }

func user(id int64) models.Actor { return models.NewActor(id, models.RoleUser) }

func statusOf(t *testing.T, agg *Aggregate, userID int64) models.ParticipantStatus {
	t.Helper()
	p, err := agg.Get(userID)
	require.NoError(t, err)
	return p.Status
}

// at most one record in the selected lineage, and it is the selected one
func assertSingleSelection(t *testing.T, agg *Aggregate) {
	t.Helper()
	count := 0
	for _, p := range agg.Participants {
		if p.Status.IsSelectedLineage() {
			count++
			require.NotNil(t, agg.Post.SelectedParticipantID)
			assert.Equal(t, *agg.Post.SelectedParticipantID, p.UserID)
		}
	}
	assert.LessOrEqual(t, count, 1)
}

func TestNewPostStartsPending(t *testing.T) {
	e := newTestEngine()
	post, err := e.NewPost(7, owner(), validContent())
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPending, post.Status)
	assert.Nil(t, post.SelectedParticipantID)
	assert.False(t, post.OwnerCompleted)
	assert.False(t, post.ParticipantCompleted)
	assert.Equal(t, fixedNow, post.CreatedAt)
}

func TestNewPostRejectsInvalidContent(t *testing.T) {
	e := newTestEngine()
	content := validContent()
	content.Category = "furniture"

	_, err := e.NewPost(7, owner(), content)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestParticipate(t *testing.T) {
	e := newTestEngine()

	t.Run("creates pending record", func(t *testing.T) {
		agg := newAggregate(t, e)
		m, err := e.Participate(agg, user(aliceID))
		require.NoError(t, err)
		require.Len(t, m.Added, 1)
		assert.Equal(t, models.ParticipantStatusPending, m.Added[0].Status)
		assert.False(t, m.PostChanged)
	})

	t.Run("duplicate fails with AlreadyParticipating", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Participate(agg, user(aliceID))
		assert.ErrorIs(t, err, apperrors.ErrAlreadyParticipating)
		assert.Len(t, agg.Participants, 1)
	})

	t.Run("owner cannot participate", func(t *testing.T) {
		agg := newAggregate(t, e)
		_, err := e.Participate(agg, owner())
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("late joiner on an active post stays pending", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		_, err = e.Participate(agg, user(bobID))
		require.NoError(t, err)
		assert.Equal(t, models.ParticipantStatusPending, statusOf(t, agg, bobID))
		assertSingleSelection(t, agg)
	})
}

func TestSelect(t *testing.T) {
	e := newTestEngine()

	t.Run("moves target in progress and others not selected", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID, carolID)
		m, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		assert.True(t, m.PostChanged)
		assert.Len(t, m.Updated, 3)
		assert.Equal(t, models.PostStatusInProgress, agg.Post.Status)
		require.NotNil(t, agg.Post.SelectedParticipantID)
		assert.Equal(t, aliceID, *agg.Post.SelectedParticipantID)
		assert.Equal(t, models.ParticipantStatusInProgress, statusOf(t, agg, aliceID))
		assert.Equal(t, models.ParticipantStatusNotSelected, statusOf(t, agg, bobID))
		assert.Equal(t, models.ParticipantStatusNotSelected, statusOf(t, agg, carolID))
		assertSingleSelection(t, agg)
	})

	t.Run("second select fails with AlreadySelected and changes nothing", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		_, err = e.Select(agg, owner(), bobID)
		assert.ErrorIs(t, err, apperrors.ErrAlreadySelected)
		assert.Equal(t, aliceID, *agg.Post.SelectedParticipantID)
		assert.Equal(t, models.ParticipantStatusNotSelected, statusOf(t, agg, bobID))
		assert.Equal(t, models.ParticipantStatusInProgress, statusOf(t, agg, aliceID))
	})

	t.Run("non owner fails with NotOwner", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Select(agg, user(bobID), aliceID)
		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
		assert.Nil(t, agg.Post.SelectedParticipantID)
	})

	t.Run("unknown participant fails with NotFound", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Select(agg, owner(), carolID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
		assert.Equal(t, models.ParticipantStatusPending, statusOf(t, agg, aliceID))
	})
}

func TestHappyPath(t *testing.T) {
	e := newTestEngine()
	agg := newAggregate(t, e, aliceID)

	_, err := e.Select(agg, owner(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusInProgress, agg.Post.Status)

	_, err = e.MarkParticipantComplete(agg, user(aliceID))
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantStatusWaitForComplete, statusOf(t, agg, aliceID))
	assert.Equal(t, models.PostStatusInProgress, agg.Post.Status)
	assert.True(t, agg.Post.ParticipantCompleted)

	m, err := e.ConfirmComplete(agg, owner())
	require.NoError(t, err)
	assert.True(t, m.PostChanged)
	assert.Equal(t, models.PostStatusComplete, agg.Post.Status)
	assert.True(t, agg.Post.OwnerCompleted)

	p, err := agg.Get(aliceID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantStatusComplete, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, fixedNow, *p.CompletedAt)
	assertSingleSelection(t, agg)
}

func TestMarkParticipantComplete(t *testing.T) {
	e := newTestEngine()

	t.Run("only the selected participant", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		_, err = e.MarkParticipantComplete(agg, user(bobID))
		assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

		_, err = e.MarkParticipantComplete(agg, owner())
		assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	})

	t.Run("twice fails with InvalidState", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)
		_, err = e.MarkParticipantComplete(agg, user(aliceID))
		require.NoError(t, err)

		_, err = e.MarkParticipantComplete(agg, user(aliceID))
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestConfirmCompleteRequiresParticipantFirst(t *testing.T) {
	e := newTestEngine()
	agg := newAggregate(t, e, aliceID)
	_, err := e.Select(agg, owner(), aliceID)
	require.NoError(t, err)

	_, err = e.ConfirmComplete(agg, owner())
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, models.PostStatusInProgress, agg.Post.Status)
	assert.False(t, agg.Post.OwnerCompleted)

	_, err = e.ConfirmComplete(agg, user(aliceID))
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
}

func TestConfirmCompleteOnPendingPost(t *testing.T) {
	e := newTestEngine()
	agg := newAggregate(t, e, aliceID)

	_, err := e.ConfirmComplete(agg, owner())
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestCancelRoundTrip(t *testing.T) {
	e := newTestEngine()

	for name, canceller := range map[string]models.Actor{
		"owner":       owner(),
		"participant": user(aliceID),
	} {
		t.Run(name, func(t *testing.T) {
			agg := newAggregate(t, e, aliceID, bobID)
			_, err := e.Select(agg, owner(), aliceID)
			require.NoError(t, err)
			_, err = e.MarkParticipantComplete(agg, user(aliceID))
			require.NoError(t, err)

			m, err := e.Cancel(agg, canceller)
			require.NoError(t, err)
			require.Len(t, m.Updated, 1)
			assert.Equal(t, models.PostStatusPending, agg.Post.Status)
			assert.Nil(t, agg.Post.SelectedParticipantID)
			assert.False(t, agg.Post.ParticipantCompleted)
			assert.Equal(t, models.ParticipantStatusNotSelected, statusOf(t, agg, aliceID))

			// Not Selected is reselectable
			_, err = e.Select(agg, owner(), aliceID)
			require.NoError(t, err)
			assert.Equal(t, models.PostStatusInProgress, agg.Post.Status)
			assert.Equal(t, models.ParticipantStatusInProgress, statusOf(t, agg, aliceID))
			assertSingleSelection(t, agg)
		})
	}
}

func TestCancelRejections(t *testing.T) {
	e := newTestEngine()

	t.Run("outsider", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		_, err = e.Cancel(agg, user(bobID))
		assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	})

	t.Run("pending post", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Cancel(agg, owner())
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("complete post", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)
		_, err = e.MarkParticipantComplete(agg, user(aliceID))
		require.NoError(t, err)
		_, err = e.ConfirmComplete(agg, owner())
		require.NoError(t, err)

		_, err = e.Cancel(agg, owner())
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Equal(t, models.PostStatusComplete, agg.Post.Status)
	})
}

func TestDecline(t *testing.T) {
	e := newTestEngine()

	t.Run("pending participant is removed", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID)
		m, err := e.Decline(agg, owner(), bobID)
		require.NoError(t, err)
		assert.Equal(t, []int64{bobID}, m.Removed)
		assert.False(t, m.PostChanged)
		assert.Len(t, agg.Participants, 1)
	})

	t.Run("in progress participant fails with InvalidState", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		_, err = e.Decline(agg, owner(), aliceID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Len(t, agg.Participants, 1)
	})

	t.Run("not selected participant is removed", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		_, err = e.Decline(agg, owner(), bobID)
		require.NoError(t, err)
		_, err = agg.Get(bobID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("non owner", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID)
		_, err := e.Decline(agg, user(aliceID), bobID)
		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
	})
}

func TestDelete(t *testing.T) {
	e := newTestEngine()

	t.Run("pending post cascades participants", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID, bobID)
		m, err := e.Delete(agg, owner())
		require.NoError(t, err)
		assert.True(t, m.DeletePost)
		assert.ElementsMatch(t, []int64{aliceID, bobID}, m.Removed)
		assert.Empty(t, agg.Participants)
	})

	t.Run("in progress post fails with InvalidState", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Select(agg, owner(), aliceID)
		require.NoError(t, err)

		_, err = e.Delete(agg, owner())
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Len(t, agg.Participants, 1)
	})

	t.Run("non owner", func(t *testing.T) {
		agg := newAggregate(t, e, aliceID)
		_, err := e.Delete(agg, user(aliceID))
		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
	})
}

func TestForceDeleteIgnoresStatus(t *testing.T) {
	e := newTestEngine()
	agg := newAggregate(t, e, aliceID)
	_, err := e.Select(agg, owner(), aliceID)
	require.NoError(t, err)
	_, err = e.MarkParticipantComplete(agg, user(aliceID))
	require.NoError(t, err)
	_, err = e.ConfirmComplete(agg, owner())
	require.NoError(t, err)

	m := ForceDelete(agg)
	assert.True(t, m.DeletePost)
	assert.Equal(t, []int64{aliceID}, m.Removed)
}

func TestRemoveFromMyPosts(t *testing.T) {
	e := newTestEngine()
	agg := newAggregate(t, e, aliceID, bobID)

	_, err := e.RemoveFromMyPosts(agg, user(bobID))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState, "pending participants cannot use this")

	_, err = e.Select(agg, owner(), aliceID)
	require.NoError(t, err)

	m, err := e.RemoveFromMyPosts(agg, user(bobID))
	require.NoError(t, err)
	assert.Equal(t, []int64{bobID}, m.Removed)
	assert.False(t, m.PostChanged)

	_, err = e.RemoveFromMyPosts(agg, user(carolID))
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	_, err = e.RemoveFromMyPosts(agg, user(aliceID))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRemoveCompletedPost(t *testing.T) {
	e := newTestEngine()
	agg := newAggregate(t, e, aliceID)
	_, err := e.Select(agg, owner(), aliceID)
	require.NoError(t, err)

	_, err = e.RemoveCompletedPost(agg, user(aliceID))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = e.MarkParticipantComplete(agg, user(aliceID))
	require.NoError(t, err)
	_, err = e.ConfirmComplete(agg, owner())
	require.NoError(t, err)

	m, err := e.RemoveCompletedPost(agg, user(aliceID))
	require.NoError(t, err)
	assert.Equal(t, []int64{aliceID}, m.Removed)
	assert.False(t, m.PostChanged)
	assert.False(t, m.DeletePost)
	assert.Equal(t, models.PostStatusComplete, agg.Post.Status)
	assert.Equal(t, models.PostStatusComplete, DeriveStatus(agg.Post, agg.Selected()))
}

func TestEditPost(t *testing.T) {
	e := newTestEngine()
	agg := newAggregate(t, e, aliceID)

	content := validContent()
	content.Title = "Need a linear algebra tutor"
	_, err := e.Edit(agg, owner(), content)
	require.NoError(t, err)
	assert.Equal(t, "Need a linear algebra tutor", agg.Post.Title)

	_, err = e.Edit(agg, user(aliceID), content)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	content.Availability = "2025-03-15,2025-03-01"
	_, err = e.Edit(agg, owner(), content)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "2025-03-01,2025-03-15", agg.Post.Availability)
}

func TestDeriveStatus(t *testing.T) {
	selected := aliceID
	tests := []struct {
		name        string
		post        models.Post
		participant *models.Participant
		want        models.PostStatus
	}{
		{"no selection", models.Post{}, nil, models.PostStatusPending},
		{"selected in progress", models.Post{SelectedParticipantID: &selected},
			&models.Participant{Status: models.ParticipantStatusInProgress}, models.PostStatusInProgress},
		{"participant waiting", models.Post{SelectedParticipantID: &selected, ParticipantCompleted: true},
			&models.Participant{Status: models.ParticipantStatusWaitForComplete}, models.PostStatusInProgress},
		{"both complete", models.Post{SelectedParticipantID: &selected, OwnerCompleted: true},
			&models.Participant{Status: models.ParticipantStatusComplete}, models.PostStatusComplete},
		{"complete record without owner flag", models.Post{SelectedParticipantID: &selected},
			&models.Participant{Status: models.ParticipantStatusComplete}, models.PostStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := tt.post
			assert.Equal(t, tt.want, DeriveStatus(&post, tt.participant))
		})
	}
}
