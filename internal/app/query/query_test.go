package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var campus = []string{"Snell Library", "Curry Student Center", "International Village", "East Village"}

func post(id int64, title string, pt models.PostType, c models.Category, loc string, age time.Duration) *models.Post {
	return &models.Post{
		ID:     id,
		UserID: 1,
		PostContent: models.PostContent{
			Title:    title,
			PostType: pt,
			Category: c,
			Location: loc,
		},
		Status:    models.PostStatusPending,
		CreatedAt: now.Add(-age),
	}
}

func fixture() []*models.Post {
	return []*models.Post{
		post(1, "Calculus tutor needed", models.PostTypeRequest, models.CategoryTutoring, "Snell Library", 30*time.Minute),
		post(2, "Sublet in IV", models.PostTypeOffer, models.CategoryHousing, "International Village", 3*time.Hour),
		post(3, "Lend me a TI-84", models.PostTypeRequest, models.CategoryLendBorrow, "Curry Student Center", 3*24*time.Hour),
		post(4, "Physics TUTOR offering", models.PostTypeOffer, models.CategoryTutoring, "snell library", 10*24*time.Hour),
		post(5, "Free couch", models.PostTypeOffer, models.CategoryGeneral, "East Village", 45*24*time.Hour),
	}
}

func ids(posts []*models.Post) []int64 {
	out := make([]int64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterPostsEmptyIsIdentity(t *testing.T) {
	posts := fixture()
	// shuffle so identity is not just creation order
	posts[0], posts[3] = posts[3], posts[0]

	assert.True(t, Filters{}.IsEmpty())
	assert.True(t, Filters{DateRange: DateRangeAll, Location: "  "}.IsEmpty())
	assert.False(t, Filters{TitleQuery: "tutor"}.IsEmpty())
	assert.Equal(t, ids(posts), ids(FilterPosts(posts, Filters{}, now)))
}

func TestFilterPostsPredicates(t *testing.T) {
	tests := []struct {
		name   string
		filter Filters
		want   []int64
	}{
		{"post type", Filters{PostType: models.PostTypeOffer}, []int64{2, 4, 5}},
		{"single category", Filters{Categories: []models.Category{models.CategoryTutoring}}, []int64{1, 4}},
		{"location is case insensitive exact", Filters{Location: "SNELL LIBRARY"}, []int64{1, 4}},
		{"location is not substring", Filters{Location: "Village"}, []int64{}},
		{"last hour", Filters{DateRange: DateRangeLastHour}, []int64{1}},
		{"last day", Filters{DateRange: DateRangeLastDay}, []int64{1, 2}},
		{"last week", Filters{DateRange: DateRangeLastWeek}, []int64{1, 2, 3}},
		{"last month", Filters{DateRange: DateRangeLastMonth}, []int64{1, 2, 3, 4}},
		{"all dates", Filters{DateRange: DateRangeAll}, []int64{1, 2, 3, 4, 5}},
		{"title query", Filters{TitleQuery: "tutor"}, []int64{1, 4}},
		{"and across predicates", Filters{PostType: models.PostTypeOffer, Categories: []models.Category{models.CategoryTutoring}}, []int64{4}},
		{"status", Filters{Status: models.PostStatusComplete}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterPosts(fixture(), tt.filter, now)))
		})
	}
}

func TestMultipleCategoriesIsUnionOfSingles(t *testing.T) {
	posts := fixture()
	base := Filters{PostType: models.PostTypeOffer}

	housing := FindByCategory(posts, models.CategoryHousing, base, now)
	tutoring := FindByCategory(posts, models.CategoryTutoring, base, now)
	both := FindByMultipleCategories(posts, []models.Category{models.CategoryHousing, models.CategoryTutoring}, base, now)

	assert.ElementsMatch(t, append(ids(housing), ids(tutoring)...), ids(both))
	assert.Equal(t, []int64{2, 4}, ids(both))
}

func TestFindByTitle(t *testing.T) {
	assert.Equal(t, []int64{5}, ids(FindByTitle(fixture(), "COUCH", Filters{}, now)))
}

func TestFilterPostsSortIsStable(t *testing.T) {
	posts := fixture()
	tie := post(6, "Same time as 1", models.PostTypeRequest, models.CategoryGeneral, "Snell Library", 30*time.Minute)
	posts = append(posts, tie)

	latest := FilterPosts(posts, Filters{Sort: SortLatest}, now)
	assert.Equal(t, []int64{1, 6, 2, 3, 4, 5}, ids(latest))

	oldest := FilterPosts(posts, Filters{Sort: SortOldest}, now)
	assert.Equal(t, []int64{5, 4, 3, 2, 1, 6}, ids(oldest))
}

func TestFiltersValidate(t *testing.T) {
	require.NoError(t, Filters{Location: "curry student center", DateRange: DateRangeLastWeek, Sort: SortOldest}.Validate(campus))
	require.NoError(t, Filters{Location: "Anywhere"}.Validate(nil))

	bad := []Filters{
		{PostType: "trade"},
		{Categories: []models.Category{"pets"}},
		{Status: "Archived"},
		{DateRange: "2w"},
		{Sort: "popular"},
		{Location: "Boston Common"},
	}
	for _, f := range bad {
		assert.ErrorIs(t, f.Validate(campus), apperrors.ErrValidationFailed)
	}
}

func TestDeriveUserRelationship(t *testing.T) {
	selected := int64(2)
	p := &models.Post{ID: 1, UserID: 1, SelectedParticipantID: &selected}
	participants := []*models.Participant{
		{PostID: 1, UserID: 2, Status: models.ParticipantStatusInProgress},
		{PostID: 1, UserID: 3, Status: models.ParticipantStatusNotSelected},
	}

	assert.Equal(t, models.RelationshipOwner, DeriveUserRelationship(p, participants, 1))
	assert.Equal(t, models.RelationshipSelected, DeriveUserRelationship(p, participants, 2))
	assert.Equal(t, models.RelationshipParticipant, DeriveUserRelationship(p, participants, 3))
	assert.Equal(t, models.RelationshipNone, DeriveUserRelationship(p, participants, 4))

	for _, record := range participants {
		assert.NotEqual(t, models.RelationshipNone, DeriveUserRelationship(p, participants, record.UserID))
	}
}

func TestDeriveDisplayStatus(t *testing.T) {
	selected := int64(2)
	p := &models.Post{ID: 1, UserID: 1, SelectedParticipantID: &selected, Status: models.PostStatusInProgress, ParticipantCompleted: true}
	participants := []*models.Participant{
		{PostID: 1, UserID: 2, Status: models.ParticipantStatusWaitForComplete},
		{PostID: 1, UserID: 3, Status: models.ParticipantStatusNotSelected},
	}

	assert.Equal(t, "In Progress", DeriveDisplayStatus(p, participants, 1), "owner sees the post status while the participant waits")
	assert.Equal(t, "Wait for Complete", DeriveDisplayStatus(p, participants, 2))
	assert.Equal(t, "Not Selected", DeriveDisplayStatus(p, participants, 3))
	assert.Equal(t, "In Progress", DeriveDisplayStatus(p, participants, 9))

	status := ParticipantStatusFor(participants, 3)
	require.NotNil(t, status)
	assert.Equal(t, models.ParticipantStatusNotSelected, *status)
	assert.Nil(t, ParticipantStatusFor(participants, 9))
}
