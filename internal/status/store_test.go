package status

import (
	"testing"

	"github.com/stretchr/testify/require"

	"letstalk/internal/models"
)

func storyDTO(id, userID int, userName, createdAt string) models.StatusDTO {
	return models.StatusDTO{
		ID:          id,
		UserID:      userID,
		UserName:    userName,
		MessageType: models.MessageTypeText,
		Message:     "hello",
		CreatedAt:   createdAt,
	}
}

func TestStore_GroupsStoriesByUser(t *testing.T) {
	s := NewStore()
	s.ReplaceMine([]models.StatusDTO{
		storyDTO(1, 10, "me", "2026-08-01T10:00:00Z"),
		storyDTO(2, 10, "me", "2026-08-01T11:00:00Z"),
	})
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{
			storyDTO(3, 20, "Asha", "2026-08-01T09:00:00Z"),
		}},
		{UserID: 30, Statuses: []models.StatusDTO{
			storyDTO(4, 30, "Ben", "2026-08-01T12:00:00Z"),
			storyDTO(5, 30, "Ben", "2026-08-01T13:00:00Z"),
		}},
		{UserID: 40}, // no stories, no group
	})

	mine := s.Mine()
	require.Len(t, mine, 1)
	require.Equal(t, 10, mine[0].UserID)
	require.Len(t, mine[0].Stories, 2)

	contacts := s.Contacts()
	require.Len(t, contacts, 2)
	require.Equal(t, 20, contacts[0].UserID)
	require.Len(t, contacts[0].Stories, 1)
	require.Equal(t, 30, contacts[1].UserID)
	require.Len(t, contacts[1].Stories, 2)
}

func TestStore_ProjectsViewRecords(t *testing.T) {
	dto := storyDTO(1, 20, "Asha", "2026-08-01T10:00:00Z")
	dto.ViewCount = 5
	dto.Views = []models.StatusViewDTO{
		{
			ViewerID:   30,
			ViewerName: "Ben",
			IsLike:     true,
			Comments: []models.CommentDTO{
				{ID: 101, Comment: "nice<script>x</script>", CreatedAt: "2026-08-01T11:30:00Z"},
			},
		},
		{
			ViewerID:   40,
			ViewerName: "Cara",
			IsLike:     false,
			Comments: []models.CommentDTO{
				{ID: 100, Comment: "first", CreatedAt: "2026-08-01T11:00:00Z"},
			},
		},
		{ViewerID: 50, ViewerName: "Dev", IsLike: true},
	}

	s := NewStore()
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{dto}},
	})

	items := s.Contacts()
	require.Len(t, items, 1)
	story := items[0].Stories[0]

	require.Equal(t, 2, story.Likes)
	require.Equal(t, 5, story.Views)
	require.False(t, story.IsLiked)

	// Comments are flattened chronologically and inherit the viewer's
	// identity as author.
	require.Len(t, story.Comments, 2)
	require.Equal(t, "first", story.Comments[0].Comment)
	require.Equal(t, "Cara", story.Comments[0].UserName)
	require.Equal(t, "nice", story.Comments[1].Comment)
	require.Equal(t, "Ben", story.Comments[1].UserName)
	require.Equal(t, 30, story.Comments[1].UserID)
}

func TestStore_AddCommentIdempotent(t *testing.T) {
	s := NewStore()
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{storyDTO(1, 20, "Asha", "")}},
	})

	ev := models.CommentAdded{StatusID: 1, CommentID: 7, UserID: 30, UserName: "Ben", Comment: "hey"}
	s.AddComment(ev)
	s.AddComment(ev)

	story := s.Contacts()[0].Stories[0]
	require.Len(t, story.Comments, 1)
	require.Equal(t, "hey", story.Comments[0].Comment)

	// A comment for a story the store never loaded is dropped.
	s.AddComment(models.CommentAdded{StatusID: 999, CommentID: 8, Comment: "lost"})
	require.Len(t, s.Contacts()[0].Stories[0].Comments, 1)
}

func TestStore_ToggleLike(t *testing.T) {
	s := NewStore()
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{storyDTO(1, 20, "Asha", "")}},
	})

	s.ToggleLike(models.StatusLikeToggled{StatusID: 1, IsLiked: true})
	story := s.Contacts()[0].Stories[0]
	require.True(t, story.IsLiked)
	require.Equal(t, 1, story.Likes)

	s.ToggleLike(models.StatusLikeToggled{StatusID: 1, IsLiked: false})
	story = s.Contacts()[0].Stories[0]
	require.False(t, story.IsLiked)
	require.Equal(t, 0, story.Likes)

	// Unknown story, no change anywhere.
	s.ToggleLike(models.StatusLikeToggled{StatusID: 999, IsLiked: true})
	require.Equal(t, 0, s.Contacts()[0].Stories[0].Likes)
}

func TestStore_MarkViewedAndGroupViewedState(t *testing.T) {
	viewed := storyDTO(1, 20, "Asha", "")
	viewed.IsViewed = true
	fresh := storyDTO(2, 20, "Asha", "")

	s := NewStore()
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{viewed, fresh}},
	})

	// One story unseen keeps the whole group unseen.
	require.False(t, s.Contacts()[0].IsViewed)

	s.MarkViewed(2)
	item := s.Contacts()[0]
	require.True(t, item.IsViewed)
	require.True(t, item.Stories[1].IsViewed)
	require.Equal(t, 1, item.Stories[1].Views)
}

func TestStore_OwnGroupsAlwaysViewed(t *testing.T) {
	s := NewStore()
	s.ReplaceMine([]models.StatusDTO{storyDTO(1, 10, "me", "")})

	require.True(t, s.Mine()[0].IsViewed)
}

func TestStore_AllSortsNewestFirst(t *testing.T) {
	s := NewStore()
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{storyDTO(1, 20, "Asha", "2026-08-01T09:00:00Z")}},
		{UserID: 30, Statuses: []models.StatusDTO{storyDTO(2, 30, "Ben", "2026-08-02T09:00:00Z")}},
	})

	all := s.All()
	require.Equal(t, 30, all[0].UserID)
	require.Equal(t, 20, all[1].UserID)

	// Contacts keeps delivery order regardless.
	contacts := s.Contacts()
	require.Equal(t, 20, contacts[0].UserID)
}

func TestStore_ReplaceDropsOldSide(t *testing.T) {
	s := NewStore()
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{storyDTO(1, 20, "Asha", "")}},
	})
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 30, Statuses: []models.StatusDTO{storyDTO(2, 30, "Ben", "")}},
	})

	contacts := s.Contacts()
	require.Len(t, contacts, 1)
	require.Equal(t, 30, contacts[0].UserID)

	// A patch naming the vanished story must not resurrect it.
	s.AddComment(models.CommentAdded{StatusID: 1, CommentID: 9, Comment: "late"})
	require.Len(t, s.Contacts(), 1)
	require.Empty(t, s.Contacts()[0].Stories[0].Comments)
}

func TestStore_ReplacingOneSideKeepsTheOther(t *testing.T) {
	s := NewStore()
	s.ReplaceMine([]models.StatusDTO{storyDTO(1, 10, "me", "")})
	s.ReplaceContacts([]models.ContactStatusPayload{
		{UserID: 20, Statuses: []models.StatusDTO{storyDTO(2, 20, "Asha", "")}},
	})

	s.ReplaceMine([]models.StatusDTO{storyDTO(3, 10, "me", "")})

	require.Len(t, s.Contacts(), 1)
	require.Equal(t, 2, s.Contacts()[0].Stories[0].ID)
	require.Equal(t, 3, s.Mine()[0].Stories[0].ID)
}
