// Package status materializes the story model. The backend sends flat
// per-story DTOs; the client groups them by user and derives every
// aggregate field itself. One normalized, story-id-keyed store backs
// two views (own statuses, contact statuses) computed on read, so each
// incremental patch is applied exactly once no matter which view a
// story is projected into.
package status

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"letstalk/internal/content"
	"letstalk/internal/models"
)

type group struct {
	userID   int
	userName string
	avatar   string
	owned    bool
	storyIDs []int // server delivery order
}

// Store is the normalized story store.
type Store struct {
	mu      sync.RWMutex
	stories map[int]*models.StatusStory
	groups  map[int]*group
	// group order as delivered, per view
	mineOrder    []int
	contactOrder []int
}

func NewStore() *Store {
	return &Store{
		stories: make(map[int]*models.StatusStory),
		groups:  make(map[int]*group),
	}
}

// ReplaceMine rebuilds the owned side of the store from a my_statuses
// bulk payload of flat DTOs.
func (s *Store) ReplaceMine(dtos []models.StatusDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceSide(true, groupByUser(dtos))
}

// ReplaceContacts rebuilds the contact side of the store from a
// contact_statuses bulk payload.
func (s *Store) ReplaceContacts(payloads []models.ContactStatusPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := make([]userBucket, 0, len(payloads))
	for _, p := range payloads {
		if len(p.Statuses) == 0 {
			continue
		}
		buckets = append(buckets, userBucket{userID: p.UserID, dtos: p.Statuses})
	}
	s.replaceSide(false, buckets)
}

type userBucket struct {
	userID int
	dtos   []models.StatusDTO
}

// groupByUser buckets flat DTOs by user, preserving first-seen user
// order and per-user story order.
func groupByUser(dtos []models.StatusDTO) []userBucket {
	index := make(map[int]int)
	var buckets []userBucket
	for _, dto := range dtos {
		i, ok := index[dto.UserID]
		if !ok {
			i = len(buckets)
			index[dto.UserID] = i
			buckets = append(buckets, userBucket{userID: dto.UserID})
		}
		buckets[i].dtos = append(buckets[i].dtos, dto)
	}
	return buckets
}

func (s *Store) replaceSide(owned bool, buckets []userBucket) {
	// Drop the side being replaced.
	oldOrder := s.contactOrder
	if owned {
		oldOrder = s.mineOrder
	}
	for _, userID := range oldOrder {
		g := s.groups[userID]
		if g == nil {
			continue
		}
		for _, id := range g.storyIDs {
			delete(s.stories, id)
		}
		delete(s.groups, userID)
	}

	order := make([]int, 0, len(buckets))
	for _, b := range buckets {
		if len(b.dtos) == 0 {
			continue
		}
		g := &group{
			userID:   b.userID,
			userName: b.dtos[0].UserName,
			avatar:   b.dtos[0].ProfileImage,
			owned:    owned,
		}
		for _, dto := range b.dtos {
			story := projectStory(dto)
			s.stories[story.ID] = &story
			g.storyIDs = append(g.storyIDs, story.ID)
		}
		s.groups[b.userID] = g
		order = append(order, b.userID)
	}

	if owned {
		s.mineOrder = order
	} else {
		s.contactOrder = order
	}
}

// projectStory maps one flat DTO to a materialized story: likes are
// counted from view records, and comments are lifted out of the view
// records that carry them, inheriting the viewer's identity as author
// (the only commenter identity the backend provides).
func projectStory(dto models.StatusDTO) models.StatusStory {
	likes := 0
	var comments []models.StatusComment
	for _, view := range dto.Views {
		if view.IsLike {
			likes++
		}
		for _, c := range view.Comments {
			comments = append(comments, models.StatusComment{
				ID:        c.ID,
				UserID:    view.ViewerID,
				UserName:  view.ViewerName,
				Avatar:    view.ViewerProfileImage,
				Comment:   content.Sanitize(c.Comment),
				Timestamp: models.ParseTime(c.CreatedAt),
			})
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Timestamp.Before(comments[j].Timestamp)
	})

	return models.StatusStory{
		ID:        dto.ID,
		Type:      dto.MessageType,
		Message:   dto.Message,
		URL:       dto.URL,
		BgColor:   dto.BgColor,
		Timestamp: models.ParseTime(dto.CreatedAt),
		Views:     dto.ViewCount,
		Likes:     likes,
		IsLiked:   false,
		IsViewed:  dto.IsViewed,
		Comments:  comments,
	}
}

// AddComment applies a comment_added push. The comment is appended to
// the story it names, once: repeated delivery of the same comment id is
// a no-op. An unknown story id is silently ignored: the push may refer
// to a story the bulk load has not delivered yet, matching the historic
// client behavior.
func (s *Store) AddComment(ev models.CommentAdded) {
	s.mu.Lock()
	defer s.mu.Unlock()

	story, ok := s.stories[ev.StatusID]
	if !ok {
		slog.Debug("comment for unknown story", "statusId", ev.StatusID)
		return
	}
	for _, c := range story.Comments {
		if c.ID == ev.CommentID {
			return
		}
	}
	story.Comments = append(story.Comments, models.StatusComment{
		ID:        ev.CommentID,
		UserID:    ev.UserID,
		UserName:  ev.UserName,
		Avatar:    ev.UserProfileImage,
		Comment:   content.Sanitize(ev.Comment),
		Timestamp: time.Now(),
	})
}

// ToggleLike applies a status_like_toggled push: the optimistic local
// flag is set and the like count moves by one in the flagged direction.
// Unknown story ids are ignored.
func (s *Store) ToggleLike(ev models.StatusLikeToggled) {
	s.mu.Lock()
	defer s.mu.Unlock()

	story, ok := s.stories[ev.StatusID]
	if !ok {
		slog.Debug("like toggle for unknown story", "statusId", ev.StatusID)
		return
	}
	story.IsLiked = ev.IsLiked
	if ev.IsLiked {
		story.Likes++
	} else {
		story.Likes--
	}
}

// MarkViewed optimistically records a local view of a story before the
// server confirms it: view count up by one, story marked viewed.
func (s *Store) MarkViewed(statusID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	story, ok := s.stories[statusID]
	if !ok {
		return
	}
	story.Views++
	story.IsViewed = true
}

// Mine returns the own-statuses view. Own story groups always read as
// viewed.
func (s *Store) Mine() []models.StatusItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view(s.mineOrder)
}

// Contacts returns the contact-statuses view. Group viewed state is the
// AND over the group's stories.
func (s *Store) Contacts() []models.StatusItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view(s.contactOrder)
}

// All returns the contact view sorted newest first.
func (s *Store) All() []models.StatusItem {
	items := s.Contacts()
	sort.SliceStable(items, func(i, j int) bool {
		return items[j].Timestamp.Before(items[i].Timestamp)
	})
	return items
}

func (s *Store) view(order []int) []models.StatusItem {
	items := make([]models.StatusItem, 0, len(order))
	for _, userID := range order {
		g := s.groups[userID]
		if g == nil || len(g.storyIDs) == 0 {
			continue
		}

		item := models.StatusItem{
			UserID:   g.userID,
			UserName: g.userName,
			Avatar:   g.avatar,
			IsViewed: true,
		}
		for _, id := range g.storyIDs {
			story := s.stories[id]
			if story == nil {
				continue
			}
			cp := *story
			cp.Comments = append([]models.StatusComment(nil), story.Comments...)
			item.Stories = append(item.Stories, cp)
			item.Comments = append(item.Comments, cp.Comments...)
			if !g.owned && !cp.IsViewed {
				item.IsViewed = false
			}
		}
		if n := len(item.Stories); n > 0 {
			item.Timestamp = item.Stories[n-1].Timestamp
		}
		items = append(items, item)
	}
	return items
}
