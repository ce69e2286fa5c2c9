package models

import "time"

// CommentDTO is a raw per-story comment as sent by the backend, nested
// inside the view record of the viewer who left it.
type CommentDTO struct {
	ID               int    `json:"id"`
	Comment          string `json:"comment"`
	CreatedAt        string `json:"createdAt"`
	UserID           int    `json:"userId"`
	UserName         string `json:"userName"`
	UserProfileImage string `json:"userProfileImage"`
}

// StatusViewDTO is one viewer's record on a story: whether they liked
// it and any comments they left. The viewer identity here is the only
// commenter identity the backend provides.
type StatusViewDTO struct {
	ViewerID           int          `json:"viewerId"`
	ViewerName         string       `json:"viewerName"`
	ViewerProfileImage string       `json:"viewerProfileImage"`
	ViewedAt           string       `json:"viewedAt"`
	IsLike             bool         `json:"isLike"`
	Comments           []CommentDTO `json:"comments"`
}

// StatusDTO is the flat per-story record the backend sends. The client
// groups these by user and derives the aggregate fields itself.
type StatusDTO struct {
	ID           int             `json:"id"`
	UserID       int             `json:"userId"`
	UserName     string          `json:"userName"`
	ProfileImage string          `json:"profileImage"`
	Message      string          `json:"message,omitempty"`
	URL          string          `json:"url,omitempty"`
	BgColor      string          `json:"bgColor,omitempty"`
	MessageType  MessageType     `json:"messageType"`
	CreatedAt    string          `json:"createdAt"`
	ViewCount    int             `json:"viewCount"`
	IsViewed     bool            `json:"isViewed"`
	Views        []StatusViewDTO `json:"views"`
}

// ContactStatusPayload is one contact's bundle of stories as delivered
// on contact_statuses responses.
type ContactStatusPayload struct {
	UserID   int         `json:"userId"`
	Statuses []StatusDTO `json:"statuses"`
}

// StatusComment is a materialized comment on a story.
type StatusComment struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	UserName  string    `json:"userName"`
	Avatar    string    `json:"avatar"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusStory is one materialized story.
type StatusStory struct {
	ID      int         `json:"id"`
	Type    MessageType `json:"type"`
	Message string      `json:"message,omitempty"`
	URL     string      `json:"url,omitempty"`
	BgColor string      `json:"bgColor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Views   int         `json:"views"`
	Likes   int         `json:"likes"`
	// IsLiked is an optimistic local flag; it is reconciled against the
	// server on the next full refetch and may briefly disagree with it.
	IsLiked  bool            `json:"isLiked"`
	IsViewed bool            `json:"isViewed"`
	Comments []StatusComment `json:"comments"`
}

// StatusItem is one user's story collection as shown in the status tab.
type StatusItem struct {
	UserID   int             `json:"userId"`
	UserName string          `json:"userName"`
	Avatar   string          `json:"avatar"`
	Stories  []StatusStory   `json:"stories"`
	IsViewed bool            `json:"isViewed"`
	Timestamp time.Time      `json:"timestamp"`
	Comments []StatusComment `json:"comments"`
}

// CommentAdded is the incremental push for a new comment. Fields live
// on the frame root.
type CommentAdded struct {
	StatusID         int    `json:"statusId"`
	CommentID        int    `json:"commentId"`
	UserID           int    `json:"userId"`
	UserName         string `json:"userName"`
	UserProfileImage string `json:"userProfileImage"`
	Comment          string `json:"comment"`
}

// StatusLikeToggled is the incremental push for a like/unlike. Fields
// live on the frame root.
type StatusLikeToggled struct {
	StatusID int  `json:"statusId"`
	IsLiked  bool `json:"isLiked"`
}
