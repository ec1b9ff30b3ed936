package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxPostLength bounds the body of a post.
const MaxPostLength = 140

// Post is a short entry authored by one user.
type Post struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index;not null"`
	UserID    int64     `json:"user_id" gorm:"index;not null"`
	Author    *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the database table name for the Post model.
func (Post) TableName() string {
	return "posts"
}

// NewPost builds a post owned by userID, stamped now in UTC.
func NewPost(userID int64, body string, now time.Time) (*Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidField)
	}
	if utf8.RuneCountInString(body) > MaxPostLength {
		return nil, fmt.Errorf("%w: body must be at most %d characters", ErrInvalidField, MaxPostLength)
	}
	return &Post{
		Body:      body,
		Timestamp: now.UTC(),
		UserID:    userID,
	}, nil
}

// PostDict is the public projection of a post with its author.
type PostDict struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	AuthorID  int64     `json:"author_id"`
	Avatar    string    `json:"avatar,omitempty"`
}

// ToDict projects the post. Author must be preloaded for the author fields.
func (p *Post) ToDict() PostDict {
	d := PostDict{
		ID:        p.ID,
		Body:      p.Body,
		Timestamp: p.Timestamp.UTC(),
		AuthorID:  p.UserID,
	}
	if p.Author != nil {
		d.Author = p.Author.Username
		d.Avatar = p.Author.Avatar(36)
	}
	return d
}
