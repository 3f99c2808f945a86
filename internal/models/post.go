// Package models contains the domain types shared by the store, service and HTTP layers.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is the aggregate root. Likes and comments live inside the post record
// so that a single row or document update persists the whole aggregate.
type Post struct {
	ID       string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID   string    `gorm:"not null;index" bson:"user" json:"user"`
	Text     string    `gorm:"not null" bson:"text" json:"text"`
	Name     string    `bson:"name" json:"name"`
	Avatar   string    `bson:"avatar" json:"avatar"`
	Likes    []Like    `gorm:"serializer:json;type:text" bson:"likes" json:"likes"`
	Comments []Comment `gorm:"serializer:json;type:text" bson:"comments" json:"comments"`
	// CreatedAt drives the newest-first listing order.
	CreatedAt time.Time `gorm:"index" bson:"date" json:"date"`
}

// Like records that a user liked a post. A user appears at most once per post.
type Like struct {
	UserID string `bson:"user" json:"user"`
}

// Comment is a value inside a post; it has no lifecycle of its own.
type Comment struct {
	ID        string    `bson:"_id" json:"_id"`
	UserID    string    `bson:"user" json:"user"`
	Text      string    `bson:"text" json:"text"`
	Name      string    `bson:"name" json:"name"`
	Avatar    string    `bson:"avatar" json:"avatar"`
	CreatedAt time.Time `bson:"date" json:"date"`
}

// Normalize replaces nil sub-collections with empty ones so they always
// serialize as JSON arrays.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// AfterFind is a gorm hook.
func (p *Post) AfterFind(*gorm.DB) error {
	p.Normalize()
	return nil
}

// LikedBy reports whether userID already has a like on the post.
func (p *Post) LikedBy(userID string) bool {
	return p.likeIndex(userID) >= 0
}

func (p *Post) likeIndex(userID string) int {
	for i, l := range p.Likes {
		if l.UserID == userID {
			return i
		}
	}
	return -1
}

// AddLike puts a like for userID at the front of the list.
func (p *Post) AddLike(userID string) {
	p.Likes = append([]Like{{UserID: userID}}, p.Likes...)
}

// RemoveLike drops the first like by userID and reports whether one existed.
func (p *Post) RemoveLike(userID string) bool {
	i := p.likeIndex(userID)
	if i < 0 {
		return false
	}
	p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
	return true
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// AddComment puts c at the front of the comment list.
func (p *Post) AddComment(c Comment) {
	p.Comments = append([]Comment{c}, p.Comments...)
}

// RemoveComment removes the first comment matching both id and author.
func (p *Post) RemoveComment(id, userID string) bool {
	for i, c := range p.Comments {
		if c.ID == id && c.UserID == userID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}
