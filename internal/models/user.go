package models

import "time"

// User is a directory record owned by the users service. This service only reads it.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	Name      string    `gorm:"not null" bson:"name" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Avatar    string    `bson:"avatar" json:"avatar"`
	Password  string    `bson:"password" json:"-"`
	CreatedAt time.Time `bson:"date" json:"date"`
}

// Profile is the display snapshot copied onto posts and comments.
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Profile returns the display snapshot of u.
func (u *User) Profile() *Profile {
	return &Profile{Name: u.Name, Avatar: u.Avatar}
}
