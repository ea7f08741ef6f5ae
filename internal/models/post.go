package models

import "time"

// Post represents a post record in the database
type Post struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	Title     string    `json:"title" db:"title" gorm:"not null"`
	Text      string    `json:"text" db:"text" gorm:"not null"`
	CreatorID int       `json:"creatorId" db:"creator_id" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"not null;autoUpdateTime"`
}

// PostInput is the payload accepted by createPost.
type PostInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}
