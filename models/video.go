package models

import "time"

type Video struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"size:200;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	StorageID   string   `gorm:"size:255;not null" json:"storage_id"`
	StorageURL  string   `gorm:"size:512;not null" json:"storage_url"`
	Duration    *float64 `json:"duration"` // seconds, positive when present
	Transcript  *string  `gorm:"type:text" json:"transcript"`
	CourseID    uint     `gorm:"not null" json:"course_id"`

	IsSynchronized bool      `gorm:"default:true" json:"is_synchronized"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
