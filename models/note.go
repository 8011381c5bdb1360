package models

import "time"

type Note struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Title    string  `gorm:"size:200;not null" json:"title"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	Summary  *string `gorm:"type:text" json:"summary"` // generated, null until requested
	CourseID uint    `gorm:"not null" json:"course_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
