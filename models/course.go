package models

type Course struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Notes   []Note  `gorm:"constraint:OnDelete:CASCADE;" json:"notes,omitempty"`
	Quizzes []Quiz  `gorm:"constraint:OnDelete:CASCADE;" json:"quizzes,omitempty"`
	Videos  []Video `gorm:"constraint:OnDelete:CASCADE;" json:"videos,omitempty"`
}
