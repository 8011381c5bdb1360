package models

type Quiz struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CourseID    uint   `gorm:"not null" json:"course_id"`

	Questions []Question `gorm:"constraint:OnDelete:CASCADE;" json:"questions,omitempty"`
}
