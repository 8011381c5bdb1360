package models

type Answer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false;not null" json:"is_correct"`
	QuestionID uint   `gorm:"not null" json:"question_id"`
}
