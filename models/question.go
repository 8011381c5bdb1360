package models

type Question struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Text        string `gorm:"type:text;not null" json:"text"`
	Explanation string `gorm:"type:text" json:"explanation"`
	QuizID      uint   `gorm:"not null" json:"quiz_id"`

	Answers []Answer `gorm:"constraint:OnDelete:CASCADE;" json:"answers,omitempty"`
}
