package models

import "time"

// TaskCompletion marks that a user completed the task of the day for one calendar date.
// Date is a "2006-01-02" string so (user_id, date) can carry a plain unique index.
type TaskCompletion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tasks_user_date,priority:1" json:"user_id"`
	Date      string    `gorm:"size:10;not null;uniqueIndex:idx_tasks_user_date,priority:2" json:"date"`
	Done      bool      `gorm:"not null;default:true" json:"done"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName keeps the historical table name.
func (TaskCompletion) TableName() string {
	return "tasks"
}
