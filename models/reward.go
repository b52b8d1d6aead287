package models

import "time"

// Reward is an immutable record granted on the first task completion of a day.
type Reward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_rewards_user_created,priority:1;not null" json:"user_id"`
	Reward    string    `gorm:"column:reward;type:text;not null" json:"reward"`
	CreatedAt time.Time `gorm:"index:idx_rewards_user_created,priority:2" json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
