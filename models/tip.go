package models

// Tip is one entry of the static eco tip catalog.
type Tip struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Tip string `gorm:"type:text;not null" json:"tip"`
}

// All lists every model managed by migrations, parents first.
func All() []interface{} {
	return []interface{}{&User{}, &TaskCompletion{}, &Reward{}, &Tip{}}
}
