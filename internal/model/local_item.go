package model

import "time"

// LocalItem is one key/value pair of the shopper's local storage. The
// checkout flow writes the basket and total here for the receipt view.
type LocalItem struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
