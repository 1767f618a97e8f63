package model

import "time"

// Subscription roles.
const (
	RoleStaff = "staff"
)

// PushSubscription holds the information for a browser push subscription.
// Staff subscriptions receive assistance requests.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Role      string    `gorm:"size:32;not null;default:staff;index"`
	CreatedAt time.Time `gorm:"not null"`
}
