package models

import (
	"strings"
	"time"
)

// Status is the binary state reported by a sensor
type Status string

const (
	StatusFire Status = "FIRE"
	StatusSafe Status = "SAFE"
)

// ParseStatus normalizes raw input to a Status. Input is trimmed and matched
// case-insensitively; ok is false for anything other than fire or safe.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusFire:
		return StatusFire, true
	case StatusSafe:
		return StatusSafe, true
	}
	return "", false
}

// StatusValue is the current process-wide sensor reading
type StatusValue struct {
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"timestamp"`
}

// AnonymousUsername is stamped on fire events reported without an identity
const AnonymousUsername = "Anonymous"

// FireEvent is a durable record of one fire occurrence. Latitude and
// Longitude are either both set or both nil. Status and CreatedAt never
// change after insert; the location and attribution fields are filled at
// most once.
type FireEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Status    Status    `gorm:"type:varchar(10);not null;index" json:"status"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Address   *string   `gorm:"type:varchar(255)" json:"address"`
	UserID    *uint     `gorm:"index" json:"userId"`
	Username  *string   `gorm:"type:varchar(100)" json:"username"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (FireEvent) TableName() string {
	return "sensor_logs"
}

// HasLocation reports whether both coordinates are set
func (e *FireEvent) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}
