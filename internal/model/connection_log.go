package model

import "time"

// ConnectionEvent is the kind of a connection log entry.
type ConnectionEvent string

const (
	ConnectionLogin       ConnectionEvent = "login"
	ConnectionLogout      ConnectionEvent = "logout"
	ConnectionFailedLogin ConnectionEvent = "failed_login"
)

// MaxConnectionLogs is how many entries are kept; older ones are evicted.
const MaxConnectionLogs = 1000

// PlaceholderAddress is recorded when the caller's address is unknown.
const PlaceholderAddress = "127.0.0.1"

// ConnectionLog represents a login, logout or failed login attempt.
// Entries are append-only.
type ConnectionLog struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    *uint           `json:"user_id,omitempty" gorm:"index"`
	UserEmail string          `json:"user_email" gorm:"size:255"`
	UserName  string          `json:"user_name" gorm:"size:255"`
	Type      ConnectionEvent `json:"type" gorm:"type:varchar(20);not null;index"`
	Timestamp time.Time       `json:"timestamp" gorm:"not null;index"`
	IPAddress string          `json:"ip_address" gorm:"size:45"`
}
