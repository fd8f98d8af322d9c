package models

import (
	"time"

	"gorm.io/gorm"
)

// Friendship is one directed friend request row. A single row per ordered
// (requester, receiver) pair; acceptance flips the status of the original
// requester's row instead of creating a mirror.
type Friendship struct {
	ID          uint       `gorm:"primaryKey"`
	RequesterID uint       `gorm:"not null;index:idx_friendship,unique"`
	ReceiverID  uint       `gorm:"not null;index:idx_friendship,unique;index:idx_friendship_receiver"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	RequestedAt time.Time  `gorm:"not null"`
	AcceptedAt  *time.Time `gorm:"default:NULL"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

// Friendship status constants
const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
)

func IsValidFriendshipStatus(status string) bool {
	return status == FriendshipStatusPending || status == FriendshipStatusAccepted
}

// BeforeSave rejects statuses outside the request protocol.
func (f *Friendship) BeforeSave(tx *gorm.DB) error {
	if !IsValidFriendshipStatus(f.Status) {
		return gorm.ErrInvalidData
	}
	return nil
}

func (Friendship) TableName() string {
	return "friendships"
}
