package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Review struct {
	ID         uint   `gorm:"primaryKey" json:"reviewId"`
	FilmID     uint   `gorm:"not null;index" json:"filmId"`
	UserID     uint   `gorm:"not null;index" json:"userId"`
	Content    string `gorm:"type:text;not null" json:"content"`
	IsPositive bool   `gorm:"not null" json:"isPositive"`
	// Usefulness is the sum of all votes; written only by the vote store.
	Usefulness int64     `gorm:"not null;default:0;index" json:"useful"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"-"`
}

// BeforeSave hook for validation
func (r *Review) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(r.Content) == "" {
		return gorm.ErrInvalidData
	}
	if r.FilmID == 0 || r.UserID == 0 {
		return gorm.ErrInvalidData
	}
	return nil
}

func (Review) TableName() string {
	return "reviews"
}

// Vote values a user can cast on a review.
const (
	VoteUseful  int = 1
	VoteUseless int = -1
)

func IsValidVote(rate int) bool {
	return rate == VoteUseful || rate == VoteUseless
}

// ReviewVote holds one user's signed vote on a review.
type ReviewVote struct {
	ID        uint      `gorm:"primaryKey"`
	ReviewID  uint      `gorm:"not null;index:idx_review_vote_unique,unique"`
	UserID    uint      `gorm:"not null;index:idx_review_vote_unique,unique"`
	Rate      int       `gorm:"not null;check:chk_review_vote_rate,rate IN (-1, 1)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ReviewVote) TableName() string {
	return "review_votes"
}
