package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// EarliestReleaseDate is the first public film screening; nothing is
// released before it.
var EarliestReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

const MaxDescriptionLength = 200

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

func (Genre) TableName() string {
	return "genres"
}

type Film struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:varchar(200)" json:"description"`
	ReleaseDate time.Time `gorm:"type:date;not null;index" json:"releaseDate"`
	Duration    int       `gorm:"not null" json:"duration"` // minutes
	// Rate is the number of users who like the film. Only the like
	// store changes it.
	Rate      int64     `gorm:"not null;default:0;index" json:"rate"`
	Genres    []Genre   `gorm:"many2many:film_genres;" json:"genres"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// BeforeSave hook for validation
func (f *Film) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(f.Name) == "" {
		return gorm.ErrInvalidData
	}
	if len([]rune(f.Description)) > MaxDescriptionLength {
		return gorm.ErrInvalidData
	}
	if f.ReleaseDate.Before(EarliestReleaseDate) {
		return gorm.ErrInvalidData
	}
	if f.Duration <= 0 {
		return gorm.ErrInvalidData
	}
	if f.Rate < 0 {
		return gorm.ErrInvalidData
	}
	return nil
}

// HasGenre reports whether the film is tagged with genreID.
func (f *Film) HasGenre(genreID uint) bool {
	for _, g := range f.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}

func (Film) TableName() string {
	return "films"
}

// FilmLike marks that a user likes a film. The unique index is what keeps
// a racing duplicate like from inserting twice.
type FilmLike struct {
	ID        uint      `gorm:"primaryKey"`
	FilmID    uint      `gorm:"not null;index:idx_film_like_unique,unique"`
	UserID    uint      `gorm:"not null;index:idx_film_like_unique,unique;index:idx_film_like_user"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (FilmLike) TableName() string {
	return "film_likes"
}

// DefaultGenres seeds the genre lookup table.
var DefaultGenres = []Genre{
	{ID: 1, Name: "Comedy"},
	{ID: 2, Name: "Drama"},
	{ID: 3, Name: "Cartoon"},
	{ID: 4, Name: "Thriller"},
	{ID: 5, Name: "Documentary"},
	{ID: 6, Name: "Action"},
}
