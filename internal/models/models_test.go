package models

import (
	"testing"
	"time"
)

func TestUser_BeforeSave(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    User{Email: "mail@example.com", Login: "dolore", Name: "Nick", Birthday: time.Date(1946, 8, 20, 0, 0, 0, 0, time.UTC)},
			wantErr: false,
		},
		{
			name:    "Email without at sign",
			user:    User{Email: "mail.example.com", Login: "dolore"},
			wantErr: true,
		},
		{
			name:    "Empty email",
			user:    User{Email: "  ", Login: "dolore"},
			wantErr: true,
		},
		{
			name:    "Login with space",
			user:    User{Email: "mail@example.com", Login: "dolore ullamco"},
			wantErr: true,
		},
		{
			name:    "Empty login",
			user:    User{Email: "mail@example.com"},
			wantErr: true,
		},
		{
			name:    "Birthday in future",
			user:    User{Email: "mail@example.com", Login: "dolore", Birthday: time.Now().AddDate(1, 0, 0)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_BeforeSave_NameFallsBackToLogin(t *testing.T) {
	user := &User{Email: "mail@example.com", Login: "common"}

	if err := user.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave() error = %v", err)
	}
	if user.Name != "common" {
		t.Errorf("Name = %q, want %q", user.Name, "common")
	}
}

func TestFilm_BeforeSave(t *testing.T) {
	valid := func() Film {
		return Film{
			Name:        "nisi eiusmod",
			Description: "adipisicing",
			ReleaseDate: time.Date(1967, 3, 25, 0, 0, 0, 0, time.UTC),
			Duration:    100,
		}
	}

	tests := []struct {
		name    string
		mutate  func(f *Film)
		wantErr bool
	}{
		{name: "Valid film", mutate: func(f *Film) {}, wantErr: false},
		{name: "Empty name", mutate: func(f *Film) { f.Name = "" }, wantErr: true},
		{name: "Description too long", mutate: func(f *Film) { f.Description = string(make([]rune, 201)) }, wantErr: true},
		{name: "Released on first screening day", mutate: func(f *Film) { f.ReleaseDate = EarliestReleaseDate }, wantErr: false},
		{name: "Released before cinema", mutate: func(f *Film) { f.ReleaseDate = EarliestReleaseDate.AddDate(0, 0, -1) }, wantErr: true},
		{name: "Zero duration", mutate: func(f *Film) { f.Duration = 0 }, wantErr: true},
		{name: "Negative rate", mutate: func(f *Film) { f.Rate = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(&f)
			err := f.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilm_HasGenre(t *testing.T) {
	f := Film{Genres: []Genre{{ID: 1, Name: "Comedy"}, {ID: 4, Name: "Thriller"}}}

	if !f.HasGenre(4) {
		t.Error("HasGenre(4) = false, want true")
	}
	if f.HasGenre(2) {
		t.Error("HasGenre(2) = true, want false")
	}
}

func TestReview_BeforeSave(t *testing.T) {
	tests := []struct {
		name    string
		review  Review
		wantErr bool
	}{
		{name: "Valid review", review: Review{FilmID: 1, UserID: 1, Content: "This film is sooo good"}, wantErr: false},
		{name: "Blank content", review: Review{FilmID: 1, UserID: 1, Content: "   "}, wantErr: true},
		{name: "Missing film", review: Review{UserID: 1, Content: "text"}, wantErr: true},
		{name: "Missing author", review: Review{FilmID: 1, Content: "text"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.review.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFriendship_BeforeSave(t *testing.T) {
	tests := []struct {
		status  string
		wantErr bool
	}{
		{FriendshipStatusPending, false},
		{FriendshipStatusAccepted, false},
		{"rejected", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f := &Friendship{RequesterID: 1, ReceiverID: 2, Status: tt.status}
			err := f.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidVote(t *testing.T) {
	for rate, want := range map[int]bool{1: true, -1: true, 0: false, 2: false, -2: false} {
		if got := IsValidVote(rate); got != want {
			t.Errorf("IsValidVote(%d) = %v, want %v", rate, got, want)
		}
	}
}

func TestTableNames(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{User{}.TableName(), "users"},
		{Film{}.TableName(), "films"},
		{Genre{}.TableName(), "genres"},
		{FilmLike{}.TableName(), "film_likes"},
		{Review{}.TableName(), "reviews"},
		{ReviewVote{}.TableName(), "review_votes"},
		{Friendship{}.TableName(), "friendships"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("TableName() = %q, want %q", tt.got, tt.want)
		}
	}
}
