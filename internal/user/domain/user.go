package domain

import (
	"strings"
	"time"
)

type ID string

// User is the account aggregate. Handle and email are stored lowercased and
// are globally unique. PasswordHash and RefreshToken never leave the service
// layer; Public strips them before anything is attached to a request or
// serialized.
type User struct {
	ID            ID
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string
	PasswordHash  string
	RefreshToken  string
	WatchHistory  []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the credential-free view of an account.
type PublicUser struct {
	ID            ID        `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullname"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ChannelProfile is the aggregated channel view: the public account plus
// subscription counts relative to the requesting viewer.
type ChannelProfile struct {
	PublicUser
	SubscriberCount   int  `json:"subscriberCount"`
	SubscribedToCount int  `json:"channelsSubscribedToCount"`
	IsSubscribed      bool `json:"isSubscribed"`
}

func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
