package models

import "time"

// Avatar describes the stored profile image: the asset store key plus
// the public URL it is served from.
type Avatar struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	Country          string     `json:"country,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	Pronoun          string     `json:"pronoun,omitempty"`
	Bio              string     `json:"bio,omitempty"`
	Avatar           *Avatar    `json:"avatar,omitempty"`
	PasswordHash     string     `json:"-"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
