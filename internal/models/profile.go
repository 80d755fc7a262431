package models

import "time"

const ProfileKeyPrefix = "profile_"

type Profile struct {
	Id        string    `json:"id"`
	Username  *string   `json:"username"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileUpdate carries the fields of a profile save. Nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,max=50"`
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}
