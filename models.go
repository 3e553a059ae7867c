package connectify

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the lifecycle state of an account
type AccountStatus = string

const (
	// AccountStatusPending account created, email not yet verified
	AccountStatusPending AccountStatus = "pending"
	// AccountStatusVerified email ownership proven; terminal
	AccountStatusVerified AccountStatus = "verified"
	// AccountStatusDisabled operator lock-out
	AccountStatusDisabled AccountStatus = "disabled"
)

// User is the account model
type User struct {
	bun.BaseModel              `bun:"table:users,alias:usr"`
	ID                         uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username                   string        `bun:"username,notnull,unique" json:"username,omitempty"`
	FullName                   string        `bun:"full_name,notnull" json:"full_name,omitempty"`
	Email                      string        `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash               string        `bun:"password_hash" json:"password_hash,omitempty"`
	IsVerified                 bool          `bun:"is_verified" json:"is_verified,omitempty"`
	Status                     AccountStatus `bun:"status" json:"status,omitempty"`
	VerificationToken          *string       `bun:"verification_token" json:"verification_token,omitempty"`
	VerificationTokenExpiresAt *time.Time    `bun:"verification_token_expires_at,nullzero" json:"verification_token_expires_at,omitempty"`
	ResetPasswordToken         *string       `bun:"reset_password_token,unique" json:"reset_password_token,omitempty"`
	ResetPasswordTokenExpires  *time.Time    `bun:"reset_password_token_expires_at,nullzero" json:"reset_password_token_expires_at,omitempty"`
	ProfileImageURL            string        `bun:"profile_image_url" json:"profile_image_url,omitempty"`
	Bio                        string        `bun:"bio" json:"bio,omitempty"`
	CreatedAt                  *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt                  *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus backfills the lifecycle state for rows persisted before the
// status column existed.
func (u *User) EnsureStatus() {
	if u.Status != "" {
		return
	}
	if u.IsVerified {
		u.Status = AccountStatusVerified
	} else {
		u.Status = AccountStatusPending
	}
}

// Like relates a user to a track they liked
type Like struct {
	bun.BaseModel `bun:"table:likes,alias:lk"`
	UserID        uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	TrackID       uuid.UUID  `bun:"track_id,pk,type:uuid" json:"track_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Follow relates a follower to the account they follow
type Follow struct {
	bun.BaseModel `bun:"table:follows,alias:flw"`
	FollowerID    uuid.UUID  `bun:"follower_id,pk,type:uuid" json:"follower_id,omitempty"`
	FollowingID   uuid.UUID  `bun:"following_id,pk,type:uuid" json:"following_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Track is an uploaded audio track
type Track struct {
	bun.BaseModel `bun:"table:tracks,alias:trk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Artist        string     `bun:"artist" json:"artist,omitempty"`
	Duration      string     `bun:"duration" json:"duration,omitempty"`
	AudioFileURL  string     `bun:"audio_file_url,notnull" json:"audio_file_url,omitempty"`
	CoverImageURL string     `bun:"cover_image_url" json:"cover_image_url,omitempty"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author        *User      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	// HasLiked is a per-viewer projection, never persisted.
	HasLiked bool `bun:"-" json:"has_liked"`
}

// PlaylistVisibility controls who can see a playlist
type PlaylistVisibility = string

const (
	// VisibilityPublic anyone can view
	VisibilityPublic PlaylistVisibility = "public"
	// VisibilityPrivate author only
	VisibilityPrivate PlaylistVisibility = "private"
)

// Playlist is an ordered collection of track references
type Playlist struct {
	bun.BaseModel `bun:"table:playlists,alias:pls"`
	ID            uuid.UUID          `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string             `bun:"name,notnull" json:"name,omitempty"`
	CoverImageURL string             `bun:"cover_image_url" json:"cover_image_url,omitempty"`
	Visibility    PlaylistVisibility `bun:"visibility,notnull" json:"visibility,omitempty"`
	AuthorID      uuid.UUID          `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author        *User              `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	TrackIDs      []string           `bun:"track_ids,type:jsonb" json:"track_ids,omitempty"`
	CreatedAt     *time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AccountProjection is the account shape handed back to clients after
// verification and login. Token is nil for unverified logins.
type AccountProjection struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	ProfileImageURL string  `json:"profileImageURL"`
	IsVerified      bool    `json:"isVerified"`
	Token           *string `json:"token"`
}

// NewAccountProjection builds the client projection for a user. An empty
// token string maps to a nil Token.
func NewAccountProjection(u *User, token string) *AccountProjection {
	p := &AccountProjection{
		ID:              u.ID.String(),
		Username:        u.Username,
		FullName:        u.FullName,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
		IsVerified:      u.IsVerified,
	}
	if token != "" {
		p.Token = &token
	}
	return p
}

// UserProfile is the public profile projection with engagement counts.
type UserProfile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	ProfileImageURL string `json:"profileImageURL"`
	Bio             string `json:"bio"`
	TotalTracks     int    `json:"totalTracks"`
	TotalFollowers  int    `json:"totalFollowers"`
	TotalFollowings int    `json:"totalFollowings"`
	FollowedByMe    bool   `json:"followedByMe"`
}
