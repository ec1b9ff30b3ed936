// Package models contains data models for the blog service.
package models

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Field limits shared by the API and the web forms.
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 64
	MaxAboutMeLength  = 140
	AvatarSize        = 128
)

// ErrInvalidField is wrapped by every field validation failure.
var ErrInvalidField = errors.New("invalid field")

// Principal is an authenticated identity carried through a request.
type Principal interface {
	PrincipalID() int64
}

// Persistable is a gorm-backed entity with an explicit table name.
type Persistable interface {
	TableName() string
}

// User represents a registered author.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	AboutMe      string    `json:"about_me" gorm:"size:140"`
	LastSeen     time.Time `json:"last_seen"`
}

var (
	_ Principal   = (*User)(nil)
	_ Persistable = User{}
)

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// PrincipalID returns the identifier used as the token subject.
func (u *User) PrincipalID() int64 {
	return u.ID
}

// SetPassword replaces the stored credential with a bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: password: %v", ErrInvalidField, err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored credential.
// A user without a credential never matches.
func (u *User) CheckPassword(plain string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// Avatar returns the gravatar identicon URL for the user's email.
func (u *User) Avatar(size int) string {
	digest := md5.Sum([]byte(strings.ToLower(u.Email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(digest[:]), size)
}

// Validate checks the persisted field constraints.
func (u *User) Validate() error {
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if utf8.RuneCountInString(u.AboutMe) > MaxAboutMeLength {
		return fmt.Errorf("%w: about_me must be at most %d characters", ErrInvalidField, MaxAboutMeLength)
	}
	return nil
}

// ValidateUsername enforces the 1-64 character rule.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 1 || n > MaxUsernameLength {
		return fmt.Errorf("%w: username must be between 1 and %d characters", ErrInvalidField, MaxUsernameLength)
	}
	return nil
}

// ValidateEmail enforces length and address syntax.
func ValidateEmail(email string) error {
	n := utf8.RuneCountInString(email)
	if n < 1 || n > MaxEmailLength {
		return fmt.Errorf("%w: email must be between 1 and %d characters", ErrInvalidField, MaxEmailLength)
	}
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalidField)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// UserStats holds the derived counters of a user. They are computed per
// query and never stored.
type UserStats struct {
	PostCount     int64
	FollowerCount int64
	FollowedCount int64
}

// UserLinks are the hypermedia links of a user record.
type UserLinks struct {
	Self   string `json:"self"`
	Avatar string `json:"avatar"`
}

// UserDict is the public projection of a user.
type UserDict struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	AboutMe       string    `json:"about_me"`
	LastSeen      time.Time `json:"last_seen"`
	PostCount     int64     `json:"post_count"`
	FollowerCount int64     `json:"follower_count"`
	FollowedCount int64     `json:"followed_count"`
	Links         UserLinks `json:"_links"`
}

// ToDict builds the public record. selfURL is the canonical API location.
func (u *User) ToDict(stats UserStats, selfURL string) UserDict {
	return UserDict{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		AboutMe:       u.AboutMe,
		LastSeen:      u.LastSeen.UTC(),
		PostCount:     stats.PostCount,
		FollowerCount: stats.FollowerCount,
		FollowedCount: stats.FollowedCount,
		Links: UserLinks{
			Self:   selfURL,
			Avatar: u.Avatar(AvatarSize),
		},
	}
}

// FromDict copies the mutable fields present in data onto the user.
// Unknown fields and non-string values are ignored. The password is only
// honoured for new users.
func (u *User) FromDict(data map[string]any, isNewUser bool) error {
	if v, ok := data["username"].(string); ok {
		u.Username = strings.TrimSpace(v)
	}
	if v, ok := data["email"].(string); ok {
		u.Email = strings.TrimSpace(v)
	}
	if v, ok := data["about_me"].(string); ok {
		u.AboutMe = v
	}
	if isNewUser {
		if v, ok := data["password"].(string); ok {
			return u.SetPassword(v)
		}
	}
	return nil
}
