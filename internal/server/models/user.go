package models

import "time"

// User is an account. PasswordHash is nil for users provisioned through an
// external identity provider. BlockIDs is the owned-block set and is only
// populated by lookups that ask for it.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Name         *string
	Picture      *string
	BlockIDs     []string
	CreatedAt    time.Time
}

// Redacted returns a copy of u that is safe to hand to callers.
func (u *User) Redacted() *User {
	c := *u
	c.PasswordHash = nil
	c.BlockIDs = append([]string(nil), u.BlockIDs...)
	return &c
}
