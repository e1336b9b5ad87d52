package models

import "time"

// UserKeyPair is the single RSA key pair of a user, both halves Base64.
type UserKeyPair struct {
	UserID     int64
	PublicKey  string
	PrivateKey string
	CreatedAt  time.Time
}
