package connectify

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"
)

const (
	// VerificationTokenTTL is how long an emailed verification code stays valid.
	VerificationTokenTTL = 24 * time.Hour
	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL = time.Hour
)

const (
	verificationCodeMin  = 100_000
	verificationCodeSpan = 900_000
	resetTokenBytes      = 20
)

// NewVerificationCode mints a uniformly distributed 6-digit code.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeSpan))
	if err != nil {
		return "", err
	}
	return big.NewInt(verificationCodeMin + n.Int64()).String(), nil
}

// NewResetToken mints a password reset token: 20 random bytes, hex encoded.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
