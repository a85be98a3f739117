package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	digitChars = "0123456789"

	// OTPLength is the number of digits in a password reset code.
	OTPLength = 6
)

var ErrInvalidOTPLength = errors.New("otp length must be positive")

// GenerateOTP returns a numeric code of the given length. Every position is an
// independent uniform draw from 0-9, so leading zeros are possible.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidOTPLength
	}

	result := make([]byte, length)
	for i := range result {
		ch, err := randChar(digitChars)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	return string(result), nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
