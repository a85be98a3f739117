package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// OTP is a one-time password reset code. There is at most one per email.
type OTP struct {
	Email     string
	Code      string
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (o OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// OTPCode is a submitted code. Clients send it either as a JSON string or a
// JSON number, so both decode into the same digits.
type OTPCode string

func (c *OTPCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = OTPCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("otp must be a string or a number")
	}
	*c = OTPCode(n.String())
	return nil
}

// Int parses the code as a base-10 integer.
func (c OTPCode) Int() (int, error) {
	return strconv.Atoi(string(c))
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email   string  `json:"email"`
	UserOTP OTPCode `json:"userOTP"`
}

type ResetPasswordRequest struct {
	Email       string  `json:"email"`
	UserOTP     OTPCode `json:"userOTP"`
	NewPassword string  `json:"newPassword"`
}
