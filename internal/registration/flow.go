// Package registration models the register-then-verify flow as a small state
// machine. The transitions are pure: they map form input to the staged
// pending record plus the side effect to perform, so the flow can be tested
// without a live session backend or SMS provider.
package registration

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Pending is the staged, unconfirmed registration held in the visitor's
// session between the register and verify steps. Password is plaintext here
// and only here; it is hashed at commit time and never persisted raw.
type Pending struct {
	Username string
	Password string
	Mobile   string
	Code     string
}

// Form carries the submitted registration fields.
type Form struct {
	Username string
	Password string
	Mobile   string
}

// SMSRequest is the dispatch side effect produced by Begin.
type SMSRequest struct {
	To   string
	Body string
}

const (
	codeMin  = 100000
	codeSpan = 900000 // codes are uniform over [100000, 999999]
)

// GenerateCode draws a uniform six-digit verification code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// NormalizeMobile canonicalizes a submitted mobile number: numbers without a
// leading "+" get the default country code prepended.
func NormalizeMobile(mobile, defaultCountryCode string) string {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" || strings.HasPrefix(mobile, "+") {
		return mobile
	}
	return defaultCountryCode + mobile
}

// Begin stages a pending registration from the submitted form and the freshly
// generated code, and returns the SMS to dispatch. Resubmitting overwrites
// any previous staging wholesale.
func Begin(f Form, code, defaultCountryCode string) (Pending, SMSRequest) {
	mobile := NormalizeMobile(f.Mobile, defaultCountryCode)
	p := Pending{
		Username: strings.TrimSpace(f.Username),
		Password: f.Password,
		Mobile:   mobile,
		Code:     code,
	}
	return p, SMSRequest{
		To:   mobile,
		Body: fmt.Sprintf("Your Venuetix verification code is %s", code),
	}
}

// Matches reports whether the submitted code verifies the pending
// registration. Comparison is exact string equality; a mismatch leaves the
// staging untouched and the visitor may retry.
func (p Pending) Matches(submitted string) bool {
	return p.Code != "" && p.Code == submitted
}

// Staged reports whether a pending registration is actually in flight.
func (p Pending) Staged() bool {
	return p.Code != ""
}
