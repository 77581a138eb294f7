package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrReferralNotFound = errors.New("referral not found")
	ErrOpeningNotFound  = errors.New("opening not found")
	ErrResultNotFound   = errors.New("match results not found for referral")
)
