package model

import "time"

// MatchJob is a request to (re)compute the ranked shortlist for one
// referral. JobID makes submission idempotent.
type MatchJob struct {
	JobID       string    // unique id for idempotency
	ReferralID  string    // referral to match
	SubmittedAt time.Time // when the job was accepted
}
