package leads

import (
	"time"

	"github.com/google/uuid"
)

// EmailVerified is a three-valued flag: a lead's email may never have been
// checked, or checked and found valid/invalid. §4.5 treats "unknown" as the
// trigger for running verify-email; any known value is skipped.
type EmailVerified int

const (
	EmailVerifiedUnknown EmailVerified = iota
	EmailVerifiedTrue
	EmailVerifiedFalse
)

func (e EmailVerified) Known() bool { return e != EmailVerifiedUnknown }
func (e EmailVerified) Bool() bool  { return e == EmailVerifiedTrue }

// Lead is the persisted record enrichment operations read from and write
// back to.
type Lead struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	FirstName      string        `json:"first_name" db:"first_name"`
	LastName       string        `json:"last_name" db:"last_name"`
	Email          string        `json:"email" db:"email"`
	CompanyWebsite *string       `json:"company_website,omitempty" db:"company_website"`
	JobTitle       *string       `json:"job_title,omitempty" db:"job_title"`
	PhoneNumber    *string       `json:"phone_number,omitempty" db:"phone_number"`
	EmailVerified  EmailVerified `json:"email_verified" db:"email_verified"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// FullName normalizes firstName + " " + lastName per §4.4 step 1.
func (l Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}

// NormalizedCompanyWebsite applies §4.4's "?? example.com" default.
func (l Lead) NormalizedCompanyWebsite() string {
	if l.CompanyWebsite == nil || *l.CompanyWebsite == "" {
		return "example.com"
	}
	return *l.CompanyWebsite
}

// NormalizedJobTitle applies §4.4's "?? Unknown" default.
func (l Lead) NormalizedJobTitle() string {
	if l.JobTitle == nil || *l.JobTitle == "" {
		return "Unknown"
	}
	return *l.JobTitle
}

// FieldUpdate carries the subset of fields UpdateFields may write.
type FieldUpdate struct {
	PhoneNumber   *string
	EmailVerified *EmailVerified
}
