// Package validation checks structural and format rules on inbound party
// requests. It is pure: no store access, no side effects.
package validation

import (
	"regexp"
	"strings"

	"party/internal/party/models"
	dErrors "party/pkg/domain-errors"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{7,20}$`)
)

// Messages returned to the caller, one per rule.
const (
	MsgRequestRequired   = "party request cannot be null"
	MsgCustIDRequired    = "customer ID is required"
	MsgFirstNameRequired = "first name is required"
	MsgLastNameRequired  = "last name is required"
	MsgEmailRequired     = "email ID is required"
	MsgEmailFormat       = "invalid email format"
	MsgPhoneRequired     = "phone number is required"
	MsgPhoneFormat       = "invalid phone number format"
)

// Mode selects create (all fields required) or update (present fields only).
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// rule is one ordered check. present reports whether the rule's subject is
// present; rules on absent fields are skipped in update mode.
type rule struct {
	present func(*models.PartyRequest) bool
	valid   func(*models.PartyRequest) bool
	message string
}

// rules run in order; the first failure wins.
var rules = []rule{
	{
		present: func(r *models.PartyRequest) bool { return r.CustID != nil },
		valid:   func(r *models.PartyRequest) bool { return r.CustID != nil },
		message: MsgCustIDRequired,
	},
	{
		present: func(r *models.PartyRequest) bool { return r.FirstName != nil },
		valid:   func(r *models.PartyRequest) bool { return notBlank(r.FirstName) },
		message: MsgFirstNameRequired,
	},
	{
		present: func(r *models.PartyRequest) bool { return r.LastName != nil },
		valid:   func(r *models.PartyRequest) bool { return notBlank(r.LastName) },
		message: MsgLastNameRequired,
	},
	{
		present: func(r *models.PartyRequest) bool { return r.EmailID != nil },
		valid:   func(r *models.PartyRequest) bool { return notBlank(r.EmailID) },
		message: MsgEmailRequired,
	},
	{
		present: func(r *models.PartyRequest) bool { return r.EmailID != nil },
		valid:   func(r *models.PartyRequest) bool { return IsValidEmail(*r.EmailID) },
		message: MsgEmailFormat,
	},
	{
		present: func(r *models.PartyRequest) bool { return r.PhoneNo != nil },
		valid:   func(r *models.PartyRequest) bool { return notBlank(r.PhoneNo) },
		message: MsgPhoneRequired,
	},
	{
		present: func(r *models.PartyRequest) bool { return r.PhoneNo != nil },
		valid:   func(r *models.PartyRequest) bool { return IsValidPhone(*r.PhoneNo) },
		message: MsgPhoneFormat,
	},
}

// Validate checks req under mode and returns a CodeValidation error for the
// first rule that fails, or nil.
func Validate(req *models.PartyRequest, mode Mode) error {
	if req == nil {
		return dErrors.New(dErrors.CodeValidation, MsgRequestRequired)
	}
	for _, r := range rules {
		if mode == ModeUpdate && !r.present(req) {
			continue
		}
		if !r.valid(req) {
			return dErrors.New(dErrors.CodeValidation, r.message)
		}
	}
	return nil
}

// ValidateCreate requires every field.
func ValidateCreate(req *models.PartyRequest) error {
	return Validate(req, ModeCreate)
}

// ValidateUpdate checks only the fields present in req.
func ValidateUpdate(req *models.PartyRequest) error {
	return Validate(req, ModeUpdate)
}

// IsValidEmail matches the raw value; surrounding whitespace is not tolerated.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone accepts 7 to 20 characters of digits, '+', '-', '(', ')' and whitespace.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func notBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
