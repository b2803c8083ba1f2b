package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"party/internal/party/models"
	dErrors "party/pkg/domain-errors"
)

type ValidatorSuite struct {
	suite.Suite
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func ptr[T any](v T) *T { return &v }

func (s *ValidatorSuite) validRequest() *models.PartyRequest {
	return &models.PartyRequest{
		CustID:    ptr(int64(1)),
		FirstName: ptr("Jane"),
		LastName:  ptr("Doe"),
		EmailID:   ptr("jane@x.com"),
		PhoneNo:   ptr("555-1234"),
	}
}

func (s *ValidatorSuite) requireInvalid(err error, message string) {
	s.T().Helper()
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(message, err.Error())
}

// TestCreateRules covers each ordered rule with a fixed counter-example.
func (s *ValidatorSuite) TestCreateRules() {
	s.Run("valid request passes", func() {
		s.NoError(ValidateCreate(s.validRequest()))
	})

	s.Run("nil request", func() {
		s.requireInvalid(ValidateCreate(nil), MsgRequestRequired)
	})

	s.Run("missing custId", func() {
		req := s.validRequest()
		req.CustID = nil
		s.requireInvalid(ValidateCreate(req), MsgCustIDRequired)
	})

	s.Run("missing first name", func() {
		req := s.validRequest()
		req.FirstName = nil
		s.requireInvalid(ValidateCreate(req), MsgFirstNameRequired)
	})

	s.Run("blank first name", func() {
		req := s.validRequest()
		req.FirstName = ptr("   ")
		s.requireInvalid(ValidateCreate(req), MsgFirstNameRequired)
	})

	s.Run("blank last name", func() {
		req := s.validRequest()
		req.LastName = ptr("\t")
		s.requireInvalid(ValidateCreate(req), MsgLastNameRequired)
	})

	s.Run("missing email", func() {
		req := s.validRequest()
		req.EmailID = nil
		s.requireInvalid(ValidateCreate(req), MsgEmailRequired)
	})

	s.Run("malformed email", func() {
		req := s.validRequest()
		req.EmailID = ptr("not-an-email")
		s.requireInvalid(ValidateCreate(req), MsgEmailFormat)
	})

	s.Run("email with single letter top-level label", func() {
		req := s.validRequest()
		req.EmailID = ptr("jane@x.c")
		s.requireInvalid(ValidateCreate(req), MsgEmailFormat)
	})

	s.Run("missing phone", func() {
		req := s.validRequest()
		req.PhoneNo = nil
		s.requireInvalid(ValidateCreate(req), MsgPhoneRequired)
	})

	s.Run("phone with letters", func() {
		req := s.validRequest()
		req.PhoneNo = ptr("abc")
		s.requireInvalid(ValidateCreate(req), MsgPhoneFormat)
	})

	s.Run("phone of 21 digits", func() {
		req := s.validRequest()
		req.PhoneNo = ptr(strings.Repeat("1", 21))
		s.requireInvalid(ValidateCreate(req), MsgPhoneFormat)
	})

	s.Run("phone of 6 digits", func() {
		req := s.validRequest()
		req.PhoneNo = ptr("123456")
		s.requireInvalid(ValidateCreate(req), MsgPhoneFormat)
	})
}

// TestRuleOrder verifies the first failing rule is the one reported.
func (s *ValidatorSuite) TestRuleOrder() {
	s.Run("custId reported before names", func() {
		req := &models.PartyRequest{EmailID: ptr("bad")}
		s.requireInvalid(ValidateCreate(req), MsgCustIDRequired)
	})

	s.Run("email format reported before phone", func() {
		req := s.validRequest()
		req.EmailID = ptr("bad")
		req.PhoneNo = ptr("bad")
		s.requireInvalid(ValidateCreate(req), MsgEmailFormat)
	})
}

// TestUpdateRules verifies partial-update semantics.
func (s *ValidatorSuite) TestUpdateRules() {
	s.Run("empty update passes", func() {
		s.NoError(ValidateUpdate(&models.PartyRequest{}))
	})

	s.Run("custId is optional", func() {
		req := s.validRequest()
		req.CustID = nil
		s.NoError(ValidateUpdate(req))
	})

	s.Run("single present field is checked", func() {
		s.NoError(ValidateUpdate(&models.PartyRequest{PhoneNo: ptr("+1 (555) 123-4567")}))
		s.requireInvalid(ValidateUpdate(&models.PartyRequest{PhoneNo: ptr("abc")}), MsgPhoneFormat)
	})

	s.Run("present but blank field fails", func() {
		s.requireInvalid(ValidateUpdate(&models.PartyRequest{LastName: ptr(" ")}), MsgLastNameRequired)
	})

	s.Run("nil request still fails", func() {
		s.requireInvalid(ValidateUpdate(nil), MsgRequestRequired)
	})
}

func (s *ValidatorSuite) TestFormats() {
	emails := map[string]bool{
		"jane@x.com":            true,
		"a.b+tag_1-x@sub.ex.io": true,
		"jane@x":                false,
		"@x.com":                false,
		"jane@@x.com":           false,
		" jane@x.com":           false,
		"jane doe@x.com":        false,
	}
	for email, want := range emails {
		s.Equal(want, IsValidEmail(email), "email %q", email)
	}

	phones := map[string]bool{
		"555-1234":              true,
		"+44 (20) 7946 0958":    true,
		strings.Repeat("1", 7):  true,
		strings.Repeat("1", 20): true,
		"555.1234":              false,
		"":                      false,
	}
	for phone, want := range phones {
		s.Equal(want, IsValidPhone(phone), "phone %q", phone)
	}
}
