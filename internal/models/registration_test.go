package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() *RegistrationCreateRequest {
	return &RegistrationCreateRequest{
		TeamName: "Foo",
		Members: []TeamMember{
			{Name: "Alice", Email: "a@x.com"},
		},
		Modules: []string{"AI"},
	}
}

func TestRegistrationCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *RegistrationCreateRequest)
		wantErr string
	}{
		{
			name:   "valid request",
			mutate: func(req *RegistrationCreateRequest) {},
		},
		{
			name:    "blank team name",
			mutate:  func(req *RegistrationCreateRequest) { req.TeamName = "   " },
			wantErr: "team name is required",
		},
		{
			name:    "team name too long",
			mutate:  func(req *RegistrationCreateRequest) { req.TeamName = strings.Repeat("x", 256) },
			wantErr: "less than 255",
		},
		{
			name:    "no members",
			mutate:  func(req *RegistrationCreateRequest) { req.Members = nil },
			wantErr: "at least one team member",
		},
		{
			name: "four members",
			mutate: func(req *RegistrationCreateRequest) {
				req.Members = []TeamMember{
					{Name: "A", Email: "a@x.com"},
					{Name: "B", Email: "b@x.com"},
					{Name: "C", Email: "c@x.com"},
					{Name: "D", Email: "d@x.com"},
				}
			},
			wantErr: "at most 3 members",
		},
		{
			name:    "member without name",
			mutate:  func(req *RegistrationCreateRequest) { req.Members[0].Name = "" },
			wantErr: "member 1: name is required",
		},
		{
			name:    "member without email",
			mutate:  func(req *RegistrationCreateRequest) { req.Members[0].Email = "" },
			wantErr: "member 1: email is required",
		},
		{
			name: "duplicate member emails",
			mutate: func(req *RegistrationCreateRequest) {
				req.Members = []TeamMember{
					{Name: "Alice", Email: "a@x.com"},
					{Name: "Bob", Email: "a@x.com"},
				}
			},
			wantErr: "duplicate email",
		},
		{
			name: "duplicate member emails differing in case",
			mutate: func(req *RegistrationCreateRequest) {
				req.Members = []TeamMember{
					{Name: "Alice", Email: "A@x.com"},
					{Name: "Bob", Email: "a@X.com"},
				}
			},
			wantErr: "duplicate email",
		},
		{
			name:    "bad email format",
			mutate:  func(req *RegistrationCreateRequest) { req.Members[0].Email = "not-an-email" },
			wantErr: "email format is invalid",
		},
		{
			name: "no modules at all",
			mutate: func(req *RegistrationCreateRequest) {
				req.Modules = nil
				req.Competition = ""
			},
			wantErr: ErrNoModules.Error(),
		},
		{
			name: "legacy competition field counts as a module",
			mutate: func(req *RegistrationCreateRequest) {
				req.Modules = nil
				req.Competition = "AI"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNormalizedModules(t *testing.T) {
	tests := []struct {
		name string
		req  RegistrationCreateRequest
		want []string
	}{
		{
			name: "modules win over competition",
			req:  RegistrationCreateRequest{Modules: []string{"AI", "Web"}, Competition: "Robotics"},
			want: []string{"AI", "Web"},
		},
		{
			name: "competition folds in when modules empty",
			req:  RegistrationCreateRequest{Competition: "AI"},
			want: []string{"AI"},
		},
		{
			name: "whitespace entries dropped",
			req:  RegistrationCreateRequest{Modules: []string{" AI ", "", "  "}},
			want: []string{"AI"},
		},
		{
			name: "nothing selected",
			req:  RegistrationCreateRequest{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.NormalizedModules())
		})
	}
}

func TestPaymentSubmissionValidate(t *testing.T) {
	valid := PaymentSubmission{TeamName: "Foo", TransactionID: "TX1", Competition: "AI"}
	assert.NoError(t, valid.Validate())

	noTx := valid
	noTx.TransactionID = ""
	assert.Error(t, noTx.Validate())

	noIdentifier := valid
	noIdentifier.TeamName = ""
	noIdentifier.Email = ""
	assert.Error(t, noIdentifier.Validate())

	byEmail := valid
	byEmail.TeamName = ""
	byEmail.Email = "a@x.com"
	assert.NoError(t, byEmail.Validate())

	noCompetition := valid
	noCompetition.Competition = ""
	assert.Error(t, noCompetition.Validate())
}

func TestParseDiscountCodesUsed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []DiscountCodeUse
		wantErr bool
	}{
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "object form",
			raw:  `{"AI": "EARLY"}`,
			want: []DiscountCodeUse{{Module: "AI", Code: "EARLY"}},
		},
		{
			name: "array form",
			raw:  `[{"module": "AI", "code": "EARLY"}, {"module": "Web", "code": "TEAM10"}]`,
			want: []DiscountCodeUse{{Module: "AI", Code: "EARLY"}, {Module: "Web", Code: "TEAM10"}},
		},
		{
			name: "entries missing fields are skipped",
			raw:  `[{"module": "AI"}, {"code": "EARLY"}]`,
			want: nil,
		},
		{
			name:    "malformed JSON is rejected",
			raw:     `{"AI": "EARLY"`,
			wantErr: true,
		},
		{
			name:    "wrong value types are rejected",
			raw:     `{"AI": 5}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDiscountCodesUsed(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, PaymentPending.CanSubmitPayment())
	assert.True(t, PaymentSubmitted.CanSubmitPayment())
	assert.True(t, PaymentRejected.CanSubmitPayment())
	assert.False(t, PaymentApproved.CanSubmitPayment())

	assert.True(t, PaymentPending.Valid())
	assert.False(t, PaymentStatus("cancelled").Valid())

	// A decision may repeat itself but never flip the other decision
	assert.Contains(t, ReviewFrom(PaymentApproved), PaymentSubmitted)
	assert.Contains(t, ReviewFrom(PaymentApproved), PaymentApproved)
	assert.NotContains(t, ReviewFrom(PaymentApproved), PaymentRejected)
}

func TestMemberEmails(t *testing.T) {
	registration := EventRegistration{
		Members: []TeamMember{
			{Name: "Alice", Email: "a@x.com"},
			{Name: "Bob", Email: ""},
			{Name: "Carol", Email: "c@x.com"},
		},
	}
	assert.Equal(t, []string{"a@x.com", "c@x.com"}, registration.MemberEmails())
}
