package leads

import "testing"

func strPtr(s string) *string { return &s }

func TestLead_FullName(t *testing.T) {
	l := Lead{FirstName: "Ada", LastName: "Lovelace"}
	if got := l.FullName(); got != "Ada Lovelace" {
		t.Errorf("expected %q, got %q", "Ada Lovelace", got)
	}
}

func TestLead_NormalizedCompanyWebsite(t *testing.T) {
	cases := []struct {
		name string
		lead Lead
		want string
	}{
		{"nil defaults to example.com", Lead{}, "example.com"},
		{"empty string defaults to example.com", Lead{CompanyWebsite: strPtr("")}, "example.com"},
		{"present value passes through", Lead{CompanyWebsite: strPtr("acme.com")}, "acme.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.lead.NormalizedCompanyWebsite(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLead_NormalizedJobTitle(t *testing.T) {
	cases := []struct {
		name string
		lead Lead
		want string
	}{
		{"nil defaults to Unknown", Lead{}, "Unknown"},
		{"present value passes through", Lead{JobTitle: strPtr("Engineer")}, "Engineer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.lead.NormalizedJobTitle(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEmailVerified_KnownAndBool(t *testing.T) {
	if EmailVerifiedUnknown.Known() {
		t.Error("expected unknown to report unknown")
	}
	if !EmailVerifiedTrue.Known() || !EmailVerifiedTrue.Bool() {
		t.Error("expected true to be known and true")
	}
	if !EmailVerifiedFalse.Known() || EmailVerifiedFalse.Bool() {
		t.Error("expected false to be known and false")
	}
}
