package validation

import "testing"

type sampleInput struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,min=2"`
	Level string `validate:"required,oneof=mentor hod principal"`
	Year  int    `validate:"gte=1,lte=6"`
}

func TestValidateStruct(t *testing.T) {
	v := NewValidator()

	valid := sampleInput{Email: "user@college.edu", Name: "A Name", Level: "hod", Year: 3}
	if err := v.ValidateStruct(valid); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	invalid := sampleInput{Email: "not-an-email", Name: "A", Level: "dean", Year: 9}
	err := v.ValidateStruct(invalid)
	if err == nil {
		t.Fatal("invalid input accepted")
	}

	fields := FormatValidationErrors(err)
	for _, f := range []string{"email", "name", "level", "year"} {
		if fields[f] == "" {
			t.Errorf("missing message for %s: %v", f, fields)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	for _, good := range []string{"user@college.edu", "a.b+c@dept.college.edu"} {
		if !ValidateEmail(good) {
			t.Errorf("ValidateEmail(%s) = false", good)
		}
	}
	for _, bad := range []string{"", "plain", "user@", "@college.edu", "user@college"} {
		if ValidateEmail(bad) {
			t.Errorf("ValidateEmail(%s) = true", bad)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@College.EDU "); got != "user@college.edu" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
