package services

import (
	"testing"
	"time"

	"github.com/klncollege/od-provider/model"
)

func validDutyInput() SubmitInput {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return SubmitInput{
		RequestType:         model.RequestTypeDuty,
		FullName:            "A Student",
		RegisterNumber:      "2126001",
		Department:          "CSE",
		Year:                3,
		Section:             "A",
		EventTitle:          "State level hackathon",
		StartDate:           start,
		EndDate:             start.AddDate(0, 0, 2),
		DeclarationAccepted: true,
	}
}

func TestValidateSubmitAcceptsValidDuty(t *testing.T) {
	if errs := ValidateSubmit(validDutyInput(), true); len(errs) != 0 {
		t.Errorf("unexpected field errors: %v", errs)
	}
}

func TestValidateSubmitDutyNeedsInvitation(t *testing.T) {
	errs := ValidateSubmit(validDutyInput(), false)
	if _, ok := errs["invitation"]; !ok {
		t.Errorf("missing invitation error, got %v", errs)
	}
}

func TestValidateSubmitLeaveNeedsReason(t *testing.T) {
	in := validDutyInput()
	in.RequestType = model.RequestTypeLeave

	errs := ValidateSubmit(in, false)
	if _, ok := errs["reason"]; !ok {
		t.Errorf("missing reason error, got %v", errs)
	}

	// Leave requests do not need an invitation
	if _, ok := errs["invitation"]; ok {
		t.Errorf("leave request should not require an invitation: %v", errs)
	}

	in.Reason = "Family function"
	if errs := ValidateSubmit(in, false); len(errs) != 0 {
		t.Errorf("unexpected field errors: %v", errs)
	}
}

func TestValidateSubmitDateOrdering(t *testing.T) {
	in := validDutyInput()
	in.EndDate = in.StartDate.AddDate(0, 0, -1)

	errs := ValidateSubmit(in, true)
	if _, ok := errs["end_date"]; !ok {
		t.Errorf("missing end_date error, got %v", errs)
	}

	// Single-day events are fine
	in.EndDate = in.StartDate
	if errs := ValidateSubmit(in, true); len(errs) != 0 {
		t.Errorf("unexpected field errors for single-day event: %v", errs)
	}
}

func TestValidateSubmitDeclaration(t *testing.T) {
	in := validDutyInput()
	in.DeclarationAccepted = false

	errs := ValidateSubmit(in, true)
	if _, ok := errs["declaration_accepted"]; !ok {
		t.Errorf("missing declaration error, got %v", errs)
	}
}

func TestValidateSubmitCollectsAllErrors(t *testing.T) {
	errs := ValidateSubmit(SubmitInput{}, false)

	for _, field := range []string{"request_type", "full_name", "register_number", "department", "year", "section", "event_title", "start_date", "end_date", "declaration_accepted"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected an error for %s, got %v", field, errs)
		}
	}
}

func TestValidateSubmitYearBounds(t *testing.T) {
	in := validDutyInput()
	in.Year = 7
	if errs := ValidateSubmit(in, true); errs["year"] == "" {
		t.Errorf("year 7 should be rejected, got %v", errs)
	}

	in.Year = 0
	if errs := ValidateSubmit(in, true); errs["year"] == "" {
		t.Errorf("year 0 should be rejected, got %v", errs)
	}
}
