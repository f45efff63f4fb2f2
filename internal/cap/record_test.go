package cap

import (
	"strings"
	"testing"
)

const validRecord = `{
	"cap_id": "x1",
	"timestamp": "2024-01-01T00:00:00Z",
	"domain": "ops",
	"context_mode": "auto",
	"advisor_of_record": "a1",
	"outputs": {},
	"cap_extensions": {},
	"integrity": {}
}`

func TestParseValidRecord(t *testing.T) {
	rec, instance, err := Parse([]byte(validRecord))
	if err != nil {
		t.Fatal(err)
	}
	if rec.CAPID != "x1" || rec.Domain != "ops" {
		t.Errorf("unexpected record fields: %+v", rec)
	}
	if instance == nil {
		t.Fatal("generic instance must be populated")
	}
	if err := rec.CheckRequired(); err != nil {
		t.Errorf("valid record must pass required checks: %v", err)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, _, err := Parse([]byte(`{"cap_id": `)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCheckRequiredNamesEveryMissingField(t *testing.T) {
	rec := &Record{CAPID: "x1", Timestamp: "  "}
	err := rec.CheckRequired()
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, field := range []string{"timestamp", "domain", "context_mode", "advisor_of_record"} {
		found := false
		for _, f := range ve.Fields {
			if f == field {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s among missing fields %v", field, ve.Fields)
		}
	}
	if !strings.Contains(err.Error(), "domain") {
		t.Errorf("error message must name the missing field: %s", err)
	}
}

func TestCheckRequiredWhitespaceIsEmpty(t *testing.T) {
	rec := &Record{
		CAPID: " ", Timestamp: "2024-01-01T00:00:00Z", Domain: "ops",
		ContextMode: "auto", AdvisorOfRecord: "a1",
	}
	if rec.CheckRequired() == nil {
		t.Fatal("whitespace-only cap_id must fail required check")
	}
}
