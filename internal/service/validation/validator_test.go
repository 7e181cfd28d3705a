package validation

import (
	"errors"
	"testing"
)

func TestValidateAcceptsContract(t *testing.T) {
	reply, err := Validate(map[string]any{
		"topic":    "tides",
		"summary":  "the moon pulls the oceans",
		"fun_fact": "there are two high tides a day",
		"extra":    42,
	})
	if err != nil {
		t.Fatalf("Validate err: %v", err)
	}
	if reply.Topic != "tides" || reply.FunFact != "there are two high tides a day" {
		t.Fatalf("unexpected reply: %#v", reply)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name  string
		value any
		kind  Kind
		field string
	}{
		{"not an object", []any{"topic"}, WrongType, ""},
		{"string payload", "not json", WrongType, ""},
		{"missing topic", map[string]any{"summary": "s", "fun_fact": "f"}, MissingField, "topic"},
		{"missing summary", map[string]any{"topic": "t", "fun_fact": "f"}, MissingField, "summary"},
		{"missing fun_fact", map[string]any{"topic": "t", "summary": "s"}, MissingField, "fun_fact"},
		{"null summary", map[string]any{"topic": "t", "summary": nil, "fun_fact": "f"}, MissingField, "summary"},
		{"numeric topic", map[string]any{"topic": 1.0, "summary": "s", "fun_fact": "f"}, WrongType, "topic"},
		{"object fun_fact", map[string]any{"topic": "t", "summary": "s", "fun_fact": map[string]any{}}, WrongType, "fun_fact"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.value)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Kind != tc.kind || verr.Field != tc.field {
				t.Fatalf("got %s/%q, want %s/%q", verr.Kind, verr.Field, tc.kind, tc.field)
			}
		})
	}
}
