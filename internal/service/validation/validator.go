package validation

import (
	"fmt"

	"github.com/zhouzirui/z-memo/backend/internal/model/memory"
)

// Kind classifies a contract violation.
type Kind string

const (
	MissingField Kind = "missing_field"
	WrongType    Kind = "wrong_type"
)

// RequiredFields lists the contract fields in the order they are checked.
var RequiredFields = []string{"topic", "summary", "fun_fact"}

// ValidationError reports the first contract violation found.
type ValidationError struct {
	Kind  Kind
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("reply violates contract: %s (expected object)", e.Kind)
	}
	return fmt.Sprintf("reply violates contract: %s %q", e.Kind, e.Field)
}

// Validate checks an already parsed value against the reply contract.
// Unknown fields are ignored; a JSON null counts as missing.
func Validate(value any) (memory.StructuredReply, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return memory.StructuredReply{}, &ValidationError{Kind: WrongType}
	}

	fields := make(map[string]string, len(RequiredFields))
	for _, name := range RequiredFields {
		raw, present := obj[name]
		if !present || raw == nil {
			return memory.StructuredReply{}, &ValidationError{Kind: MissingField, Field: name}
		}
		str, isString := raw.(string)
		if !isString {
			return memory.StructuredReply{}, &ValidationError{Kind: WrongType, Field: name}
		}
		fields[name] = str
	}

	return memory.StructuredReply{
		Topic:   fields["topic"],
		Summary: fields["summary"],
		FunFact: fields["fun_fact"],
	}, nil
}
