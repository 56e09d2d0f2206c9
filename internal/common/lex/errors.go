// internal/common/lex/errors.go
package lex

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2/types"
	"github.com/aws/smithy-go"
)

// ErrorKind is the closed set of platform error classes the repair loop
// distinguishes. Only validation and serialization errors are repairable by
// rewriting the payload.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindValidation
	KindSerialization
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSerialization:
		return "serialization"
	default:
		return "other"
	}
}

// Repairable reports whether a corrected payload can fix this kind of error.
func (k ErrorKind) Repairable() bool {
	return k == KindValidation || k == KindSerialization
}

// Classify maps a platform error onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	var validation *types.ValidationException
	if errors.As(err, &validation) {
		return KindValidation
	}
	var serialization *smithy.SerializationError
	if errors.As(err, &serialization) {
		return KindSerialization
	}
	return KindOther
}

// IsNotFound reports whether the platform said the resource does not exist.
func IsNotFound(err error) bool {
	var missing *types.ResourceNotFoundException
	return errors.As(err, &missing)
}

// Message extracts the human-readable text the platform attached to err.
func Message(err error) string {
	var validation *types.ValidationException
	if errors.As(err, &validation) {
		return validation.ErrorMessage()
	}
	var serialization *smithy.SerializationError
	if errors.As(err, &serialization) && serialization.Err != nil {
		return serialization.Err.Error()
	}
	return err.Error()
}

// ErrWaitTimeout is returned when a bounded poll runs out of time.
var ErrWaitTimeout = errors.New("timed out waiting for platform")

// BuildFailedError reports a locale build that ended in Failed. Its text
// embeds the reasons as {"reason":{"failureReasons":[...]}} so they survive
// being flattened to a string by the scheduler.
type BuildFailedError struct {
	Status  string
	Reasons []string
}

type buildFailurePayload struct {
	Reason struct {
		Status         string   `json:"status,omitempty"`
		FailureReasons []string `json:"failureReasons"`
	} `json:"reason"`
}

func (e *BuildFailedError) Error() string {
	var p buildFailurePayload
	p.Reason.Status = e.Status
	p.Reason.FailureReasons = e.Reasons
	if p.Reason.FailureReasons == nil {
		p.Reason.FailureReasons = []string{}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("bot locale build failed with %d reason(s)", len(e.Reasons))
	}
	return "bot locale build failed: " + string(body)
}

// ExtractFailureReasons pulls the build failure reasons out of err. It
// understands a wrapped *BuildFailedError as well as a plain error whose text
// embeds the JSON payload. Anything else yields an empty, non-nil slice.
func ExtractFailureReasons(err error) []string {
	if err == nil {
		return []string{}
	}
	var bfe *BuildFailedError
	if errors.As(err, &bfe) {
		return append([]string{}, bfe.Reasons...)
	}

	text := err.Error()
	for start := strings.Index(text, "{"); start >= 0; {
		obj := firstJSONObject(text[start:])
		if obj == "" {
			break
		}
		var p buildFailurePayload
		if json.Unmarshal([]byte(obj), &p) == nil && p.Reason.FailureReasons != nil {
			return p.Reason.FailureReasons
		}
		next := strings.Index(text[start+1:], "{")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return []string{}
}

// firstJSONObject returns the balanced {...} prefix of s, skipping braces
// inside string literals.
func firstJSONObject(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
