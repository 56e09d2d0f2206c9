package lex

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	validation := &types.ValidationException{Message: aws.String("bad slot")}
	serialization := &smithy.SerializationError{Err: errors.New("unexpected token")}

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindOther},
		{"validation", validation, KindValidation},
		{"wrapped validation", fmt.Errorf("create intent: %w", validation), KindValidation},
		{"serialization", serialization, KindSerialization},
		{"conflict", &types.ConflictException{Message: aws.String("exists")}, KindOther},
		{"plain", errors.New("boom"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == KindValidation || tt.want == KindSerialization, got.Repairable())
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "bad slot", Message(&types.ValidationException{Message: aws.String("bad slot")}))
	assert.Equal(t, "unexpected token", Message(&smithy.SerializationError{Err: errors.New("unexpected token")}))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestBuildFailedError_RoundTrip(t *testing.T) {
	err := fmt.Errorf("wait: %w", &BuildFailedError{Status: LocaleFailed, Reasons: []string{"Intent X invalid"}})

	assert.Equal(t, []string{"Intent X invalid"}, ExtractFailureReasons(err))

	flattened := errors.New(err.Error())
	assert.Equal(t, []string{"Intent X invalid"}, ExtractFailureReasons(flattened))
}

func TestExtractFailureReasons_Defaults(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"no json", errors.New("throttled")},
		{"json without reason", errors.New(`call failed {"code":500}`)},
		{"unbalanced", errors.New(`oops {"reason": {`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFailureReasons(tt.err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestExtractFailureReasons_SkipsUnrelatedObjects(t *testing.T) {
	err := errors.New(`meta {"id":"a{b}"} then {"reason":{"failureReasons":["Slot Y missing","Intent Z"]}}`)
	assert.Equal(t, []string{"Slot Y missing", "Intent Z"}, ExtractFailureReasons(err))
}

func TestBuildFailedError_EmptyReasons(t *testing.T) {
	err := &BuildFailedError{Status: LocaleFailed}
	assert.Contains(t, err.Error(), `"failureReasons":[]`)
	assert.Empty(t, ExtractFailureReasons(errors.New(err.Error())))
}
