package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code,omitempty" binding:"omitempty,len=4"`
}

func TestStruct_ListsEveryViolatedField(t *testing.T) {
	err := Struct("sample", sample{Email: "nope", Code: "12345"})

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}

	want := map[string]string{"name": "required", "email": "email", "code": "len"}

	if len(verr.Fields) != len(want) {
		t.Fatalf("expected %d field errors, got %+v", len(want), verr.Fields)
	}

	for _, f := range verr.Fields {
		if want[f.Field] != f.Rule {
			t.Fatalf("field %q: got rule %q want %q", f.Field, f.Rule, want[f.Field])
		}
		if f.Message == "" {
			t.Fatalf("field %q should carry a message", f.Field)
		}
	}

	if verr.Entity != "sample" || !verr.Has("email") {
		t.Fatalf("unexpected error %+v", verr)
	}
}

type secretSample struct {
	Secret string `json:"secret" binding:"required,maxbytes=72"`
}

func TestStruct_MaxBytesCountsEncodedLength(t *testing.T) {
	if err := Struct("secret", secretSample{Secret: strings.Repeat("a", 72)}); err != nil {
		t.Fatalf("72 ascii bytes should pass, got %v", err)
	}

	// 40 runes but 80 bytes
	err := Struct("secret", secretSample{Secret: strings.Repeat("é", 40)})

	var verr *Error
	if !errors.As(err, &verr) || !verr.Has("secret") {
		t.Fatalf("expected secret to fail, got %v", err)
	}
	if verr.Fields[0].Rule != "maxbytes" || verr.Fields[0].Message != "must be at most 72 bytes" {
		t.Fatalf("unexpected field error %+v", verr.Fields[0])
	}
}

func TestStruct_ValidIsNil(t *testing.T) {
	if err := Struct("sample", sample{Name: "a", Email: "a@b.co"}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestGinValidator_IgnoresNonStructs(t *testing.T) {
	var v GinValidator

	if err := v.ValidateStruct(nil); err != nil {
		t.Fatalf("nil: %v", err)
	}

	var p *sample
	if err := v.ValidateStruct(p); err != nil {
		t.Fatalf("nil pointer: %v", err)
	}

	if err := v.ValidateStruct(&sample{}); FromValidator("sample", err) == nil {
		t.Fatalf("expected validator errors for empty struct, got %v", err)
	}
}
