package input

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeSignup(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{"valid", `{"email":"a@x.com","password":"secret"}`, false, ""},
		{"valid with name", `{"email":"a@x.com","password":"secret","name":"Ann"}`, false, ""},
		{"unknown fields ignored", `{"email":"a@x.com","password":"secret","extra":1}`, false, ""},
		{"missing email", `{"password":"secret"}`, true, "email"},
		{"bad email", `{"email":"nope","password":"secret"}`, true, "email"},
		{"one character password", `{"email":"a@x.com","password":"p"}`, false, ""},
		{"empty password", `{"email":"a@x.com","password":""}`, true, "password"},
		{"password over bcrypt limit", `{"email":"a@x.com","password":"` + strings.Repeat("x", 73) + `"}`, true, "password"},
		{"wrong type", `{"email":5,"password":"secret"}`, true, ""},
		{"not json", `email=a@x.com`, true, ""},
		{"empty body", ``, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in SignupInput
			err := Decode(strings.NewReader(tt.body), &in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Schema != "signupInput" {
				t.Errorf("expected schema signupInput, got %s", verr.Schema)
			}
			if tt.field != "" {
				if _, ok := verr.Fields[tt.field]; !ok {
					t.Errorf("expected failure on %q, got %v", tt.field, verr.Fields)
				}
			}
		})
	}
}

func TestDecodeTrimsEmail(t *testing.T) {
	var in SigninInput
	if err := Decode(strings.NewReader(`{"email":"  a@x.com ","password":"secret"}`), &in); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if in.Email != "a@x.com" {
		t.Errorf("expected trimmed email, got %q", in.Email)
	}
}

func TestDecodeBlogInputs(t *testing.T) {
	var create CreateBlogInput
	if err := Decode(strings.NewReader(`{"title":"t","content":"c"}`), &create); err != nil {
		t.Fatalf("create: %v", err)
	}
	if create.Title != "t" || create.Content != "c" {
		t.Errorf("unexpected create input: %+v", create)
	}

	var missing CreateBlogInput
	err := Decode(strings.NewReader(`{"title":"t"}`), &missing)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["content"] != "required" {
		t.Fatalf("expected content required, got %v", err)
	}

	var update UpdateBlogInput
	err = Decode(strings.NewReader(`{"title":"t","content":"c"}`), &update)
	if !errors.As(err, &verr) || verr.Fields["id"] != "required" {
		t.Fatalf("expected id required, got %v", err)
	}
	if !strings.Contains(err.Error(), "updateBlogInput") {
		t.Errorf("expected schema in message, got %q", err.Error())
	}
}
