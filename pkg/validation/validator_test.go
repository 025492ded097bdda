package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type registerPayload struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpwd"`
}

type taskPayload struct {
	Title  string  `json:"title" binding:"required,max=10"`
	Status *string `json:"status" binding:"omitempty,taskstatus"`
}

func strptr(s string) *string { return &s }

func TestToErrorsFromValidator(t *testing.T) {
	Init()

	tests := []struct {
		name string
		obj  any
		want Errors
	}{
		{
			name: "valid registration",
			obj:  &registerPayload{Username: "alice", Email: "a@x.com", Password: "Abcdef1!"},
			want: nil,
		},
		{
			name: "every field broken",
			obj:  &registerPayload{Username: "al", Email: "nope", Password: ""},
			want: Errors{
				"username must be at least 3 characters",
				"email must be a valid email",
				"password is required",
			},
		},
		{
			name: "short password",
			obj:  &registerPayload{Username: "alice", Email: "a@x.com", Password: "Ab!"},
			want: Errors{"password must be at least 6 characters"},
		},
		{
			name: "longer than bcrypt accepts",
			obj:  &registerPayload{Username: "alice", Email: "a@x.com", Password: "Aa!" + strings.Repeat("x", 80)},
			want: Errors{"password cannot exceed 72 bytes"},
		},
		{
			name: "exactly 72 bytes",
			obj:  &registerPayload{Username: "alice", Email: "a@x.com", Password: "Aa!" + strings.Repeat("x", 69)},
			want: nil,
		},
		{
			name: "no uppercase",
			obj:  &registerPayload{Username: "alice", Email: "a@x.com", Password: "abcdef!"},
			want: Errors{"password must contain at least one uppercase letter"},
		},
		{
			name: "no lowercase",
			obj:  &registerPayload{Username: "alice", Email: "a@x.com", Password: "ABCDEF!"},
			want: Errors{"password must contain at least one lowercase letter"},
		},
		{
			name: "no special character",
			obj:  &registerPayload{Username: "alice", Email: "a@x.com", Password: "Abcdef1"},
			want: Errors{"password must contain at least one special character"},
		},
		{
			name: "bad status and long title",
			obj:  &taskPayload{Title: "way too long title", Status: strptr("done")},
			want: Errors{
				"title cannot exceed 10 characters",
				"status must be one of: pending, in_progress, completed",
			},
		},
		{
			name: "nil status is skipped",
			obj:  &taskPayload{Title: "ok"},
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.obj)
			got := ToErrors(err)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToErrors() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToErrorsDecodeFailures(t *testing.T) {
	t.Parallel()

	var target struct {
		Title string `json:"title"`
	}
	typeErr := json.Unmarshal([]byte(`{"title": 5}`), &target)
	syntaxErr := json.Unmarshal([]byte(`{"title": `), &target)

	tests := []struct {
		name string
		err  error
		want Errors
	}{
		{name: "nil", err: nil, want: nil},
		{name: "empty body", err: io.EOF, want: Errors{"request body is required"}},
		{name: "wrong type", err: typeErr, want: Errors{"title has an invalid type"}},
		{name: "syntax", err: syntaxErr, want: Errors{"invalid json"}},
		{name: "wrapped errors", err: fmt.Errorf("bind: %w", Errors{"a", "b"}), want: Errors{"a", "b"}},
		{name: "unknown", err: errors.New("boom"), want: Errors{"invalid payload"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ToErrors(tt.err); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToErrors() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestErrorsError(t *testing.T) {
	t.Parallel()

	err := Errors{"title is required", "status must be one of: pending, in_progress, completed"}
	want := "title is required, status must be one of: pending, in_progress, completed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestVar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		value any
		tag   string
		want  Errors
	}{
		{name: "ok", field: "email", value: "a@x.com", tag: "required,email", want: nil},
		{name: "first rule only", field: "username", value: "", tag: "required,min=3", want: Errors{"username is required"}},
		{name: "alias", field: "password", value: "abcdef!", tag: "required,strongpwd", want: Errors{"password must contain at least one uppercase letter"}},
		{name: "bytes not runes", field: "password", value: "Aa!" + strings.Repeat("é", 35), tag: "strongpwd", want: Errors{"password cannot exceed 72 bytes"}},
		{name: "rune length", field: "title", value: "ééé", tag: "max=3", want: nil},
		{name: "status", field: "status", value: "done", tag: "taskstatus", want: Errors{"status must be one of: pending, in_progress, completed"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Var(tt.field, tt.value, tt.tag); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Var() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
