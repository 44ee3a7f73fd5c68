package handler

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestValidationMessage(t *testing.T) {
	v := validator.New()
	title := "x"
	tests := []struct {
		name string
		req  any
		want string
	}{
		{
			name: "missing fields use json names",
			req:  &LoginRequest{},
			want: "missing required field: email; missing required field: password",
		},
		{
			name: "email format",
			req: &RegisterRequest{Email: "admin", FirstName: "Ada", LastName: "Lovelace",
				Password: "p", PasswordConfirm: "p"},
			want: "invalid format for field email, expected: email address",
		},
		{
			name: "date and enum",
			req: &CreateBookRequest{Title: title, ISBN: "1", PublishDate: ptr("15/02/2024"),
				Status: "lost"},
			want: "invalid format for field publish_date, expected: YYYY-MM-DD; field status must be one of: available, borrowed, reserved",
		},
		{
			name: "string length",
			req:  &CreateBookRequest{Title: title, ISBN: "978-0-452-28423-4-extra"},
			want: "field isbn must be at most 17 characters",
		},
		{
			name: "query parameter bound",
			req:  &ListBooksQuery{Limit: 500},
			want: "field limit must be at most 100",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			assert.Equal(t, tt.want, validationMessage(tt.req, err))
		})
	}

	assert.Equal(t, "invalid request", validationMessage(&LoginRequest{}, assert.AnError))
}

func ptr[T any](v T) *T { return &v }
