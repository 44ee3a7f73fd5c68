// Package handler exposes the library services over HTTP.
package handler

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libraryhub/internal/errors"
)

// dateLayout is the wire format of calendar dates in request bodies.
const dateLayout = "2006-01-02"

// MessageResponse is returned by endpoints without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// fail converts a service error into an HTTP error carrying an ErrorResponse.
func fail(c echo.Context, err error) error {
	mapped := errors.MapErrorToHTTP(err)
	if mapped.StatusCode == http.StatusInternalServerError {
		slog.Error("request failed",
			"layer", "handler",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// bind decodes the request into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(validationMessage(req, err), "VALIDATION_ERROR")
	}
	return nil
}

// validationMessage turns validator output into one line naming the JSON
// fields at fault.
func validationMessage(req any, err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(jsonName(req, fe.StructField()), fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field: " + field
	case "email":
		return fmt.Sprintf("invalid format for field %s, expected: email address", field)
	case "url":
		return fmt.Sprintf("invalid format for field %s, expected: URL", field)
	case "hexcolor":
		return fmt.Sprintf("invalid format for field %s, expected: hex colour such as #3B82F6", field)
	case "datetime":
		layout := fe.Param()
		if layout == dateLayout {
			layout = "YYYY-MM-DD"
		}
		return fmt.Sprintf("invalid format for field %s, expected: %s", field, layout)
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("field %s must be at least %s%s", field, fe.Param(), lengthUnit(fe))
	case "max", "lte":
		return fmt.Sprintf("field %s must be at most %s%s", field, fe.Param(), lengthUnit(fe))
	case "gt":
		return fmt.Sprintf("field %s must be greater than %s", field, fe.Param())
	}
	return "invalid value for field " + field
}

func lengthUnit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}

// jsonName returns the name a client uses for the named field of req: its
// JSON key or query parameter, falling back to the Go field name.
func jsonName(req any, field string) string {
	t := reflect.TypeOf(req)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return field
	}
	sf, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	for _, key := range []string{"json", "query"} {
		name, _, _ := strings.Cut(sf.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return field
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id", "INVALID_ID")
	}
	return uint(id), nil
}

// parseDate parses an optional date. Callers validate the layout first.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
