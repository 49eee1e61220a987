package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"questionnaire-api/internal/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// fail tags err with the failure kind of the current route and writes it.
func (h *Handler) fail(c *gin.Context, kind domain.ErrorKind, err error) {
	err = domain.Tag(kind, err)
	kind = domain.KindOf(err)

	h.logger.WithError(err).WithField("kind", kind.String()).Debug("request failed")
	if kind == domain.KindUnauthenticated {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(statusFor(kind), errorResponse{
		Error:  kind.String(),
		Detail: err.Error(),
	})
}

var (
	errInvalidBody = errors.New("invalid request body")
	errEmptyBody   = errors.New("request body is required")
)

var jsonFieldNames sync.Once

// useJSONFieldNames makes gin's validator report fields by their json names.
func useJSONFieldNames() {
	jsonFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindingError rewrites a ShouldBindJSON failure into a message that names
// request fields only.
func bindingError(err error) error {
	var (
		fieldErrs validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &fieldErrs):
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return errors.New(strings.Join(msgs, "; "))
	case errors.Is(err, io.EOF):
		return errEmptyBody
	case errors.As(err, &typeErr), errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return errInvalidBody
	case errors.Is(err, domain.ErrUnsupportedAnswer):
		return err
	}
	return errInvalidBody
}

func fieldMessage(fe validator.FieldError) string {
	// drop the leading struct name from e.g. createSurveyRequest.questions[0].question_text
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at least %s %s", field, fe.Param(), unitFor(fe.Kind()))
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at most %s %s", field, fe.Param(), unitFor(fe.Kind()))
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return field + " is invalid"
}

func unitFor(kind reflect.Kind) string {
	if kind == reflect.String {
		return "characters"
	}
	return "items"
}
