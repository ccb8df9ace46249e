package httputil

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is shared by handlers; validator caches struct metadata.
var Validator = validator.New(validator.WithRequiredStructEnabled())

// ValidationError writes a JSON 400 listing the problems found in err.
func ValidationError(log *slog.Logger, w http.ResponseWriter, err error) {
	problems := Problems(err)
	log.Warn("validation failed", "problems", problems)
	WriteJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": problems,
	})
}

// Problems describes each failed field of a validator error. Any other error
// is reported as a single problem with its own text.
func Problems(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return problems
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
