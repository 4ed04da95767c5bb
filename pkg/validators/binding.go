package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Describe turns an error returned by gin's ShouldBind into a message that
// can be shown to the client, e.g. `"phone" is required`
func Describe(err error) string {
	if errors.Is(err, io.EOF) {
		return "Request body is empty"
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Sprintf(`"%s" has an invalid type`, typeErr.Field)
		}

		return "Invalid request body"
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf(`"%s" is required`, field)
	case "email":
		return fmt.Sprintf(`"%s" must be a valid email`, field)
	case "min":
		return fmt.Sprintf(`"%s" length must be at least %s characters long`, field, fe.Param())
	case "max":
		return fmt.Sprintf(`"%s" length must be less than or equal to %s characters long`, field, fe.Param())
	case "oneof":
		return fmt.Sprintf(`"%s" must be one of [%s]`, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf(`"%s" is invalid`, field)
	}
}
