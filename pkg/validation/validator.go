package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-ddd-task-manager/internal/domain/entity"
)

// SpecialChars are the characters accepted by the hasspecial rule.
const SpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// Errors is a list of violated field rules. It is the single validation error
// type used by both request binding and the services.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, ", ")
}

var initOnce sync.Once

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the password and task status rules; strongpwd also caps the
//   byte length at bcrypt's limit.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("hasupper", hasRune(unicode.IsUpper))
		_ = v.RegisterValidation("haslower", hasRune(unicode.IsLower))
		_ = v.RegisterValidation("hasspecial", hasRune(func(r rune) bool {
			return strings.ContainsRune(SpecialChars, r)
		}))
		_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
			return entity.TaskStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			return err == nil && len(fl.Field().String()) <= n
		})
		v.RegisterAlias("strongpwd", "min=6,maxbytes="+strconv.Itoa(MaxPasswordBytes)+",hasupper,haslower,hasspecial")
	})
}

func hasRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), pred) >= 0
	}
}

// ToErrors converts binding errors into the field-rule list reported to clients.
// Each field contributes its first violated rule, in struct order.
func ToErrors(err error) Errors {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return Errors{"request body is required"}
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		if ute.Field != "" {
			return Errors{ute.Field + " has an invalid type"}
		}
		return Errors{"invalid json"}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Errors{"invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(Errors, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fe.Field()+" "+formatFieldError(fe))
		}
		return out
	}

	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}

	return Errors{"invalid payload"}
}

// Var validates a single value against tag and reports violations under field.
// Like ToErrors, only the first violated rule is reported.
func Var(field string, value any, tag string) Errors {
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(v.Var(value, tag), &verrs) {
		return nil
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, field+" "+formatFieldError(fe))
	}
	return out
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.ActualTag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Tag() == "strongpwd" {
			param = "6"
		}
		return "must be at least " + param + " characters"
	case "max":
		return "cannot exceed " + param + " characters"
	case "maxbytes":
		if fe.Tag() == "strongpwd" {
			param = strconv.Itoa(MaxPasswordBytes)
		}
		return "cannot exceed " + param + " bytes"
	case "hasupper":
		return "must contain at least one uppercase letter"
	case "haslower":
		return "must contain at least one lowercase letter"
	case "hasspecial":
		return "must contain at least one special character"
	case "taskstatus":
		names := make([]string, len(entity.TaskStatuses))
		for i, st := range entity.TaskStatuses {
			names[i] = string(st)
		}
		return "must be one of: " + strings.Join(names, ", ")
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "uuid":
		return "must be a valid UUID"
	default:
		if param != "" {
			return "failed the '" + fe.ActualTag() + "' rule (" + param + ")"
		}
		return "failed the '" + fe.ActualTag() + "' rule"
	}
}
