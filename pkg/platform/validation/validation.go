// Package validation wraps go-playground/validator with the custom rules used
// by the form requests and converts its failures into domain field errors.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "praticai/pkg/domain-errors"
)

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

// Rules reported in dErrors.FieldError.Rule.
const (
	RuleRequired            = "required"
	RuleConditionalRequired = "conditional_required"
	RuleInvalidLength       = "invalid_length"
	RuleInvalidFormat       = "invalid_format"
	RuleInvalidDate         = "invalid_date"
	RuleFutureDate          = "future_date"
	RuleInvalidChoice       = "invalid_choice"
	RuleTooLong             = "too_long"
)

var (
	atecoPattern = regexp.MustCompile(`^[0-9]{2}\.[0-9]{2}\.[0-9]{2}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{8,15}$`)
)

// MessageFunc renders the client message for a violated rule. param is the
// validator tag parameter (e.g. "StatoCivile coniugato" for required_if).
type MessageFunc func(field, rule, param string) string

// Validator validates request structs.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used by the notfuture rule.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New builds a Validator with the custom rules registered.
func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.validate.RegisterValidation("notfuture", v.notFuture)
	_ = v.validate.RegisterValidation("ateco", matches(atecoPattern))
	_ = v.validate.RegisterValidation("phone", matches(phonePattern))
	return v
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the process-wide Validator using the wall clock.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// Struct validates s in a single pass and returns a validation_error listing
// every violated field, or nil.
func (v *Validator) Struct(s any, message MessageFunc) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "richiesta non valida")
	}

	fields := make([]dErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		rule := RuleFor(fe.Tag())
		fields = append(fields, dErrors.FieldError{
			Field:   fe.Field(),
			Rule:    rule,
			Message: message(fe.Field(), rule, fe.Param()),
		})
	}
	return dErrors.Validation(fields)
}

// RuleFor maps a validator tag to the rule name exposed to clients.
func RuleFor(tag string) string {
	switch tag {
	case "required":
		return RuleRequired
	case "required_if":
		return RuleConditionalRequired
	case "len":
		return RuleInvalidLength
	case "datetime":
		return RuleInvalidDate
	case "notfuture":
		return RuleFutureDate
	case "oneof":
		return RuleInvalidChoice
	case "max":
		return RuleTooLong
	default:
		return RuleInvalidFormat
	}
}

// notFuture accepts dates up to and including today. Unparseable values pass
// so the datetime rule reports them.
func (v *Validator) notFuture(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if _, err := time.Parse(DateLayout, value); err != nil {
		return true
	}
	// ISO dates order lexically.
	return value <= v.now().Format(DateLayout)
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Trim normalizes free-text input.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// Code normalizes code-like input (fiscal code, province): trimmed and uppercased.
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FormatDate reformats a YYYY-MM-DD date as DD/MM/YYYY. Values that do not
// parse are returned unchanged.
func FormatDate(value string) string {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}
