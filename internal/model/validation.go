package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// MaxMoney is the smallest amount that no longer fits a DECIMAL(12,2) column.
var MaxMoney = decimal.New(1, 10)

// businessZone decides which calendar day "today" is for date checks.
var businessZone = time.UTC

// SetBusinessZone sets the location whose calendar day bounds debt dates.
func SetBusinessZone(loc *time.Location) {
	if loc != nil {
		businessZone = loc
	}
}

// ValidationError carries one message per offending field, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Date is a calendar day encoded as YYYY-MM-DD in JSON.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	*d = NewDate(t)
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(f reflect.Value) any {
			d, _ := f.Interface().(decimal.Decimal)
			return d.InexactFloat64()
		}, decimal.Decimal{})
		v.RegisterCustomTypeFunc(func(f reflect.Value) any {
			d, _ := f.Interface().(Date)
			return d.Time
		}, Date{})

		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return mobilePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("medium", func(fl validator.FieldLevel) bool {
			return PaymentMedium(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			if !ok {
				return false
			}
			return notAfterToday(t, time.Now(), businessZone)
		})
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			switch in := sl.Current().Interface().(type) {
			case DebtorInput:
				if !ValidMoney(in.InitialDebt) {
					sl.ReportError(in.InitialDebt, "initial_debt", "InitialDebt", "money", "")
				}
			case PostingRequest:
				if !ValidMoney(in.Amount) {
					sl.ReportError(in.Amount, "tran_amount", "Amount", "money", "")
				}
			}
		}, DebtorInput{}, PostingRequest{})
		validate = v
	})
	return validate
}

// Validate checks struct tags and converts failures to a ValidationError.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

// ValidMoney reports whether d fits the stored scale: at most two decimal
// places and ten integer digits.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2)) && d.Abs().LessThan(MaxMoney)
}

// notAfterToday reports whether the calendar day held in day (a UTC
// midnight, see Date) is not later than today in loc.
func notAfterToday(day, now time.Time, loc *time.Location) bool {
	y, m, d := now.In(loc).Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	return day.Before(tomorrow)
}

// ValidMobile reports whether s is a ten digit phone number.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return "must not be negative"
	case "mobile":
		return "must be exactly 10 digits"
	case "medium":
		return "unsupported payment medium"
	case "notfuture":
		return "cannot be in the future"
	case "money":
		return "must have at most 2 decimal places and 10 integer digits"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "alphanum":
		return "may only contain letters and digits"
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return "is invalid"
	}
}
