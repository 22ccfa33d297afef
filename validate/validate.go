// Package validate checks the booking slots collected so far.
package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tbxark/hotelagent/types"
)

const MinFullNameLength = 3

var DefaultPaymentMethods = []string{"credit card", "debit card", "cash", "paypal"}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Result struct {
	Valid   bool
	Errors  []string
	Invalid []types.Slot
}

func (r *Result) add(msg string, slots ...types.Slot) {
	r.Errors = append(r.Errors, msg)
	r.Invalid = append(r.Invalid, slots...)
}

type Validator struct {
	now            func() time.Time
	paymentMethods []string
}

type Option func(*Validator)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func WithPaymentMethods(methods ...string) Option {
	return func(v *Validator) {
		if len(methods) == 0 {
			return
		}
		normalized := make([]string, 0, len(methods))
		for _, m := range methods {
			normalized = append(normalized, strings.ToLower(strings.TrimSpace(m)))
		}
		v.paymentMethods = normalized
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		now:            time.Now,
		paymentMethods: DefaultPaymentMethods,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// PaymentMethods returns the accepted payment methods, lower-cased.
func (v *Validator) PaymentMethods() []string {
	return slices.Clone(v.paymentMethods)
}

// Validate inspects the present slots of s without modifying it. Absent slots
// are not reported; collecting them is the dialog's job.
func (v *Validator) Validate(s *types.Session) Result {
	var res Result

	if name, ok := s.FullName.Get(); ok && utf8.RuneCountInString(name) < MinFullNameLength {
		res.add(fmt.Sprintf("Full name must be at least %d characters long.", MinFullNameLength), types.SlotFullName)
	}

	today := v.today()
	checkIn, checkInOK := v.checkDate(&res, s.CheckInDate, types.SlotCheckInDate, "Check-in", today)
	checkOut, checkOutOK := v.checkDate(&res, s.CheckOutDate, types.SlotCheckOutDate, "Check-out", today)
	if checkInOK && checkOutOK && !checkOut.After(checkIn) {
		res.add("Check-out date must be after check-in date.", types.SlotCheckInDate, types.SlotCheckOutDate)
	}

	if guests, ok := s.NumGuests.Get(); ok && guests <= 0 {
		res.add("Number of guests must be positive.", types.SlotNumGuests)
	}

	if method, ok := s.PaymentMethod.Get(); ok && !v.acceptsPayment(method) {
		res.add(fmt.Sprintf("Invalid payment method. Please choose from: %s.", strings.Join(v.paymentMethods, ", ")), types.SlotPaymentMethod)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// Apply validates s and records the verdict on it: ValidInfo, Errors, and
// every invalid slot goes back into NotFilledKeys.
func (v *Validator) Apply(s *types.Session) Result {
	res := v.Validate(s)
	s.ValidInfo = res.Valid
	s.Errors = res.Errors
	for _, slot := range res.Invalid {
		s.MarkMissing(slot)
	}
	return res
}

// checkDate reports the parsed date and whether it is usable for the
// ordering check. Well-formed past dates are flagged but still comparable.
func (v *Validator) checkDate(res *Result, value types.Optional[string], slot types.Slot, label string, today time.Time) (time.Time, bool) {
	raw, ok := value.Get()
	if !ok {
		return time.Time{}, false
	}
	date, ok := ParseDate(raw)
	if !ok {
		res.add(fmt.Sprintf("%s date format is invalid (YYYY-MM-DD).", label), slot)
		return time.Time{}, false
	}
	if date.Before(today) {
		res.add(fmt.Sprintf("%s date cannot be in the past.", label), slot)
	}
	return date, true
}

func (v *Validator) today() time.Time {
	now := v.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (v *Validator) acceptsPayment(method string) bool {
	normalized := strings.ToLower(method)
	for _, m := range v.paymentMethods {
		if normalized == m {
			return true
		}
	}
	return false
}

// ParseDate accepts only strict, calendar-valid YYYY-MM-DD strings.
func ParseDate(s string) (time.Time, bool) {
	if !datePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
