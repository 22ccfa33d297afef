package types

import (
	"slices"
	"strings"
)

type Intent string

const (
	IntentMakeReservation   Intent = "make_reservation"
	IntentCheckReservation  Intent = "check_reservation"
	IntentChangeReservation Intent = "change_reservation"
	IntentOther             Intent = "other"
)

// Intents lists every label a classifier may return.
func Intents() []Intent {
	return []Intent{IntentMakeReservation, IntentCheckReservation, IntentChangeReservation, IntentOther}
}

// ParseIntent accepts the snake_case labels as well as the spaced form
// ("make a reservation") used by older clients. Unknown labels are reported
// with ok=false.
func ParseIntent(s string) (Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " a ", " ")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if slices.Contains(Intents(), Intent(normalized)) {
		return Intent(normalized), true
	}
	return IntentOther, false
}

// Normalize maps empty or unrecognized values to IntentOther.
func (i Intent) Normalize() Intent {
	v, _ := ParseIntent(string(i))
	return v
}

type Slot string

const (
	SlotFullName          Slot = "full_name"
	SlotCheckInDate       Slot = "check_in_date"
	SlotCheckOutDate      Slot = "check_out_date"
	SlotNumGuests         Slot = "num_guests"
	SlotPaymentMethod     Slot = "payment_method"
	SlotBreakfastIncluded Slot = "breakfast_included"
)

// AllSlots returns the required booking fields in collection order.
func AllSlots() []Slot {
	return []Slot{
		SlotFullName,
		SlotCheckInDate,
		SlotCheckOutDate,
		SlotNumGuests,
		SlotPaymentMethod,
		SlotBreakfastIncluded,
	}
}

func (s Slot) DisplayName() string {
	switch s {
	case SlotFullName:
		return "Full Name"
	case SlotCheckInDate:
		return "Check-in Date"
	case SlotCheckOutDate:
		return "Check-out Date"
	case SlotNumGuests:
		return "Number of Guests"
	case SlotPaymentMethod:
		return "Payment Method"
	case SlotBreakfastIncluded:
		return "Breakfast Included"
	default:
		return string(s)
	}
}

func (s Slot) Valid() bool {
	return slices.Contains(AllSlots(), s)
}
