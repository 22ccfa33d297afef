package types

import (
	"encoding/json"
	"fmt"

	"github.com/eino-contrib/jsonschema"
)

// BookingInfo is a partial booking record. Nil fields were not mentioned.
type BookingInfo struct {
	FullName          *string `json:"full_name,omitempty" jsonschema:"description=The full name of the guest. A first name alone is not enough"`
	CheckInDate       *string `json:"check_in_date,omitempty" jsonschema:"description=Check-in date for the reservation in YYYY-MM-DD format"`
	CheckOutDate      *string `json:"check_out_date,omitempty" jsonschema:"description=Check-out date for the reservation in YYYY-MM-DD format"`
	NumGuests         *int    `json:"num_guests,omitempty" jsonschema:"description=Number of guests for the reservation"`
	PaymentMethod     *string `json:"payment_method,omitempty" jsonschema:"description=Payment method used for the reservation. Must be one of the accepted payment methods"`
	BreakfastIncluded *bool   `json:"breakfast_included,omitempty" jsonschema:"description=Whether breakfast is included"`
}

func (b *BookingInfo) Has(slot Slot) bool {
	if b == nil {
		return false
	}
	switch slot {
	case SlotFullName:
		return b.FullName != nil
	case SlotCheckInDate:
		return b.CheckInDate != nil
	case SlotCheckOutDate:
		return b.CheckOutDate != nil
	case SlotNumGuests:
		return b.NumGuests != nil
	case SlotPaymentMethod:
		return b.PaymentMethod != nil
	case SlotBreakfastIncluded:
		return b.BreakfastIncluded != nil
	default:
		return false
	}
}

// Slots returns the slots carrying a value, in canonical order.
func (b *BookingInfo) Slots() []Slot {
	var out []Slot
	for _, slot := range AllSlots() {
		if b.Has(slot) {
			out = append(out, slot)
		}
	}
	return out
}

func (b *BookingInfo) Empty() bool {
	return len(b.Slots()) == 0
}

// Value renders a slot for prompts and summaries. Absent slots render as
// "None".
func (b *BookingInfo) Value(slot Slot) string {
	if !b.Has(slot) {
		return "None"
	}
	switch slot {
	case SlotFullName:
		return *b.FullName
	case SlotCheckInDate:
		return *b.CheckInDate
	case SlotCheckOutDate:
		return *b.CheckOutDate
	case SlotNumGuests:
		return fmt.Sprint(*b.NumGuests)
	case SlotPaymentMethod:
		return *b.PaymentMethod
	case SlotBreakfastIncluded:
		if *b.BreakfastIncluded {
			return "yes"
		}
		return "no"
	default:
		return "None"
	}
}

// BookingInfoSchema returns the JSON schema describing BookingInfo.
func BookingInfoSchema() (string, error) {
	schema := jsonschema.Reflect(&BookingInfo{})
	schema.Title = "Hotel booking"
	schema.Description = "Information required to book a hotel room: guest name, stay dates, number of guests, payment method and breakfast."
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(schemaBytes), nil
}
