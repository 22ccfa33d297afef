package types

import "slices"

// Session is the per-conversation booking record carried across turns.
type Session struct {
	UserMessage       string           `json:"user_message,omitempty"`
	Intent            Intent           `json:"intent,omitempty"`
	FullName          Optional[string] `json:"full_name,omitzero"`
	CheckInDate       Optional[string] `json:"check_in_date,omitzero"`
	CheckOutDate      Optional[string] `json:"check_out_date,omitzero"`
	NumGuests         Optional[int]    `json:"num_guests,omitzero"`
	PaymentMethod     Optional[string] `json:"payment_method,omitzero"`
	BreakfastIncluded Optional[bool]   `json:"breakfast_included,omitzero"`
	NotFilledKeys     []Slot           `json:"not_filled_keys"`
	ValidInfo         bool             `json:"valid_info"`
	Errors            []string         `json:"errors,omitempty"`
	Response          string           `json:"response,omitempty"`
}

// NewSession starts a conversation with every slot still to be collected.
func NewSession(message string) *Session {
	return &Session{
		UserMessage:   message,
		NotFilledKeys: AllSlots(),
	}
}

// Normalize fills defaults for snapshots coming from clients. A nil
// NotFilledKeys means the client never sent it; an empty one means every
// slot was collected. Unknown slot names are dropped.
func (s *Session) Normalize() {
	if s.NotFilledKeys == nil {
		s.NotFilledKeys = AllSlots()
		return
	}
	s.NotFilledKeys = slices.DeleteFunc(s.NotFilledKeys, func(k Slot) bool {
		return !k.Valid()
	})
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.NotFilledKeys = slices.Clone(s.NotFilledKeys)
	c.Errors = slices.Clone(s.Errors)
	return &c
}

func (s *Session) IsMissing(slot Slot) bool {
	return slices.Contains(s.NotFilledKeys, slot)
}

// MarkFilled removes every occurrence of slot from NotFilledKeys.
func (s *Session) MarkFilled(slot Slot) {
	if s.NotFilledKeys == nil {
		return
	}
	s.NotFilledKeys = slices.DeleteFunc(s.NotFilledKeys, func(k Slot) bool {
		return k == slot
	})
}

// MarkMissing adds slot to NotFilledKeys unless it is already there.
func (s *Session) MarkMissing(slot Slot) {
	if s.IsMissing(slot) {
		return
	}
	if s.NotFilledKeys == nil {
		s.NotFilledKeys = []Slot{}
	}
	s.NotFilledKeys = append(s.NotFilledKeys, slot)
}

// Present reports whether the slot field holds a value.
func (s *Session) Present(slot Slot) bool {
	switch slot {
	case SlotFullName:
		return s.FullName.IsSet()
	case SlotCheckInDate:
		return s.CheckInDate.IsSet()
	case SlotCheckOutDate:
		return s.CheckOutDate.IsSet()
	case SlotNumGuests:
		return s.NumGuests.IsSet()
	case SlotPaymentMethod:
		return s.PaymentMethod.IsSet()
	case SlotBreakfastIncluded:
		return s.BreakfastIncluded.IsSet()
	default:
		return false
	}
}

// Info snapshots the slot fields.
func (s *Session) Info() BookingInfo {
	return BookingInfo{
		FullName:          s.FullName.Ptr(),
		CheckInDate:       s.CheckInDate.Ptr(),
		CheckOutDate:      s.CheckOutDate.Ptr(),
		NumGuests:         s.NumGuests.Ptr(),
		PaymentMethod:     s.PaymentMethod.Ptr(),
		BreakfastIncluded: s.BreakfastIncluded.Ptr(),
	}
}

// SetSlot copies the value of slot from info into the session. It returns
// false when info carries no value for the slot.
func (s *Session) SetSlot(slot Slot, info *BookingInfo) bool {
	if info == nil || !info.Has(slot) {
		return false
	}
	switch slot {
	case SlotFullName:
		s.FullName = FromPtr(info.FullName)
	case SlotCheckInDate:
		s.CheckInDate = FromPtr(info.CheckInDate)
	case SlotCheckOutDate:
		s.CheckOutDate = FromPtr(info.CheckOutDate)
	case SlotNumGuests:
		s.NumGuests = FromPtr(info.NumGuests)
	case SlotPaymentMethod:
		s.PaymentMethod = FromPtr(info.PaymentMethod)
	case SlotBreakfastIncluded:
		s.BreakfastIncluded = FromPtr(info.BreakfastIncluded)
	default:
		return false
	}
	return true
}

// ClearSlot drops the value of slot.
func (s *Session) ClearSlot(slot Slot) {
	switch slot {
	case SlotFullName:
		s.FullName = None[string]()
	case SlotCheckInDate:
		s.CheckInDate = None[string]()
	case SlotCheckOutDate:
		s.CheckOutDate = None[string]()
	case SlotNumGuests:
		s.NumGuests = None[int]()
	case SlotPaymentMethod:
		s.PaymentMethod = None[string]()
	case SlotBreakfastIncluded:
		s.BreakfastIncluded = None[bool]()
	}
}
