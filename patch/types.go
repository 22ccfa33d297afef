package patch

import (
	"strings"

	"github.com/tbxark/hotelagent/types"
)

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

// Operation is a single RFC 6902 operation over the booking slots.
type Operation struct {
	Op    string `json:"op" jsonschema:"enum=replace,enum=add,enum=remove"`
	Path  string `json:"path" jsonschema:"description=JSON pointer of the booking field, for example /num_guests"`
	Value any    `json:"value,omitempty" jsonschema:"description=New value of the field. Omit it for remove"`
}

type UpdateBookingArgs struct {
	Ops []Operation `json:"ops"`
}

func SlotPath(slot types.Slot) string {
	return "/" + string(slot)
}

// PathSlot maps a JSON pointer back to its slot. Nested or unknown paths are
// reported with ok=false.
func PathSlot(path string) (types.Slot, bool) {
	name, found := strings.CutPrefix(path, "/")
	if !found || strings.Contains(name, "/") {
		return "", false
	}
	slot := types.Slot(name)
	return slot, slot.Valid()
}

// ReplaceOps turns every value carried by info into a replace operation.
func ReplaceOps(info *types.BookingInfo) []Operation {
	var ops []Operation
	for _, slot := range info.Slots() {
		ops = append(ops, Operation{Op: OperationReplace, Path: SlotPath(slot), Value: slotValue(info, slot)})
	}
	return ops
}

func slotValue(info *types.BookingInfo, slot types.Slot) any {
	switch slot {
	case types.SlotFullName:
		return *info.FullName
	case types.SlotCheckInDate:
		return *info.CheckInDate
	case types.SlotCheckOutDate:
		return *info.CheckOutDate
	case types.SlotNumGuests:
		return *info.NumGuests
	case types.SlotPaymentMethod:
		return *info.PaymentMethod
	case types.SlotBreakfastIncluded:
		return *info.BreakfastIncluded
	default:
		return nil
	}
}
