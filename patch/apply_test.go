package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/hotelagent/types"
)

func ptr[T any](v T) *T { return &v }

func TestFillMissing_FillsOnlyGaps(t *testing.T) {
	s := types.NewSession("hi")
	s.FullName = types.Some("Ada Lovelace")
	s.MarkFilled(types.SlotFullName)

	filled := FillMissing(s, &types.BookingInfo{
		FullName:  ptr("Grace Hopper"),
		NumGuests: ptr(2),
	})

	assert.Equal(t, []types.Slot{types.SlotNumGuests}, filled)
	assert.Equal(t, "Ada Lovelace", s.FullName.OrElse(""))
	assert.Equal(t, 2, s.NumGuests.OrElse(0))
	assert.False(t, s.IsMissing(types.SlotNumGuests))
}

func TestFillMissing_OverwritesInvalidSlot(t *testing.T) {
	s := types.NewSession("hi")
	s.NotFilledKeys = []types.Slot{types.SlotPaymentMethod}
	s.PaymentMethod = types.Some("bitcoin")

	FillMissing(s, &types.BookingInfo{PaymentMethod: ptr("cash")})
	assert.Equal(t, "cash", s.PaymentMethod.OrElse(""))
	assert.Empty(t, s.NotFilledKeys)
}

func TestFillMissing_OnlyRemovesNames(t *testing.T) {
	s := types.NewSession("hi")
	before := append([]types.Slot(nil), s.NotFilledKeys...)
	FillMissing(s, &types.BookingInfo{BreakfastIncluded: ptr(false), CheckInDate: ptr("2099-01-01")})
	for _, k := range s.NotFilledKeys {
		assert.Contains(t, before, k)
	}
	assert.Len(t, s.NotFilledKeys, 4)
	assert.Equal(t, false, s.BreakfastIncluded.OrElse(true))
}

func TestFillMissing_NilInfo(t *testing.T) {
	s := types.NewSession("hi")
	assert.Nil(t, FillMissing(s, nil))
	assert.Len(t, s.NotFilledKeys, 6)
}

func filled() *types.Session {
	s := types.NewSession("change")
	s.FullName = types.Some("Ada Lovelace")
	s.CheckInDate = types.Some("2099-02-01")
	s.CheckOutDate = types.Some("2099-02-03")
	s.NumGuests = types.Some(2)
	s.PaymentMethod = types.Some("cash")
	s.BreakfastIncluded = types.Some(true)
	s.NotFilledKeys = []types.Slot{}
	return s
}

func TestApplyChanges_OverwritesFilledSlots(t *testing.T) {
	s := filled()

	changed, err := ApplyChanges(s, []Operation{{Op: OperationReplace, Path: "/num_guests", Value: 4}})
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{types.SlotNumGuests}, changed)
	assert.Equal(t, 4, s.NumGuests.OrElse(0))
	assert.Equal(t, "Ada Lovelace", s.FullName.OrElse(""))
	assert.Empty(t, s.NotFilledKeys)
}

func TestApplyChanges_ReplaceOnAbsentSlotAdds(t *testing.T) {
	s := types.NewSession("new dates")
	changed, err := ApplyChanges(s, []Operation{
		{Op: OperationReplace, Path: "/check_out_date", Value: "2099-02-03"},
		{Op: OperationReplace, Path: "/check_in_date", Value: "2099-02-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{types.SlotCheckInDate, types.SlotCheckOutDate}, changed)
	assert.Equal(t, "2099-02-01", s.CheckInDate.OrElse(""))
	assert.Equal(t, "2099-02-03", s.CheckOutDate.OrElse(""))
	assert.NotContains(t, s.NotFilledKeys, types.SlotCheckInDate)
	assert.NotContains(t, s.NotFilledKeys, types.SlotCheckOutDate)
	assert.Len(t, s.NotFilledKeys, 4)
}

func TestApplyChanges_RemoveReopensSlot(t *testing.T) {
	s := filled()

	changed, err := ApplyChanges(s, []Operation{{Op: OperationRemove, Path: "/breakfast_included"}})
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{types.SlotBreakfastIncluded}, changed)
	assert.False(t, s.BreakfastIncluded.IsSet())
	assert.Equal(t, []types.Slot{types.SlotBreakfastIncluded}, s.NotFilledKeys)
	assert.Equal(t, "cash", s.PaymentMethod.OrElse(""))
}

func TestApplyChanges_RemoveOnAbsentSlotKeepsItMissing(t *testing.T) {
	s := types.NewSession("skip it")
	changed, err := ApplyChanges(s, []Operation{{Op: OperationRemove, Path: "/payment_method"}})
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{types.SlotPaymentMethod}, changed)
	assert.Len(t, s.NotFilledKeys, 6)
	assert.False(t, s.PaymentMethod.IsSet())
}

func TestApplyChanges_FalseAndZeroValuesApply(t *testing.T) {
	s := filled()
	_, err := ApplyChanges(s, []Operation{
		{Op: OperationReplace, Path: "/breakfast_included", Value: false},
		{Op: OperationReplace, Path: "/num_guests", Value: 0},
	})
	require.NoError(t, err)
	v, ok := s.BreakfastIncluded.Get()
	assert.True(t, ok)
	assert.False(t, v)
	n, ok := s.NumGuests.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

func TestApplyChanges_TypeMismatchLeavesSessionUntouched(t *testing.T) {
	s := filled()
	_, err := ApplyChanges(s, []Operation{
		{Op: OperationReplace, Path: "/full_name", Value: "Grace Hopper"},
		{Op: OperationReplace, Path: "/num_guests", Value: "four"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type mismatch")
	assert.Equal(t, "Ada Lovelace", s.FullName.OrElse(""))
	assert.Equal(t, 2, s.NumGuests.OrElse(0))
}

func TestApplyChanges_RejectsInvalidOperations(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
	}{
		{name: "unknown path", op: Operation{Op: OperationReplace, Path: "/room_type", Value: "suite"}},
		{name: "nested path", op: Operation{Op: OperationReplace, Path: "/full_name/first", Value: "Ada"}},
		{name: "unsupported op", op: Operation{Op: "move", Path: "/full_name"}},
		{name: "missing value", op: Operation{Op: OperationReplace, Path: "/full_name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filled()
			_, err := ApplyChanges(s, []Operation{tt.op})
			require.Error(t, err)
			assert.Equal(t, "Ada Lovelace", s.FullName.OrElse(""))
		})
	}
}

func TestApplyChanges_Empty(t *testing.T) {
	s := types.NewSession("nothing")
	changed, err := ApplyChanges(s, nil)
	require.NoError(t, err)
	assert.Nil(t, changed)
	assert.Len(t, s.NotFilledKeys, 6)
}

func TestFixOperation(t *testing.T) {
	current := []byte(`{"full_name":"Ada Lovelace"}`)
	fixed := FixOperation(current, []Operation{
		{Op: OperationReplace, Path: "/full_name", Value: "Grace Hopper"},
		{Op: OperationReplace, Path: "/num_guests", Value: 2},
		{Op: OperationRemove, Path: "/payment_method"},
		{Op: OperationRemove, Path: "/num_guests"},
	})
	assert.Equal(t, []Operation{
		{Op: OperationReplace, Path: "/full_name", Value: "Grace Hopper"},
		{Op: OperationAdd, Path: "/num_guests", Value: 2},
		{Op: OperationRemove, Path: "/num_guests"},
	}, fixed)
}

func TestReplaceOps(t *testing.T) {
	ops := ReplaceOps(&types.BookingInfo{NumGuests: ptr(3), BreakfastIncluded: ptr(false)})
	assert.Equal(t, []Operation{
		{Op: OperationReplace, Path: "/num_guests", Value: 3},
		{Op: OperationReplace, Path: "/breakfast_included", Value: false},
	}, ops)
	assert.Nil(t, ReplaceOps(nil))
}

func TestPathSlot(t *testing.T) {
	slot, ok := PathSlot("/check_in_date")
	assert.True(t, ok)
	assert.Equal(t, types.SlotCheckInDate, slot)
	for _, p := range []string{"check_in_date", "/unknown", "/full_name/0", ""} {
		_, ok := PathSlot(p)
		assert.False(t, ok, p)
	}
}
