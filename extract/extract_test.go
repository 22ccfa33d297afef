package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/hotelagent/internal/testutil"
	"github.com/tbxark/hotelagent/patch"
	"github.com/tbxark/hotelagent/types"
)

func TestLocalExtractor(t *testing.T) {
	e := NewLocalExtractor()
	info, err := e.Extract(context.Background(),
		"Hi, my name is Ada Lovelace. We are 2 guests from 2099-01-05 to 2099-01-10, paying by Credit Card, with breakfast.")
	require.NoError(t, err)

	require.NotNil(t, info.FullName)
	assert.Equal(t, "Ada Lovelace", *info.FullName)
	require.NotNil(t, info.CheckInDate)
	assert.Equal(t, "2099-01-05", *info.CheckInDate)
	require.NotNil(t, info.CheckOutDate)
	assert.Equal(t, "2099-01-10", *info.CheckOutDate)
	require.NotNil(t, info.NumGuests)
	assert.Equal(t, 2, *info.NumGuests)
	require.NotNil(t, info.PaymentMethod)
	assert.Equal(t, "credit card", *info.PaymentMethod)
	require.NotNil(t, info.BreakfastIncluded)
	assert.True(t, *info.BreakfastIncluded)
}

func TestLocalExtractor_DoesNotInvent(t *testing.T) {
	info, err := NewLocalExtractor().Extract(context.Background(), "I'm Ada and I want a room")
	require.NoError(t, err)
	assert.True(t, info.Empty(), "unexpected slots %v", info.Slots())
}

func TestLocalExtractor_SingleDate(t *testing.T) {
	e := NewLocalExtractor()
	info, err := e.Extract(context.Background(), "I'll check out on 2099-03-02")
	require.NoError(t, err)
	assert.Nil(t, info.CheckInDate)
	require.NotNil(t, info.CheckOutDate)
	assert.Equal(t, "2099-03-02", *info.CheckOutDate)

	info, err = e.Extract(context.Background(), "arriving 2099-03-01")
	require.NoError(t, err)
	require.NotNil(t, info.CheckInDate)
	assert.Nil(t, info.CheckOutDate)
}

func TestLocalExtractor_NoBreakfast(t *testing.T) {
	info, err := NewLocalExtractor().Extract(context.Background(), "No breakfast for us, thanks")
	require.NoError(t, err)
	require.NotNil(t, info.BreakfastIncluded)
	assert.False(t, *info.BreakfastIncluded)
}

func TestLocalExtractor_ChangeGuests(t *testing.T) {
	name := "Ada Lovelace"
	ops, err := NewLocalExtractor().ExtractChanges(context.Background(), "Please change the guests to 4", types.BookingInfo{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, []patch.Operation{{Op: patch.OperationReplace, Path: "/num_guests", Value: 4}}, ops)
}

func TestLocalExtractor_ConfiguredPaymentMethods(t *testing.T) {
	e := NewLocalExtractor("Bank Transfer", "cash")
	info, err := e.Extract(context.Background(), "I'll pay by bank transfer")
	require.NoError(t, err)
	require.NotNil(t, info.PaymentMethod)
	assert.Equal(t, "bank transfer", *info.PaymentMethod)

	info, err = e.Extract(context.Background(), "paypal please")
	require.NoError(t, err)
	assert.Nil(t, info.PaymentMethod)
}

func TestToolBasedExtractor(t *testing.T) {
	cm := testutil.NewChatModel(testutil.ToolCallReply(extractBookingToolName,
		`{"full_name":"Ada Lovelace","num_guests":2,"payment_method":"  "}`))
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	e, err := NewToolBasedExtractor(cm, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	info, err := e.Extract(context.Background(), "I'm Ada Lovelace, two of us")
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{types.SlotFullName, types.SlotNumGuests}, info.Slots())

	prompt := cm.LastPrompt()
	assert.Contains(t, prompt, "credit card, debit card, cash, paypal")
	assert.Contains(t, prompt, "2026-10-19")
	assert.Contains(t, prompt, "I'm Ada Lovelace, two of us")
	assert.Contains(t, prompt, extractBookingToolName)
}

func TestToolBasedChangeExtractor_SendsSnapshot(t *testing.T) {
	cm := testutil.NewChatModel(testutil.ToolCallReply(changeBookingToolName,
		`{"ops":[{"op":"replace","path":"/check_out_date","value":"2099-01-12"},{"op":"replace","path":"/payment_method","value":" none "}]}`))
	e, err := NewToolBasedChangeExtractor(cm, WithPaymentMethods("Bank Transfer"))
	require.NoError(t, err)

	in := "2099-01-05"
	ops, err := e.ExtractChanges(context.Background(), "stay two more nights", types.BookingInfo{CheckInDate: &in})
	require.NoError(t, err)
	assert.Equal(t, []patch.Operation{{Op: patch.OperationReplace, Path: "/check_out_date", Value: "2099-01-12"}}, ops)
	prompt := cm.LastPrompt()
	assert.Contains(t, prompt, "2099-01-05")
	assert.Contains(t, prompt, "bank transfer")
}

func TestToolBasedChangeExtractor_WithdrawAndNumbers(t *testing.T) {
	cm := testutil.NewChatModel(testutil.ToolCallReply(changeBookingToolName,
		`{"ops":[{"op":"remove","path":"/breakfast_included"},{"op":"replace","path":"/num_guests","value":3}]}`))
	e, err := NewToolBasedChangeExtractor(cm)
	require.NoError(t, err)

	ops, err := e.ExtractChanges(context.Background(), "three of us, and forget about breakfast for now", types.BookingInfo{})
	require.NoError(t, err)

	s := types.NewSession("")
	s.NumGuests = types.Some(2)
	s.BreakfastIncluded = types.Some(true)
	s.NotFilledKeys = []types.Slot{}
	changed, err := patch.ApplyChanges(s, ops)
	require.NoError(t, err)
	assert.Equal(t, []types.Slot{types.SlotNumGuests, types.SlotBreakfastIncluded}, changed)
	assert.Equal(t, 3, s.NumGuests.OrElse(0))
	assert.Equal(t, []types.Slot{types.SlotBreakfastIncluded}, s.NotFilledKeys)
}

func TestToolBasedChangeExtractor_RejectsForeignPath(t *testing.T) {
	cm := testutil.NewChatModel(testutil.ToolCallReply(changeBookingToolName,
		`{"ops":[{"op":"replace","path":"/room_type","value":"suite"}]}`))
	e, err := NewToolBasedChangeExtractor(cm)
	require.NoError(t, err)

	_, err = e.ExtractChanges(context.Background(), "a suite please", types.BookingInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
}

func TestFailbackExtractor(t *testing.T) {
	boom := errors.New("timeout")
	failing, err := NewToolBasedExtractor(testutil.NewFailingChatModel(boom))
	require.NoError(t, err)

	info, err := NewFailbackExtractor(failing, NewLocalExtractor()).Extract(context.Background(), "3 guests")
	require.NoError(t, err)
	assert.Equal(t, 3, *info.NumGuests)

	_, err = NewFailbackExtractor(failing).Extract(context.Background(), "3 guests")
	assert.ErrorIs(t, err, boom)
}

func TestFailbackChangeExtractor(t *testing.T) {
	boom := errors.New("timeout")
	failing, err := NewToolBasedChangeExtractor(testutil.NewFailingChatModel(boom))
	require.NoError(t, err)

	ops, err := NewFailbackChangeExtractor(failing, NewLocalExtractor()).ExtractChanges(context.Background(), "pay with paypal", types.BookingInfo{})
	require.NoError(t, err)
	assert.Equal(t, []patch.Operation{{Op: patch.OperationReplace, Path: "/payment_method", Value: "paypal"}}, ops)
}
