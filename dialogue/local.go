package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/hotelagent/types"
)

// Greeting opens every new conversation.
const Greeting = "Hello! I'm GrandVista's Hotel booking assistant. How can I assist you today?"

var slotQuestions = map[types.Slot]string{
	types.SlotFullName:          "Could you tell me the full name for the reservation?",
	types.SlotCheckInDate:       "What is your check-in date? Please use the format YYYY-MM-DD.",
	types.SlotCheckOutDate:      "What is your check-out date? Please use the format YYYY-MM-DD.",
	types.SlotNumGuests:         "How many guests will be staying?",
	types.SlotBreakfastIncluded: "Would you like breakfast included?",
	types.SlotPaymentMethod:     "How would you like to pay? We accept credit card, debit card, cash and paypal.",
}

// LocalDialogueGenerator renders fixed templates without a model.
type LocalDialogueGenerator struct {
	HotelName string
	// MaxCorrections caps how many errors a correction message lists.
	MaxCorrections int
	// PaymentMethods, when set, replaces the default list in the payment
	// question.
	PaymentMethods []string
}

func NewLocalDialogueGenerator(hotelName string) *LocalDialogueGenerator {
	if hotelName == "" {
		hotelName = "GrandVista Hotel"
	}
	return &LocalDialogueGenerator{HotelName: hotelName, MaxCorrections: 2}
}

func (g *LocalDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	switch req.Kind {
	case KindCorrection:
		return g.correction(req), nil
	case KindSummary:
		return g.summary(req), nil
	default:
		return g.response(req), nil
	}
}

func (g *LocalDialogueGenerator) response(req *Request) string {
	if req.Intent != types.IntentMakeReservation {
		return fmt.Sprintf("I'm the booking assistant of %s, so I can only help you make, check or change a reservation. Would you like help with one of those?", g.HotelName)
	}
	greeting := greet(req.Booking, "")
	if len(req.Missing) == 0 {
		return fmt.Sprintf("%sHere are your booking details:\n\n%s\nShall I go ahead with the booking?", greeting, types.FormatBooking(req.Booking))
	}
	question, ok := slotQuestions[req.Missing[0]]
	if req.Missing[0] == types.SlotPaymentMethod && len(g.PaymentMethods) > 0 {
		question = "How would you like to pay? We accept " + joinAnd(g.PaymentMethods) + "."
	}
	if !ok {
		question = fmt.Sprintf("Could you provide the %s?", strings.ToLower(req.Missing[0].DisplayName()))
	}
	return greeting + question
}

func (g *LocalDialogueGenerator) summary(req *Request) string {
	var sb strings.Builder
	sb.WriteString(greet(req.Booking, ""))
	sb.WriteString("Here is your current booking:\n\n")
	sb.WriteString(types.FormatBooking(req.Booking))
	if len(req.Missing) > 0 {
		sb.WriteString("\nStill missing: ")
		sb.WriteString(types.FormatMissing(req.Missing))
		sb.WriteString(". Would you like to provide it or change anything else?")
		return sb.String()
	}
	sb.WriteString("\nYour reservation is booked. Is there anything else I can help you with?")
	return sb.String()
}

func (g *LocalDialogueGenerator) correction(req *Request) string {
	var sb strings.Builder
	sb.WriteString(greet(req.Booking, "Dear Guest, "))
	sb.WriteString("some of the booking details need a correction:\n")
	limit := g.MaxCorrections
	if limit <= 0 || limit > len(req.Errors) {
		limit = len(req.Errors)
	}
	for _, e := range req.Errors[:limit] {
		sb.WriteString("- ")
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	sb.WriteString("Could you send the corrected information?")
	return sb.String()
}

func greet(info types.BookingInfo, fallback string) string {
	if info.FullName == nil {
		return fallback
	}
	fields := strings.Fields(*info.FullName)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0] + ", "
}

type FailbackDialogueGenerator struct {
	generators []Generator
}

func NewFailbackDialogueGenerator(generators ...Generator) *FailbackDialogueGenerator {
	return &FailbackDialogueGenerator{generators: generators}
}

func (g *FailbackDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, generator := range g.generators {
		message, err := generator.GenerateDialogue(ctx, req)
		if err == nil && strings.TrimSpace(message) != "" {
			return message, nil
		}
		if err == nil {
			err = fmt.Errorf("empty %s dialogue", req.Kind)
		}
		lastErr = err
	}
	return "", fmt.Errorf("all dialogue generators failed: %w", lastErr)
}

func joinAnd(items []string) string {
	if len(items) < 2 {
		return strings.Join(items, "")
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
