package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/hotelagent/patch"
	"github.com/tbxark/hotelagent/structured"
	"github.com/tbxark/hotelagent/types"
)

const (
	extractBookingToolName        = "extract_booking_info"
	extractBookingToolDescription = "Record the booking information explicitly mentioned in the user's message. Leave out anything not mentioned."

	changeBookingToolName        = "change_booking_info"
	changeBookingToolDescription = "Generate RFC6902 JSON Patch operations for only the booking fields the user asks to change or withdraw. Leave out everything else."
)

const DefaultExtractSystemPrompt = `You are an AI assistant for a hotel booking system. Extract the booking information explicitly mentioned in the user's message:
1. Full name of the guest (a first name alone is not enough)
2. Check-in date
3. Check-out date
4. Number of guests
5. Payment method
6. Whether breakfast is included

Write dates as YYYY-MM-DD, resolving relative dates against the current date. If a piece of information is not mentioned, leave it out. Never guess.

Call the '%s' tool with the result.`

const DefaultChangeSystemPrompt = `You are an AI assistant for a hotel booking system. The user wants to change their reservation. Extract only the information the user wants to change, comparing the message with the current booking.

If the user wants to change the stay dates, decide carefully whether only the check-in date, only the check-out date, or both dates change. Write dates as YYYY-MM-DD, resolving relative dates against the current date.

Call the '%s' tool with RFC6902 JSON Patch operations:
- use "replace" with the new value for every field the user changes
- use "remove" for a field the user withdraws and wants to give again later
- only use these paths: ` + "/full_name, /check_in_date, /check_out_date, /num_guests, /payment_method, /breakfast_included" + `
- leave out every field the user does not ask to change; if nothing changes, return empty operations`

type extractRequest struct {
	Message string
	Current *types.BookingInfo
}

type toolOptions struct {
	systemPrompt   string
	now            func() time.Time
	paymentMethods []string
}

type ToolOption func(*toolOptions)

// WithSystemPrompt overrides the system prompt. A "%s" placeholder receives the
// tool name.
func WithSystemPrompt(prompt string) ToolOption {
	return func(o *toolOptions) {
		o.systemPrompt = prompt
	}
}

func WithClock(now func() time.Time) ToolOption {
	return func(o *toolOptions) {
		o.now = now
	}
}

// WithPaymentMethods lists the accepted payment methods in the prompt.
func WithPaymentMethods(methods ...string) ToolOption {
	return func(o *toolOptions) {
		o.paymentMethods = methods
	}
}

func newToolOptions(defaultPrompt string, opts []ToolOption) toolOptions {
	o := toolOptions{systemPrompt: defaultPrompt, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.paymentMethods = normalizeMethods(o.paymentMethods)
	return o
}

func buildPrompt(o toolOptions, toolName string) structured.PromptBuilder[*extractRequest] {
	systemPrompt := o.systemPrompt
	if strings.Contains(systemPrompt, "%s") {
		systemPrompt = fmt.Sprintf(systemPrompt, toolName)
	}
	return func(ctx context.Context, req *extractRequest) ([]*schema.Message, error) {
		sections := []string{
			types.FormatCurrentDate(o.now()),
			"# Accepted payment methods:\n" + strings.Join(o.paymentMethods, ", "),
		}
		if req.Current != nil {
			sections = append(sections, "# Current booking information:\n"+types.FormatBooking(*req.Current))
		}
		sections = append(sections, "# User's message:\n"+req.Message)
		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(strings.Join(sections, "\n\n")),
		}, nil
	}
}

type ToolBasedExtractor struct {
	chain *structured.Chain[*extractRequest, types.BookingInfo]
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel, opts ...ToolOption) (*ToolBasedExtractor, error) {
	o := newToolOptions(DefaultExtractSystemPrompt, opts)
	chain, err := structured.NewChain[*extractRequest, types.BookingInfo](
		chatModel,
		buildPrompt(o, extractBookingToolName),
		extractBookingToolName,
		extractBookingToolDescription,
		model.WithTemperature(0),
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedExtractor{chain: chain}, nil
}

func (e *ToolBasedExtractor) Extract(ctx context.Context, message string) (*types.BookingInfo, error) {
	info, err := e.chain.Invoke(ctx, &extractRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	return sanitize(info), nil
}

type ToolBasedChangeExtractor struct {
	chain *structured.Chain[*extractRequest, patch.UpdateBookingArgs]
}

func NewToolBasedChangeExtractor(chatModel model.ToolCallingChatModel, opts ...ToolOption) (*ToolBasedChangeExtractor, error) {
	o := newToolOptions(DefaultChangeSystemPrompt, opts)
	chain, err := structured.NewChain[*extractRequest, patch.UpdateBookingArgs](
		chatModel,
		buildPrompt(o, changeBookingToolName),
		changeBookingToolName,
		changeBookingToolDescription,
		model.WithTemperature(0),
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedChangeExtractor{chain: chain}, nil
}

func (e *ToolBasedChangeExtractor) ExtractChanges(ctx context.Context, message string, current types.BookingInfo) ([]patch.Operation, error) {
	args, err := e.chain.Invoke(ctx, &extractRequest{Message: message, Current: &current})
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if args == nil {
		return nil, nil
	}
	ops := sanitizeOps(args.Ops)
	if err := patch.ValidateOperations(ops); err != nil {
		return nil, fmt.Errorf("generated patches failed validation: %w", err)
	}
	return ops, nil
}

// sanitize drops blank strings models sometimes emit for unmentioned fields.
func sanitize(info *types.BookingInfo) *types.BookingInfo {
	if info == nil {
		return &types.BookingInfo{}
	}
	for _, p := range []**string{&info.FullName, &info.CheckInDate, &info.CheckOutDate, &info.PaymentMethod} {
		if *p == nil {
			continue
		}
		v := strings.TrimSpace(**p)
		if blank(v) {
			*p = nil
			continue
		}
		*p = &v
	}
	return info
}

// sanitizeOps drops add/replace operations whose value is missing or blank.
func sanitizeOps(ops []patch.Operation) []patch.Operation {
	out := make([]patch.Operation, 0, len(ops))
	for _, op := range ops {
		if op.Op != patch.OperationRemove {
			if op.Value == nil {
				continue
			}
			if v, ok := op.Value.(string); ok {
				v = strings.TrimSpace(v)
				if blank(v) {
					continue
				}
				op.Value = v
			}
		}
		out = append(out, op)
	}
	return out
}

func blank(v string) bool {
	return v == "" || strings.EqualFold(v, "none") || strings.EqualFold(v, "null")
}
