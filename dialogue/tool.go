package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/hotelagent/types"
)

// DefaultResponseSystemPromptTemplate takes the hotel name and the reply
// language.
const DefaultResponseSystemPromptTemplate = `You are the booking assistant of %s. Your primary tasks are:
1. Assist users in making new reservations.
2. Help users check or change existing reservations.
3. Politely redirect users if their query is unrelated to reservations.

Instructions based on the current intent:
- other: politely explain that you can only help with making, checking or changing a reservation and ask whether they would like help with that.
- make_reservation: look at the booking information. For the missing information, ask a follow-up question about one item at a time. If everything is provided, confirm the details and ask whether to proceed with the booking.

Observations:
- When asking about dates, always ask for the format YYYY-MM-DD.
- Refer to the guest by first name only, but make sure the full name is collected.
- If the full name is already known, do not introduce yourself again.
- Be friendly, professional and focused on the guest's needs. Reply in %s.`

const DefaultSummarySystemPromptTemplate = `You are the booking assistant of %s. Summarize the current booking information, mention any missing details, and ask whether the guest wants to provide the missing information or change anything. If all information is provided, confirm that the reservation is booked and ask whether you can help with anything else.

You are in an active conversation, so avoid sounding like an email. Do not ask for any information other than the booking fields listed. Reply in %s.`

const DefaultCorrectionSystemPromptTemplate = `You are a polite and professional booking assistant of %s. The guest provided booking information, but some of it has errors. Write a message asking the guest to correct it. Be specific about what needs to change and keep a friendly tone.

Observations:
- If the full name was not provided, address the guest as "Dear Guest"; otherwise use only their first name.
- You are in an active conversation, so avoid sounding like an email.
- Ask for at most two corrections at once.
- Output only the message to the guest. Reply in %s.`

type ToolBasedDialogueGenerator struct {
	Kind         Kind
	HotelName    string
	Lang         string
	systemPrompt string
	temperature  *float32
	chatModel    model.ToolCallingChatModel
}

type generatorOptions struct {
	hotelName    string
	lang         string
	systemPrompt string
	temperature  *float32
}

type GeneratorOption func(*generatorOptions)

func WithHotelName(name string) GeneratorOption {
	return func(o *generatorOptions) {
		o.hotelName = name
	}
}

// WithDialogueLang sets the language the assistant replies in.
func WithDialogueLang(lang string) GeneratorOption {
	return func(o *generatorOptions) {
		o.lang = lang
	}
}

// WithDialogueSystemPrompt replaces the default prompt of the generator kind.
// "%s" placeholders receive the hotel name and the language, in that order.
func WithDialogueSystemPrompt(prompt string) GeneratorOption {
	return func(o *generatorOptions) {
		o.systemPrompt = prompt
	}
}

func WithTemperature(temperature float32) GeneratorOption {
	return func(o *generatorOptions) {
		o.temperature = &temperature
	}
}

func defaultTemplate(kind Kind) string {
	switch kind {
	case KindSummary:
		return DefaultSummarySystemPromptTemplate
	case KindCorrection:
		return DefaultCorrectionSystemPromptTemplate
	default:
		return DefaultResponseSystemPromptTemplate
	}
}

func NewToolBasedDialogueGenerator(chatModel model.ToolCallingChatModel, kind Kind, opts ...GeneratorOption) *ToolBasedDialogueGenerator {
	options := generatorOptions{
		hotelName: "GrandVista Hotel",
		lang:      "English",
	}
	if kind == KindCorrection {
		t := float32(0.7)
		options.temperature = &t
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	tpl := options.systemPrompt
	if tpl == "" {
		tpl = defaultTemplate(kind)
	}
	systemPrompt := tpl
	if n := strings.Count(tpl, "%s"); n == 2 {
		systemPrompt = fmt.Sprintf(tpl, options.hotelName, options.lang)
	} else if n == 1 {
		systemPrompt = fmt.Sprintf(tpl, options.hotelName)
	}
	return &ToolBasedDialogueGenerator{
		Kind:         kind,
		HotelName:    options.hotelName,
		Lang:         options.lang,
		systemPrompt: systemPrompt,
		temperature:  options.temperature,
		chatModel:    chatModel,
	}
}

func (g *ToolBasedDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	messages := g.buildDialoguePrompt(req)
	var opts []model.Option
	if g.temperature != nil {
		opts = append(opts, model.WithTemperature(*g.temperature))
	}
	response, err := g.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

func (g *ToolBasedDialogueGenerator) buildDialoguePrompt(req *Request) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(g.systemPrompt),
		schema.UserMessage(FormatRequest(req)),
	}
}

// FormatRequest renders the request as the user turn of the prompt.
func FormatRequest(req *Request) string {
	var sections []string
	if req.Kind != KindCorrection && req.Intent != "" {
		sections = append(sections, fmt.Sprintf("# Current intent:\n%s", req.Intent))
	}
	sections = append(sections, "# Current booking information:\n"+strings.TrimRight(types.FormatBooking(req.Booking), "\n"))
	if req.Kind != KindCorrection {
		sections = append(sections, "# Missing information:\n"+types.FormatMissing(req.Missing))
	}
	if req.Kind == KindCorrection {
		sections = append(sections, "# Errors identified:\n"+types.FormatErrors(req.Errors))
	}
	return strings.Join(sections, "\n\n")
}
