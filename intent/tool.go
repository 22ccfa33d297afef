package intent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/hotelagent/structured"
	"github.com/tbxark/hotelagent/types"
)

const (
	classifyIntentToolName        = "classify_intent"
	classifyIntentToolDescription = "Classify the hotel guest's latest reply into one of: make_reservation, check_reservation, change_reservation, other."
)

// DefaultClassifySystemPromptTemplate is the default system prompt used by
// ToolBasedClassifier. It may contain a single "%s" placeholder for the tool name.
const DefaultClassifySystemPromptTemplate = `You are an AI assistant for a hotel booking system. Classify the intent of the user's reply into one of the following categories:
- make_reservation: the user wants to book a room or is providing booking details (name, dates, guests, payment, breakfast) in answer to the assistant.
- check_reservation: the user wants to see or confirm the current reservation details.
- change_reservation: the user wants to modify details of a reservation that were already given.
- other: anything unrelated to reservations.

IMPORTANT: Always read the assistant's last question together with the user's reply. If the last question is empty, treat the reply as the first message of the conversation.

Call the '%s' tool with the result.`

type PromptBuilder func(systemPrompt string) structured.PromptBuilder[*Request]

type classifierOptions struct {
	systemPromptTemplate string
	promptBuilder        PromptBuilder
}

type ClassifierOption func(*classifierOptions)

func WithSystemPromptTemplate(tpl string) ClassifierOption {
	return func(o *classifierOptions) {
		o.systemPromptTemplate = tpl
	}
}

func WithPromptBuilder(builder PromptBuilder) ClassifierOption {
	return func(o *classifierOptions) {
		o.promptBuilder = builder
	}
}

func defaultPromptBuilder(systemPrompt string) structured.PromptBuilder[*Request] {
	return func(ctx context.Context, req *Request) ([]*schema.Message, error) {
		question := req.AssistantQuestion
		if question == "" {
			question = "(none, this is the first message)"
		}
		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(fmt.Sprintf("# Last asked question:\n%s\n\n# User's reply:\n%s", question, req.Answer)),
		}, nil
	}
}

type classifyIntentOutput struct {
	Intent string `json:"intent" jsonschema:"required,enum=make_reservation,enum=check_reservation,enum=change_reservation,enum=other,description=The classified intent of the user's message"`
}

type ToolBasedClassifier struct {
	chain *structured.Chain[*Request, classifyIntentOutput]
}

func NewToolBasedClassifier(chatModel model.ToolCallingChatModel, opts ...ClassifierOption) (*ToolBasedClassifier, error) {
	options := classifierOptions{
		systemPromptTemplate: DefaultClassifySystemPromptTemplate,
		promptBuilder:        defaultPromptBuilder,
	}
	for _, o := range opts {
		if o != nil {
			o(&options)
		}
	}
	chain, err := structured.NewChain[*Request, classifyIntentOutput](
		chatModel,
		options.promptBuilder(fmt.Sprintf(options.systemPromptTemplate, classifyIntentToolName)),
		classifyIntentToolName,
		classifyIntentToolDescription,
		model.WithTemperature(0),
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedClassifier{chain: chain}, nil
}

// Classify never returns a label outside the four known intents; anything
// unexpected from the model becomes IntentOther.
func (c *ToolBasedClassifier) Classify(ctx context.Context, req *Request) (types.Intent, error) {
	result, err := c.chain.Invoke(ctx, req)
	if err != nil {
		return types.IntentOther, err
	}
	if result == nil || result.Intent == "" {
		return types.IntentOther, fmt.Errorf("empty intent returned by %s", classifyIntentToolName)
	}
	intent, _ := types.ParseIntent(result.Intent)
	return intent, nil
}
