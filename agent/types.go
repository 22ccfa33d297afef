package agent

import (
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/hotelagent/dialogue"
	"github.com/tbxark/hotelagent/extract"
	"github.com/tbxark/hotelagent/intent"
	"github.com/tbxark/hotelagent/types"
)

// Capabilities are the pluggable language services the graph nodes call.
type Capabilities struct {
	Classifier      intent.Classifier
	Extractor       extract.Extractor
	ChangeExtractor extract.ChangeExtractor
	Responder       dialogue.Generator
	Summarizer      dialogue.Generator
	Corrector       dialogue.Generator
}

func (c Capabilities) check() error {
	var errs []error
	if c.Classifier == nil {
		errs = append(errs, errors.New("classifier is required"))
	}
	if c.Extractor == nil {
		errs = append(errs, errors.New("extractor is required"))
	}
	if c.ChangeExtractor == nil {
		errs = append(errs, errors.New("change extractor is required"))
	}
	if c.Responder == nil {
		errs = append(errs, errors.New("response generator is required"))
	}
	if c.Summarizer == nil {
		errs = append(errs, errors.New("summary generator is required"))
	}
	if c.Corrector == nil {
		errs = append(errs, errors.New("correction generator is required"))
	}
	return errors.Join(errs...)
}

// LocalCapabilities builds model-free capabilities. With no payment methods
// the extractor recognizes the validator's defaults.
func LocalCapabilities(hotelName string, paymentMethods ...string) Capabilities {
	extractor := extract.NewLocalExtractor(paymentMethods...)
	generator := dialogue.NewLocalDialogueGenerator(hotelName)
	generator.PaymentMethods = extractor.PaymentMethods
	return Capabilities{
		Classifier:      intent.NewLocalClassifier(),
		Extractor:       extractor,
		ChangeExtractor: extractor,
		Responder:       generator,
		Summarizer:      generator,
		Corrector:       generator,
	}
}

// ToolBasedCapabilities backs every capability with the chat model. A nil
// paymentMethods uses the validator's defaults.
func ToolBasedCapabilities(chatModel model.ToolCallingChatModel, paymentMethods []string, dialogueOpts ...dialogue.GeneratorOption) (Capabilities, error) {
	classifier, err := intent.NewToolBasedClassifier(chatModel)
	if err != nil {
		return Capabilities{}, fmt.Errorf("failed to create tool-based intent classifier: %w", err)
	}
	extractOpts := []extract.ToolOption{extract.WithPaymentMethods(paymentMethods...)}
	extractor, err := extract.NewToolBasedExtractor(chatModel, extractOpts...)
	if err != nil {
		return Capabilities{}, fmt.Errorf("failed to create tool-based extractor: %w", err)
	}
	changeExtractor, err := extract.NewToolBasedChangeExtractor(chatModel, extractOpts...)
	if err != nil {
		return Capabilities{}, fmt.Errorf("failed to create tool-based change extractor: %w", err)
	}
	return Capabilities{
		Classifier:      classifier,
		Extractor:       extractor,
		ChangeExtractor: changeExtractor,
		Responder:       dialogue.NewToolBasedDialogueGenerator(chatModel, dialogue.KindResponse, dialogueOpts...),
		Summarizer:      dialogue.NewToolBasedDialogueGenerator(chatModel, dialogue.KindSummary, dialogueOpts...),
		Corrector:       dialogue.NewToolBasedDialogueGenerator(chatModel, dialogue.KindCorrection, dialogueOpts...),
	}, nil
}

// WithFailback chains each capability of primary with the matching one of
// fallback.
func WithFailback(primary, fallback Capabilities) Capabilities {
	return Capabilities{
		Classifier:      intent.NewFailbackClassifier(primary.Classifier, fallback.Classifier),
		Extractor:       extract.NewFailbackExtractor(primary.Extractor, fallback.Extractor),
		ChangeExtractor: extract.NewFailbackChangeExtractor(primary.ChangeExtractor, fallback.ChangeExtractor),
		Responder:       dialogue.NewFailbackDialogueGenerator(primary.Responder, fallback.Responder),
		Summarizer:      dialogue.NewFailbackDialogueGenerator(primary.Summarizer, fallback.Summarizer),
		Corrector:       dialogue.NewFailbackDialogueGenerator(primary.Corrector, fallback.Corrector),
	}
}

// Turn is the outcome of one engine run.
type Turn struct {
	Session *types.Session `json:"session"`
	Path    []Node         `json:"path"`
}
