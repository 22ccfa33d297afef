package agent

import (
	"context"
	"slices"
	"strings"

	"github.com/tbxark/hotelagent/dialogue"
	"github.com/tbxark/hotelagent/intent"
	"github.com/tbxark/hotelagent/patch"
	"github.com/tbxark/hotelagent/types"
)

type nodeFunc func(ctx context.Context, s *types.Session) error

// wrap records the node on the turn trace, logs the session around it and
// keeps the typed failure so it survives the graph's own error wrapping.
func (e *Engine) wrap(node Node, fn nodeFunc) func(ctx context.Context, s *types.Session) (*types.Session, error) {
	return func(ctx context.Context, s *types.Session) (*types.Session, error) {
		tr := traceFromContext(ctx)
		if tr != nil {
			tr.path = append(tr.path, node)
		}
		e.logger.Debug("Entering node", "node", node, "session", s)
		if err := fn(ctx, s); err != nil {
			nodeErr := &NodeError{Node: node, Err: err}
			if tr != nil {
				tr.err = nodeErr
			}
			return nil, nodeErr
		}
		e.logger.Debug("Leaving node", "node", node, "session", s)
		return s, nil
	}
}

func (e *Engine) detectIntent(ctx context.Context, s *types.Session) error {
	detected, err := e.caps.Classifier.Classify(ctx, &intent.Request{
		AssistantQuestion: s.Response,
		Answer:            s.UserMessage,
	})
	if err != nil {
		return err
	}
	s.Intent = detected.Normalize()
	return nil
}

func (e *Engine) collectInformation(ctx context.Context, s *types.Session) error {
	info, err := e.caps.Extractor.Extract(ctx, s.UserMessage)
	if err != nil {
		return err
	}
	filled := patch.FillMissing(s, info)
	e.logger.Debug("Collected booking information", "filled", filled, "missing", s.NotFilledKeys)
	return nil
}

func (e *Engine) changeInformation(ctx context.Context, s *types.Session) error {
	changes, err := e.caps.ChangeExtractor.ExtractChanges(ctx, s.UserMessage, s.Info())
	if err != nil {
		return err
	}
	changed, err := patch.ApplyChanges(s, changes)
	if err != nil {
		return err
	}
	if len(s.NotFilledKeys) > 0 {
		s.Intent = types.IntentMakeReservation
	} else {
		s.Intent = types.IntentCheckReservation
	}
	e.logger.Debug("Changed booking information", "changed", changed, "intent", s.Intent)
	return nil
}

func (e *Engine) validateInformation(ctx context.Context, s *types.Session) error {
	res := e.validator.Apply(s)
	e.logger.Debug("Validated booking information", "valid", res.Valid, "errors", res.Errors)
	return nil
}

func (e *Engine) generateResponse(ctx context.Context, s *types.Session) error {
	return e.generate(ctx, e.caps.Responder, s, &dialogue.Request{
		Kind:    dialogue.KindResponse,
		Intent:  s.Intent,
		Booking: s.Info(),
		Missing: slices.Clone(s.NotFilledKeys),
	})
}

func (e *Engine) summarizeBooking(ctx context.Context, s *types.Session) error {
	return e.generate(ctx, e.caps.Summarizer, s, &dialogue.Request{
		Kind:    dialogue.KindSummary,
		Intent:  s.Intent,
		Booking: s.Info(),
		Missing: slices.Clone(s.NotFilledKeys),
	})
}

func (e *Engine) askForCorrection(ctx context.Context, s *types.Session) error {
	return e.generate(ctx, e.caps.Corrector, s, &dialogue.Request{
		Kind:    dialogue.KindCorrection,
		Booking: s.Info(),
		Errors:  slices.Clone(s.Errors),
	})
}

func (e *Engine) generate(ctx context.Context, g dialogue.Generator, s *types.Session, req *dialogue.Request) error {
	message, err := g.GenerateDialogue(ctx, req)
	if err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return ErrEmptyResponse
	}
	s.Response = message
	return nil
}
