package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/hotelagent/types"
)

// LocalClassifier is a keyword based classifier used offline or as the last
// link of a failback chain.
type LocalClassifier struct {
	ChangeKeywords  []string
	CheckKeywords   []string
	BookingKeywords []string
}

func NewLocalClassifier() *LocalClassifier {
	return &LocalClassifier{
		ChangeKeywords:  []string{"change", "modify", "update", "instead", "switch", "correct"},
		CheckKeywords:   []string{"check", "summary", "summarize", "show my", "status", "what did i book", "review"},
		BookingKeywords: []string{"book", "reserv", "room", "stay", "night", "guest", "check-in", "check in", "check-out", "check out", "breakfast", "pay", "card", "cash", "paypal", "my name"},
	}
}

func (c *LocalClassifier) Classify(ctx context.Context, req *Request) (types.Intent, error) {
	answer := strings.ToLower(strings.TrimSpace(req.Answer))
	if answer == "" {
		return types.IntentOther, nil
	}
	switch {
	case containsAny(answer, c.ChangeKeywords):
		return types.IntentChangeReservation, nil
	case containsAny(answer, c.CheckKeywords) && !strings.Contains(answer, "check-in") && !strings.Contains(answer, "check in") && !strings.Contains(answer, "check-out") && !strings.Contains(answer, "check out"):
		return types.IntentCheckReservation, nil
	case containsAny(answer, c.BookingKeywords) || hasDigit(answer):
		return types.IntentMakeReservation, nil
	}
	// A short reply to a booking question keeps the booking going.
	if req.AssistantQuestion != "" && len(strings.Fields(answer)) <= 4 {
		return types.IntentMakeReservation, nil
	}
	return types.IntentOther, nil
}

type FailbackClassifier struct {
	classifiers []Classifier
}

func NewFailbackClassifier(classifiers ...Classifier) *FailbackClassifier {
	return &FailbackClassifier{classifiers: classifiers}
}

func (c *FailbackClassifier) Classify(ctx context.Context, req *Request) (types.Intent, error) {
	var lastErr error
	for _, classifier := range c.classifiers {
		intent, err := classifier.Classify(ctx, req)
		if err == nil {
			return intent, nil
		}
		lastErr = err
	}
	return types.IntentOther, fmt.Errorf("all intent classifiers failed: %w", lastErr)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
