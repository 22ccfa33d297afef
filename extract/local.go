package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tbxark/hotelagent/patch"
	"github.com/tbxark/hotelagent/types"
	"github.com/tbxark/hotelagent/validate"
)

var (
	dateRe        = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	guestsAfterRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:guests?|people|persons?|adults?)\b`)
	guestsToRe    = regexp.MustCompile(`(?i)\bguests?\s*(?:to|=|:|is|are|of)?\s*(\d+)\b`)
	nameRe        = regexp.MustCompile(`(?i:my name is|name to|name is|i am|i'm|this is|under the name)\s+(\p{Lu}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*)+)`)
	noBreakfastRe = regexp.MustCompile(`(?i)\b(?:no|without|skip|don't want|do not want|not include|exclude)\b[^.!?]*\bbreakfast\b|\bbreakfast\b[^.!?]*\b(?:not needed|not included|no thanks)\b`)
	checkOutRe    = regexp.MustCompile(`(?i)\bcheck[- ]?out\b|\bleav(?:e|ing)\b|\bdepart`)
	checkInRe     = regexp.MustCompile(`(?i)\bcheck[- ]?in\b|\barriv`)
)

// LocalExtractor recognizes explicit, well-formed mentions with regular
// expressions. It is deliberately conservative: anything ambiguous is left
// out.
type LocalExtractor struct {
	PaymentMethods []string
}

// NewLocalExtractor recognizes the given payment methods, or the validator's
// defaults when none are given.
func NewLocalExtractor(paymentMethods ...string) *LocalExtractor {
	return &LocalExtractor{PaymentMethods: normalizeMethods(paymentMethods)}
}

func normalizeMethods(methods []string) []string {
	if len(methods) == 0 {
		methods = validate.DefaultPaymentMethods
	}
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func (e *LocalExtractor) Extract(ctx context.Context, message string) (*types.BookingInfo, error) {
	info := &types.BookingInfo{}
	if m := nameRe.FindStringSubmatch(message); m != nil {
		name := strings.TrimSpace(m[1])
		info.FullName = &name
	}
	e.extractDates(message, info)
	if n, ok := guests(message); ok {
		info.NumGuests = &n
	}
	lower := strings.ToLower(message)
	for _, method := range e.PaymentMethods {
		if strings.Contains(lower, method) {
			m := method
			info.PaymentMethod = &m
			break
		}
	}
	if strings.Contains(lower, "breakfast") {
		included := !noBreakfastRe.MatchString(message)
		info.BreakfastIncluded = &included
	}
	return info, nil
}

// ExtractChanges treats every recognized mention as a replacement.
func (e *LocalExtractor) ExtractChanges(ctx context.Context, message string, current types.BookingInfo) ([]patch.Operation, error) {
	info, err := e.Extract(ctx, message)
	if err != nil {
		return nil, err
	}
	return patch.ReplaceOps(info), nil
}

func (e *LocalExtractor) extractDates(message string, info *types.BookingInfo) {
	dates := dateRe.FindAllString(message, -1)
	switch {
	case len(dates) >= 2:
		in, out := dates[0], dates[1]
		info.CheckInDate = &in
		info.CheckOutDate = &out
	case len(dates) == 1:
		d := dates[0]
		if checkOutRe.MatchString(message) && !checkInRe.MatchString(message) {
			info.CheckOutDate = &d
		} else {
			info.CheckInDate = &d
		}
	}
}

func guests(message string) (int, bool) {
	for _, re := range []*regexp.Regexp{guestsAfterRe, guestsToRe} {
		if m := re.FindStringSubmatch(message); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

type FailbackExtractor struct {
	extractors []Extractor
}

func NewFailbackExtractor(extractors ...Extractor) *FailbackExtractor {
	return &FailbackExtractor{extractors: extractors}
}

func (e *FailbackExtractor) Extract(ctx context.Context, message string) (*types.BookingInfo, error) {
	var lastErr error
	for _, extractor := range e.extractors {
		info, err := extractor.Extract(ctx, message)
		if err == nil {
			return info, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}

type FailbackChangeExtractor struct {
	extractors []ChangeExtractor
}

func NewFailbackChangeExtractor(extractors ...ChangeExtractor) *FailbackChangeExtractor {
	return &FailbackChangeExtractor{extractors: extractors}
}

func (e *FailbackChangeExtractor) ExtractChanges(ctx context.Context, message string, current types.BookingInfo) ([]patch.Operation, error) {
	var lastErr error
	for _, extractor := range e.extractors {
		ops, err := extractor.ExtractChanges(ctx, message, current)
		if err == nil {
			return ops, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all change extractors failed: %w", lastErr)
}
