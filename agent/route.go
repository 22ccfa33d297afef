package agent

import "github.com/tbxark/hotelagent/types"

type Node string

const (
	NodeDetectIntent        Node = "detect_intent"
	NodeCollectInformation  Node = "collect_information"
	NodeValidateInformation Node = "validate_information"
	NodeChangeInformation   Node = "change_information"
	NodeGenerateResponse    Node = "generate_response"
	NodeSummarizeBooking    Node = "summarize_booking"
	NodeAskForCorrection    Node = "ask_for_correction"
)

// Nodes lists every node in graph order.
func Nodes() []Node {
	return []Node{
		NodeDetectIntent,
		NodeCollectInformation,
		NodeValidateInformation,
		NodeChangeInformation,
		NodeGenerateResponse,
		NodeSummarizeBooking,
		NodeAskForCorrection,
	}
}

// IsTerminal reports whether the turn ends after the node.
func (n Node) IsTerminal() bool {
	switch n {
	case NodeGenerateResponse, NodeSummarizeBooking, NodeAskForCorrection:
		return true
	}
	return false
}

// Transition is one edge of the dialog graph. A nil When always matches.
type Transition struct {
	From  Node
	To    Node
	Label string
	When  func(s *types.Session) bool
}

func intentIs(intent types.Intent) func(*types.Session) bool {
	return func(s *types.Session) bool {
		return s.Intent.Normalize() == intent
	}
}

// transitions are evaluated in order; the first match wins.
var transitions = []Transition{
	{From: NodeDetectIntent, To: NodeCollectInformation, Label: string(types.IntentMakeReservation), When: intentIs(types.IntentMakeReservation)},
	{From: NodeDetectIntent, To: NodeSummarizeBooking, Label: string(types.IntentCheckReservation), When: intentIs(types.IntentCheckReservation)},
	{From: NodeDetectIntent, To: NodeChangeInformation, Label: string(types.IntentChangeReservation), When: intentIs(types.IntentChangeReservation)},
	{From: NodeDetectIntent, To: NodeGenerateResponse, Label: string(types.IntentOther), When: intentIs(types.IntentOther)},
	{From: NodeCollectInformation, To: NodeValidateInformation},
	{From: NodeValidateInformation, To: NodeAskForCorrection, Label: "invalid", When: func(s *types.Session) bool { return !s.ValidInfo }},
	{From: NodeValidateInformation, To: NodeGenerateResponse, Label: "valid", When: func(s *types.Session) bool { return s.ValidInfo }},
	{From: NodeChangeInformation, To: NodeSummarizeBooking},
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// Route picks the successor of from for the session. ok is false for
// terminal nodes.
func Route(from Node, s *types.Session) (Node, bool) {
	for _, t := range transitions {
		if t.From != from {
			continue
		}
		if t.When == nil || t.When(s) {
			return t.To, true
		}
	}
	return "", false
}

func outgoing(from Node) []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.From == from {
			out = append(out, t)
		}
	}
	return out
}
