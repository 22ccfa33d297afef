package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tbxark/hotelagent/types"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name    string
		from    Node
		session *types.Session
		want    Node
	}{
		{"make", NodeDetectIntent, &types.Session{Intent: types.IntentMakeReservation}, NodeCollectInformation},
		{"check", NodeDetectIntent, &types.Session{Intent: types.IntentCheckReservation}, NodeSummarizeBooking},
		{"change", NodeDetectIntent, &types.Session{Intent: types.IntentChangeReservation}, NodeChangeInformation},
		{"other", NodeDetectIntent, &types.Session{Intent: types.IntentOther}, NodeGenerateResponse},
		{"absent", NodeDetectIntent, &types.Session{}, NodeGenerateResponse},
		{"unknown", NodeDetectIntent, &types.Session{Intent: "greeting"}, NodeGenerateResponse},
		{"legacy label", NodeDetectIntent, &types.Session{Intent: "make a reservation"}, NodeCollectInformation},
		{"collect", NodeCollectInformation, &types.Session{}, NodeValidateInformation},
		{"invalid", NodeValidateInformation, &types.Session{ValidInfo: false}, NodeAskForCorrection},
		{"valid", NodeValidateInformation, &types.Session{ValidInfo: true}, NodeGenerateResponse},
		{"changed", NodeChangeInformation, &types.Session{}, NodeSummarizeBooking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Route(tt.from, tt.session)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalNodesHaveNoRoute(t *testing.T) {
	for _, node := range []Node{NodeGenerateResponse, NodeSummarizeBooking, NodeAskForCorrection} {
		assert.True(t, node.IsTerminal())
		_, ok := Route(node, &types.Session{})
		assert.False(t, ok, node)
	}
	assert.False(t, NodeDetectIntent.IsTerminal())
}

func TestTransitionsIsACopy(t *testing.T) {
	table := Transitions()
	table[0].To = NodeAskForCorrection
	got, _ := Route(NodeDetectIntent, &types.Session{Intent: types.IntentMakeReservation})
	assert.Equal(t, NodeCollectInformation, got)
}

func TestRenderMermaid(t *testing.T) {
	out := RenderMermaid(NodeDetectIntent, NodeGenerateResponse, NodeDetectIntent)
	assert.Contains(t, out, "graph TD\n")
	assert.Contains(t, out, "START --> detect_intent")
	assert.Contains(t, out, `detect_intent -- "make_reservation" --> collect_information`)
	assert.Contains(t, out, `validate_information -- "invalid" --> ask_for_correction`)
	assert.Contains(t, out, "change_information --> summarize_booking")
	assert.Contains(t, out, "summarize_booking --> END")
	assert.Contains(t, out, "class generate_response visited;")
	assert.Equal(t, 1, strings.Count(out, "class detect_intent visited;"))
}
