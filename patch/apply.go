// Package patch merges extracted booking fields and change operations into a
// session.
package patch

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tbxark/hotelagent/types"
)

// FillMissing copies every extracted value whose slot is still awaiting
// collection. Slots already filled are left alone. It returns the slots it
// filled.
func FillMissing(s *types.Session, info *types.BookingInfo) []types.Slot {
	if info == nil {
		return nil
	}
	var filled []types.Slot
	for _, slot := range types.AllSlots() {
		if !info.Has(slot) || !s.IsMissing(slot) {
			continue
		}
		s.SetSlot(slot, info)
		s.MarkFilled(slot)
		filled = append(filled, slot)
	}
	return filled
}

// ApplyChanges applies RFC 6902 operations over the current slot snapshot.
// Slots left with a value are removed from NotFilledKeys; slots the patch
// removed are cleared and put back on it. It returns the touched slots in
// canonical order.
func ApplyChanges(s *types.Session, ops []Operation) ([]types.Slot, error) {
	if len(ops) == 0 {
		return nil, nil
	}
	if err := ValidateOperations(ops); err != nil {
		return nil, err
	}

	currentJSON, err := json.Marshal(s.Info())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current booking: %w", err)
	}
	fixed := FixOperation(currentJSON, ops)
	patchJSON, err := json.Marshal(fixed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	modifiedJSON, err := p.Apply(currentJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch: %w", err)
	}
	var modified types.BookingInfo
	if err := json.Unmarshal(modifiedJSON, &modified); err != nil {
		return nil, fmt.Errorf("type mismatch: patched booking is invalid: %w", err)
	}

	paths := make(map[types.Slot]bool, len(ops))
	for _, op := range ops {
		slot, _ := PathSlot(op.Path)
		paths[slot] = true
	}
	var touched []types.Slot
	for _, slot := range types.AllSlots() {
		if !paths[slot] {
			continue
		}
		touched = append(touched, slot)
		if s.SetSlot(slot, &modified) {
			s.MarkFilled(slot)
		} else {
			s.ClearSlot(slot)
			s.MarkMissing(slot)
		}
	}
	return touched, nil
}

// FixOperation downgrades replace to add when the slot is absent and drops
// remove operations on absent slots, so a patch written against a stale view
// of the booking still applies.
func FixOperation(currentJSON []byte, ops []Operation) []Operation {
	var doc map[string]any
	if err := json.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		key := strings.TrimPrefix(op.Path, "/")
		_, exists := doc[key]
		switch op.Op {
		case OperationReplace:
			if !exists {
				op.Op = OperationAdd
			}
			doc[key] = op.Value
		case OperationAdd:
			doc[key] = op.Value
		case OperationRemove:
			if !exists {
				continue
			}
			delete(doc, key)
		}
		fixed = append(fixed, op)
	}
	return fixed
}
