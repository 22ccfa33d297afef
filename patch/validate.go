package patch

import "fmt"

// ValidateOperations rejects operations outside the booking slots and
// add/replace operations without a value.
func ValidateOperations(ops []Operation) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace:
			if op.Value == nil {
				return fmt.Errorf("operation %d: %s on %q requires a value", i, op.Op, op.Path)
			}
		case OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		if _, ok := PathSlot(op.Path); !ok {
			return fmt.Errorf("operation %d: path %q is not in the allowed paths set", i, op.Path)
		}
	}
	return nil
}
