package builder

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"fmt"
)

type OperationKind string

const (
	OpAddField     OperationKind = "add_field"
	OpUpdateField  OperationKind = "update_field"
	OpDeleteField  OperationKind = "delete_field"
	OpMoveField    OperationKind = "move_field"
	OpAddOption    OperationKind = "add_option"
	OpRemoveOption OperationKind = "remove_option"
	OpUpdateOption OperationKind = "update_option"
	OpUndo         OperationKind = "undo"
	OpRedo         OperationKind = "redo"
)

// Operation is one builder edit in wire form, as posted by the schema editor.
type Operation struct {
	Kind        OperationKind `json:"op" validate:"required,oneof=add_field update_field delete_field move_field add_option remove_option update_option undo redo"`
	Index       int           `json:"index"`
	OptionIndex int           `json:"optionIndex"`
	Type        field.Type    `json:"type,omitempty"`
	Direction   Direction     `json:"direction,omitempty" validate:"omitempty,oneof=up down"`
	Value       string        `json:"value,omitempty"`
	Patch       *Patch        `json:"patch,omitempty"`
}

// apply runs the operation against s. Undo and redo are history operations and are handled
// by Session.
func (op Operation) apply(s Snapshot) (Snapshot, error) {
	switch op.Kind {
	case OpAddField:
		return s.AddField(op.Type)
	case OpUpdateField:
		var patch Patch
		if op.Patch != nil {
			patch = *op.Patch
		}
		return s.UpdateField(op.Index, patch)
	case OpDeleteField:
		return s.DeleteField(op.Index)
	case OpMoveField:
		return s.MoveField(op.Index, op.Direction), nil
	case OpAddOption:
		return s.AddOption(op.Index), nil
	case OpRemoveOption:
		return s.RemoveOption(op.Index, op.OptionIndex), nil
	case OpUpdateOption:
		return s.UpdateOption(op.Index, op.OptionIndex, op.Value), nil
	default:
		return s, fmt.Errorf("%w: %q", internal.ErrUnknownOperation, op.Kind)
	}
}
