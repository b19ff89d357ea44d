package quote

import (
	"errors"
	"fmt"
)

// ActionType names a workbench action.
type ActionType string

const (
	ActionSelectProduct       ActionType = "select_product"
	ActionBeginPlacement      ActionType = "begin_placement"
	ActionClick               ActionType = "click"
	ActionQuickLabel          ActionType = "quick_label"
	ActionSetLabel            ActionType = "set_label"
	ActionCommitPoint         ActionType = "commit_point"
	ActionCancelPoint         ActionType = "cancel_point"
	ActionSelectMaterialFirst ActionType = "select_material_first"
	ActionBeginDrag           ActionType = "begin_drag"
	ActionUpdateDrag          ActionType = "update_drag"
	ActionEndDrag             ActionType = "end_drag"
	ActionRemoveAnnotation    ActionType = "remove_annotation"
	ActionSelectAnnotation    ActionType = "select_annotation"
	ActionMoveAnnotation      ActionType = "move_annotation"
	ActionSetQuantity         ActionType = "set_quantity"
	ActionBlurQuantity        ActionType = "blur_quantity"
	ActionIncrement           ActionType = "increment"
	ActionDecrement           ActionType = "decrement"
	ActionAddItem             ActionType = "add_item"
	ActionEditItem            ActionType = "edit_item"
	ActionRemoveItem          ActionType = "remove_item"
	ActionCancel              ActionType = "cancel"
)

var (
	ErrUnknownAction  = errors.New("unknown workbench action")
	ErrMissingPayload = errors.New("missing action payload")
)

// Action is one user interaction on the workbench. Only the fields relevant
// to Type are read. Product and Material are resolved from the catalog by
// the caller before Apply.
type Action struct {
	Type       ActionType        `json:"type"`
	ProductID  string            `json:"product_id,omitempty"`
	MaterialID string            `json:"material_id,omitempty"`
	Product    *ProductSnapshot  `json:"-"`
	Material   *MaterialSnapshot `json:"-"`
	ID         string            `json:"id,omitempty"`
	Label      string            `json:"label,omitempty"`
	Viewport   *Viewport         `json:"viewport,omitempty"`
	Pointer    *Point            `json:"pointer,omitempty"`
	Quantity   string            `json:"quantity,omitempty"`
}

// IsNoop reports whether err describes an action that was ignored rather
// than one that failed. The returned builder is unchanged in that case.
func IsNoop(err error) bool {
	return errors.Is(err, ErrEmptyLabel) ||
		errors.Is(err, ErrNoMaterial) ||
		errors.Is(err, ErrNoPendingPoint) ||
		errors.Is(err, ErrDragInProgress)
}

// Apply returns the builder that results from applying a to b. b itself is
// never modified. On error the original state is returned.
func Apply(b Builder, a Action) (Builder, error) {
	next := b.clone()
	if err := next.apply(a); err != nil {
		return b, err
	}
	return next, nil
}

func (b *Builder) apply(a Action) error {
	c := &b.Canvas
	switch a.Type {
	case ActionSelectProduct:
		if a.Product == nil {
			return fmt.Errorf("%w: product", ErrMissingPayload)
		}
		b.SelectProduct(*a.Product)
	case ActionBeginPlacement:
		c.BeginPlacement()
	case ActionClick:
		if a.Viewport == nil || a.Pointer == nil {
			return fmt.Errorf("%w: viewport and pointer", ErrMissingPayload)
		}
		c.Click(*a.Viewport, *a.Pointer)
	case ActionQuickLabel:
		c.QuickLabel(a.Label)
	case ActionSetLabel:
		c.SetLabel(a.Label)
	case ActionCommitPoint:
		label := a.Label
		if label == "" {
			label = c.Label
		}
		if _, err := c.CommitPendingPoint(label, a.Material); err != nil {
			return err
		}
	case ActionCancelPoint:
		c.CancelPending()
	case ActionSelectMaterialFirst:
		if a.Material == nil {
			return fmt.Errorf("%w: material", ErrMissingPayload)
		}
		c.SelectMaterialFirst(*a.Material)
	case ActionBeginDrag:
		return c.BeginDrag(a.ID)
	case ActionMoveAnnotation:
		return c.Move(a.ID)
	case ActionUpdateDrag:
		if a.Viewport == nil || a.Pointer == nil {
			return fmt.Errorf("%w: viewport and pointer", ErrMissingPayload)
		}
		c.UpdateDrag(*a.Viewport, *a.Pointer)
	case ActionEndDrag:
		c.EndDrag()
	case ActionRemoveAnnotation:
		c.RemoveAnnotation(a.ID)
	case ActionSelectAnnotation:
		c.SelectAnnotation(a.ID)
	case ActionSetQuantity:
		b.SetQuantityInput(a.Quantity)
	case ActionBlurQuantity:
		b.BlurQuantity()
	case ActionIncrement:
		b.IncrementQuantity()
	case ActionDecrement:
		b.DecrementQuantity()
	case ActionAddItem:
		_, err := b.AddOrUpdateItem()
		return err
	case ActionEditItem:
		return b.EditItem(a.ID)
	case ActionRemoveItem:
		b.RemoveItem(a.ID)
	case ActionCancel:
		b.Cancel()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	return nil
}
