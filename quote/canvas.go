package quote

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode is the placement mode of the annotation canvas.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeArmed   Mode = "armed"
	ModePending Mode = "pending"
)

// QuickLabels is the fixed vocabulary offered as label shortcuts.
var QuickLabels = []string{
	"Seat", "Back", "Legs", "Arms", "Cushion",
	"Frame", "Piping", "Stitching", "Base", "Headrest",
}

var (
	ErrEmptyLabel         = errors.New("label is required")
	ErrNoMaterial         = errors.New("material is required")
	ErrNoPendingPoint     = errors.New("no pending point")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrDragInProgress     = errors.New("another annotation is being dragged")
)

// newID and now are swapped in tests.
var (
	newID = uuid.NewString
	now   = time.Now
)

// Viewport is the on-screen bounding box of the product image at the time
// of a pointer event.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ClampPosition converts a pointer position into image percentages clamped
// to [0,100] on both axes. A degenerate viewport maps to the origin.
func ClampPosition(v Viewport, pointer Point) Point {
	return Point{
		X: clampPercent(pointer.X-v.Left, v.Width),
		Y: clampPercent(pointer.Y-v.Top, v.Height),
	}
}

func clampPercent(offset, size float64) float64 {
	if size <= 0 {
		return 0
	}
	p := offset / size * 100
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Canvas is the annotation state of one item being configured. It is a plain
// value so it can be serialised, sent to a client and applied again.
type Canvas struct {
	Annotations []Annotation `json:"annotations"`
	Mode        Mode         `json:"mode"`
	Pending     *Point       `json:"pending,omitempty"`
	Label       string       `json:"label"`
	SelectedID  string       `json:"selected_id,omitempty"`
	DraggingID  string       `json:"dragging_id,omitempty"`
}

// NewCanvas starts a canvas over existing annotations.
func NewCanvas(annotations []Annotation) Canvas {
	c := Canvas{Mode: ModeIdle}
	c.Annotations = append(c.Annotations, annotations...)
	return c
}

func (c *Canvas) mode() Mode {
	if c.Mode == "" {
		return ModeIdle
	}
	return c.Mode
}

func (c *Canvas) index(id string) int {
	for i, a := range c.Annotations {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the annotation with the given id.
func (c *Canvas) Find(id string) (Annotation, bool) {
	if i := c.index(id); i >= 0 {
		return c.Annotations[i], true
	}
	return Annotation{}, false
}

// BeginPlacement arms the canvas so the next click captures a point. Calling
// it again while armed or pending returns to idle and drops the pending point.
func (c *Canvas) BeginPlacement() {
	if c.mode() != ModeIdle {
		c.resetPlacement()
		return
	}
	c.Mode = ModeArmed
	c.SelectedID = ""
}

func (c *Canvas) resetPlacement() {
	c.Mode = ModeIdle
	c.Pending = nil
	c.Label = ""
}

// Click handles a pointer click on the image. It only captures a point when
// the canvas is armed and no drag is in progress, and reports whether it did.
func (c *Canvas) Click(v Viewport, pointer Point) bool {
	if c.DraggingID != "" || c.mode() != ModeArmed {
		return false
	}
	p := ClampPosition(v, pointer)
	c.Pending = &p
	c.Mode = ModePending
	return true
}

// SetLabel pre-fills the label of the pending point with free text.
func (c *Canvas) SetLabel(label string) {
	c.Label = label
}

// QuickLabel pre-fills the label from the quick-label vocabulary. Unknown
// labels are ignored.
func (c *Canvas) QuickLabel(label string) bool {
	for _, l := range QuickLabels {
		if strings.EqualFold(l, label) {
			c.Label = l
			return true
		}
	}
	return false
}

// CommitPendingPoint turns the pending point into an annotation. An empty
// label, a missing material or a missing point leave the canvas untouched.
func (c *Canvas) CommitPendingPoint(label string, material *MaterialSnapshot) (Annotation, error) {
	label = strings.TrimSpace(label)
	switch {
	case c.Pending == nil:
		return Annotation{}, ErrNoPendingPoint
	case label == "":
		return Annotation{}, ErrEmptyLabel
	case material == nil || material.ID == "":
		return Annotation{}, ErrNoMaterial
	}

	a := Annotation{
		ID:         newID(),
		PartID:     fmt.Sprintf("point-%d", now().UnixMilli()),
		PartName:   label,
		MaterialID: material.ID,
		Material:   *material,
		X:          c.Pending.X,
		Y:          c.Pending.Y,
	}
	c.Annotations = append(c.Annotations, a)
	c.resetPlacement()
	return a, nil
}

// CancelPending discards the pending point without creating an annotation.
func (c *Canvas) CancelPending() {
	c.resetPlacement()
}

// SelectMaterialFirst adds an annotation for material at the image centre,
// named after the material.
func (c *Canvas) SelectMaterialFirst(material MaterialSnapshot) Annotation {
	a := Annotation{
		ID:         newID(),
		PartID:     fmt.Sprintf("search-%d", now().UnixMilli()),
		PartName:   material.Name,
		MaterialID: material.ID,
		Material:   material,
		X:          50,
		Y:          50,
	}
	c.Annotations = append(c.Annotations, a)
	return a
}

// BeginDrag starts dragging an annotation. Only one annotation can be
// dragged at a time.
func (c *Canvas) BeginDrag(id string) error {
	if c.DraggingID != "" && c.DraggingID != id {
		return ErrDragInProgress
	}
	if c.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrAnnotationNotFound, id)
	}
	c.DraggingID = id
	c.SelectedID = ""
	return nil
}

// UpdateDrag moves the dragged annotation to the clamped pointer position.
func (c *Canvas) UpdateDrag(v Viewport, pointer Point) bool {
	i := c.index(c.DraggingID)
	if c.DraggingID == "" || i < 0 {
		return false
	}
	p := ClampPosition(v, pointer)
	c.Annotations[i].X = p.X
	c.Annotations[i].Y = p.Y
	return true
}

// EndDrag finishes a drag on pointer release or when the pointer leaves the
// image.
func (c *Canvas) EndDrag() {
	c.DraggingID = ""
}

// RemoveAnnotation deletes an annotation and clears any selection or drag
// that referred to it.
func (c *Canvas) RemoveAnnotation(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.Annotations = append(c.Annotations[:i:i], c.Annotations[i+1:]...)
	if c.SelectedID == id {
		c.SelectedID = ""
	}
	if c.DraggingID == id {
		c.DraggingID = ""
	}
	return true
}

// SelectAnnotation toggles the expanded view of a marker. Selecting another
// marker replaces the selection. Ignored while dragging.
func (c *Canvas) SelectAnnotation(id string) {
	if c.DraggingID != "" || c.index(id) < 0 {
		return
	}
	if c.SelectedID == id {
		c.SelectedID = ""
		return
	}
	c.SelectedID = id
}

// Move re-enters drag mode from the expanded view.
func (c *Canvas) Move(id string) error {
	return c.BeginDrag(id)
}

// Expanded returns the currently expanded annotation, if any.
func (c *Canvas) Expanded() (Annotation, bool) {
	if c.SelectedID == "" {
		return Annotation{}, false
	}
	return c.Find(c.SelectedID)
}

func (c Canvas) clone() Canvas {
	out := c
	out.Annotations = append([]Annotation(nil), c.Annotations...)
	if c.Pending != nil {
		p := *c.Pending
		out.Pending = &p
	}
	return out
}
