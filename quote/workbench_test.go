package quote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_FullFlow(t *testing.T) {
	stubIDs(t)
	p := sofa()
	vp := testViewport

	steps := []Action{
		{Type: ActionSelectProduct, Product: &p},
		{Type: ActionBeginPlacement},
		{Type: ActionClick, Viewport: &vp, Pointer: &Point{X: 300, Y: 100}},
		{Type: ActionQuickLabel, Label: "Back"},
		{Type: ActionCommitPoint, Material: velvet()},
		{Type: ActionSetQuantity, Quantity: "2"},
		{Type: ActionAddItem},
	}

	b := NewBuilder(nil)
	for _, a := range steps {
		next, err := Apply(b, a)
		require.NoError(t, err, a.Type)
		b = next
	}

	require.Len(t, b.Items, 1)
	item := b.Items[0]
	require.Len(t, item.Annotations, 1)
	assert.Equal(t, "Back", item.Annotations[0].PartName)
	assert.InDelta(t, 50, item.Annotations[0].X, epsilon)
	assert.InDelta(t, 25, item.Annotations[0].Y, epsilon)
	assert.InDelta(t, 2100, item.TotalPrice, epsilon)
	assert.Equal(t, BuilderIdle, b.State())
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	stubIDs(t)
	b := NewBuilder(nil)
	b.SelectProduct(sofa())
	a := b.Canvas.SelectMaterialFirst(*velvet())

	vp := testViewport
	dragging, err := Apply(b, Action{Type: ActionBeginDrag, ID: a.ID})
	require.NoError(t, err)
	moved, err := Apply(dragging, Action{Type: ActionUpdateDrag, Viewport: &vp, Pointer: &Point{X: 100, Y: 50}})
	require.NoError(t, err)

	assert.Equal(t, 50.0, b.Canvas.Annotations[0].X)
	assert.Equal(t, 50.0, dragging.Canvas.Annotations[0].X)
	assert.Equal(t, 0.0, moved.Canvas.Annotations[0].X)
}

func TestApply_NoopsReturnOriginal(t *testing.T) {
	stubIDs(t)
	b := NewBuilder(nil)
	b.SelectProduct(sofa())
	b.Canvas.BeginPlacement()
	b.Canvas.Click(testViewport, Point{X: 200, Y: 100})

	next, err := Apply(b, Action{Type: ActionCommitPoint, Material: velvet()})
	assert.True(t, IsNoop(err))
	assert.Equal(t, b, next)

	_, err = Apply(b, Action{Type: "explode"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.False(t, IsNoop(err))

	_, err = Apply(b, Action{Type: ActionClick})
	assert.ErrorIs(t, err, ErrMissingPayload)
}

func TestBuilder_JSONRoundTrip(t *testing.T) {
	stubIDs(t)
	b := NewBuilder(nil)
	b.SelectProduct(sofa())
	b.Canvas.SelectMaterialFirst(*velvet())
	b.Canvas.BeginPlacement()
	b.Canvas.Click(testViewport, Point{X: 120, Y: 60})

	data, err := json.Marshal(b)
	require.NoError(t, err)
	var got Builder
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, b.State(), got.State())
	assert.Equal(t, b.Canvas.Mode, got.Canvas.Mode)
	require.NotNil(t, got.Canvas.Pending)
	assert.InDelta(t, 5, got.Canvas.Pending.X, epsilon)
	assert.Equal(t, b.Canvas.Annotations, got.Canvas.Annotations)
}
