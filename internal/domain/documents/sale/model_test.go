package sale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
)

func TestAddLine(t *testing.T) {
	doc := NewSale(id.New(), id.New())

	doc.AddLine(id.New(), 2, types.MustMoney("100"))
	doc.AddLine(id.New(), 1, types.MustMoney("50"))
	doc.AddLine(id.New(), 3, types.MustMoney("19.99"))

	require.Len(t, doc.Lines, 3)
	assert.Equal(t, 1, doc.Lines[0].LineNo)
	assert.Equal(t, 2, doc.Lines[1].LineNo)
	assert.Equal(t, 3, doc.Lines[2].LineNo)

	assert.True(t, types.MustMoney("200").Equal(doc.Lines[0].Subtotal))
	assert.True(t, types.MustMoney("50").Equal(doc.Lines[1].Subtotal))
	assert.True(t, types.MustMoney("59.97").Equal(doc.Lines[2].Subtotal))

	assert.True(t, types.MustMoney("309.97").Equal(doc.Total), "total = %s", doc.Total)
}

func TestValidate(t *testing.T) {
	valid := func() *Sale {
		d := NewSale(id.New(), id.New())
		d.AddLine(id.New(), 1, types.MustMoney("10"))
		return d
	}

	tests := []struct {
		name    string
		mutate  func(*Sale)
		wantErr bool
	}{
		{"valid", func(d *Sale) {}, false},
		{"missing client", func(d *Sale) { d.ClientID = id.Nil() }, true},
		{"missing collaborator", func(d *Sale) { d.CollaboratorID = id.Nil() }, true},
		{"no lines", func(d *Sale) { d.Lines = nil }, true},
		{"nil product", func(d *Sale) { d.Lines[0].ProductID = id.Nil() }, true},
		{"zero quantity", func(d *Sale) { d.Lines[0].Quantity = 0 }, true},
		{"negative quantity", func(d *Sale) { d.Lines[0].Quantity = -1 }, true},
		{"negative price", func(d *Sale) { d.Lines[0].UnitPrice = types.MustMoney("-1") }, true},
		{"zero price allowed", func(d *Sale) { d.Lines[0].UnitPrice = types.ZeroMoney() }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			err := doc.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
