package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPOStatusTransitions(t *testing.T) {
	tests := []struct {
		from    POStatus
		to      POStatus
		allowed bool
	}{
		{POStatusDraft, POStatusPendingApproval, true},
		{POStatusDraft, POStatusCancelled, true},
		{POStatusDraft, POStatusReceived, false},
		{POStatusPendingApproval, POStatusApproved, true},
		{POStatusPendingApproval, POStatusDraft, true},
		{POStatusApproved, POStatusOrdered, true},
		{POStatusApproved, POStatusReceived, false},
		{POStatusOrdered, POStatusPartiallyReceived, true},
		{POStatusOrdered, POStatusReceived, true},
		{POStatusPartiallyReceived, POStatusReceived, true},
		{POStatusPartiallyReceived, POStatusPartiallyReceived, true},
		{POStatusReceived, POStatusOrdered, false},
		{POStatusCancelled, POStatusDraft, false},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPOStatusTerminal(t *testing.T) {
	assert.True(t, POStatusReceived.IsTerminal())
	assert.True(t, POStatusCancelled.IsTerminal())
	assert.False(t, POStatusOrdered.IsTerminal())
	assert.False(t, POStatusDraft.IsTerminal())
}

func TestPOStatusValid(t *testing.T) {
	assert.True(t, POStatusDraft.Valid())
	assert.True(t, POStatusPartiallyReceived.Valid())
	assert.False(t, POStatus("SHIPPED").Valid())
}

func TestRecalculateTotals(t *testing.T) {
	po := &PurchaseOrder{
		TaxRate:      18,
		DiscountRate: 0,
		ShippingCost: 0,
		Items: []PurchaseOrderItem{
			{Quantity: 10, UnitPrice: 50, TotalPrice: 500},
			{Quantity: 5, UnitPrice: 100, TotalPrice: 500},
		},
	}
	po.RecalculateTotals()

	assert.Equal(t, 1000.0, po.Subtotal)
	assert.Equal(t, 180.0, po.TaxAmount)
	assert.Equal(t, 0.0, po.DiscountAmount)
	assert.Equal(t, 1180.0, po.TotalAmount)
}

func TestRecalculateTotalsWithDiscountAndShipping(t *testing.T) {
	po := &PurchaseOrder{
		TaxRate:      10,
		DiscountRate: 5,
		ShippingCost: 25,
		Items: []PurchaseOrderItem{
			{TotalPrice: 200},
		},
	}
	po.RecalculateTotals()

	assert.Equal(t, 200.0, po.Subtotal)
	assert.Equal(t, 20.0, po.TaxAmount)
	assert.Equal(t, 10.0, po.DiscountAmount)
	assert.Equal(t, 235.0, po.TotalAmount)
}

func TestRecalculateTotalsEmptyOrder(t *testing.T) {
	po := &PurchaseOrder{TaxRate: 18}
	po.RecalculateTotals()

	assert.Equal(t, 0.0, po.Subtotal)
	assert.Equal(t, 0.0, po.TotalAmount)
}

func TestDeriveReceivingStatus(t *testing.T) {
	po := &PurchaseOrder{
		Items: []PurchaseOrderItem{
			{Quantity: 10, ReceivedQuantity: 10},
			{Quantity: 5, ReceivedQuantity: 5},
		},
	}
	assert.Equal(t, POStatusReceived, po.DeriveReceivingStatus())

	po.Items[1].ReceivedQuantity = 3
	assert.Equal(t, POStatusPartiallyReceived, po.DeriveReceivingStatus())

	empty := &PurchaseOrder{}
	assert.Equal(t, POStatusPartiallyReceived, empty.DeriveReceivingStatus())
}
