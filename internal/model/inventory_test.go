package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveItemStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		minimum  float64
		expected ItemStatus
	}{
		{"zero is out of stock", 0, 10, ItemStatusOutOfStock},
		{"negative is out of stock", -5, 10, ItemStatusOutOfStock},
		{"at minimum is low stock", 10, 10, ItemStatusLowStock},
		{"below minimum is low stock", 3, 10, ItemStatusLowStock},
		{"above minimum is in stock", 11, 10, ItemStatusInStock},
		{"zero minimum still flags zero stock", 0, 0, ItemStatusOutOfStock},
		{"positive with zero minimum is in stock", 1, 0, ItemStatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveItemStatus(tt.current, tt.minimum))
		})
	}
}

func TestRecalculate(t *testing.T) {
	item := &InventoryItem{
		CurrentQuantity:  100,
		ReservedQuantity: 30,
		MinimumQuantity:  20,
		UnitPrice:        2.5,
	}
	item.Recalculate()

	assert.Equal(t, 70.0, item.AvailableQuantity)
	assert.Equal(t, 250.0, item.TotalValue)
	assert.Equal(t, ItemStatusInStock, item.Status)
	assert.False(t, item.IsFlagged)
}

func TestRecalculateFlagsLowStock(t *testing.T) {
	item := &InventoryItem{
		CurrentQuantity: 5,
		MinimumQuantity: 10,
		UnitPrice:       4,
	}
	item.Recalculate()

	assert.Equal(t, ItemStatusLowStock, item.Status)
	assert.True(t, item.IsFlagged)
	assert.Equal(t, 20.0, item.TotalValue)
}

func TestAlertLevelFor(t *testing.T) {
	assert.Equal(t, AlertLevelCritical, AlertLevelFor(ItemStatusOutOfStock))
	assert.Equal(t, AlertLevelWarning, AlertLevelFor(ItemStatusLowStock))
	assert.Equal(t, AlertLevel(""), AlertLevelFor(ItemStatusInStock))
	assert.Equal(t, AlertLevel(""), AlertLevelFor(ItemStatusDiscontinued))
}

func TestAlertEscalates(t *testing.T) {
	assert.True(t, AlertEscalates(AlertLevelWarning, AlertLevelCritical))
	assert.False(t, AlertEscalates(AlertLevelCritical, AlertLevelWarning))
	assert.False(t, AlertEscalates(AlertLevelWarning, AlertLevelWarning))
	assert.False(t, AlertEscalates(AlertLevelCritical, AlertLevelCritical))
}
