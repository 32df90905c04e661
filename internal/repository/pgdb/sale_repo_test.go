package pgdb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }
func int32Ptr(v int32) *int32 { return &v }
func strPtr(v string) *string { return &v }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func TestAssembleSaleDetails(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	rows := []saleJoinRow{
		// Свежая продажа с двумя позициями
		{
			SaleID: 2, OccurredAt: now, Total: dec("450.00"), Cashier: "cashier2",
			ProductID: int64Ptr(10), Qty: int32Ptr(3), SalePrice: nullDec("150.00"),
			Subtotal: nullDec("450.00"), ProductName: strPtr("Widget"),
		},
		{
			SaleID: 2, OccurredAt: now, Total: dec("450.00"), Cashier: "cashier2",
			ProductID: int64Ptr(11), Qty: int32Ptr(1), SalePrice: nullDec("19.99"),
			Subtotal: nullDec("19.99"), ProductName: strPtr("Gadget"),
		},
		// Более старая продажа с одной позицией
		{
			SaleID: 1, OccurredAt: earlier, Total: dec("19.99"), Cashier: "cashier1",
			ProductID: int64Ptr(11), Qty: int32Ptr(1), SalePrice: nullDec("19.99"),
			Subtotal: nullDec("19.99"), ProductName: strPtr("Gadget"),
		},
	}

	details := assembleSaleDetails(rows)

	require.Len(t, details, 2)

	// Порядок первых встреч сохраняется: сначала свежая продажа
	assert.Equal(t, int64(2), details[0].ID)
	assert.Equal(t, "cashier2", details[0].Cashier)
	assert.Equal(t, int64(45000), details[0].Total)
	require.Len(t, details[0].Items, 2)
	assert.Equal(t, "Widget", details[0].Items[0].ProductName)
	assert.Equal(t, int64(15000), details[0].Items[0].SalePrice)
	assert.Equal(t, int64(45000), details[0].Items[0].Subtotal)
	assert.Equal(t, "Gadget", details[0].Items[1].ProductName)

	assert.Equal(t, int64(1), details[1].ID)
	require.Len(t, details[1].Items, 1)
	assert.Equal(t, int64(1999), details[1].Items[0].Subtotal)
}

func TestAssembleSaleDetailsSaleWithoutItems(t *testing.T) {
	rows := []saleJoinRow{
		{
			SaleID: 5, OccurredAt: time.Now(), Total: dec("0.00"), Cashier: "cashier1",
			// Все колонки позиции NULL: LEFT JOIN без совпадений
		},
	}

	details := assembleSaleDetails(rows)

	require.Len(t, details, 1)
	assert.Equal(t, int64(5), details[0].ID)
	assert.NotNil(t, details[0].Items)
	assert.Empty(t, details[0].Items)
}

func TestAssembleSaleDetailsPartialNullRowSkipped(t *testing.T) {
	rows := []saleJoinRow{
		{
			SaleID: 7, OccurredAt: time.Now(), Total: dec("10.00"), Cashier: "cashier1",
			ProductID: int64Ptr(10), Qty: int32Ptr(1), SalePrice: nullDec("10.00"),
			Subtotal: nullDec("10.00"),
			// ProductName NULL — позиция пропускается, продажа остаётся
		},
	}

	details := assembleSaleDetails(rows)

	require.Len(t, details, 1)
	assert.Empty(t, details[0].Items)
}

func TestAssembleSaleDetailsEmpty(t *testing.T) {
	details := assembleSaleDetails(nil)
	assert.NotNil(t, details)
	assert.Empty(t, details)
}
