package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/deletrics-oss/gourmetflow1-sub003/internal/models"
)

// LineTotal computes quantity x unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderTotals fills in LineTotal on every item and returns subtotal and
// total such that total = subtotal + delivery fee + service fee - discount.
func OrderTotals(items []models.OfflineOrderItem, deliveryFee, serviceFee, discount decimal.Decimal) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero

	for i := range items {
		items[i].LineTotal = LineTotal(items[i].Quantity, items[i].UnitPrice)
		subtotal = subtotal.Add(items[i].LineTotal)
	}

	total = subtotal.Add(deliveryFee).Add(serviceFee).Sub(discount)
	return subtotal, total
}

// FormatBRL renders a money value for customer-facing messages, e.g. R$ 28,00.
func FormatBRL(value decimal.Decimal) string {
	return fmt.Sprintf("R$ %s", strings.Replace(value.StringFixed(2), ".", ",", 1))
}
