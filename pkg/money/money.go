// Package money реализует денежную арифметику в минорных единицах (центах).
// Внутри ядра суммы хранятся как int64 центов, в PostgreSQL — как numeric(10,2)/numeric(12,2).
// Binary floating point в расчётах не используется.
package money

import (
	"strings"

	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// MaxAmount — верхняя граница суммы (1 миллиард целых единиц).
var MaxAmount = decimal.NewFromInt(1_000_000_000)

// FromDecimal конвертирует точное десятичное значение в центы.
// Значения с более чем 2 дробными разрядами округляются по правилу
// round-half-up (половина — от нуля); это единственный режим округления в системе.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// ToDecimal конвертирует центы в точное десятичное значение с масштабом 2.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToFloat конвертирует центы в число для внешнего слоя.
// Используется только на границе, не в арифметике леджера.
func ToFloat(cents int64) float64 {
	f, _ := ToDecimal(cents).Float64()
	return f
}

// String возвращает точную текстовую запись суммы с двумя знаками после запятой.
func String(cents int64) string {
	return ToDecimal(cents).StringFixed(2)
}

// ParseCents разбирает десятичную запись суммы ("599.99", "600") в центы.
// Отклоняет нечисловые строки, отрицательные значения и суммы больше MaxAmount.
func ParseCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	if d.GreaterThan(MaxAmount) {
		return 0, e.ErrInvalidPrice
	}

	return FromDecimal(d), nil
}
