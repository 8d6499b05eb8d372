package register

import (
	"github.com/shopspring/decimal"

	"vatex/pkg/models"
)

// ResolveAmount derives the signed amount of one ledger line from its
// debit/credit pair and journal direction. Debit/credit conventions invert
// between sales and purchases journals; this keeps VAT amounts consistently
// signed for summation.
func ResolveAmount(line *models.LedgerLine) decimal.Decimal {
	switch line.JournalType {
	case models.JournalTypePurchase:
		if line.Debit.IsPositive() {
			return line.Debit
		}
		return line.Credit.Neg()
	case models.JournalTypeSales:
		if line.Debit.IsPositive() {
			return line.Debit.Neg()
		}
		return line.Credit
	default:
		return line.Debit.Sub(line.Credit)
	}
}
