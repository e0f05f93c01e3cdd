package importer

import (
	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/shopspring/decimal"
)

// documentTotals reads the aggregate amounts of a proposal, invoice or
// order. An absent aggregate is summed from the document lines; a missing
// grand total without lines is subtotal plus VAT.
func documentTotals(rec legacy.Record) erp.Totals {
	lines := rec.Lines()

	subtotal, ok := rec.Decimal("total_ht")
	if !ok {
		subtotal = sumLines(lines, "total_ht")
	}
	vat, ok := rec.Decimal("total_tva")
	if !ok {
		vat = sumLines(lines, "total_tva")
	}
	total, ok := rec.Decimal("total_ttc")
	if !ok {
		if len(lines) > 0 {
			total = sumLines(lines, "total_ttc")
		} else {
			total = subtotal.Add(vat)
		}
	}

	return erp.Totals{
		Subtotal:  subtotal,
		Discount:  rec.DecimalOr("remise", decimal.Zero),
		VATAmount: vat,
		Total:     total,
	}
}

func sumLines(lines []legacy.Record, key string) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.DecimalOr(key, decimal.Zero))
	}
	return sum
}

// documentStatus maps the legacy numeric status through table. The second
// result is false when the record carries no status code at all.
func documentStatus(rec legacy.Record, table map[int]string, fallback string) (string, bool) {
	code, ok := rec.Int("statut")
	if !ok {
		code, ok = rec.Int("status")
	}
	if !ok {
		return fallback, false
	}
	if status, known := table[code]; known {
		return status, true
	}
	return fallback, true
}
