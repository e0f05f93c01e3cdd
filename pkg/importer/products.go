package importer

import (
	"context"
	"fmt"

	"github.com/aplose/erp-migrate/pkg/erp"
	"github.com/aplose/erp-migrate/pkg/legacy"
	"github.com/shopspring/decimal"
)

// ImportProducts imports categories first so products can reference them.
// Categories are optional: if they cannot be read the products still import.
func (im *Importer) ImportProducts(ctx context.Context, scope *Scope) error {
	categories, err := im.fetch(ctx, scope, ExtCategories)
	if err != nil {
		im.ledger.Warn(ctx, scope.RunID, StepProducts, "", fmt.Sprintf("Could not load categories: %v", err))
	} else {
		t, err := im.eachRecord(ctx, scope, StepProducts, categories, im.importCategory)
		im.summarize(ctx, scope, StepProducts, ExtCategories, t)
		if err != nil {
			return err
		}
	}

	products, err := im.fetch(ctx, scope, ExtProducts)
	if err != nil {
		return fmt.Errorf("loading %s: %w", ExtProducts, err)
	}
	t, err := im.eachRecord(ctx, scope, StepProducts, products, im.importProduct)
	im.summarize(ctx, scope, StepProducts, ExtProducts, t)
	return err
}

func (im *Importer) importCategory(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	code := fallbackRef(rec, "CAT", id, "code")
	exists, err := im.targets.CategoryCodeExists(ctx, scope.TenantID, code)
	if err != nil {
		return fmt.Errorf("checking category %s: %w", code, err)
	}
	if exists {
		return skipf("Category already exists: %s", code)
	}

	name := rec.FirstString("label")
	if name == "" {
		name = code
	}
	category := &erp.ProductCategory{
		TenantID:    scope.TenantID,
		Code:        code,
		Name:        name,
		Description: rec.FirstString("description"),
	}
	if err := im.targets.CreateCategory(ctx, category); err != nil {
		return fmt.Errorf("saving category %s: %w", code, err)
	}
	return im.remember(ctx, scope, ExtCategories, id, TargetProductCategory, category.ID)
}

func (im *Importer) importProduct(ctx context.Context, scope *Scope, rec legacy.Record, id int64) error {
	code := fallbackRef(rec, "PRD", id, "ref")
	exists, err := im.targets.ProductCodeExists(ctx, scope.TenantID, code)
	if err != nil {
		return fmt.Errorf("checking product %s: %w", code, err)
	}
	if exists {
		return skipf("Code exists: %s", code)
	}

	name := rec.FirstString("label", "name")
	if name == "" {
		name = code
	}
	product := &erp.Product{
		TenantID:      scope.TenantID,
		Code:          code,
		Name:          name,
		Description:   rec.FirstString("description"),
		Type:          productType(rec),
		Unit:          rec.FirstString("unit"),
		SalePrice:     rec.DecimalOr("price", decimal.Zero),
		PurchasePrice: purchasePrice(rec),
		CurrencyCode:  currencyOrDefault(rec, "currency_code"),
		VATRate:       rec.DecimalOr("tva_tx", decimal.Zero),
		Sellable:      firstFlag(rec, "tosell", "status"),
		Purchasable:   firstFlag(rec, "tobuy", "status_buy"),
		Barcode:       rec.FirstString("barcode"),
		Notes:         rec.FirstString("note", "note_private"),
		Active:        true,
		CategoryID:    im.optionalRef(ctx, scope, rec, ExtCategories, "fk_cat"),
	}
	if err := im.targets.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("saving product %s: %w", code, err)
	}
	return im.remember(ctx, scope, ExtProducts, id, TargetProduct, product.ID)
}

// productType maps the legacy type flag; 1 denotes a service.
func productType(rec legacy.Record) string {
	if t, ok := rec.Int("type"); ok && t == 1 {
		return erp.ProductTypeService
	}
	return erp.ProductTypeProduct
}

func purchasePrice(rec legacy.Record) decimal.Decimal {
	if d, ok := firstDecimal(rec, "price_buy", "cost_price"); ok {
		return d
	}
	return decimal.Zero
}
