package erp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the business entities an import creates. Each create
// runs in its own statement so one bad record never rolls back another.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&ThirdParty{},
		&Contact{},
		&ContactLink{},
		&ProductCategory{},
		&Product{},
		&Proposal{},
		&Invoice{},
		&Payment{},
		&SalesOrder{},
	)
}

func exists[T any](ctx context.Context, db *gorm.DB, tenantID, column, value string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(new(T)).
		Where("tenant_id = ? AND "+column+" = ?", tenantID, value).
		Count(&count).Error
	return count > 0, err
}

func stamp(id *uuid.UUID, createdAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func (r *Repository) ThirdPartyCodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	return exists[ThirdParty](ctx, r.db, tenantID, "code", code)
}

func (r *Repository) CreateThirdParty(ctx context.Context, tp *ThirdParty) error {
	stamp(&tp.ID, &tp.CreatedAt)
	return r.db.WithContext(ctx).Create(tp).Error
}

func (r *Repository) ContactCodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	return exists[Contact](ctx, r.db, tenantID, "code", code)
}

func (r *Repository) CreateContact(ctx context.Context, c *Contact) error {
	stamp(&c.ID, &c.CreatedAt)
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) CreateContactLink(ctx context.Context, link *ContactLink) error {
	stamp(&link.ID, &link.CreatedAt)
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *Repository) CategoryCodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	return exists[ProductCategory](ctx, r.db, tenantID, "code", code)
}

func (r *Repository) CreateCategory(ctx context.Context, c *ProductCategory) error {
	stamp(&c.ID, &c.CreatedAt)
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) ProductCodeExists(ctx context.Context, tenantID, code string) (bool, error) {
	return exists[Product](ctx, r.db, tenantID, "code", code)
}

func (r *Repository) CreateProduct(ctx context.Context, p *Product) error {
	stamp(&p.ID, &p.CreatedAt)
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) ProposalReferenceExists(ctx context.Context, tenantID, ref string) (bool, error) {
	return exists[Proposal](ctx, r.db, tenantID, "reference", ref)
}

func (r *Repository) CreateProposal(ctx context.Context, p *Proposal) error {
	stamp(&p.ID, &p.CreatedAt)
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) InvoiceReferenceExists(ctx context.Context, tenantID, ref string) (bool, error) {
	return exists[Invoice](ctx, r.db, tenantID, "reference", ref)
}

func (r *Repository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	stamp(&inv.ID, &inv.CreatedAt)
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *Repository) PaymentReferenceExists(ctx context.Context, tenantID, ref string) (bool, error) {
	return exists[Payment](ctx, r.db, tenantID, "reference", ref)
}

func (r *Repository) CreatePayment(ctx context.Context, p *Payment) error {
	stamp(&p.ID, &p.CreatedAt)
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) OrderReferenceExists(ctx context.Context, tenantID, ref string) (bool, error) {
	return exists[SalesOrder](ctx, r.db, tenantID, "reference", ref)
}

func (r *Repository) CreateOrder(ctx context.Context, o *SalesOrder) error {
	stamp(&o.ID, &o.CreatedAt)
	return r.db.WithContext(ctx).Create(o).Error
}
