package erp

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ThirdPartyCustomer = "CUSTOMER"
	ThirdPartySupplier = "SUPPLIER"
	ThirdPartyBoth     = "BOTH"
	ThirdPartyProspect = "PROSPECT"
	ThirdPartyOther    = "OTHER"

	StatusActive = "ACTIVE"

	ProductTypeProduct = "PRODUCT"
	ProductTypeService = "SERVICE"

	InvoiceTypeSales    = "SALES"
	InvoiceTypePurchase = "PURCHASE"

	LinkTypeEmployee = "SALARIE"
)

type ThirdParty struct {
	ID                 uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID           string           `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_third_party_code,priority:1"`
	Code               string           `json:"code" gorm:"column:code;size:50;not null;uniqueIndex:uq_third_party_code,priority:2"`
	Name               string           `json:"name" gorm:"column:name;size:255;not null"`
	Type               string           `json:"type" gorm:"column:type;size:20"`
	LegalForm          string           `json:"legal_form,omitempty" gorm:"column:legal_form;size:100"`
	TaxID              string           `json:"tax_id,omitempty" gorm:"column:tax_id;size:50"`
	RegistrationNumber string           `json:"registration_number,omitempty" gorm:"column:registration_number;size:50"`
	Website            string           `json:"website,omitempty" gorm:"column:website;size:255"`
	Phone              string           `json:"phone,omitempty" gorm:"column:phone;size:50"`
	Fax                string           `json:"fax,omitempty" gorm:"column:fax;size:50"`
	Email              string           `json:"email,omitempty" gorm:"column:email;size:255"`
	AddressLine1       string           `json:"address_line1,omitempty" gorm:"column:address_line1;size:255"`
	AddressLine2       string           `json:"address_line2,omitempty" gorm:"column:address_line2;size:255"`
	City               string           `json:"city,omitempty" gorm:"column:city;size:100"`
	State              string           `json:"state,omitempty" gorm:"column:state;size:100"`
	PostalCode         string           `json:"postal_code,omitempty" gorm:"column:postal_code;size:20"`
	CountryCode        string           `json:"country_code,omitempty" gorm:"column:country_code;size:3"`
	CurrencyCode       string           `json:"currency_code,omitempty" gorm:"column:currency_code;size:3"`
	PaymentTermsDays   *int             `json:"payment_terms_days,omitempty" gorm:"column:payment_terms_days"`
	CreditLimit        *decimal.Decimal `json:"credit_limit,omitempty" gorm:"column:credit_limit;type:numeric(18,4)"`
	Notes              string           `json:"notes,omitempty" gorm:"column:notes;type:text"`
	Status             string           `json:"status" gorm:"column:status;size:20"`
	CreatedAt          time.Time        `json:"created_at" gorm:"column:created_at"`
}

func (ThirdParty) TableName() string { return "third_parties" }

type Contact struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID     string    `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_contact_code,priority:1"`
	Code         string    `json:"code" gorm:"column:code;size:50;not null;uniqueIndex:uq_contact_code,priority:2"`
	FirstName    string    `json:"first_name" gorm:"column:first_name;size:100"`
	LastName     string    `json:"last_name" gorm:"column:last_name;size:100"`
	Civility     string    `json:"civility,omitempty" gorm:"column:civility;size:20"`
	JobTitle     string    `json:"job_title,omitempty" gorm:"column:job_title;size:100"`
	Department   string    `json:"department,omitempty" gorm:"column:department;size:100"`
	Email        string    `json:"email,omitempty" gorm:"column:email;size:255"`
	Phone        string    `json:"phone,omitempty" gorm:"column:phone;size:50"`
	Mobile       string    `json:"mobile,omitempty" gorm:"column:mobile;size:50"`
	Fax          string    `json:"fax,omitempty" gorm:"column:fax;size:50"`
	AddressLine1 string    `json:"address_line1,omitempty" gorm:"column:address_line1;size:255"`
	City         string    `json:"city,omitempty" gorm:"column:city;size:100"`
	State        string    `json:"state,omitempty" gorm:"column:state;size:100"`
	PostalCode   string    `json:"postal_code,omitempty" gorm:"column:postal_code;size:20"`
	CountryCode  string    `json:"country_code,omitempty" gorm:"column:country_code;size:3"`
	Notes        string    `json:"notes,omitempty" gorm:"column:notes;type:text"`
	Status       string    `json:"status" gorm:"column:status;size:20"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Contact) TableName() string { return "contacts" }

type ContactLink struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID     string    `json:"tenant_id" gorm:"column:tenant_id;size:64;not null"`
	ContactID    uuid.UUID `json:"contact_id" gorm:"type:uuid;column:contact_id;not null;index"`
	ThirdPartyID uuid.UUID `json:"third_party_id" gorm:"type:uuid;column:third_party_id;not null;index"`
	LinkType     string    `json:"link_type" gorm:"column:link_type;size:40"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (ContactLink) TableName() string { return "contact_third_party_links" }

type ProductCategory struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID    string    `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_product_category_code,priority:1"`
	Code        string    `json:"code" gorm:"column:code;size:50;not null;uniqueIndex:uq_product_category_code,priority:2"`
	Name        string    `json:"name" gorm:"column:name;size:255"`
	Description string    `json:"description,omitempty" gorm:"column:description;type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (ProductCategory) TableName() string { return "product_categories" }

type Product struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID      string          `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_product_code,priority:1"`
	Code          string          `json:"code" gorm:"column:code;size:50;not null;uniqueIndex:uq_product_code,priority:2"`
	Name          string          `json:"name" gorm:"column:name;size:255"`
	Description   string          `json:"description,omitempty" gorm:"column:description;type:text"`
	Type          string          `json:"type" gorm:"column:type;size:20"`
	Unit          string          `json:"unit,omitempty" gorm:"column:unit;size:20"`
	SalePrice     decimal.Decimal `json:"sale_price" gorm:"column:sale_price;type:numeric(18,4)"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"column:purchase_price;type:numeric(18,4)"`
	CurrencyCode  string          `json:"currency_code" gorm:"column:currency_code;size:3"`
	VATRate       decimal.Decimal `json:"vat_rate" gorm:"column:vat_rate;type:numeric(7,4)"`
	Sellable      bool            `json:"sellable" gorm:"column:sellable"`
	Purchasable   bool            `json:"purchasable" gorm:"column:purchasable"`
	Barcode       string          `json:"barcode,omitempty" gorm:"column:barcode;size:100"`
	Notes         string          `json:"notes,omitempty" gorm:"column:notes;type:text"`
	Active        bool            `json:"active" gorm:"column:active"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty" gorm:"type:uuid;column:category_id"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (Product) TableName() string { return "products" }

// Totals carries the document amounts shared by proposals, invoices and orders.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"column:subtotal;type:numeric(18,4)"`
	Discount  decimal.Decimal `json:"discount" gorm:"column:discount;type:numeric(18,4)"`
	VATAmount decimal.Decimal `json:"vat_amount" gorm:"column:vat_amount;type:numeric(18,4)"`
	Total     decimal.Decimal `json:"total" gorm:"column:total;type:numeric(18,4)"`
}

type Proposal struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID     string     `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_proposal_reference,priority:1"`
	Reference    string     `json:"reference" gorm:"column:reference;size:50;not null;uniqueIndex:uq_proposal_reference,priority:2"`
	ThirdPartyID uuid.UUID  `json:"third_party_id" gorm:"type:uuid;column:third_party_id;not null;index"`
	ContactID    *uuid.UUID `json:"contact_id,omitempty" gorm:"type:uuid;column:contact_id"`
	Title        string     `json:"title,omitempty" gorm:"column:title;size:255"`
	IssueDate    time.Time  `json:"issue_date" gorm:"column:issue_date;type:date"`
	ValidUntil   *time.Time `json:"valid_until,omitempty" gorm:"column:valid_until;type:date"`
	CurrencyCode string     `json:"currency_code" gorm:"column:currency_code;size:3"`
	Totals       `gorm:"embedded"`
	Notes        string    `json:"notes,omitempty" gorm:"column:notes;type:text"`
	Status       string    `json:"status" gorm:"column:status;size:20"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Proposal) TableName() string { return "proposals" }

type Invoice struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID        string          `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_invoice_reference,priority:1"`
	Reference       string          `json:"reference" gorm:"column:reference;size:50;not null;uniqueIndex:uq_invoice_reference,priority:2"`
	Type            string          `json:"type" gorm:"column:type;size:20"`
	ThirdPartyID    uuid.UUID       `json:"third_party_id" gorm:"type:uuid;column:third_party_id;not null;index"`
	ContactID       *uuid.UUID      `json:"contact_id,omitempty" gorm:"type:uuid;column:contact_id"`
	IssueDate       time.Time       `json:"issue_date" gorm:"column:issue_date;type:date"`
	DueDate         time.Time       `json:"due_date" gorm:"column:due_date;type:date"`
	CurrencyCode    string          `json:"currency_code" gorm:"column:currency_code;size:3"`
	Totals          `gorm:"embedded"`
	AmountPaid      decimal.Decimal `json:"amount_paid" gorm:"column:amount_paid;type:numeric(18,4)"`
	AmountRemaining decimal.Decimal `json:"amount_remaining" gorm:"column:amount_remaining;type:numeric(18,4)"`
	Notes           string          `json:"notes,omitempty" gorm:"column:notes;type:text"`
	Status          string          `json:"status" gorm:"column:status;size:20"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (Invoice) TableName() string { return "invoices" }

type Payment struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID     string          `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_payment_reference,priority:1"`
	Reference    string          `json:"reference" gorm:"column:reference;size:100;not null;uniqueIndex:uq_payment_reference,priority:2"`
	InvoiceID    uuid.UUID       `json:"invoice_id" gorm:"type:uuid;column:invoice_id;not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(18,4)"`
	CurrencyCode string          `json:"currency_code" gorm:"column:currency_code;size:3"`
	PaymentDate  time.Time       `json:"payment_date" gorm:"column:payment_date;type:date"`
	Method       string          `json:"method" gorm:"column:method;size:40"`
	Notes        string          `json:"notes,omitempty" gorm:"column:notes;type:text"`
	CreatedAt    time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (Payment) TableName() string { return "payments" }

type SalesOrder struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID     string     `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_sales_order_reference,priority:1"`
	Reference    string     `json:"reference" gorm:"column:reference;size:50;not null;uniqueIndex:uq_sales_order_reference,priority:2"`
	ThirdPartyID uuid.UUID  `json:"third_party_id" gorm:"type:uuid;column:third_party_id;not null;index"`
	ContactID    *uuid.UUID `json:"contact_id,omitempty" gorm:"type:uuid;column:contact_id"`
	OrderDate    time.Time  `json:"order_date" gorm:"column:order_date;type:date"`
	ExpectedDate *time.Time `json:"expected_date,omitempty" gorm:"column:expected_date;type:date"`
	CurrencyCode string     `json:"currency_code" gorm:"column:currency_code;size:3"`
	Totals       `gorm:"embedded"`
	Notes        string    `json:"notes,omitempty" gorm:"column:notes;type:text"`
	Status       string    `json:"status" gorm:"column:status;size:20"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (SalesOrder) TableName() string { return "sales_orders" }
