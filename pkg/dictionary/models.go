package dictionary

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeCountry       = "COUNTRY"
	TypeCurrency      = "CURRENCY"
	TypeCivility      = "CIVILITY"
	TypeLegalForm     = "LEGAL_FORM"
	TypePaymentMethod = "PAYMENT_METHOD"
)

// Item is one tenant-scoped reference value (country, civility, ...).
type Item struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;column:id"`
	TenantID  string    `json:"tenant_id" gorm:"column:tenant_id;size:64;not null;uniqueIndex:uq_dictionary_item,priority:1"`
	DictType  string    `json:"dict_type" gorm:"column:dict_type;size:40;not null;uniqueIndex:uq_dictionary_item,priority:2"`
	Code      string    `json:"code" gorm:"column:code;size:50;not null;uniqueIndex:uq_dictionary_item,priority:3"`
	Label     string    `json:"label" gorm:"column:label;size:255"`
	SortOrder int       `json:"sort_order" gorm:"column:sort_order"`
	Active    bool      `json:"active" gorm:"column:active"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Item) TableName() string {
	return "dictionary_items"
}

// Currency is the global (not tenant-scoped) currency reference table.
type Currency struct {
	Code          string `json:"code" gorm:"primaryKey;column:code;size:3"`
	Name          string `json:"name" gorm:"column:name;size:100"`
	Symbol        string `json:"symbol" gorm:"column:symbol;size:10"`
	DecimalPlaces int    `json:"decimal_places" gorm:"column:decimal_places"`
	Active        bool   `json:"active" gorm:"column:active"`
}

func (Currency) TableName() string {
	return "currencies"
}
