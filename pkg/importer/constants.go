package importer

// Ledger step names, in execution order.
const (
	StepStart        = "START"
	StepDictionaries = "DICTIONARIES"
	StepThirdParties = "THIRD_PARTIES"
	StepContacts     = "CONTACTS"
	StepProducts     = "PRODUCTS"
	StepProposals    = "PROPOSALS"
	StepInvoices     = "INVOICES"
	StepPayments     = "PAYMENTS"
	StepOrders       = "ORDERS"
	StepStaging      = "STAGING"
	StepEnd          = "END"
)

// Legacy resource names, also used as mapping external types.
const (
	ExtThirdParties = "thirdparties"
	ExtContacts     = "contacts"
	ExtCategories   = "categories"
	ExtProducts     = "products"
	ExtProposals    = "proposals"
	ExtInvoices     = "invoices"
	ExtPayments     = "payments"
	ExtOrders       = "orders"
)

// Target entity types recorded in mappings and log lines.
const (
	TargetThirdParty      = "THIRD_PARTY"
	TargetContact         = "CONTACT"
	TargetProductCategory = "PRODUCT_CATEGORY"
	TargetProduct         = "PRODUCT"
	TargetProposal        = "PROPOSAL"
	TargetInvoice         = "INVOICE"
	TargetPayment         = "PAYMENT"
	TargetSalesOrder      = "SALES_ORDER"
	TargetDictionaryItem  = "DICTIONARY_ITEM"
)

const (
	DefaultCurrency      = "EUR"
	DefaultPaymentMethod = "BANK"
	DefaultDueDays       = 30
	placeholderName      = "?"
)

const (
	ProposalDraft     = "DRAFT"
	ProposalSent      = "SENT"
	ProposalAccepted  = "ACCEPTED"
	ProposalRefused   = "REFUSED"
	ProposalCancelled = "CANCELLED"
	ProposalConverted = "CONVERTED"

	InvoiceDraft         = "DRAFT"
	InvoiceValidated     = "VALIDATED"
	InvoicePartiallyPaid = "PARTIALLY_PAID"
	InvoicePaid          = "PAID"
	InvoiceCancelled     = "CANCELLED"

	OrderDraft      = "DRAFT"
	OrderConfirmed  = "CONFIRMED"
	OrderProcessing = "PROCESSING"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
)

var proposalStatuses = map[int]string{
	0: ProposalDraft,
	1: ProposalSent,
	2: ProposalAccepted,
	3: ProposalRefused,
	4: ProposalCancelled,
	5: ProposalConverted,
}

var invoiceStatuses = map[int]string{
	0: InvoiceDraft,
	1: InvoiceValidated,
	2: InvoicePaid,
	3: InvoiceCancelled,
}

var orderStatuses = map[int]string{
	-1: OrderCancelled,
	0:  OrderDraft,
	1:  OrderConfirmed,
	2:  OrderProcessing,
	3:  OrderDelivered,
	4:  OrderCancelled,
}
