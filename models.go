package main

import (
	"errors"
	"time"
)

// Payment instrument categories as they appear on Brazilian card receipts.
// The string values are the canonical lower-case forms used everywhere
// internally; Confirm upper-cases them for the outbound payload.
const (
	CategoryMeal    = "refeicao"
	CategoryFood    = "alimentacao"
	CategoryCredit  = "credito"
	CategoryDebit   = "debito"
	CategoryVoucher = "voucher"
	CategoryUnknown = "desconhecido"
)

// categoryPriority breaks score ties between categories. A more specific
// instrument always beats a more generic one when their scores are equal.
var categoryPriority = []string{
	CategoryMeal,
	CategoryFood,
	CategoryCredit,
	CategoryDebit,
	CategoryVoucher,
}

// knownCategories are the values accepted as-is at confirm time. Anything
// else is coerced to credito.
var knownCategories = map[string]bool{
	CategoryMeal:    true,
	CategoryFood:    true,
	CategoryCredit:  true,
	CategoryDebit:   true,
	CategoryVoucher: true,
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrDuplicatePending = errors.New("owner already has a pending transaction")
	ErrNoAmount         = errors.New("amount has no numeric value")
	ErrUnknownField     = errors.New("unknown editable field")
	ErrPersistence      = errors.New("snapshot write failed")
)

// TransactionRecord is the central entity: one reviewed payment receipt.
// ID and OwnerID are immutable after creation; only the fields covered by
// FieldUpdate may change, and only while Status is pending.
type TransactionRecord struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	ChannelID      string    `json:"channel_id"`
	Category       string    `json:"category"`
	Amount         string    `json:"amount"`
	Installments   int       `json:"installments"`
	LastFourDigits string    `json:"last_four_digits"`
	Payer          string    `json:"payer"`
	SourceText     string    `json:"source_text"`
	AssetRef       string    `json:"asset_ref,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// FieldUpdate carries the editable subset of a pending record. Nil fields
// are left untouched. Anything not representable here cannot be edited.
type FieldUpdate struct {
	Category       *string `json:"category,omitempty"`
	Amount         *string `json:"amount,omitempty"`
	Installments   *int    `json:"installments,omitempty"`
	LastFourDigits *string `json:"last_four_digits,omitempty"`
	Payer          *string `json:"payer,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u FieldUpdate) IsEmpty() bool {
	return u.Category == nil && u.Amount == nil && u.Installments == nil &&
		u.LastFourDigits == nil && u.Payer == nil
}

// ClassificationResult is the outcome of one classifier call.
type ClassificationResult struct {
	Category string
	Strategy string // "direct", "fuzzy", "fragment" or "none"
}

// Analysis bundles everything recovered from one receipt's OCR text.
type Analysis struct {
	Category         string `json:"category"`
	Strategy         string `json:"strategy"`
	Amount           string `json:"amount"`
	LastFourDigits   string `json:"last_four_digits"`
	Installments     int    `json:"installments"`
	InstallmentLabel string `json:"installment_label"`
}

// StoreStats summarizes the store contents for the stats surface.
type StoreStats struct {
	PendingCount        int     `json:"pending_count"`
	ConfirmedCount      int     `json:"confirmed_count"`
	TotalConfirmedValue float64 `json:"total_confirmed_value"`
	UniqueOwners        int     `json:"unique_owners"`
}
