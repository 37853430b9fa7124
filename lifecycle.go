package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

// Manager orchestrates the transaction lifecycle: it runs the analysis
// pipeline on inbound OCR text, guards the one-pending-per-owner
// invariant via the store, fires the downstream publish on confirmation
// and keeps the best-effort audit trail.
type Manager struct {
	store      *Store
	classifier *Classifier
	publisher  Publisher
	auditDB    *sql.DB // nil disables the audit trail
}

func NewManager(store *Store, classifier *Classifier, publisher Publisher, auditDB *sql.DB) *Manager {
	return &Manager{
		store:      store,
		classifier: classifier,
		publisher:  publisher,
		auditDB:    auditDB,
	}
}

// InboundReceipt is the boundary payload handed over by the messaging
// channel once OCR has run.
type InboundReceipt struct {
	RawText   string `json:"raw_text"`
	OwnerID   string `json:"owner_id"`
	ChannelID string `json:"channel_id"`
	Payer     string `json:"payer"`
	AssetRef  string `json:"asset_ref"`
}

// Ingest classifies and extracts fields from raw OCR text, then opens a
// pending record for the owner. Fails with ErrDuplicatePending while a
// previous receipt of the same owner awaits review.
func (m *Manager) Ingest(in InboundReceipt) (TransactionRecord, Analysis, error) {
	analysis := m.classifier.AnalyzeReceipt(in.RawText)

	rec := TransactionRecord{
		ID:             uuid.NewString(),
		OwnerID:        in.OwnerID,
		ChannelID:      in.ChannelID,
		Category:       analysis.Category,
		Amount:         analysis.Amount,
		Installments:   analysis.Installments,
		LastFourDigits: analysis.LastFourDigits,
		Payer:          in.Payer,
		SourceText:     in.RawText,
		AssetRef:       in.AssetRef,
		CreatedAt:      time.Now(),
	}

	created, err := m.store.CreatePending(rec)
	if err != nil {
		return TransactionRecord{}, analysis, err
	}

	log.Printf("Created pending transaction %s owner=%s category=%s strategy=%s", shortID(created.ID), created.OwnerID, analysis.Category, analysis.Strategy)
	m.audit(created.ID, created.OwnerID, "created", analysis.Category)
	m.auditClassification(created.ID, analysis)
	return created, analysis, nil
}

// PendingByOwner returns the owner's open record, if any.
func (m *Manager) PendingByOwner(ownerID string) (TransactionRecord, bool) {
	return m.store.GetPendingByOwner(ownerID)
}

// GetPending returns the pending record with the given id.
func (m *Manager) GetPending(id string) (TransactionRecord, error) {
	return m.store.GetPending(id)
}

// Edit mutates the editable fields of a pending record.
func (m *Manager) Edit(id string, update FieldUpdate) (TransactionRecord, error) {
	rec, err := m.store.Edit(id, update)
	if err != nil {
		return TransactionRecord{}, err
	}
	log.Printf("Edited transaction %s", shortID(id))
	m.audit(rec.ID, rec.OwnerID, "edited", "")
	return rec, nil
}

// Confirm finalizes a pending record and publishes it downstream exactly
// once. A failed publish does not undo the local confirmation: the record
// stays confirmed and the failure goes to the audit trail, leaving the
// retry decision to the (idempotent) downstream consumer.
func (m *Manager) Confirm(id string) (TransactionRecord, error) {
	rec, err := m.store.Confirm(id)
	if err != nil {
		return TransactionRecord{}, err
	}
	log.Printf("Confirmed transaction %s owner=%s amount=%s", shortID(rec.ID), rec.OwnerID, rec.Amount)
	m.audit(rec.ID, rec.OwnerID, "confirmed", rec.Amount)

	if pubErr := m.publisher.Publish(rec); pubErr != nil {
		log.Printf("Publish error for transaction %s: %v", shortID(rec.ID), pubErr)
		m.audit(rec.ID, rec.OwnerID, "publish_failed", pubErr.Error())
	}
	return rec, nil
}

// Cancel discards a pending record.
func (m *Manager) Cancel(id string) (TransactionRecord, error) {
	rec, err := m.store.Cancel(id)
	if err != nil {
		return TransactionRecord{}, err
	}
	log.Printf("Cancelled transaction %s owner=%s", shortID(rec.ID), rec.OwnerID)
	m.audit(rec.ID, rec.OwnerID, "cancelled", "")
	return rec, nil
}

// ExpirePending sweeps pending records older than ttl. Owners get no
// notification for records they abandoned.
func (m *Manager) ExpirePending(ttl time.Duration) (int, error) {
	removed, err := m.store.ExpirePending(ttl, time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("Expired %d pending transactions older than %s", removed, ttl)
		m.audit("", "", "expired_sweep", "")
	}
	return removed, nil
}

// Stats reports store aggregates.
func (m *Manager) Stats() StoreStats {
	return m.store.Stats()
}

// ConfirmedByOwner lists confirmed records for an owner fragment.
func (m *Manager) ConfirmedByOwner(owner string) []TransactionRecord {
	return m.store.ConfirmedByOwner(owner)
}

// Events returns the audit trail of one transaction, oldest first. Empty
// when the audit trail is disabled.
func (m *Manager) Events(txID string) ([]ReceiptEvent, error) {
	if m.auditDB == nil {
		return nil, nil
	}
	return GetEventsByTransaction(m.auditDB, txID)
}

// ClassificationCounts reports how often each category/strategy pair was
// assigned. Empty when the audit trail is disabled.
func (m *Manager) ClassificationCounts() (map[string]int, error) {
	if m.auditDB == nil {
		return nil, nil
	}
	return GetClassificationCounts(m.auditDB, time.Time{})
}

func (m *Manager) audit(txID, ownerID, event, detail string) {
	if m.auditDB == nil {
		return
	}
	if err := InsertReceiptEvent(m.auditDB, txID, ownerID, event, detail); err != nil {
		log.Printf("Audit write error (%s): %v", event, err)
	}
}

func (m *Manager) auditClassification(txID string, a Analysis) {
	if m.auditDB == nil {
		return
	}
	if err := InsertClassificationHistory(m.auditDB, txID, a); err != nil {
		log.Printf("Classification audit write error: %v", err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
