package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	pendingSnapshotFile   = "pending_transactions.json"
	confirmedSnapshotFile = "confirmed_transactions.json"
)

// Store owns the authoritative transaction state: the pending index (by id
// and by owner) and the confirmed log, mirrored to two JSON snapshot files
// that are rewritten atomically on every mutation. All exported methods
// take the mutex, so check-then-act sequences like the one-pending-per-
// owner guard in CreatePending are race free.
type Store struct {
	mu      sync.Mutex
	dataDir string

	pending    map[string]*TransactionRecord // id -> record
	ownerIndex map[string]string             // ownerID -> pending record id
	confirmed  []TransactionRecord
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{
		dataDir:    dataDir,
		pending:    make(map[string]*TransactionRecord),
		ownerIndex: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var pending []TransactionRecord
	if err := readJSONFile(filepath.Join(s.dataDir, pendingSnapshotFile), &pending); err != nil {
		return fmt.Errorf("load pending snapshot: %w", err)
	}
	for i := range pending {
		rec := pending[i]
		s.pending[rec.ID] = &rec
		s.ownerIndex[rec.OwnerID] = rec.ID
	}

	if err := readJSONFile(filepath.Join(s.dataDir, confirmedSnapshotFile), &s.confirmed); err != nil {
		return fmt.Errorf("load confirmed snapshot: %w", err)
	}
	if len(s.pending) > 0 || len(s.confirmed) > 0 {
		log.Printf("Loaded %d pending and %d confirmed transactions from %s", len(s.pending), len(s.confirmed), s.dataDir)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// save rewrites both snapshots. Callers must hold s.mu and roll back their
// in-memory mutation if an error comes back: a failed write must never
// leave memory and disk telling different stories.
func (s *Store) save() error {
	pending := make([]TransactionRecord, 0, len(s.pending))
	for _, rec := range s.pending {
		pending = append(pending, *rec)
	}
	if err := writeJSONAtomic(filepath.Join(s.dataDir, pendingSnapshotFile), pending); err != nil {
		return fmt.Errorf("%w: pending: %v", ErrPersistence, err)
	}
	if err := writeJSONAtomic(filepath.Join(s.dataDir, confirmedSnapshotFile), s.confirmed); err != nil {
		return fmt.Errorf("%w: confirmed: %v", ErrPersistence, err)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// CreatePending indexes a new pending record. The duplicate-owner check
// and the insertion happen under one lock, so two back-to-back creates for
// the same owner cannot both succeed.
func (s *Store) CreatePending(rec TransactionRecord) (TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ownerIndex[rec.OwnerID]; exists {
		return TransactionRecord{}, ErrDuplicatePending
	}
	rec.Status = StatusPending
	s.pending[rec.ID] = &rec
	s.ownerIndex[rec.OwnerID] = rec.ID

	if err := s.save(); err != nil {
		delete(s.pending, rec.ID)
		delete(s.ownerIndex, rec.OwnerID)
		return TransactionRecord{}, err
	}
	return rec, nil
}

// GetPending returns a copy of the pending record with the given id.
func (s *Store) GetPending(id string) (TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	if !ok {
		return TransactionRecord{}, ErrNotFound
	}
	return *rec, nil
}

// GetPendingByOwner returns the owner's open record, if any.
func (s *Store) GetPendingByOwner(ownerID string) (TransactionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ownerIndex[ownerID]
	if !ok {
		return TransactionRecord{}, false
	}
	rec, ok := s.pending[id]
	if !ok {
		return TransactionRecord{}, false
	}
	return *rec, true
}

// Edit applies the provided fields to a pending record. No semantic
// validation happens here; a nonsense amount is caught at confirm time.
func (s *Store) Edit(id string, update FieldUpdate) (TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	if !ok {
		return TransactionRecord{}, ErrNotFound
	}

	prev := *rec
	if update.Category != nil {
		rec.Category = *update.Category
	}
	if update.Amount != nil {
		rec.Amount = *update.Amount
	}
	if update.Installments != nil {
		rec.Installments = *update.Installments
	}
	if update.LastFourDigits != nil {
		rec.LastFourDigits = *update.LastFourDigits
	}
	if update.Payer != nil {
		rec.Payer = *update.Payer
	}

	if err := s.save(); err != nil {
		*rec = prev
		return TransactionRecord{}, err
	}
	return *rec, nil
}

// Confirm validates and finalizes a pending record, moving it to the
// confirmed log. The amount must contain at least one digit; the category
// is coerced to credito when it is not one of the known five, then
// upper-cased; installments are clamped at 12. The caller is responsible
// for the downstream publish.
func (s *Store) Confirm(id string) (TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	if !ok {
		return TransactionRecord{}, ErrNotFound
	}
	if !strings.ContainsAny(rec.Amount, "0123456789") {
		return TransactionRecord{}, fmt.Errorf("%w: edit the amount before confirming", ErrNoAmount)
	}

	confirmed := *rec
	if !knownCategories[confirmed.Category] {
		confirmed.Category = CategoryCredit
	}
	confirmed.Category = strings.ToUpper(confirmed.Category)
	if confirmed.Installments > 12 {
		confirmed.Installments = 12
	}
	confirmed.Status = StatusConfirmed

	delete(s.pending, id)
	delete(s.ownerIndex, rec.OwnerID)
	s.confirmed = append(s.confirmed, confirmed)

	if err := s.save(); err != nil {
		s.pending[id] = rec
		s.ownerIndex[rec.OwnerID] = id
		s.confirmed = s.confirmed[:len(s.confirmed)-1]
		return TransactionRecord{}, err
	}
	return confirmed, nil
}

// Cancel discards a pending record. Terminal, no downstream effects.
func (s *Store) Cancel(id string) (TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	if !ok {
		return TransactionRecord{}, ErrNotFound
	}
	delete(s.pending, id)
	delete(s.ownerIndex, rec.OwnerID)

	if err := s.save(); err != nil {
		s.pending[id] = rec
		s.ownerIndex[rec.OwnerID] = id
		return TransactionRecord{}, err
	}
	cancelled := *rec
	cancelled.Status = StatusCancelled
	return cancelled, nil
}

// ExpirePending drops pending records created before the cutoff and
// returns how many were removed. A failed snapshot write restores the
// removed records, like every other mutation.
func (s *Store) ExpirePending(ttl time.Duration, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-ttl)
	expired := make(map[string]*TransactionRecord)
	for id, rec := range s.pending {
		if rec.CreatedAt.Before(cutoff) {
			expired[id] = rec
			delete(s.pending, id)
			delete(s.ownerIndex, rec.OwnerID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	if err := s.save(); err != nil {
		for id, rec := range expired {
			s.pending[id] = rec
			s.ownerIndex[rec.OwnerID] = id
		}
		return 0, err
	}
	return len(expired), nil
}

// ConfirmedByOwner returns confirmed records whose owner contains the
// given fragment, case-insensitively.
func (s *Store) ConfirmedByOwner(owner string) []TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(owner)
	var out []TransactionRecord
	for _, rec := range s.confirmed {
		if strings.Contains(strings.ToLower(rec.OwnerID), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// Stats aggregates the store contents. Confirmed amounts that fail to
// parse count as zero rather than poisoning the total.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := StoreStats{
		PendingCount:   len(s.pending),
		ConfirmedCount: len(s.confirmed),
	}
	owners := make(map[string]bool)
	for _, rec := range s.confirmed {
		stats.TotalConfirmedValue += parseAmountValue(rec.Amount)
		owners[rec.OwnerID] = true
	}
	stats.UniqueOwners = len(owners)
	return stats
}

// parseAmountValue turns a display amount like "R$ 1.234,56" into 1234.56.
// Unparsable input yields 0.
func parseAmountValue(amount string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, amount)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
