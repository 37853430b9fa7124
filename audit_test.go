package main

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestAuditDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "audit.db")
}

func TestInitAuditDBIsIdempotent(t *testing.T) {
	path := newTestAuditDB(t)

	db, err := InitAuditDB(path)
	if err != nil {
		t.Fatalf("InitAuditDB failed: %v", err)
	}
	db.Close()

	// Reopening an existing database must not fail on the schema.
	db, err = InitAuditDB(path)
	if err != nil {
		t.Fatalf("second InitAuditDB failed: %v", err)
	}
	db.Close()
}

func TestReceiptEvents(t *testing.T) {
	db, err := InitAuditDB(newTestAuditDB(t))
	if err != nil {
		t.Fatalf("InitAuditDB failed: %v", err)
	}
	defer db.Close()

	if err := InsertReceiptEvent(db, "tx-1", "owner-a", "created", "credito"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := InsertReceiptEvent(db, "tx-1", "owner-a", "confirmed", "R$ 10,00"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := InsertReceiptEvent(db, "tx-2", "owner-b", "created", ""); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	events, err := GetEventsByTransaction(db, "tx-1")
	if err != nil {
		t.Fatalf("GetEventsByTransaction failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Event != "created" || events[1].Event != "confirmed" {
		t.Fatalf("event order wrong: %+v", events)
	}
	if events[1].Detail != "R$ 10,00" {
		t.Fatalf("detail = %q", events[1].Detail)
	}

	events, err = GetEventsByTransaction(db, "tx-missing")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events for unknown transaction", len(events))
	}
}

func TestClassificationCounts(t *testing.T) {
	db, err := InitAuditDB(newTestAuditDB(t))
	if err != nil {
		t.Fatalf("InitAuditDB failed: %v", err)
	}
	defer db.Close()

	entries := []Analysis{
		{Category: CategoryCredit, Strategy: strategyDirect, Amount: "R$ 10,00", Installments: 1},
		{Category: CategoryCredit, Strategy: strategyDirect, Amount: "R$ 20,00", Installments: 2},
		{Category: CategoryMeal, Strategy: strategyFuzzy, Amount: "R$ 30,00", Installments: 1},
	}
	for i, a := range entries {
		if err := InsertClassificationHistory(db, "tx-"+string(rune('a'+i)), a); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	counts, err := GetClassificationCounts(db, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetClassificationCounts failed: %v", err)
	}
	if counts["credito/direct"] != 2 {
		t.Fatalf("credito/direct = %d, want 2", counts["credito/direct"])
	}
	if counts["refeicao/fuzzy"] != 1 {
		t.Fatalf("refeicao/fuzzy = %d, want 1", counts["refeicao/fuzzy"])
	}

	// A cutoff in the future sees nothing.
	counts, err = GetClassificationCounts(db, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("GetClassificationCounts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("future cutoff returned %v", counts)
	}
}

func TestManagerWritesAuditTrail(t *testing.T) {
	db, err := InitAuditDB(newTestAuditDB(t))
	if err != nil {
		t.Fatalf("InitAuditDB failed: %v", err)
	}
	defer db.Close()

	m := NewManager(newTestStore(t), NewClassifier(), &fakePublisher{}, db)

	rec, _, err := m.Ingest(sampleReceipt("owner-a"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if _, err := m.Confirm(rec.ID); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	events, err := GetEventsByTransaction(db, rec.ID)
	if err != nil {
		t.Fatalf("GetEventsByTransaction failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want created+confirmed", len(events))
	}
	if events[0].Event != "created" || events[1].Event != "confirmed" {
		t.Fatalf("event trail wrong: %+v", events)
	}

	counts, err := GetClassificationCounts(db, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetClassificationCounts failed: %v", err)
	}
	if counts["credito/direct"] != 1 {
		t.Fatalf("classification history missing: %v", counts)
	}
}
