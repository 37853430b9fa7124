package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the HTTP boundary: receipt ingestion, lifecycle
// operations on pending records, the message-command protocol and stats.
func NewRouter(m *Manager, apiToken string) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if apiToken != "" {
			r.Use(bearerAuthMiddleware(apiToken))
		}

		r.Post("/receipts", handleIngest(m))
		r.Get("/receipts/pending/{owner_id}", handleGetPending(m))
		r.Get("/receipts/{id}", handleGetTransaction(m))
		r.Get("/receipts/{id}/events", handleEvents(m))
		r.Patch("/receipts/{id}", handleEdit(m))
		r.Post("/receipts/{id}/confirm", handleConfirm(m))
		r.Post("/receipts/{id}/cancel", handleCancel(m))
		r.Get("/stats", handleStats(m))
		r.Post("/messages", handleMessage(m))
	})

	return r
}

func bearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	want := "Bearer " + token
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != want {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleIngest(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in InboundReceipt
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(in.RawText) == "" || strings.TrimSpace(in.OwnerID) == "" {
			http.Error(w, "raw_text and owner_id are required", http.StatusBadRequest)
			return
		}

		rec, analysis, err := m.Ingest(in)
		if errors.Is(err, ErrDuplicatePending) {
			http.Error(w, "owner already has a pending transaction", http.StatusConflict)
			return
		}
		if err != nil {
			log.Printf("ERROR: ingest for owner %s: %v", in.OwnerID, err)
			http.Error(w, "failed to create transaction", http.StatusInternalServerError)
			return
		}

		// The reply is the analysis summary the channel client shows the
		// user for review.
		writeJSON(w, http.StatusCreated, map[string]any{
			"transaction": rec,
			"analysis":    analysis,
			"reply":       FormatAnalysis(analysis),
		})
	}
}

func handleGetPending(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := m.PendingByOwner(chi.URLParam(r, "owner_id"))
		if !ok {
			http.Error(w, "no pending transaction", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleGetTransaction(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := m.GetPending(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleEvents(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := m.Events(chi.URLParam(r, "id"))
		if err != nil {
			log.Printf("ERROR: read audit trail: %v", err)
			http.Error(w, "failed to read audit trail", http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []ReceiptEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func handleEdit(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		dec := json.NewDecoder(r.Body)
		// Unknown field names are a caller bug; reject them at the
		// boundary instead of silently dropping them.
		dec.DisallowUnknownFields()
		var update FieldUpdate
		if err := dec.Decode(&update); err != nil {
			http.Error(w, "invalid edit payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		if update.IsEmpty() {
			http.Error(w, "no editable fields provided", http.StatusBadRequest)
			return
		}

		rec, err := m.Edit(id, update)
		if err != nil {
			respondLifecycleError(w, id, "edit", err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleConfirm(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, err := m.Confirm(id)
		if err != nil {
			respondLifecycleError(w, id, "confirm", err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleCancel(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, err := m.Cancel(id)
		if err != nil {
			respondLifecycleError(w, id, "cancel", err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleStats(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := m.ClassificationCounts()
		if err != nil {
			log.Printf("ERROR: classification counts: %v", err)
		}
		if counts == nil {
			counts = map[string]int{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"store":          m.Stats(),
			"classification": counts,
		})
	}
}

// handleMessage speaks the review protocol ("1" confirm, "2" cancel,
// "3 campo valor" edit, "status") on behalf of the messaging-channel
// client and returns the reply text it should render.
func handleMessage(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			OwnerID string `json:"owner_id"`
			Text    string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(in.OwnerID) == "" {
			http.Error(w, "owner_id is required", http.StatusBadRequest)
			return
		}

		reply := routeMessage(m, in.OwnerID, in.Text)
		writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
	}
}

func routeMessage(m *Manager, ownerID, text string) string {
	kind := ParseCommand(text)
	if kind == CommandNone {
		return ""
	}

	if kind == CommandStatus {
		confirmed := m.ConfirmedByOwner(ownerID)
		if len(confirmed) == 0 {
			return "Nenhum comprovante confirmado."
		}
		parts := make([]string, 0, len(confirmed))
		for _, rec := range confirmed {
			parts = append(parts, FormatRecord(rec))
		}
		return strings.Join(parts, "\n\n")
	}

	pending, ok := m.PendingByOwner(ownerID)
	if !ok {
		return noPendingReply
	}

	switch kind {
	case CommandConfirm:
		rec, err := m.Confirm(pending.ID)
		if errors.Is(err, ErrNoAmount) {
			return "Valor não identificado. Edite o valor antes de confirmar:\n" + editHelpReply
		}
		if err != nil {
			log.Printf("ERROR: confirm via message for owner %s: %v", ownerID, err)
			return "Erro ao confirmar. Tente novamente."
		}
		return "Comprovante confirmado.\n\n" + FormatRecord(rec)

	case CommandCancel:
		if _, err := m.Cancel(pending.ID); err != nil {
			log.Printf("ERROR: cancel via message for owner %s: %v", ownerID, err)
			return "Erro ao cancelar. Tente novamente."
		}
		return "Comprovante cancelado."

	case CommandEdit:
		update, err := ParseEditCommand(text)
		if err != nil {
			return editHelpReply
		}
		rec, err := m.Edit(pending.ID, update)
		if err != nil {
			log.Printf("ERROR: edit via message for owner %s: %v", ownerID, err)
			return "Erro ao editar. Verifique o formato e tente novamente."
		}
		return "Comprovante atualizado.\n\n" + FormatRecord(rec)
	}
	return ""
}

func respondLifecycleError(w http.ResponseWriter, id, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, ErrNoAmount):
		http.Error(w, "amount has no numeric value", http.StatusUnprocessableEntity)
	case errors.Is(err, ErrPersistence):
		log.Printf("ERROR: %s %s: %v", op, id, err)
		http.Error(w, "failed to persist transaction state", http.StatusInternalServerError)
	default:
		log.Printf("ERROR: %s %s: %v", op, id, err)
		http.Error(w, fmt.Sprintf("failed to %s transaction", op), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
