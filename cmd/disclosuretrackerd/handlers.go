package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/luxfi/dvpguard/internal/disclosure"
	"github.com/luxfi/dvpguard/internal/metrics"
	"github.com/luxfi/dvpguard/pkg/log"
	"github.com/luxfi/dvpguard/pkg/share"
)

type handlers struct {
	store   *disclosure.Store
	log     log.Logger
	metrics *metrics.Registry
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// postDisclosure logs a new layer ShareRecord. The caller — typically the
// grantor, right after creating the record — is responsible for having
// already verified it is well-formed; the tracker records it as-is and
// relies on its own id for deduplication.
func (h *handlers) postDisclosure(w http.ResponseWriter, r *http.Request) {
	var rec share.ShareRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if rec.ID == "" || rec.TxID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id and tx_id are required"})
		return
	}

	if err := h.store.Append(r.Context(), &rec); err != nil {
		if errors.Is(err, disclosure.ErrExists) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "disclosure already exists"})
			return
		}
		h.log.Error("append disclosure failed", log.Err(err))
		if h.metrics != nil {
			h.metrics.ObserveStoreError("append_disclosure")
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded", "id": rec.ID})
}

// listDisclosures returns every disclosure logged for a transaction,
// optionally filtered to one section via the ?section= query parameter.
func (h *handlers) listDisclosures(w http.ResponseWriter, r *http.Request) {
	txID := mux.Vars(r)["tx_id"]
	section := r.URL.Query().Get("section")

	records, err := h.store.ForTransaction(r.Context(), txID, section)
	if err != nil {
		h.log.Error("list disclosures failed", log.Err(err))
		if h.metrics != nil {
			h.metrics.ObserveStoreError("list_disclosures")
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
