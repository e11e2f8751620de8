package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luxfi/dvpguard/internal/metrics"
	"github.com/luxfi/dvpguard/internal/registry"
	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/identity"
	"github.com/luxfi/dvpguard/pkg/log"
	"github.com/luxfi/dvpguard/pkg/share"
)

type handlers struct {
	store   *registry.Store
	log     log.Logger
	metrics *metrics.Registry
}

// registerCompany publishes a company's public key material. The request
// body is the identity.Serialize interchange format; private key fields,
// if present, are discarded rather than stored.
func (h *handlers) registerCompany(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ident, err := identity.Deserialize(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ident.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if err := h.store.RegisterCompany(c.Request.Context(), ident); err != nil {
		h.log.Error("register company failed", log.Err(err))
		h.metrics.ObserveStoreError("register_company")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": ident.Name})
}

func (h *handlers) getCompany(c *gin.Context) {
	name := c.Param("name")
	pub, err := h.store.LookupCompany(c.Request.Context(), name)
	if err != nil {
		h.log.Error("lookup company failed", log.Err(err))
		h.metrics.ObserveStoreError("lookup_company")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if pub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}
	blob, err := identity.Serialize(pub)
	if err != nil {
		h.log.Error("serialize company failed", log.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Data(http.StatusOK, "application/json", blob)
}

// createTransaction registers a freshly protected transaction. Publishing
// the same tx_id twice is rejected, matching the registry's role as an
// append-mostly bulletin board rather than a mutable blob store — updates
// after creation go through buyerSign or an explicit PUT.
func (h *handlers) createTransaction(c *gin.Context) {
	var pt envelope.ProtectedTransaction
	if err := c.ShouldBindJSON(&pt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if pt.TxID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tx_id is required"})
		return
	}
	if err := h.store.PutTransactionIfAbsent(c.Request.Context(), &pt); err != nil {
		if errors.Is(err, registry.ErrTransactionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "transaction already exists"})
			return
		}
		h.log.Error("create transaction failed", log.Err(err))
		h.metrics.ObserveStoreError("create_transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "stored", "tx_id": pt.TxID})
}

// putTransaction stores or replaces a ProtectedTransaction outright. Used
// by callers (e.g. demo scripts) that want PUT's unconditional-overwrite
// semantics instead of createTransaction's reject-on-duplicate rule.
func (h *handlers) putTransaction(c *gin.Context) {
	var pt envelope.ProtectedTransaction
	if err := c.ShouldBindJSON(&pt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if pathTxID := c.Param("tx_id"); pathTxID != "" && pathTxID != pt.TxID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tx_id in body does not match URL"})
		return
	}
	if pt.TxID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tx_id is required"})
		return
	}
	if err := h.store.PutTransaction(c.Request.Context(), &pt); err != nil {
		h.log.Error("put transaction failed", log.Err(err))
		h.metrics.ObserveStoreError("put_transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, pt)
}

func (h *handlers) getTransaction(c *gin.Context) {
	txID := c.Param("tx_id")
	pt, err := h.store.GetTransaction(c.Request.Context(), txID)
	if err != nil {
		h.log.Error("get transaction failed", log.Err(err))
		h.metrics.ObserveStoreError("get_transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if pt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, pt)
}

func (h *handlers) listTransactions(c *gin.Context) {
	txs, err := h.store.ListTransactions(c.Request.Context())
	if err != nil {
		h.log.Error("list transactions failed", log.Err(err))
		h.metrics.ObserveStoreError("list_transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// buyerSign merges a buyer's countersignature into a previously registered
// transaction. The registry does not verify the signature itself — that is
// the core's job (buyer_sign, check) — it only persists what it is told.
func (h *handlers) buyerSign(c *gin.Context) {
	txID := c.Param("tx_id")
	var body struct {
		SigBuyer string `json:"sig_buyer"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.SigBuyer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sig_buyer is required"})
		return
	}
	pt, err := h.store.SetBuyerSignature(c.Request.Context(), txID, body.SigBuyer)
	if err != nil {
		h.log.Error("buyer sign failed", log.Err(err))
		h.metrics.ObserveStoreError("buyer_sign")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if pt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "buyer_signed", "tx_id": txID})
}

// createShare records a full-transaction ShareRecord against its parent
// tx_id so a third party can later discover the share addressed to them.
func (h *handlers) createShare(c *gin.Context) {
	txID := c.Param("tx_id")
	var rec share.ShareRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if rec.TxID != "" && rec.TxID != txID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tx_id in body does not match URL"})
		return
	}
	rec.TxID = txID
	if err := h.store.PutShare(c.Request.Context(), &rec); err != nil {
		h.log.Error("create share failed", log.Err(err))
		h.metrics.ObserveStoreError("create_share")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "share_stored", "id": rec.ID})
}

func (h *handlers) listShares(c *gin.Context) {
	txID := c.Param("tx_id")
	recs, err := h.store.ListShares(c.Request.Context(), txID)
	if err != nil {
		h.log.Error("list shares failed", log.Err(err))
		h.metrics.ObserveStoreError("list_shares")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, recs)
}
