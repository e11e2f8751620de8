package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dvpguard/internal/disclosure"
	"github.com/luxfi/dvpguard/internal/metrics"
	"github.com/luxfi/dvpguard/pkg/log"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := disclosure.New(rdb)
	return setupRoutes(store, log.NoOp(), metrics.New("test_"+t.Name()))
}

func do(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(blob)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthzIsServed(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPostDisclosureRequiresIDAndTxID(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/disclosures", map[string]string{"to_company": "auditor"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostDisclosureThenList(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/disclosures", map[string]string{
		"id": "rec-1", "tx_id": "tx-1", "section": "pricing", "to_company": "auditor",
	})
	require.Equal(http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/disclosures/tx-1", nil)
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), "auditor")
}

func TestPostDisclosureRejectsDuplicateID(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)
	body := map[string]string{"id": "rec-dup", "tx_id": "tx-2"}

	rec := do(t, router, http.MethodPost, "/disclosures", body)
	require.Equal(http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/disclosures", body)
	require.Equal(http.StatusConflict, rec.Code)
}

func TestListDisclosuresFiltersBySection(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	do(t, router, http.MethodPost, "/disclosures", map[string]string{"id": "r1", "tx_id": "tx-3", "section": "pricing"})
	do(t, router, http.MethodPost, "/disclosures", map[string]string{"id": "r2", "tx_id": "tx-3", "section": "logistics"})

	rec := do(t, router, http.MethodGet, "/disclosures/tx-3?section=pricing", nil)
	require.Equal(http.StatusOK, rec.Code)
	require.Contains(rec.Body.String(), `"id":"r1"`)
	require.NotContains(rec.Body.String(), `"id":"r2"`)
}
