// Package txclient is a thin HTTP client over the transaction registry and
// disclosure tracker services, used by the demo workflow binaries
// (cmd/dvp-seller, cmd/dvp-buyer, cmd/dvp-auditor). It carries no
// cryptographic logic of its own — every envelope operation goes through
// pkg/envelope, pkg/share, and pkg/check before or after a call here.
package txclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/identity"
	"github.com/luxfi/dvpguard/pkg/share"
)

// Client talks to one transaction registry and (optionally) one disclosure
// tracker instance.
type Client struct {
	RegistryURL   string
	DisclosureURL string
	httpClient    *http.Client
}

// New builds a Client. disclosureURL may be empty if the caller never needs
// the disclosure tracker.
func New(registryURL, disclosureURL string) *Client {
	return &Client{
		RegistryURL:   registryURL,
		DisclosureURL: disclosureURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterCompany publishes pub's public key material. A 409-equivalent
// "already registered" response is treated as success, mirroring the
// Python clients' tolerance for re-registering an existing company.
func (c *Client) RegisterCompany(ctx context.Context, pub *identity.CompanyIdentity) error {
	blob, err := identity.Serialize(identity.PublicOnly(pub))
	if err != nil {
		return fmt.Errorf("txclient: serialize company: %w", err)
	}
	resp, err := c.post(ctx, c.RegistryURL+"/v1/companies", blob)
	if err != nil {
		return fmt.Errorf("txclient: register company: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("txclient: register company: server returned %s", resp.Status)
	}
	return nil
}

// GetCompany fetches a previously registered company's public key material.
func (c *Client) GetCompany(ctx context.Context, name string) (*identity.CompanyIdentity, error) {
	resp, err := c.get(ctx, c.RegistryURL+"/v1/companies/"+name)
	if err != nil {
		return nil, fmt.Errorf("txclient: get company: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("txclient: get company %q: server returned %s", name, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("txclient: read company: %w", err)
	}
	return identity.Deserialize(raw)
}

// CreateTransaction publishes a freshly protected transaction. Fails if the
// tx_id is already registered.
func (c *Client) CreateTransaction(ctx context.Context, pt *envelope.ProtectedTransaction) error {
	blob, err := json.Marshal(pt)
	if err != nil {
		return fmt.Errorf("txclient: marshal transaction: %w", err)
	}
	resp, err := c.post(ctx, c.RegistryURL+"/v1/transactions", blob)
	if err != nil {
		return fmt.Errorf("txclient: create transaction: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("txclient: create transaction: server returned %s: %s", resp.Status, body)
	}
	return nil
}

// GetTransaction fetches a previously published transaction by tx_id.
func (c *Client) GetTransaction(ctx context.Context, txID string) (*envelope.ProtectedTransaction, error) {
	resp, err := c.get(ctx, c.RegistryURL+"/v1/transactions/"+txID)
	if err != nil {
		return nil, fmt.Errorf("txclient: get transaction: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("txclient: get transaction %q: server returned %s", txID, resp.Status)
	}
	var pt envelope.ProtectedTransaction
	if err := json.NewDecoder(resp.Body).Decode(&pt); err != nil {
		return nil, fmt.Errorf("txclient: decode transaction: %w", err)
	}
	return &pt, nil
}

// PushBuyerSignature tells the registry a buyer has countersigned txID.
func (c *Client) PushBuyerSignature(ctx context.Context, txID, sigBuyer string) error {
	body, _ := json.Marshal(map[string]string{"sig_buyer": sigBuyer})
	resp, err := c.post(ctx, c.RegistryURL+"/v1/transactions/"+txID+"/buyer_sign", body)
	if err != nil {
		return fmt.Errorf("txclient: push buyer signature: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("txclient: push buyer signature: server returned %s: %s", resp.Status, body)
	}
	return nil
}

// PushShare publishes a full-transaction ShareRecord to the registry.
func (c *Client) PushShare(ctx context.Context, txID string, rec *share.ShareRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("txclient: marshal share: %w", err)
	}
	resp, err := c.post(ctx, c.RegistryURL+"/v1/transactions/"+txID+"/shares", blob)
	if err != nil {
		return fmt.Errorf("txclient: push share: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("txclient: push share: server returned %s: %s", resp.Status, body)
	}
	return nil
}

// ListShares returns every full-transaction share record registered for
// txID.
func (c *Client) ListShares(ctx context.Context, txID string) ([]*share.ShareRecord, error) {
	resp, err := c.get(ctx, c.RegistryURL+"/v1/transactions/"+txID+"/shares")
	if err != nil {
		return nil, fmt.Errorf("txclient: list shares: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("txclient: list shares: server returned %s", resp.Status)
	}
	var recs []*share.ShareRecord
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, fmt.Errorf("txclient: decode shares: %w", err)
	}
	return recs, nil
}

// PushLayerShare publishes a layer ShareRecord to the disclosure tracker.
func (c *Client) PushLayerShare(ctx context.Context, rec *share.ShareRecord) error {
	if c.DisclosureURL == "" {
		return fmt.Errorf("txclient: no disclosure tracker configured")
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("txclient: marshal layer share: %w", err)
	}
	resp, err := c.post(ctx, c.DisclosureURL+"/disclosures", blob)
	if err != nil {
		return fmt.Errorf("txclient: push layer share: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("txclient: push layer share: server returned %s: %s", resp.Status, body)
	}
	return nil
}

// LayerSharesFor returns the layer shares the disclosure tracker has logged
// for txID, optionally filtered to one section.
func (c *Client) LayerSharesFor(ctx context.Context, txID, section string) ([]*share.ShareRecord, error) {
	if c.DisclosureURL == "" {
		return nil, fmt.Errorf("txclient: no disclosure tracker configured")
	}
	url := c.DisclosureURL + "/disclosures/" + txID
	if section != "" {
		url += "?section=" + section
	}
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("txclient: list layer shares: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("txclient: list layer shares: server returned %s", resp.Status)
	}
	var recs []*share.ShareRecord
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, fmt.Errorf("txclient: decode layer shares: %w", err)
	}
	return recs, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}
