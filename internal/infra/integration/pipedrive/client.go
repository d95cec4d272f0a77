package pipedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/usecase"
)

// Client talks to the Pipedrive REST API. Calls authenticate with the shared
// company api_token unless the owner carries their own OAuth token, in which
// case the generic api host and a bearer header are used instead.
type Client struct {
	apiKey        string
	companyDomain string
	httpClient    *http.Client
}

func NewClient() *Client {
	return &Client{
		apiKey:        os.Getenv("PIPEDRIVE_API_KEY"),
		companyDomain: os.Getenv("PIPEDRIVE_COMPANY_DOMAIN"),
		httpClient:    http.DefaultClient,
	}
}

func (c *Client) CreatePerson(ctx context.Context, owner *entity.Owner, cust *entity.Customer) (int64, error) {
	body := personRequest{
		Name:  cust.FullName(),
		Email: []contactField{{Value: cust.Email, Primary: true}},
	}
	if cust.Phone != "" {
		body.Phone = []contactField{{Value: cust.Phone, Primary: true}}
	}

	var data idData
	if err := c.do(ctx, owner, http.MethodPost, "/persons", body, &data); err != nil {
		return 0, fmt.Errorf("failed to create pipedrive person: %w", err)
	}
	log.Printf("✅ Pipedrive: person #%d created for %s", data.ID, cust.Email)
	return data.ID, nil
}

func (c *Client) UpdatePerson(ctx context.Context, owner *entity.Owner, cust *entity.Customer) error {
	body := personRequest{
		Name:  cust.FullName(),
		Email: []contactField{{Value: cust.Email, Primary: true}},
	}
	if cust.Phone != "" {
		body.Phone = []contactField{{Value: cust.Phone, Primary: true}}
	}

	path := fmt.Sprintf("/persons/%d", cust.PipedriveID)
	if err := c.do(ctx, owner, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to update pipedrive person: %w", err)
	}
	return nil
}

func (c *Client) DeletePerson(ctx context.Context, owner *entity.Owner, pipedriveID int64) error {
	path := fmt.Sprintf("/persons/%d", pipedriveID)
	if err := c.do(ctx, owner, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete pipedrive person: %w", err)
	}
	return nil
}

func (c *Client) CreateProduct(ctx context.Context, owner *entity.Owner, t *entity.PackageTemplate) (int64, error) {
	body := productRequest{
		Name:        t.Name,
		Description: t.Description,
		Prices:      []productPrice{{Price: cents(t.UnitPriceCents), Currency: "USD"}},
	}

	var data idData
	if err := c.do(ctx, owner, http.MethodPost, "/products", body, &data); err != nil {
		return 0, fmt.Errorf("failed to create pipedrive product: %w", err)
	}
	log.Printf("✅ Pipedrive: product #%d created (%s)", data.ID, t.Name)
	return data.ID, nil
}

func (c *Client) UpdateProduct(ctx context.Context, owner *entity.Owner, t *entity.PackageTemplate) error {
	body := productRequest{
		Name:        t.Name,
		Description: t.Description,
		Prices:      []productPrice{{Price: cents(t.UnitPriceCents), Currency: "USD"}},
	}

	path := fmt.Sprintf("/products/%d", t.PipedriveID)
	if err := c.do(ctx, owner, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to update pipedrive product: %w", err)
	}
	return nil
}

func (c *Client) DeleteProduct(ctx context.Context, owner *entity.Owner, pipedriveID int64) error {
	path := fmt.Sprintf("/products/%d", pipedriveID)
	if err := c.do(ctx, owner, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete pipedrive product: %w", err)
	}
	return nil
}

func (c *Client) CreateDeal(ctx context.Context, owner *entity.Owner, p *entity.PackagePlan, personID int64) (int64, error) {
	body := dealRequest{
		Title:    p.Title,
		PersonID: personID,
		Status:   "open",
	}

	var data idData
	if err := c.do(ctx, owner, http.MethodPost, "/deals", body, &data); err != nil {
		return 0, fmt.Errorf("failed to create pipedrive deal: %w", err)
	}
	log.Printf("✅ Pipedrive: deal #%d created (%s)", data.ID, p.Title)
	return data.ID, nil
}

func (c *Client) UpdateDeal(ctx context.Context, owner *entity.Owner, p *entity.PackagePlan) error {
	body := dealRequest{Title: p.Title}
	if p.Status == "CANCELLED" {
		body.Status = "lost"
	}

	path := fmt.Sprintf("/deals/%d", p.PipedriveID)
	if err := c.do(ctx, owner, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to update pipedrive deal: %w", err)
	}
	return nil
}

func (c *Client) DeleteDeal(ctx context.Context, owner *entity.Owner, pipedriveID int64) error {
	path := fmt.Sprintf("/deals/%d", pipedriveID)
	if err := c.do(ctx, owner, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete pipedrive deal: %w", err)
	}
	return nil
}

func (c *Client) AttachProductToDeal(ctx context.Context, owner *entity.Owner, dealID, productID int64, quantity int, priceCents int64) (int64, error) {
	body := dealProductRequest{
		ProductID: productID,
		ItemPrice: cents(priceCents),
		Quantity:  quantity,
	}

	var data idData
	path := fmt.Sprintf("/deals/%d/products", dealID)
	if err := c.do(ctx, owner, http.MethodPost, path, body, &data); err != nil {
		return 0, fmt.Errorf("failed to attach product to deal: %w", err)
	}
	return data.ID, nil
}

func (c *Client) DetachProductFromDeal(ctx context.Context, owner *entity.Owner, dealID, attachmentID int64) error {
	path := fmt.Sprintf("/deals/%d/products/%d", dealID, attachmentID)
	if err := c.do(ctx, owner, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to detach product from deal: %w", err)
	}
	return nil
}

func (c *Client) ListDealProducts(ctx context.Context, owner *entity.Owner, dealID int64) ([]usecase.DealProduct, error) {
	var data []dealProductData
	path := fmt.Sprintf("/deals/%d/products", dealID)
	if err := c.do(ctx, owner, http.MethodGet, path, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to list deal products: %w", err)
	}

	out := make([]usecase.DealProduct, 0, len(data))
	for _, dp := range data {
		out = append(out, usecase.DealProduct{
			AttachmentID: dp.ID,
			ProductID:    dp.ProductID,
			Quantity:     dp.Quantity,
			PriceCents:   int64(dp.ItemPrice * 100),
		})
	}
	return out, nil
}

func (c *Client) CreateLead(ctx context.Context, owner *entity.Owner, l *entity.Lead, personID int64) (string, error) {
	body := leadRequest{
		Title:    l.Title,
		PersonID: personID,
	}
	if l.ValueCents > 0 {
		body.Value = &leadValue{Amount: cents(l.ValueCents), Currency: "USD"}
	}

	var data leadData
	if err := c.do(ctx, owner, http.MethodPost, "/leads", body, &data); err != nil {
		return "", fmt.Errorf("failed to create pipedrive lead: %w", err)
	}
	log.Printf("✅ Pipedrive: lead %s created (%s)", data.ID, l.Title)
	return data.ID, nil
}

func (c *Client) UpdateLead(ctx context.Context, owner *entity.Owner, l *entity.Lead) error {
	body := leadRequest{Title: l.Title}
	if l.ValueCents > 0 {
		body.Value = &leadValue{Amount: cents(l.ValueCents), Currency: "USD"}
	}

	path := "/leads/" + l.PipedriveID
	if err := c.do(ctx, owner, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("failed to update pipedrive lead: %w", err)
	}
	return nil
}

func (c *Client) DeleteLead(ctx context.Context, owner *entity.Owner, pipedriveID string) error {
	if err := c.do(ctx, owner, http.MethodDelete, "/leads/"+pipedriveID, nil, nil); err != nil {
		return fmt.Errorf("failed to delete pipedrive lead: %w", err)
	}
	return nil
}

// RegisterWebhooks subscribes this service to the Pipedrive events the sync
// listens for. Safe to call on every startup; Pipedrive dedupes on
// (subscription_url, event_action, event_object).
func (c *Client) RegisterWebhooks(ctx context.Context, backendURL string) error {
	if backendURL == "" {
		return fmt.Errorf("no backend url to register webhooks against")
	}

	subscriptions := []struct {
		object string // Pipedrive event_object
		entity string // our route segment
	}{
		{"person", "person"},
		{"product", "product"},
		{"deal", "deal"},
		{"lead", "lead"},
	}
	actions := []string{"added", "updated", "deleted"}

	for _, sub := range subscriptions {
		for _, action := range actions {
			body := webhookRequest{
				SubscriptionURL: fmt.Sprintf("%s/webhooks/pipedrive/%s/%s", backendURL, sub.entity, action),
				EventAction:     action,
				EventObject:     sub.object,
			}
			if err := c.do(ctx, nil, http.MethodPost, "/webhooks", body, nil); err != nil {
				return fmt.Errorf("failed to register %s.%s webhook: %w", sub.object, action, err)
			}
		}
	}
	log.Printf("✅ Pipedrive: webhook subscriptions registered for %s", backendURL)
	return nil
}

// do performs one API call and decodes the data field of the success envelope
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, owner *entity.Owner, method, path string, body, out any) error {
	if c.apiKey == "" && !owner.HasOwnPipedriveToken() {
		return fmt.Errorf("pipedrive is not configured")
	}

	endpoint, err := c.endpoint(owner, path)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if owner.HasOwnPipedriveToken() {
		req.Header.Set("Authorization", "Bearer "+owner.PipedriveOAuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pipedrive returned %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}

	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !envelope.Success {
		return fmt.Errorf("pipedrive call failed: %s", string(raw))
	}
	return json.Unmarshal(envelope.Data, out)
}

// endpoint builds the full URL. Owners with an OAuth token go through the
// generic api host; everyone else hits the company subdomain with the shared
// key as a query parameter.
func (c *Client) endpoint(owner *entity.Owner, path string) (string, error) {
	if owner.HasOwnPipedriveToken() {
		return "https://api.pipedrive.com/v1" + path, nil
	}

	base := fmt.Sprintf("https://%s.pipedrive.com/api/v1%s", c.companyDomain, path)
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad pipedrive path %q: %w", path, err)
	}
	q := u.Query()
	q.Set("api_token", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func cents(v int64) float64 {
	return float64(v) / 100
}
