package orderdesk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/model"
)

// updateSource tags inventory records updated by this service so OrderDesk
// operators can tell webhook-driven changes from manual ones.
const updateSource = "Foxy-OrderDesk-Webhook"

// Store adapts the OrderDesk client to the datastore interface.
type Store struct {
	client     *Client
	apiKey     string
	storeID    string
	skipUpdate cart.SkipList
	logger     *slog.Logger
}

// NewStore creates an OrderDesk datastore. skipUpdateCodes is the
// comma-separated list of codes whose stock is never written back; when
// empty, all updates are skipped — pushing deductions is opt-in.
func NewStore(apiKey, storeID, skipUpdateCodes string, logger *slog.Logger) *Store {
	skip := cart.NewSkipList(skipUpdateCodes)
	if strings.TrimSpace(skipUpdateCodes) == "" {
		skip = cart.SkipList{All: true}
	}
	return &Store{
		client:     NewClient(apiKey, storeID),
		apiKey:     apiKey,
		storeID:    storeID,
		skipUpdate: skip,
		logger:     logger,
	}
}

// SetBaseURL overrides the client's API base URL. Used by tests.
func (s *Store) SetBaseURL(u string) {
	s.client.SetBaseURL(u)
}

// Credentials reports whether both OrderDesk credentials are configured.
func (s *Store) Credentials() error {
	if s.storeID == "" {
		s.logger.Error("FOXY_ORDERDESK_STORE_ID is not configured")
		return model.NewConfigError("FOXY_ORDERDESK_STORE_ID")
	}
	if s.apiKey == "" {
		s.logger.Error("FOXY_ORDERDESK_API_KEY is not configured")
		return model.NewConfigError("FOXY_ORDERDESK_API_KEY")
	}
	return nil
}

// FetchCanonicalItems resolves cart items against OrderDesk inventory with
// a single batched call.
func (s *Store) FetchCanonicalItems(ctx context.Context, items []cart.Item) ([]cart.CanonicalItem, error) {
	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.Code.String())
	}

	fetched, err := s.client.FetchInventoryItems(ctx, codes)
	if err != nil {
		return nil, err
	}

	canonical := make([]cart.CanonicalItem, 0, len(fetched))
	for _, od := range fetched {
		canonical = append(canonical, toCanonical(od))
	}
	return canonical, nil
}

// toCanonical maps an OrderDesk record into the provider-independent shape.
// OrderDesk's stock becomes the canonical inventory.
func toCanonical(od InventoryItem) cart.CanonicalItem {
	item := cart.CanonicalItem{
		Name:       od.Name,
		Code:       od.Code.String(),
		ProviderID: od.ID.String(),
	}
	if price, ok := od.Price.Float(); ok {
		item.Price = cart.Float(price)
	}
	if stock, ok := od.Stock.Float(); ok {
		item.Inventory = cart.Float(stock)
	}
	return item
}

// UpdateInventory writes new stock levels back to OrderDesk. Items in the
// skip-update list are dropped; an all-skip configuration makes this a
// no-op. Items missing any field OrderDesk requires fail the whole batch
// before anything is sent.
func (s *Store) UpdateInventory(ctx context.Context, items []cart.CanonicalItem) error {
	if s.skipUpdate.All {
		return nil
	}

	updates := make([]InventoryItem, 0, len(items))
	var invalid []string
	for _, item := range items {
		if s.skipUpdate.Skip(item.Code) {
			continue
		}
		if item.ProviderID == "" || item.Name == "" || item.Code == "" ||
			item.Price == nil || item.Inventory == nil {
			invalid = append(invalid, item.Code)
			continue
		}
		updates = append(updates, InventoryItem{
			ID:           model.FlexString(item.ProviderID),
			Name:         item.Name,
			Code:         model.FlexString(item.Code),
			Price:        model.NewNumber(*item.Price),
			Stock:        model.NewNumber(*item.Inventory),
			UpdateSource: updateSource,
		})
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid inventory items for update: %s", strings.Join(invalid, ","))
	}
	if len(updates) == 0 {
		return nil
	}

	resp, err := s.client.UpdateInventoryItems(ctx, updates)
	if err != nil {
		return err
	}
	if resp.Status != "success" {
		return model.NewUpstreamError("OrderDesk",
			fmt.Errorf("batch update status %q: %s", resp.Status, resp.Message))
	}
	return nil
}
