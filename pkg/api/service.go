// Package api offers one method per IdleMMO endpoint on top of the request
// coordinator. Every endpoint has an Async form returning a Future and a
// blocking form taking a context.
package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Sternrassler/idlemmo-client/pkg/client"
	"github.com/Sternrassler/idlemmo-client/pkg/endpoint"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/Sternrassler/idlemmo-client/pkg/pagination"
)

// Service is a typed facade over a client.Client.
type Service struct {
	c *client.Client
}

// New wraps c.
func New(c *client.Client) *Service {
	return &Service{c: c}
}

// Client returns the underlying coordinator.
func (s *Service) Client() *client.Client {
	return s.c
}

// ItemSearch filters the item search. Zero fields are omitted.
type ItemSearch struct {
	Query string
	Type  model.ItemType
	Page  int
}

func (o ItemSearch) query() map[string]string {
	q := map[string]string{}
	if o.Query != "" {
		q["query"] = o.Query
	}
	if o.Type != "" {
		q["type"] = o.Type.QueryValue()
	}
	if o.Page > 0 {
		q["page"] = strconv.Itoa(o.Page)
	}
	return q
}

// MarketHistoryOptions selects the history series. Tier defaults to 0 and
// Type to listings.
type MarketHistoryOptions struct {
	Tier int
	Type model.MarketType
}

// MuseumOptions filters a character museum. Zero fields are omitted.
type MuseumOptions struct {
	Category model.MuseumCategory
	Page     int
}

func enqueue[T any](s *Service, e endpoint.Endpoint, path, query map[string]string) *client.Future[T] {
	return client.Enqueue[T](s.c, client.Request{Endpoint: e, PathParams: path, Query: query})
}

func await[T any](ctx context.Context, f *client.Future[T]) (T, error) {
	resp, err := f.Await(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Result()
}

func character(id string) map[string]string {
	return map[string]string{"hashed_character_id": id}
}

func item(id string) map[string]string {
	return map[string]string{"hashed_item_id": id}
}

func season(n int) map[string]string {
	if n <= 0 {
		return nil
	}
	return map[string]string{"season_number": strconv.Itoa(n)}
}

// Authentication

func (s *Service) AuthenticationAsync() *client.Future[model.Authentication] {
	return enqueue[model.Authentication](s, endpoint.Authenticate, nil, nil)
}

func (s *Service) Authentication(ctx context.Context) (model.Authentication, error) {
	return await(ctx, s.AuthenticationAsync())
}

// Combat

func (s *Service) WorldBossesAsync() *client.Future[model.WorldBosses] {
	return enqueue[model.WorldBosses](s, endpoint.WorldBosses, nil, nil)
}

func (s *Service) WorldBosses(ctx context.Context) (model.WorldBosses, error) {
	return await(ctx, s.WorldBossesAsync())
}

func (s *Service) DungeonsAsync() *client.Future[model.Dungeons] {
	return enqueue[model.Dungeons](s, endpoint.Dungeons, nil, nil)
}

func (s *Service) Dungeons(ctx context.Context) (model.Dungeons, error) {
	return await(ctx, s.DungeonsAsync())
}

func (s *Service) EnemiesAsync() *client.Future[model.Enemies] {
	return enqueue[model.Enemies](s, endpoint.Enemies, nil, nil)
}

func (s *Service) Enemies(ctx context.Context) (model.Enemies, error) {
	return await(ctx, s.EnemiesAsync())
}

// Items

// SearchItemsAsync searches items by name, type, or both.
func (s *Service) SearchItemsAsync(opts ItemSearch) *client.Future[model.Items] {
	return enqueue[model.Items](s, endpoint.Items, nil, opts.query())
}

func (s *Service) SearchItems(ctx context.Context, opts ItemSearch) (model.Items, error) {
	return await(ctx, s.SearchItemsAsync(opts))
}

// ItemSearchPages returns a page fetcher for every page of a search. The
// Page field of opts is ignored.
func (s *Service) ItemSearchPages(opts ItemSearch) pagination.PageFunc[[]model.Item] {
	return func(ctx context.Context, page int) ([]model.Item, model.Paged, error) {
		o := opts
		o.Page = page
		items, err := s.SearchItems(ctx, o)
		if err != nil {
			return nil, model.Paged{}, err
		}
		return items.Items, items.Pagination, nil
	}
}

func (s *Service) InspectItemAsync(hashedItemID string) *client.Future[model.ItemInspection] {
	return enqueue[model.ItemInspection](s, endpoint.ItemInspection, item(hashedItemID), nil)
}

func (s *Service) InspectItem(ctx context.Context, hashedItemID string) (model.ItemInspection, error) {
	return await(ctx, s.InspectItemAsync(hashedItemID))
}

func (s *Service) MarketHistoryAsync(hashedItemID string, opts MarketHistoryOptions) *client.Future[model.MarketHistory] {
	if opts.Type == "" {
		opts.Type = model.MarketListings
	}
	query := map[string]string{
		"tier": strconv.Itoa(opts.Tier),
		"type": string(opts.Type),
	}
	return enqueue[model.MarketHistory](s, endpoint.ItemMarketHistory, item(hashedItemID), query)
}

func (s *Service) MarketHistory(ctx context.Context, hashedItemID string, opts MarketHistoryOptions) (model.MarketHistory, error) {
	return await(ctx, s.MarketHistoryAsync(hashedItemID, opts))
}

// MarketListingHistory is MarketHistory for tier 0 listings.
func (s *Service) MarketListingHistory(ctx context.Context, hashedItemID string) (model.MarketHistory, error) {
	return s.MarketHistory(ctx, hashedItemID, MarketHistoryOptions{Type: model.MarketListings})
}

// MarketOrderHistory is MarketHistory for tier 0 buy orders.
func (s *Service) MarketOrderHistory(ctx context.Context, hashedItemID string) (model.MarketHistory, error) {
	return s.MarketHistory(ctx, hashedItemID, MarketHistoryOptions{Type: model.MarketOrders})
}

// Characters

func (s *Service) CharacterAsync(hashedCharacterID string) *client.Future[model.CharacterView] {
	return enqueue[model.CharacterView](s, endpoint.CharacterView, character(hashedCharacterID), nil)
}

func (s *Service) Character(ctx context.Context, hashedCharacterID string) (model.CharacterView, error) {
	return await(ctx, s.CharacterAsync(hashedCharacterID))
}

func (s *Service) CharacterMetricsAsync(hashedCharacterID string) *client.Future[model.CharacterMetric] {
	return enqueue[model.CharacterMetric](s, endpoint.CharacterMetrics, character(hashedCharacterID), nil)
}

func (s *Service) CharacterMetrics(ctx context.Context, hashedCharacterID string) (model.CharacterMetric, error) {
	return await(ctx, s.CharacterMetricsAsync(hashedCharacterID))
}

func (s *Service) CharacterEffectsAsync(hashedCharacterID string) *client.Future[model.CharacterEffects] {
	return enqueue[model.CharacterEffects](s, endpoint.CharacterEffects, character(hashedCharacterID), nil)
}

func (s *Service) CharacterEffects(ctx context.Context, hashedCharacterID string) (model.CharacterEffects, error) {
	return await(ctx, s.CharacterEffectsAsync(hashedCharacterID))
}

func (s *Service) CharacterAltsAsync(hashedCharacterID string) *client.Future[model.CharacterAlts] {
	return enqueue[model.CharacterAlts](s, endpoint.CharacterAltCharacters, character(hashedCharacterID), nil)
}

func (s *Service) CharacterAlts(ctx context.Context, hashedCharacterID string) (model.CharacterAlts, error) {
	return await(ctx, s.CharacterAltsAsync(hashedCharacterID))
}

func (s *Service) CharacterMuseumAsync(hashedCharacterID string, opts MuseumOptions) *client.Future[model.CharacterMuseum] {
	query := map[string]string{}
	if opts.Category != "" {
		query["category"] = string(opts.Category)
	}
	if opts.Page > 0 {
		query["page"] = strconv.Itoa(opts.Page)
	}
	return enqueue[model.CharacterMuseum](s, endpoint.CharacterMuseum, character(hashedCharacterID), query)
}

func (s *Service) CharacterMuseum(ctx context.Context, hashedCharacterID string, opts MuseumOptions) (model.CharacterMuseum, error) {
	return await(ctx, s.CharacterMuseumAsync(hashedCharacterID, opts))
}

// MuseumPages returns a page fetcher over a character museum.
func (s *Service) MuseumPages(hashedCharacterID string, category model.MuseumCategory) pagination.PageFunc[[]model.MuseumItem] {
	return func(ctx context.Context, page int) ([]model.MuseumItem, model.Paged, error) {
		museum, err := s.CharacterMuseum(ctx, hashedCharacterID, MuseumOptions{Category: category, Page: page})
		if err != nil {
			return nil, model.Paged{}, err
		}
		return museum.Items, museum.Pagination, nil
	}
}

func (s *Service) CharacterActionAsync(hashedCharacterID string) *client.Future[model.CharacterAction] {
	return enqueue[model.CharacterAction](s, endpoint.CharacterCurrentAction, character(hashedCharacterID), nil)
}

func (s *Service) CharacterAction(ctx context.Context, hashedCharacterID string) (model.CharacterAction, error) {
	return await(ctx, s.CharacterActionAsync(hashedCharacterID))
}

func (s *Service) CharacterPetsAsync(hashedCharacterID string) *client.Future[model.CharacterPets] {
	return enqueue[model.CharacterPets](s, endpoint.CharacterPets, character(hashedCharacterID), nil)
}

func (s *Service) CharacterPets(ctx context.Context, hashedCharacterID string) (model.CharacterPets, error) {
	return await(ctx, s.CharacterPetsAsync(hashedCharacterID))
}

// Guilds

func (s *Service) GuildAsync(id int) *client.Future[model.GuildView] {
	return enqueue[model.GuildView](s, endpoint.GuildInformation, map[string]string{"id": strconv.Itoa(id)}, nil)
}

func (s *Service) Guild(ctx context.Context, id int) (model.GuildView, error) {
	return await(ctx, s.GuildAsync(id))
}

// GuildConquestAsync fetches a conquest season; seasonNumber <= 0 selects the
// current season.
func (s *Service) GuildConquestAsync(seasonNumber int) *client.Future[model.GuildConquest] {
	return enqueue[model.GuildConquest](s, endpoint.GuildConquests, nil, season(seasonNumber))
}

func (s *Service) GuildConquest(ctx context.Context, seasonNumber int) (model.GuildConquest, error) {
	return await(ctx, s.GuildConquestAsync(seasonNumber))
}

// ConquestZoneAsync inspects a zone; seasonNumber <= 0 selects the current
// season.
func (s *Service) ConquestZoneAsync(zone model.ZoneID, seasonNumber int) *client.Future[model.GuildConquestInspection] {
	path := map[string]string{"zone_id": strconv.Itoa(int(zone))}
	return enqueue[model.GuildConquestInspection](s, endpoint.GuildConquestZoneInspection, path, season(seasonNumber))
}

func (s *Service) ConquestZone(ctx context.Context, zone model.ZoneID, seasonNumber int) (model.GuildConquestInspection, error) {
	return await(ctx, s.ConquestZoneAsync(zone, seasonNumber))
}

// Shrine

func (s *Service) ShrineAsync() *client.Future[model.ShrineInfo] {
	return enqueue[model.ShrineInfo](s, endpoint.ShrineProgress, nil, nil)
}

func (s *Service) Shrine(ctx context.Context) (model.ShrineInfo, error) {
	return await(ctx, s.ShrineAsync())
}

// CheckScopes authenticates and reports the endpoints the key may not call.
func (s *Service) CheckScopes(ctx context.Context) ([]endpoint.Endpoint, error) {
	auth, err := s.Authentication(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	var missing []endpoint.Endpoint
	for _, e := range endpoint.All() {
		if e.Name == endpoint.Authenticate.Name {
			continue
		}
		if !auth.HasScope(e.Scope) {
			missing = append(missing, e)
		}
	}
	return missing, nil
}
