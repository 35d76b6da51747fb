package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Items is one page of item search results.
type Items struct {
	Items      []Item `json:"items"`
	Pagination Paged  `json:"pagination"`
}

type Item struct {
	HashedID    string  `json:"hashed_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Type        string  `json:"type"`
	Quality     Quality `json:"quality"`
	VendorPrice *int    `json:"vendor_price"`
}

// ItemReference is the short form of an item embedded in other payloads.
type ItemReference struct {
	HashedID string `json:"hashed_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type ItemInspection struct {
	Item ItemDetail `json:"item"`
}

// ItemDetail is the full description of an item.
type ItemDetail struct {
	HashedID            string               `json:"hashed_id"`
	Name                string               `json:"name"`
	Description         string               `json:"description"`
	ImageURL            string               `json:"image_url"`
	Type                string               `json:"type"`
	Quality             Quality              `json:"quality"`
	VendorPrice         *int                 `json:"vendor_price"`
	Tradeable           bool                 `json:"is_tradeable"`
	MaxTier             int                  `json:"max_tier"`
	Requirements        map[string]int       `json:"requirements"`
	Stats               map[string]float64   `json:"stats"`
	Effects             []ItemEffect         `json:"effects"`
	TierModifiers       map[string]float64   `json:"tier_modifiers"`
	UpgradeRequirements []UpgradeRequirement `json:"upgrade_requirements"`
	HealthRestore       *int                 `json:"health_restore"`
	HungerRestore       *int                 `json:"hunger_restore"`
	Recipe              *Recipe              `json:"recipe"`
	ChestDrops          []ChestDrop          `json:"chest_drops"`
	Pet                 *ItemPet             `json:"pet"`
	WhereToFind         *GatherLocation      `json:"where_to_find"`
}

type ItemEffect struct {
	Attribute string `json:"attribute"`
	Target    string `json:"target"`
	Value     int    `json:"value"`
	ValueType string `json:"value_type"`
}

type UpgradeRequirement struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

type Recipe struct {
	Skill         string           `json:"skill"`
	LevelRequired int              `json:"level_required"`
	MaxUses       int              `json:"max_uses"`
	Experience    RecipeExperience `json:"experience"`
	Materials     []RecipeItem     `json:"materials"`
	Result        RecipeItem       `json:"result"`
}

type RecipeExperience struct {
	StatType   string `json:"stat_type"`
	StatValue  int    `json:"stat_value"`
	SkillType  string `json:"skill_type"`
	SkillValue int    `json:"skill_value"`
}

// RecipeItem is a recipe input or output. Quantity defaults to 1 when the
// server omits it.
type RecipeItem struct {
	HashedItemID string `json:"hashed_item_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
}

func (r *RecipeItem) UnmarshalJSON(data []byte) error {
	type plain RecipeItem
	p := plain{Quantity: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RecipeItem(p)
	return nil
}

type ChestDrop struct {
	HashedItemID string `json:"hashed_item_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	Chance       int    `json:"chance"`
}

type ItemPet struct {
	HashedID    string `json:"hashed_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// GatherLocation lists where an item drops.
type GatherLocation struct {
	Enemies     []EnemyReference     `json:"enemies"`
	Dungeons    []DungeonReference   `json:"dungeons"`
	WorldBosses []WorldBossReference `json:"world_bosses"`
}

// UnmarshalJSON leaves the location empty when the server sends an array,
// which it does for items with no known source.
func (g *GatherLocation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		*g = GatherLocation{}
		return nil
	}
	type plain GatherLocation
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return fmt.Errorf("where_to_find: %w", err)
	}
	*g = GatherLocation(p)
	return nil
}

// Empty reports whether no source is known.
func (g *GatherLocation) Empty() bool {
	return g == nil || (len(g.Enemies) == 0 && len(g.Dungeons) == 0 && len(g.WorldBosses) == 0)
}

type EnemyReference struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type DungeonReference struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type WorldBossReference struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MarketHistory is the price history and latest trades of an item.
type MarketHistory struct {
	HistoryData []HistoryEntry      `json:"history_data"`
	LatestSold  []LatestTransaction `json:"latest_sold"`
	Type        string              `json:"type"`
}

type HistoryEntry struct {
	Date         Timestamp `json:"date"`
	TotalSold    int       `json:"total_sold"`
	AveragePrice float64   `json:"average_price"`
}

type LatestTransaction struct {
	ID           *int64        `json:"id,omitempty"`
	Item         ItemReference `json:"item"`
	Tier         int           `json:"tier"`
	Quantity     int           `json:"quantity"`
	PricePerItem int           `json:"price_per_item"`
	TotalPrice   int           `json:"total_price"`
	SoldAt       Timestamp     `json:"sold_at"`
}
