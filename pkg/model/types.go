package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quality is the rarity tier of an item or pet.
type Quality string

const (
	QualityStandard  Quality = "STANDARD"
	QualityRefined   Quality = "REFINED"
	QualityPremium   Quality = "PREMIUM"
	QualityEpic      Quality = "EPIC"
	QualityLegendary Quality = "LEGENDARY"
	QualityMythic    Quality = "MYTHIC"
)

// WorldBossStatus is the lifecycle state of a world boss.
type WorldBossStatus string

const (
	WorldBossInProgress    WorldBossStatus = "IN_PROGRESS"
	WorldBossReadyForLobby WorldBossStatus = "READY_FOR_LOBBY"
	WorldBossRespawning    WorldBossStatus = "RESPAWNING"
)

// ItemType is the category used by item search.
type ItemType string

const (
	ItemSword            ItemType = "SWORD"
	ItemDagger           ItemType = "DAGGER"
	ItemBow              ItemType = "BOW"
	ItemSpecial          ItemType = "SPECIAL"
	ItemChestplate       ItemType = "CHESTPLATE"
	ItemGauntlets        ItemType = "GAUNTLETS"
	ItemShield           ItemType = "SHIELD"
	ItemGreaves          ItemType = "GREAVES"
	ItemBoots            ItemType = "BOOTS"
	ItemHelmet           ItemType = "HELMET"
	ItemLog              ItemType = "LOG"
	ItemFish             ItemType = "FISH"
	ItemCraftingMaterial ItemType = "CRAFTING_MATERIAL"
	ItemFood             ItemType = "FOOD"
	ItemPetEgg           ItemType = "PET_EGG"
	ItemMetalBar         ItemType = "METAL_BAR"
	ItemPotion           ItemType = "POTION"
	ItemEssenceCrystal   ItemType = "ESSENCE_CRYSTAL"
	ItemOre              ItemType = "ORE"
	ItemRecipe           ItemType = "RECIPE"
	ItemCampaignItem     ItemType = "CAMPAIGN_ITEM"
	ItemFishingRod       ItemType = "FISHING_ROD"
	ItemPickaxe          ItemType = "PICKAXE"
	ItemFellingAxe       ItemType = "FELLING_AXE"
	ItemMembership       ItemType = "MEMBERSHIP"
	ItemTokens           ItemType = "TOKENS"
	ItemCollectable      ItemType = "COLLECTABLE"
	ItemUpgradeStone     ItemType = "UPGRADE_STONE"
)

// ItemTypes lists every known ItemType.
var ItemTypes = []ItemType{
	ItemSword, ItemDagger, ItemBow, ItemSpecial, ItemChestplate, ItemGauntlets,
	ItemShield, ItemGreaves, ItemBoots, ItemHelmet, ItemLog, ItemFish,
	ItemCraftingMaterial, ItemFood, ItemPetEgg, ItemMetalBar, ItemPotion,
	ItemEssenceCrystal, ItemOre, ItemRecipe, ItemCampaignItem, ItemFishingRod,
	ItemPickaxe, ItemFellingAxe, ItemMembership, ItemTokens, ItemCollectable,
	ItemUpgradeStone,
}

// QueryValue is the lowercase form the search endpoint expects.
func (t ItemType) QueryValue() string {
	return strings.ToLower(string(t))
}

// ParseItemType accepts either the constant name or its query form.
func ParseItemType(s string) (ItemType, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range ItemTypes {
		if string(t) == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// MuseumCategory filters the character museum endpoint.
type MuseumCategory string

const (
	MuseumSkins        MuseumCategory = "SKINS"
	MuseumBackgrounds  MuseumCategory = "BACKGROUNDS"
	MuseumGuildIcons   MuseumCategory = "GUILD_ICONS"
	MuseumPets         MuseumCategory = "PETS"
	MuseumCollectibles MuseumCategory = "COLLECTIBLES"
	MuseumBestiary     MuseumCategory = "BESTIARY"
)

// MuseumCategories lists every known MuseumCategory.
var MuseumCategories = []MuseumCategory{
	MuseumSkins, MuseumBackgrounds, MuseumGuildIcons, MuseumPets, MuseumCollectibles, MuseumBestiary,
}

// ParseMuseumCategory is case-insensitive.
func ParseMuseumCategory(s string) (MuseumCategory, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range MuseumCategories {
		if string(c) == want {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown museum category %q", s)
}

// MarketType selects listings or buy orders in the market history endpoint.
type MarketType string

const (
	MarketListings MarketType = "listings"
	MarketOrders   MarketType = "orders"
)

// ParseMarketType is case-insensitive.
func ParseMarketType(s string) (MarketType, error) {
	switch MarketType(strings.ToLower(strings.TrimSpace(s))) {
	case MarketListings:
		return MarketListings, nil
	case MarketOrders:
		return MarketOrders, nil
	}
	return "", fmt.Errorf("unknown market type %q", s)
}

// ZoneID identifies a guild conquest zone by its location id.
type ZoneID int

const (
	ZoneBluebellHollow            ZoneID = 1
	ZoneWhisperingWoods           ZoneID = 2
	ZoneEldoria                   ZoneID = 3
	ZoneCrystalCaverns            ZoneID = 4
	ZoneSkyreachPeak              ZoneID = 5
	ZoneEnchantedOasis            ZoneID = 6
	ZoneFloatingGardensOfAetheria ZoneID = 7
	ZoneCelestialObservatory      ZoneID = 8
	ZoneIsleOfWhispers            ZoneID = 9
	ZoneTheCitadel                ZoneID = 10
)

var zoneNames = map[ZoneID]string{
	ZoneBluebellHollow:            "BLUEBELL_HOLLOW",
	ZoneWhisperingWoods:           "WHISPERING_WOODS",
	ZoneEldoria:                   "ELDORIA",
	ZoneCrystalCaverns:            "CRYSTAL_CAVERNS",
	ZoneSkyreachPeak:              "SKYREACH_PEAK",
	ZoneEnchantedOasis:            "ENCHANTED_OASIS",
	ZoneFloatingGardensOfAetheria: "FLOATING_GARDENS_OF_AETHERIA",
	ZoneCelestialObservatory:      "CELESTIAL_OBSERVATORY",
	ZoneIsleOfWhispers:            "ISLE_OF_WHISPERS",
	ZoneTheCitadel:                "THE_CITADEL",
}

func (z ZoneID) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return "ZONE_" + strconv.Itoa(int(z))
}

// ParseZone accepts a numeric id or a zone name such as "eldoria".
func ParseZone(s string) (ZoneID, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := zoneNames[ZoneID(n)]; ok {
			return ZoneID(n), nil
		}
		return 0, fmt.Errorf("unknown zone id %d", n)
	}
	want := strings.ToUpper(strings.ReplaceAll(s, " ", "_"))
	for id, name := range zoneNames {
		if name == want {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown zone %q", s)
}

// Timestamp is a time.Time that decodes the API's date formats. A JSON null
// or empty string leaves it zero.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Colour is an RGB colour sent as a hex string.
type Colour struct {
	R, G, B uint8
}

func (c *Colour) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("colour: %w", err)
	}
	parsed, err := ParseColour(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Colour) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// Hex renders the colour as "#rrggbb".
func (c Colour) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColour accepts "#rrggbb", "0xrrggbb" or "rrggbb".
func ParseColour(s string) (Colour, error) {
	hex := strings.TrimSpace(s)
	hex = strings.TrimPrefix(hex, "#")
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")
	if len(hex) != 6 {
		return Colour{}, fmt.Errorf("colour: invalid hex %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Colour{}, fmt.Errorf("colour: invalid hex %q", s)
	}
	return Colour{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Paged is the pagination block attached to list responses.
type Paged struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// HasMore reports whether pages after CurrentPage exist.
func (p Paged) HasMore() bool {
	return p.CurrentPage < p.LastPage
}
