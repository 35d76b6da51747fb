package model

// CharacterView wraps the character information endpoint.
type CharacterView struct {
	Character Character `json:"character"`
}

// Character is the full public profile of a character.
type Character struct {
	ID            int              `json:"id"`
	HashedID      string           `json:"hashed_id"`
	Name          string           `json:"name"`
	Class         string           `json:"class"`
	ImageURL      string           `json:"image_url"`
	BackgroundURL string           `json:"background_url"`
	Skills        map[string]Level `json:"skills"`
	Stats         map[string]Level `json:"stats"`
	Gold          int64            `json:"gold"`
	Tokens        int64            `json:"tokens"`
	Shards        int64            `json:"shards"`
	TotalLevel    int              `json:"total_level"`
	EquippedPet   *EquippedPet     `json:"equipped_pet"`
	Guild         *CharacterGuild  `json:"guild"`
	LastActivity  Timestamp        `json:"last_activity"`
	CreatedAt     Timestamp        `json:"created_at"`
}

// Level is a skill or stat progression entry.
type Level struct {
	Level      int   `json:"level"`
	Experience int64 `json:"experience"`
}

type EquippedPet struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Level    int    `json:"level"`
}

// CharacterGuild is the guild membership shown on a character profile.
type CharacterGuild struct {
	ID         int    `json:"id"`
	Tag        string `json:"tag"`
	Experience int64  `json:"experience"`
	Level      int    `json:"level"`
	Position   string `json:"position"`
}

// CharacterMetric wraps the per-activity counters of a character.
type CharacterMetric struct {
	Metrics Metrics `json:"metrics"`
}

// Metrics groups activity counters. Each map is keyed by counter name.
type Metrics struct {
	Dungeon           map[string]int64 `json:"dungeon"`
	Battle            map[string]int64 `json:"battle"`
	Hunt              map[string]int64 `json:"hunt"`
	Market            map[string]int64 `json:"market"`
	DirectTrade       map[string]int64 `json:"direct_trade"`
	WorldBoss         map[string]int64 `json:"world_boss"`
	GuildRaid         map[string]int64 `json:"guild_raid"`
	GuildChallenge    map[string]int64 `json:"guild_challenge"`
	GuildStockpile    map[string]int64 `json:"guild_stockpile"`
	PetBattle         map[string]int64 `json:"pet_battle"`
	Shrine            map[string]int64 `json:"shrine"`
	Campaign          map[string]int64 `json:"campaign"`
	Travel            map[string]int64 `json:"travel"`
	Woodcutting       map[string]int64 `json:"woodcutting"`
	Mining            map[string]int64 `json:"mining"`
	Fishing           map[string]int64 `json:"fishing"`
	Smelting          map[string]int64 `json:"smelting"`
	Cooking           map[string]int64 `json:"cooking"`
	Forge             map[string]int64 `json:"forge"`
	Alchemy           map[string]int64 `json:"alchemy"`
	ShadowMastery     map[string]int64 `json:"shadow-mastery"`
	YuleMastery       map[string]int64 `json:"yule-mastery"`
	SpringtideMastery map[string]int64 `json:"springtide-mastery"`
	LunarMastery      map[string]int64 `json:"lunar-mastery"`
	Tavern            map[string]int64 `json:"tavern"`
}

// CharacterEffects lists the active effects on a character.
type CharacterEffects struct {
	Effects []CharacterEffect `json:"effects"`
}

type CharacterEffect struct {
	CharacterID int       `json:"character_id"`
	Source      string    `json:"source"`
	Target      string    `json:"target"`
	Attribute   string    `json:"attribute"`
	Value       int       `json:"value"`
	ValueType   string    `json:"value_type"`
	LocationID  int       `json:"location_id"`
	ExpireAt    Timestamp `json:"expire_at"`
}

// CharacterAlts lists the other characters on the same account.
type CharacterAlts struct {
	Characters []CharacterReference `json:"characters"`
}

// CharacterMuseum is one page of museum items.
type CharacterMuseum struct {
	Items      []MuseumItem `json:"items"`
	Pagination Paged        `json:"pagination"`
}

type MuseumItem struct {
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// CharacterAction is what a character is currently doing.
type CharacterAction struct {
	Type      string    `json:"type"`
	Item      string    `json:"item"`
	ImageURL  string    `json:"image_url"`
	Title     string    `json:"title"`
	ExpiresAt Timestamp `json:"expires_at"`
	StartedAt Timestamp `json:"started_at"`
}

// CharacterPets lists the pets owned by a character.
type CharacterPets struct {
	Pets []PetDetail `json:"pets"`
}

type PetDetail struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	CustomName string         `json:"custom_name"`
	PetID      int            `json:"pet_id"`
	ImageURL   string         `json:"image_url"`
	Level      int            `json:"level"`
	Experience int64          `json:"experience"`
	Quality    Quality        `json:"quality"`
	Stats      map[string]int `json:"stats"`
	Health     Gauge          `json:"health"`
	Happiness  Gauge          `json:"happiness"`
	Hunger     Gauge          `json:"hunger"`
	Equipped   bool           `json:"equipped"`
	Battle     *PetBattle     `json:"battle"`
	Location   *PetLocation   `json:"location"`
	CreatedAt  Timestamp      `json:"created_at"`
}

// Gauge is a bounded pet attribute such as health or hunger.
type Gauge struct {
	Current    int64 `json:"current"`
	Maximum    int64 `json:"maximum"`
	Percentage int64 `json:"percentage"`
}

type PetBattle struct {
	StartedAt Timestamp `json:"started_at"`
	EndsAt    Timestamp `json:"ends_at"`
}

type PetLocation struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Locked bool   `json:"locked"`
}
