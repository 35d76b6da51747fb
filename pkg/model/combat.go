package model

// Location is a named place in the game world.
type Location struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Loot is a possible drop from an enemy, dungeon or world boss.
type Loot struct {
	HashedItemID string  `json:"hashed_item_id"`
	Name         string  `json:"name"`
	ImageURL     string  `json:"image_url"`
	Quality      Quality `json:"quality"`
	Quantity     int     `json:"quantity"`
	Chance       float64 `json:"chance"`
}

type Dungeons struct {
	Dungeons []Dungeon `json:"dungeons"`
}

type Dungeon struct {
	ID                    int               `json:"id"`
	Name                  string            `json:"name"`
	Description           string            `json:"description"`
	ImageURL              string            `json:"image_url"`
	LevelRequired         int               `json:"level_required"`
	Difficulty            int               `json:"difficulty"`
	Length                int               `json:"length"`
	Cost                  int               `json:"cost"`
	Shards                int               `json:"shards"`
	CompletionRequirement int               `json:"completion_requirement"`
	Location              Location          `json:"location"`
	Loot                  []Loot            `json:"loot"`
	Experience            DungeonExperience `json:"experience"`
}

type DungeonExperience struct {
	Skills map[string]int `json:"skills"`
}

type Enemies struct {
	Enemies []Enemy `json:"enemies"`
}

type Enemy struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	ImageURL     string   `json:"image_url"`
	Level        int      `json:"level"`
	Experience   int      `json:"experience"`
	Health       int      `json:"health"`
	ChanceOfLoot int      `json:"chance_of_loot"`
	Location     Location `json:"location"`
	Loot         []Loot   `json:"loot"`
}

type WorldBosses struct {
	WorldBosses []WorldBoss `json:"world_bosses"`
}

type WorldBoss struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	ImageURL       string          `json:"image_url"`
	Level          int             `json:"level"`
	Location       Location        `json:"location"`
	Loot           []Loot          `json:"loot"`
	Status         WorldBossStatus `json:"status"`
	BattleStartsAt Timestamp       `json:"battle_starts_at"`
	BattleEndsAt   Timestamp       `json:"battle_ends_at"`
}
