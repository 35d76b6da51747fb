package model

type GuildView struct {
	Guild Guild `json:"guild"`
}

type Guild struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Tag            string `json:"tag"`
	Description    string `json:"description"`
	Experience     int64  `json:"experience"`
	Level          int    `json:"level"`
	IconURL        string `json:"icon_url"`
	BackgroundURL  string `json:"background_url"`
	MemberCount    int    `json:"member_count"`
	SeasonPosition *int   `json:"season_position"`
	Marks          int    `json:"marks"`
}

// GuildReference is the short form of a guild embedded in conquest data.
type GuildReference struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Tag           string `json:"tag"`
	IconURL       string `json:"icon_url"`
	BackgroundURL string `json:"background_url,omitempty"`
}

// GuildConquest maps zone keys to their current conquest state.
type GuildConquest struct {
	Zones map[string]Zone `json:"zones"`
}

type GuildConquestInspection struct {
	Zone Zone `json:"zone"`
}

type Zone struct {
	Location       ZoneLocation   `json:"location"`
	Contributions  []Contribution `json:"contributions"`
	Status         string         `json:"status"`
	Colour         Colour         `json:"colour"`
	Kills          int64          `json:"kills"`
	Experience     int64          `json:"experience"`
	GuildsCount    int            `json:"guilds_count"`
	ActiveAssaults []Assault      `json:"active_assaults"`
	Guilds         []GuildRanking `json:"guilds"`
}

type ZoneLocation struct {
	ID       int    `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type Contribution struct {
	ID                      int         `json:"id"`
	GuildConquestProgressID int         `json:"guild_conquest_progress_id"`
	Character               Contributor `json:"character"`
	Kills                   int64       `json:"kills"`
	Experience              int64       `json:"experience"`
}

type Contributor struct {
	ID            int    `json:"id"`
	HashedID      string `json:"hashed_id"`
	Name          string `json:"name"`
	TotalLevel    int    `json:"total_level"`
	ImageURL      string `json:"image_url"`
	BackgroundURL string `json:"background_url"`
}

type Assault struct {
	Guild      GuildReference `json:"guild"`
	Kills      int64          `json:"kills"`
	Experience int64          `json:"experience"`
	StartsAt   Timestamp      `json:"starts_at"`
	EndsAt     Timestamp      `json:"ends_at"`
}

// GuildRanking is a guild's standing within a zone.
type GuildRanking struct {
	ID            int            `json:"id"`
	Position      int            `json:"position"`
	Kills         int64          `json:"kills"`
	Experience    int64          `json:"experience"`
	Contributions []Contribution `json:"contributions"`
	Guild         GuildReference `json:"guild"`
}
