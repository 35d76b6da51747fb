// Package endpoint lists the IdleMMO API routes and builds request URLs from
// their path templates.
package endpoint

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// BaseURL is the root of the public IdleMMO API.
const BaseURL = "https://api.idle-mmo.com/v1"

// Endpoint describes a single API route.
type Endpoint struct {
	// Name is a stable identifier used in logs and metrics (e.g. "character_view")
	Name string

	// Path is the route template relative to BaseURL (e.g. "/character/{hashed_character_id}/information")
	Path string

	// Scope is the API key scope required to call the route (e.g. "v1.character.view")
	Scope string
}

// Known endpoints.
var (
	Authenticate                = Endpoint{"authenticate", "/auth/check", "v1.auth.check"}
	WorldBosses                 = Endpoint{"world_bosses", "/combat/world_bosses/list", "v1.combat.world_bosses.list"}
	Dungeons                    = Endpoint{"dungeons", "/combat/dungeons/list", "v1.combat.dungeons.list"}
	Enemies                     = Endpoint{"enemies", "/combat/enemies/list", "v1.combat.enemies.list"}
	Items                       = Endpoint{"items", "/item/search", "v1.item.search"}
	ItemInspection              = Endpoint{"item_inspection", "/item/{hashed_item_id}/inspect", "v1.item.inspect"}
	ItemMarketHistory           = Endpoint{"item_market_history", "/item/{hashed_item_id}/market-history", "v1.item.market_history"}
	CharacterView               = Endpoint{"character_view", "/character/{hashed_character_id}/information", "v1.character.view"}
	CharacterMetrics            = Endpoint{"character_metrics", "/character/{hashed_character_id}/metrics", "v1.character.metrics"}
	CharacterEffects            = Endpoint{"character_effects", "/character/{hashed_character_id}/effects", "v1.character.effects"}
	CharacterAltCharacters      = Endpoint{"character_alt_characters", "/character/{hashed_character_id}/characters", "v1.character.characters"}
	CharacterMuseum             = Endpoint{"character_museum", "/character/{hashed_character_id}/museum", "v1.character.museum"}
	CharacterCurrentAction      = Endpoint{"character_current_action", "/character/{hashed_character_id}/current-action", "v1.character.current_action"}
	CharacterPets               = Endpoint{"character_pets", "/character/{hashed_character_id}/pets", "v1.character.pets"}
	GuildInformation            = Endpoint{"guild_information", "/guild/{id}/information", "v1.guild.information"}
	GuildConquests              = Endpoint{"guild_conquests", "/guild/conquest/view", "v1.guild.conquest.view"}
	GuildConquestZoneInspection = Endpoint{"guild_conquest_zone_inspection", "/guild/conquest/zone/{zone_id}/inspect", "v1.guild.conquest.zone.inspect"}
	ShrineProgress              = Endpoint{"shrine_progress", "/shrine/progress", "v1.shrine.progress"}
)

// All returns every known endpoint in declaration order.
func All() []Endpoint {
	return []Endpoint{
		Authenticate, WorldBosses, Dungeons, Enemies,
		Items, ItemInspection, ItemMarketHistory,
		CharacterView, CharacterMetrics, CharacterEffects, CharacterAltCharacters,
		CharacterMuseum, CharacterCurrentAction, CharacterPets,
		GuildInformation, GuildConquests, GuildConquestZoneInspection,
		ShrineProgress,
	}
}

// Lookup finds an endpoint by name.
func Lookup(name string) (Endpoint, bool) {
	for _, e := range All() {
		if e.Name == name {
			return e, true
		}
	}
	return Endpoint{}, false
}

// Match finds the endpoint whose path template matches a concrete path such
// as "/item/abc123/inspect". Path parameters are extracted into the returned map.
func Match(path string) (Endpoint, map[string]string, bool) {
	path = "/" + strings.Trim(path, "/")
	for _, e := range All() {
		re := templatePattern(e.Path)
		m := re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := make(map[string]string)
		for i, name := range re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			v, err := url.PathUnescape(m[i])
			if err != nil {
				v = m[i]
			}
			params[name] = v
		}
		return e, params, true
	}
	return Endpoint{}, nil, false
}

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

func templatePattern(tmpl string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(tmpl)
	// QuoteMeta escapes the braces; match them in their escaped form
	expr := regexp.MustCompile(`\\\{([a-z_]+)\\\}`).ReplaceAllString(quoted, `(?P<$1>[^/]+)`)
	return regexp.MustCompile("^" + expr + "$")
}

// Placeholders returns the parameter names referenced by a path template.
func (e Endpoint) Placeholders() []string {
	matches := placeholder.FindAllStringSubmatch(e.Path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// URL resolves the endpoint against base. See BuildURL.
func (e Endpoint) URL(base string, pathParams map[string]string, query map[string]string) (string, error) {
	return BuildURL(base, e.Path, pathParams, query)
}

// BuildURL substitutes every {name} placeholder in template with the
// URL-escaped value from pathParams and appends query as a query string when
// it is non-empty. Query keys are emitted in sorted order. A placeholder
// without a value is an error.
func BuildURL(base, template string, pathParams map[string]string, query map[string]string) (string, error) {
	if base == "" {
		base = BaseURL
	}

	var missing []string
	path := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := pathParams[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing path parameter(s) %s for %s", strings.Join(missing, ", "), template)
	}

	full := strings.TrimRight(base, "/") + path
	if len(query) == 0 {
		return full, nil
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(query[k]))
	}
	return full + "?" + strings.Join(parts, "&"), nil
}
