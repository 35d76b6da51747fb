package endpoint

import (
	"strings"
	"testing"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		pathParams map[string]string
		query      map[string]string
		want       string
		wantErr    bool
	}{
		{
			name:     "no params",
			template: "/combat/dungeons/list",
			want:     BaseURL + "/combat/dungeons/list",
		},
		{
			name:       "path param",
			template:   "/item/{hashed_item_id}/inspect",
			pathParams: map[string]string{"hashed_item_id": "abc123"},
			want:       BaseURL + "/item/abc123/inspect",
		},
		{
			name:       "path param escaped",
			template:   "/item/{hashed_item_id}/inspect",
			pathParams: map[string]string{"hashed_item_id": "a b/c"},
			want:       BaseURL + "/item/a%20b%2Fc/inspect",
		},
		{
			name:     "query sorted",
			template: "/item/search",
			query:    map[string]string{"query": "Iron Ore", "page": "2"},
			want:     BaseURL + "/item/search?page=2&query=Iron+Ore",
		},
		{
			name:       "path and query",
			template:   "/item/{hashed_item_id}/market-history",
			pathParams: map[string]string{"hashed_item_id": "x"},
			query:      map[string]string{"tier": "0", "type": "listings"},
			want:       BaseURL + "/item/x/market-history?tier=0&type=listings",
		},
		{
			name:     "empty query map",
			template: "/shrine/progress",
			query:    map[string]string{},
			want:     BaseURL + "/shrine/progress",
		},
		{
			name:     "missing placeholder",
			template: "/guild/{id}/information",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL("", tt.template, tt.pathParams, tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildURL_CustomBase(t *testing.T) {
	got, err := BuildURL("http://127.0.0.1:8080/", "/auth/check", nil, nil)
	if err != nil {
		t.Fatalf("BuildURL() error = %v", err)
	}
	if want := "http://127.0.0.1:8080/auth/check"; got != want {
		t.Errorf("BuildURL() = %q, want %q", got, want)
	}
}

func TestAll_UniqueNamesAndScopes(t *testing.T) {
	all := All()
	if len(all) != 18 {
		t.Fatalf("len(All()) = %d, want 18", len(all))
	}

	seen := make(map[string]bool)
	for _, e := range all {
		if seen[e.Name] {
			t.Errorf("duplicate endpoint name %q", e.Name)
		}
		seen[e.Name] = true

		if !strings.HasPrefix(e.Scope, "v1.") {
			t.Errorf("%s scope = %q, want v1.* prefix", e.Name, e.Scope)
		}
		if !strings.HasPrefix(e.Path, "/") {
			t.Errorf("%s path = %q, want leading slash", e.Name, e.Path)
		}
	}
}

func TestLookup(t *testing.T) {
	e, ok := Lookup("guild_information")
	if !ok {
		t.Fatal("Lookup(guild_information) not found")
	}
	if e.Scope != "v1.guild.information" {
		t.Errorf("Scope = %q, want v1.guild.information", e.Scope)
	}

	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) found, want not found")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path      string
		wantName  string
		wantParam map[string]string
		wantOK    bool
	}{
		{"/auth/check", "authenticate", map[string]string{}, true},
		{"item/abc/inspect", "item_inspection", map[string]string{"hashed_item_id": "abc"}, true},
		{"/character/C1/current-action/", "character_current_action", map[string]string{"hashed_character_id": "C1"}, true},
		{"/guild/conquest/zone/4/inspect", "guild_conquest_zone_inspection", map[string]string{"zone_id": "4"}, true},
		{"/guild/conquest/view", "guild_conquests", map[string]string{}, true},
		{"/unknown/route", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, params, ok := Match(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if e.Name != tt.wantName {
				t.Errorf("Match(%q) = %s, want %s", tt.path, e.Name, tt.wantName)
			}
			if len(params) != len(tt.wantParam) {
				t.Fatalf("params = %v, want %v", params, tt.wantParam)
			}
			for k, v := range tt.wantParam {
				if params[k] != v {
					t.Errorf("params[%s] = %q, want %q", k, params[k], v)
				}
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := ItemMarketHistory.Placeholders()
	if len(got) != 1 || got[0] != "hashed_item_id" {
		t.Errorf("Placeholders() = %v, want [hashed_item_id]", got)
	}
	if got := Dungeons.Placeholders(); len(got) != 0 {
		t.Errorf("Placeholders() = %v, want none", got)
	}
}
