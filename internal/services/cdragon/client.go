// Package cdragon provides a CommunityDragon client for champion skin metadata.
package cdragon

import (
	"context"
	"fmt"
	"strings"
)

// assetPrefix is how game-data documents reference bundled assets.
const assetPrefix = "/lol-game-data/assets/"

// Fetcher decodes the JSON document at a URL. cdn.Client satisfies it.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Champion is v1/champions/{key}.json.
type Champion struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
	Title string `json:"title"`
	Skins []Skin `json:"skins"`
}

// Skin is one entry of a champion's skins array.
type Skin struct {
	ID                   int    `json:"id"`
	IsBase               bool   `json:"isBase"`
	Name                 string `json:"name"`
	SplashPath           string `json:"splashPath"`
	UncenteredSplashPath string `json:"uncenteredSplashPath"`
	LoadScreenPath       string `json:"loadScreenPath"`
	TilePath             string `json:"tilePath"`
}

// Num returns the skin number within its champion (266001 -> 1).
func (s Skin) Num() int {
	return s.ID % 1000
}

// Splash returns the preferred splash asset path: uncentered first, then centered.
func (s Skin) Splash() string {
	if s.UncenteredSplashPath != "" {
		return s.UncenteredSplashPath
	}
	return s.SplashPath
}

// Client reads CommunityDragon game-data documents.
type Client struct {
	fetcher Fetcher
	baseURL string
	locale  string
}

// NewClient creates a client. lang selects the localized game-data tree;
// en_US (or empty) maps to the "default" tree.
func NewClient(fetcher Fetcher, baseURL, lang string) *Client {
	locale := "default"
	if lang != "" && !strings.EqualFold(lang, "en_US") {
		locale = strings.ToLower(lang)
	}
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		locale:  locale,
	}
}

// BaseURL returns the configured CommunityDragon root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChampionURL returns the per-champion document URL for a numeric key.
func (c *Client) ChampionURL(key int) string {
	return fmt.Sprintf("%s/plugins/rcp-be-lol-game-data/global/%s/v1/champions/%d.json", c.baseURL, c.locale, key)
}

// Champion fetches the per-champion document.
func (c *Client) Champion(ctx context.Context, key int) (*Champion, error) {
	var champ Champion
	if err := c.fetcher.GetJSON(ctx, c.ChampionURL(key), &champ); err != nil {
		return nil, fmt.Errorf("cdragon champion %d: %w", key, err)
	}
	return &champ, nil
}

// AssetURL converts a game-data asset path such as
// "/lol-game-data/assets/ASSETS/Characters/Aatrox/Skins/Skin01/x.jpg" into a
// raw CommunityDragon URL. Asset paths are served lowercase. Empty in, empty out.
func (c *Client) AssetURL(path string) string {
	if path == "" {
		return ""
	}
	trimmed := strings.Replace(path, assetPrefix, "", 1)
	return c.baseURL + "/plugins/rcp-be-lol-game-data/global/default/" + strings.ToLower(trimmed)
}
