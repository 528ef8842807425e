// Package ddragon provides a Data Dragon client and asset URL builders.
package ddragon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Fetcher decodes the JSON document at a URL. cdn.Client satisfies it.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Client reads versioned Data Dragon documents.
type Client struct {
	fetcher Fetcher
	baseURL string
	version string
}

// NewClient creates a Data Dragon client for one data version.
func NewClient(fetcher Fetcher, baseURL, version string) *Client {
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

// Version returns the data version the client is pinned to.
func (c *Client) Version() string {
	return c.version
}

// WithVersion returns a copy of the client pinned to another version.
func (c *Client) WithVersion(version string) *Client {
	cp := *c
	cp.version = version
	return &cp
}

// CDNBase returns the versioned root, e.g. https://ddragon.leagueoflegends.com/cdn/16.3.1.
func (c *Client) CDNBase() string {
	return c.baseURL + "/cdn/" + c.version
}

// DataURL returns the URL of a language-specific data document.
func (c *Client) DataURL(lang, doc string) string {
	return fmt.Sprintf("%s/data/%s/%s", c.CDNBase(), lang, doc)
}

// ChampionImage returns the square portrait URL.
func (c *Client) ChampionImage(championID string) string {
	return fmt.Sprintf("%s/img/champion/%s.png", c.CDNBase(), championID)
}

// ItemImage returns the item icon URL.
func (c *Client) ItemImage(itemID string) string {
	return fmt.Sprintf("%s/img/item/%s.png", c.CDNBase(), itemID)
}

// PassiveImage returns the passive icon URL for an image.full value.
func (c *Client) PassiveImage(full string) string {
	return c.CDNBase() + "/img/passive/" + full
}

// SpellImage returns the spell icon URL for an image.full value.
func (c *Client) SpellImage(full string) string {
	return c.CDNBase() + "/img/spell/" + full
}

// SplashImage returns the versioned splash art URL for a skin number.
func (c *Client) SplashImage(championID string, skinNum int) string {
	return fmt.Sprintf("%s/img/champion/splash/%s_%d.jpg", c.CDNBase(), championID, skinNum)
}

// LatestVersion returns the newest patch listed in api/versions.json.
func (c *Client) LatestVersion(ctx context.Context) (string, error) {
	var versions []string
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/api/versions.json", &versions); err != nil {
		return "", fmt.Errorf("failed to fetch versions: %w", err)
	}
	if len(versions) == 0 {
		return "", errors.New("versions.json is empty")
	}
	return versions[0], nil
}

// Champions fetches champion.json for a language.
func (c *Client) Champions(ctx context.Context, lang string) (*ChampionList, error) {
	var list ChampionList
	if err := c.fetcher.GetJSON(ctx, c.DataURL(lang, "champion.json"), &list); err != nil {
		return nil, fmt.Errorf("champion.json %s: %w", lang, err)
	}
	return &list, nil
}

// Champion fetches champion/{id}.json and returns its single entry.
func (c *Client) Champion(ctx context.Context, lang, championID string) (*Champion, error) {
	var detail ChampionDetail
	doc := "champion/" + url.PathEscape(championID) + ".json"
	if err := c.fetcher.GetJSON(ctx, c.DataURL(lang, doc), &detail); err != nil {
		return nil, fmt.Errorf("champion %s %s: %w", championID, lang, err)
	}
	champ, ok := detail.Data[championID]
	if !ok {
		return nil, fmt.Errorf("champion %s %s: entry missing from document", championID, lang)
	}
	if champ.ID == "" {
		champ.ID = championID
	}
	return &champ, nil
}

// Items fetches item.json for a language.
func (c *Client) Items(ctx context.Context, lang string) (*ItemList, error) {
	var list ItemList
	if err := c.fetcher.GetJSON(ctx, c.DataURL(lang, "item.json"), &list); err != nil {
		return nil, fmt.Errorf("item.json %s: %w", lang, err)
	}
	return &list, nil
}

// NumericKey parses a champion's numeric key ("266" for Aatrox).
func NumericKey(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
