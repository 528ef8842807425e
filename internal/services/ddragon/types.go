package ddragon

import (
	"maps"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ChampionList is the champion.json payload.
type ChampionList struct {
	Version string                     `json:"version"`
	Data    map[string]ChampionSummary `json:"data"`

	order []string
}

// UnmarshalJSON decodes the payload and records the order of the data keys.
func (l *ChampionList) UnmarshalJSON(data []byte) error {
	type plain ChampionList
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = ChampionList(p)

	seen := make(map[string]bool, len(l.Data))
	gjson.GetBytes(data, "data").ForEach(func(key, _ gjson.Result) bool {
		id := key.String()
		if _, ok := l.Data[id]; ok && !seen[id] {
			seen[id] = true
			l.order = append(l.order, id)
		}
		return true
	})
	return nil
}

// IDs returns the champion ids in document order. A list that was not
// decoded from JSON yields its ids sorted.
func (l *ChampionList) IDs() []string {
	if len(l.order) == len(l.Data) {
		return slices.Clone(l.order)
	}
	return slices.Sorted(maps.Keys(l.Data))
}

// ChampionSummary is one entry of champion.json.
type ChampionSummary struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Image Image  `json:"image"`
}

// ChampionDetail is the champion/{id}.json payload. Data holds a single entry.
type ChampionDetail struct {
	Data map[string]Champion `json:"data"`
}

// Champion is the full per-champion document.
type Champion struct {
	ID      string   `json:"id"`
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Skins   []Skin   `json:"skins"`
	Spells  []Spell  `json:"spells"`
	Passive *Passive `json:"passive"`
}

// Image points at a sprite file.
type Image struct {
	Full string `json:"full"`
}

// Skin is a DDragon skin entry.
type Skin struct {
	ID   string `json:"id"`
	Num  int    `json:"num"`
	Name string `json:"name"`
}

// Spell is one active ability.
type Spell struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       Image  `json:"image"`
}

// Passive is the champion's innate ability.
type Passive struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       Image  `json:"image"`
}

// ItemList is the item.json payload.
type ItemList struct {
	Version string          `json:"version"`
	Data    map[string]Item `json:"data"`
}

// Item is one item.json entry. Stats is kept raw so field order survives.
type Item struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Plaintext    string          `json:"plaintext"`
	Gold         *Gold           `json:"gold"`
	Stats        json.RawMessage `json:"stats"`
	From         []string        `json:"from"`
	RequiredAlly string          `json:"requiredAlly"`
}

// Gold is an item's price block.
type Gold struct {
	Base        float64 `json:"base"`
	Total       float64 `json:"total"`
	Sell        float64 `json:"sell"`
	Purchasable bool    `json:"purchasable"`
}
