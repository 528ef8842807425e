package extract

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/ddextract/internal/services/ddragon"
	"github.com/ddextract/internal/stats"
)

// UnknownComponent names a recipe component missing from the item list.
const UnknownComponent = "Unknown"

// ItemRecord is one entry of items_<lang>.json.
type ItemRecord struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Price      float64     `json:"price"`
	Desc       string      `json:"desc"`
	Stats      *stats.Map  `json:"stats"`
	Components []Component `json:"components"`
	Img        string      `json:"img"`
}

// Component is one recipe ingredient of an item.
type Component struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Img   string  `json:"img"`
}

// Items writes items_<lang>.json for every configured language.
func Items(ctx context.Context, env *Env) (*Report, error) {
	report := newReport("items", env.DDragon.Version())
	env.Log.Info("extracting items", "version", env.DDragon.Version(), "languages", len(env.Languages))

	for _, lang := range env.Languages {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		log := env.Log.With("lang", lang)
		log.Debug("downloading item list")

		list, err := env.DDragon.Items(ctx, lang)
		if err != nil {
			log.Error("item list failed", "error", err)
			report.fail(lang, err)
			continue
		}

		records := NormalizeItems(list.Data, env.Patterns.For(lang), env.DDragon)
		path, err := env.Writer.WriteJSON(fileName("items", lang), records)
		if err != nil {
			log.Error("write failed", "error", err)
			report.fail(lang, err)
			continue
		}
		report.addFile(path, len(records))
		log.Info("items written", "path", path, "count", len(records))
	}
	return report, nil
}

// NormalizeItems filters and reshapes item.json entries in ascending id order.
//
// An item is kept when it is purchasable, not restricted to an ally champion,
// has a positive price, carries a name not seen before (case-insensitive), and
// ends up with at least one stat. The name is claimed before the stat check.
func NormalizeItems(data map[string]ddragon.Item, lang *stats.Language, dd *ddragon.Client) []ItemRecord {
	type entry struct {
		id  int
		key string
	}
	ids := make([]entry, 0, len(data))
	for key := range data {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		ids = append(ids, entry{id, key})
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].id < ids[j].id })

	records := make([]ItemRecord, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for _, e := range ids {
		item := data[e.key]
		if item.Gold == nil || !item.Gold.Purchasable || item.RequiredAlly != "" {
			continue
		}
		if item.Gold.Total <= 0 {
			continue
		}

		name := strings.ToLower(strings.TrimSpace(item.Name))
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		merged := stats.Merge(stats.FromStructured(item.Stats), lang.FromText(item.Description))
		if merged.Len() == 0 {
			continue
		}

		records = append(records, ItemRecord{
			ID:         e.id,
			Name:       item.Name,
			Price:      item.Gold.Total,
			Desc:       lang.CleanFlavor(item.Description),
			Stats:      merged,
			Components: components(item.From, data, dd),
			Img:        dd.ItemImage(e.key),
		})
	}
	return records
}

func components(from []string, data map[string]ddragon.Item, dd *ddragon.Client) []Component {
	out := make([]Component, 0, len(from))
	for _, id := range from {
		c := Component{Name: UnknownComponent, Img: dd.ItemImage(id)}
		if comp, ok := data[id]; ok {
			c.Name = comp.Name
			if comp.Gold != nil {
				c.Price = comp.Gold.Total
			}
		}
		out = append(out, c)
	}
	return out
}
