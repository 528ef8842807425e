package extract

import (
	"context"
	"sort"

	"github.com/ddextract/internal/services/ddragon"
)

// ChampionRecord is one entry of champions_<lang>.json.
type ChampionRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Img   string `json:"img"`
}

// Champions writes champions_<lang>.json for every configured language.
func Champions(ctx context.Context, env *Env) (*Report, error) {
	report := newReport("champions", env.DDragon.Version())
	env.Log.Info("extracting champions", "version", env.DDragon.Version(), "languages", len(env.Languages))

	for _, lang := range env.Languages {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		log := env.Log.With("lang", lang)
		log.Debug("downloading champion list")

		list, err := env.DDragon.Champions(ctx, lang)
		if err != nil {
			log.Error("champion list failed", "error", err)
			report.fail(lang, err)
			continue
		}

		records := NormalizeChampions(list.Data, lang, env.DDragon)
		path, err := env.Writer.WriteJSON(fileName("champions", lang), records)
		if err != nil {
			log.Error("write failed", "error", err)
			report.fail(lang, err)
			continue
		}
		report.addFile(path, len(records))
		log.Info("champions written", "path", path, "count", len(records))
	}
	return report, nil
}

// NormalizeChampions maps champion.json entries to records sorted by
// localized name under the language's collation. Ids break ties.
func NormalizeChampions(data map[string]ddragon.ChampionSummary, lang string, dd *ddragon.Client) []ChampionRecord {
	records := make([]ChampionRecord, 0, len(data))
	for key, champ := range data {
		id := champ.ID
		if id == "" {
			id = key
		}
		records = append(records, ChampionRecord{
			ID:    id,
			Name:  champ.Name,
			Title: champ.Title,
			Img:   dd.ChampionImage(id),
		})
	}

	col := collator(lang)
	sort.Slice(records, func(i, j int) bool {
		if c := col.CompareString(records[i].Name, records[j].Name); c != 0 {
			return c < 0
		}
		return records[i].ID < records[j].ID
	})
	return records
}
