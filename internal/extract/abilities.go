package extract

import (
	"context"
	"fmt"

	"github.com/ddextract/internal/markup"
	"github.com/ddextract/internal/services/ddragon"
)

// AbilityRecord is one entry of abilities_<lang>.json.
type AbilityRecord struct {
	ChampionID string `json:"championId"`
	Name       string `json:"name"`
	Key        string `json:"key"`
	Ratio      string `json:"ratio"`
	RawDesc    string `json:"rawDesc"`
	Img        string `json:"img"`
}

var spellKeys = [...]string{"Q", "W", "E", "R"}

// SlotKey returns the key letter for the spell at idx: Q, W, E, R, then S4, S5...
func SlotKey(idx int) string {
	if idx >= 0 && idx < len(spellKeys) {
		return spellKeys[idx]
	}
	return fmt.Sprintf("S%d", idx)
}

// Abilities writes abilities_<lang>.json for every configured language.
// A champion whose detail document fails is skipped.
func Abilities(ctx context.Context, env *Env) (*Report, error) {
	report := newReport("abilities", env.DDragon.Version())
	env.Log.Info("extracting abilities", "version", env.DDragon.Version(), "languages", len(env.Languages))

	for _, lang := range env.Languages {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		log := env.Log.With("lang", lang)

		list, err := env.DDragon.Champions(ctx, lang)
		if err != nil {
			log.Error("champion list failed", "error", err)
			report.fail(lang, err)
			continue
		}

		ids := list.IDs()
		log.Info("processing champions", "count", len(ids))

		abilities := make([]AbilityRecord, 0, len(ids)*5)
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			champ, err := env.DDragon.Champion(ctx, lang, id)
			if err != nil {
				log.Warn("champion skipped", "champion", id, "error", err)
				report.fail(lang+"/"+id, err)
				continue
			}
			abilities = append(abilities, ChampionAbilities(id, champ, env.DDragon)...)
		}

		path, err := env.Writer.WriteJSON(fileName("abilities", lang), abilities)
		if err != nil {
			log.Error("write failed", "error", err)
			report.fail(lang, err)
			continue
		}
		report.addFile(path, len(abilities))
		log.Info("abilities written", "path", path, "count", len(abilities))
	}
	return report, nil
}

// ChampionAbilities returns the passive (when present) followed by every spell.
func ChampionAbilities(championID string, champ *ddragon.Champion, dd *ddragon.Client) []AbilityRecord {
	var out []AbilityRecord

	if p := champ.Passive; p != nil {
		out = append(out, AbilityRecord{
			ChampionID: championID,
			Name:       p.Name,
			Key:        "P",
			Ratio:      Ratio(p.Description),
			RawDesc:    markup.Clean(p.Description),
			Img:        dd.PassiveImage(p.Image.Full),
		})
	}

	for idx, spell := range champ.Spells {
		out = append(out, AbilityRecord{
			ChampionID: championID,
			Name:       spell.Name,
			Key:        SlotKey(idx),
			Ratio:      Ratio(spell.Description),
			RawDesc:    markup.Clean(spell.Description),
			Img:        dd.SpellImage(spell.Image.Full),
		})
	}
	return out
}
