package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ddextract/internal/services/cdragon"
	"github.com/ddextract/internal/services/ddragon"
)

// SkinsFile is the single, default-language skin document.
const SkinsFile = "skins.json"

const progressEvery = 20

// SkinRecord is one entry of skins.json.
type SkinRecord struct {
	ChampionID   string `json:"championId"`
	ChampionName string `json:"championName"`
	SkinNum      int    `json:"skinNum"`
	Name         string `json:"name"`
	ImgURL       string `json:"imgUrl"`
}

// ErrNoChampionList aborts the skin pipeline.
var ErrNoChampionList = errors.New("champion list unavailable")

// Skins writes skins.json. Skins come from CommunityDragon by numeric champion
// key; a champion whose CommunityDragon document cannot be loaded falls back
// to its Data Dragon detail. Failing to load the champion list is fatal.
func Skins(ctx context.Context, env *Env) (*Report, error) {
	report := newReport("skins", env.DDragon.Version())
	lang := env.DefaultLanguage
	log := env.Log.With("lang", lang)
	log.Info("extracting skins", "version", env.DDragon.Version(), "cdragon", env.CDragon.BaseURL())

	list, err := env.DDragon.Champions(ctx, lang)
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		return report, fmt.Errorf("%w: %v", ErrNoChampionList, err)
	}

	col := collator("en_US")
	champs := make([]ddragon.ChampionSummary, 0, len(list.Data))
	for key, c := range list.Data {
		if c.ID == "" {
			c.ID = key
		}
		champs = append(champs, c)
	}
	sort.Slice(champs, func(i, j int) bool {
		if c := col.CompareString(champs[i].ID, champs[j].ID); c != 0 {
			return c < 0
		}
		return champs[i].ID < champs[j].ID
	})
	log.Info("champions found", "count", len(champs))

	var all []SkinRecord
	for i, champ := range champs {
		if err := pause(ctx, env.SkinDelay); err != nil {
			return report, err
		}

		skins, err := championSkins(ctx, env, champ)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Warn("champion skipped", "champion", champ.ID, "error", err)
			report.fail(champ.ID, err)
		}
		all = append(all, skins...)

		if done := i + 1; done%progressEvery == 0 || done == len(champs) {
			log.Info("progress", "done", done, "total", len(champs), "champion", champ.ID, "skins", len(all))
		}
	}

	skins := SortSkins(all)

	path, err := env.Writer.WriteJSON(SkinsFile, skins)
	if err != nil {
		return report, fmt.Errorf("write %s: %w", SkinsFile, err)
	}
	report.addFile(path, len(skins))

	fromCDragon, fromDDragon := countSources(skins, env.CDragon.BaseURL(), env.DDragon.CDNBase())
	log.Info("skins written", "path", path, "count", len(skins), "champions", len(champs),
		"cdragon", fromCDragon, "ddragon", fromDDragon)
	return report, nil
}

// championSkins loads one champion's skins, CommunityDragon first.
func championSkins(ctx context.Context, env *Env, champ ddragon.ChampionSummary) ([]SkinRecord, error) {
	if key, ok := ddragon.NumericKey(champ.Key); ok {
		cd, err := env.CDragon.Champion(ctx, key)
		if err == nil {
			return CDragonSkins(champ, cd.Skins, env.CDragon, env.DDragon, env.BaseSkinLabel), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		env.Log.Warn("cdragon unavailable, using ddragon", "champion", champ.ID, "key", key, "error", err)
	} else {
		env.Log.Warn("champion has no numeric key, using ddragon", "champion", champ.ID, "key", champ.Key)
	}

	detail, err := env.DDragon.Champion(ctx, env.DefaultLanguage, champ.ID)
	if err != nil {
		return nil, err
	}
	return DDragonSkins(champ, detail.Skins, env.DDragon, env.BaseSkinLabel), nil
}

// CDragonSkins builds records from CommunityDragon skin entries.
func CDragonSkins(champ ddragon.ChampionSummary, skins []cdragon.Skin, cd *cdragon.Client, dd *ddragon.Client, baseLabel string) []SkinRecord {
	out := make([]SkinRecord, 0, len(skins))
	for _, s := range skins {
		num := s.Num()

		name := s.Name
		switch {
		case s.IsBase:
			name = baseSkinName(champ.Name, baseLabel)
		case name == "":
			name = fmt.Sprintf("%s Skin %d", champ.Name, num)
		}

		img := cd.AssetURL(s.Splash())
		if img == "" {
			img = dd.SplashImage(champ.ID, num)
		}

		out = append(out, SkinRecord{
			ChampionID:   champ.ID,
			ChampionName: champ.Name,
			SkinNum:      num,
			Name:         name,
			ImgURL:       img,
		})
	}
	return out
}

// DDragonSkins builds records from a Data Dragon champion detail.
func DDragonSkins(champ ddragon.ChampionSummary, skins []ddragon.Skin, dd *ddragon.Client, baseLabel string) []SkinRecord {
	out := make([]SkinRecord, 0, len(skins))
	for _, s := range skins {
		name := s.Name
		if name == "default" {
			name = baseSkinName(champ.Name, baseLabel)
		}
		out = append(out, SkinRecord{
			ChampionID:   champ.ID,
			ChampionName: champ.Name,
			SkinNum:      s.Num,
			Name:         name,
			ImgURL:       dd.SplashImage(champ.ID, s.Num),
		})
	}
	return out
}

func baseSkinName(champion, label string) string {
	return strings.TrimSpace(champion + " " + label)
}

// SortSkins orders skins by champion id, then skin number, and drops repeated
// (champion, skin number) pairs keeping the first.
func SortSkins(skins []SkinRecord) []SkinRecord {
	col := collator("en_US")
	sorted := append([]SkinRecord(nil), skins...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ChampionID != b.ChampionID {
			if c := col.CompareString(a.ChampionID, b.ChampionID); c != 0 {
				return c < 0
			}
			return a.ChampionID < b.ChampionID
		}
		return a.SkinNum < b.SkinNum
	})

	type key struct {
		champion string
		num      int
	}
	seen := make(map[key]struct{}, len(sorted))
	out := make([]SkinRecord, 0, len(sorted))
	for _, s := range sorted {
		k := key{s.ChampionID, s.SkinNum}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

func countSources(skins []SkinRecord, cdragonBase, ddragonBase string) (cd, dd int) {
	for _, s := range skins {
		switch {
		case strings.HasPrefix(s.ImgURL, cdragonBase):
			cd++
		case strings.HasPrefix(s.ImgURL, ddragonBase):
			dd++
		}
	}
	return cd, dd
}
