package extract

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddextract/internal/logging"
	"github.com/ddextract/internal/services/cdn"
	"github.com/ddextract/internal/services/cdragon"
	"github.com/ddextract/internal/services/ddragon"
	"github.com/ddextract/internal/stats"
)

const testVersion = "16.3.1"

// memWriter keeps written documents in memory.
type memWriter struct {
	mu   sync.Mutex
	docs map[string]any
	fail map[string]bool
}

func (w *memWriter) WriteJSON(name string, v any) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail[name] {
		return "", errWriteRefused
	}
	if w.docs == nil {
		w.docs = map[string]any{}
	}
	w.docs[name] = v
	return "mem/" + name, nil
}

type writeErr string

func (e writeErr) Error() string { return string(e) }

const errWriteRefused = writeErr("write refused")

var fixtureDocs = map[string]string{
	"/cdn/16.3.1/data/en_US/champion.json": `{"data":{
		"Zed":{"id":"Zed","key":"238","name":"Zed","title":"the Master of Shadows"},
		"Ahri":{"id":"Ahri","key":"103","name":"Ahri","title":"the Nine-Tailed Fox"},
		"Aatrox":{"id":"Aatrox","key":"266","name":"Aatrox","title":"the Darkin Blade"}}}`,
	"/cdn/16.3.1/data/fr_FR/champion.json": `{"data":{
		"Zed":{"id":"Zed","key":"238","name":"Zed","title":"le Maître des ombres"},
		"Elise":{"id":"Elise","key":"60","name":"Élise","title":"la Reine araignée"},
		"Ekko":{"id":"Ekko","key":"245","name":"Ekko","title":"le Garçon qui a brisé le temps"},
		"Ahri":{"id":"Ahri","key":"103","name":"Ahri","title":"le Renard à neuf queues"}}}`,

	"/cdn/16.3.1/data/en_US/champion/Ahri.json": `{"data":{"Ahri":{"id":"Ahri","key":"103","name":"Ahri",
		"skins":[{"id":"103000","num":0,"name":"default"},{"id":"103001","num":1,"name":"Dynasty Ahri"}],
		"passive":{"name":"Essence Theft","description":"After killing 9 minions, Ahri heals.","image":{"full":"Ahri_SoulEater2.png"}},
		"spells":[
			{"id":"AhriQ","name":"Orb of Deception","description":"Deals 40 (+ 45% AP) magic damage.","image":{"full":"AhriQ.png"}},
			{"id":"AhriW","name":"Fox-Fire","description":"Ahri releases three fox-fires.","image":{"full":"AhriW.png"}},
			{"id":"AhriE","name":"Charm","description":"","image":{"full":"AhriE.png"}},
			{"id":"AhriR","name":"Spirit Rush","description":"Ahri dashes and <magicDamage>deals damage</magicDamage>.","image":{"full":"AhriR.png"}}]}}}`,
	"/cdn/16.3.1/data/en_US/champion/Aatrox.json": `{"data":{"Aatrox":{"id":"Aatrox","key":"266","name":"Aatrox",
		"passive":{"name":"Deathbringer Stance","description":"Deals bonus damage.","image":{"full":"Aatrox_Passive.png"}},
		"spells":[{"id":"AatroxQ","name":"The Darkin Blade","description":"(+ 60% bonus AD)","image":{"full":"AatroxQ.png"}}]}}}`,

	"/cdragon/plugins/rcp-be-lol-game-data/global/default/v1/champions/266.json": `{"id":266,"name":"Aatrox","skins":[
		{"id":266001,"name":"Justicar Aatrox","uncenteredSplashPath":"/lol-game-data/assets/ASSETS/Characters/Aatrox/Skins/Skin01/AatroxSplashUncentered_1.jpg","splashPath":"/lol-game-data/assets/centered.jpg"},
		{"id":266000,"isBase":true,"name":"Aatrox","splashPath":"/lol-game-data/assets/ASSETS/Characters/Aatrox/Skins/Base/AatroxSplash.jpg"},
		{"id":266003,"name":""},
		{"id":266001,"name":"Justicar Aatrox (duplicate)"}]}`,

	"/cdn/16.3.1/data/en_US/item.json": `{"data":{
		"3031":{"name":"Infinity Edge","description":"<mainText><stats><attention>65</attention> Attack Damage<br><attention>25%</attention> Critical Strike Chance<br><attention>40%</attention> Critical Strike Damage</stats></mainText>",
			"gold":{"total":3450,"purchasable":true},"stats":{"FlatPhysicalDamageMod":65,"FlatCritChanceMod":0.25},"from":["1036","9999"]},
		"1001":{"name":"Boots","description":"<mainText><stats><attention>25</attention> Move Speed</stats></mainText>",
			"gold":{"total":300,"purchasable":true},"stats":{"FlatMovementSpeedMod":25}},
		"1036":{"name":"Long Sword","description":"<stats>10 Attack Damage</stats>",
			"gold":{"total":350,"purchasable":true},"stats":{"FlatPhysicalDamageMod":10}},
		"2003":{"name":"Health Potion","description":"Click to consume.","gold":{"total":50,"purchasable":true},"stats":{}},
		"3070":{"name":"Tear of the Goddess","description":"240 Mana","gold":{"total":400,"purchasable":false},"stats":{"FlatMPPoolMod":240}},
		"3500":{"name":"Free Thing","description":"10 Armor","gold":{"total":0,"purchasable":true},"stats":{"FlatArmorMod":10}},
		"4001":{"name":" boots ","description":"25 Move Speed","gold":{"total":300,"purchasable":true},"stats":{"FlatMovementSpeedMod":25}},
		"7000":{"name":"Sandshrike's Claw","requiredAlly":"Ornn","gold":{"total":3000,"purchasable":true},"stats":{"FlatPhysicalDamageMod":70}},
		"3865":{"name":"World Atlas","description":"<stats>30 Health<br>50 Health Regen</stats>","gold":{"total":400,"purchasable":true},"stats":{}},
		"8020":{"name":"Abyssal Mask","description":"<stats>450 Health<br>35 Magic Resist</stats><br><br>Nearby enemies take more magic damage.","gold":{"total":2650,"purchasable":true},"stats":{"FlatHPPoolMod":350}},
		"1500":{"name":"Phantom","description":"Unique passive.","gold":{"total":900,"purchasable":true},"stats":{}},
		"1501":{"name":"PHANTOM","description":"20 Armor","gold":{"total":900,"purchasable":true},"stats":{"FlatArmorMod":20}},
		"abc":{"name":"Broken","gold":{"total":10,"purchasable":true},"stats":{"FlatArmorMod":5}}}}`,
}

// newFixtureServer serves fixtureDocs plus extra; everything else is 404.
// Paths mapped to "500" answer with an internal server error.
func newFixtureServer(t *testing.T, extra map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := extra[r.URL.Path]
		if !ok {
			body, ok = fixtureDocs[r.URL.Path]
		}
		switch {
		case !ok:
			http.NotFound(w, r)
		case body == "500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEnv(t *testing.T, extra map[string]string, langs ...string) (*Env, *memWriter) {
	t.Helper()
	srv := newFixtureServer(t, extra)

	tables, err := stats.DefaultTables()
	require.NoError(t, err)

	fetcher := cdn.New(cdn.Options{Attempts: 1})
	w := &memWriter{}
	return &Env{
		DDragon:         ddragon.NewClient(fetcher, srv.URL, testVersion),
		CDragon:         cdragon.NewClient(fetcher, srv.URL+"/cdragon", "en_US"),
		Patterns:        tables,
		Writer:          w,
		Log:             logging.Discard(),
		Languages:       langs,
		DefaultLanguage: "en_US",
		BaseSkinLabel:   "Classique",
	}, w
}
