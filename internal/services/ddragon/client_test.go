package ddragon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddextract/internal/services/cdn"
)

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["16.4.1","16.3.1"]`))
	})
	mux.HandleFunc("/cdn/16.3.1/data/en_US/champion.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"16.3.1","data":{"Ahri":{"id":"Ahri","key":"103","name":"Ahri","title":"the Nine-Tailed Fox"}}}`))
	})
	mux.HandleFunc("/cdn/16.3.1/data/en_US/champion/Ahri.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"Ahri":{"id":"Ahri","key":"103","name":"Ahri",
			"skins":[{"id":"103000","num":0,"name":"default"}],
			"passive":{"name":"Essence Theft","description":"heal","image":{"full":"Ahri_P.png"}},
			"spells":[{"id":"AhriQ","name":"Orb of Deception","description":"Deals damage","image":{"full":"AhriQ.png"}}]}}}`))
	})
	mux.HandleFunc("/cdn/16.3.1/data/en_US/champion/Ghost.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	mux.HandleFunc("/cdn/16.3.1/data/en_US/item.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"1001":{"name":"Boots","gold":{"total":300,"purchasable":true},"stats":{"FlatMovementSpeedMod":25}}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *Client {
	srv := newFixtureServer(t)
	return NewClient(cdn.New(cdn.Options{Attempts: 1}), srv.URL+"/", "16.3.1")
}

func TestURLBuilders(t *testing.T) {
	c := NewClient(nil, "https://ddragon.leagueoflegends.com", "16.3.1")

	base := "https://ddragon.leagueoflegends.com/cdn/16.3.1"
	assert.Equal(t, base, c.CDNBase())
	assert.Equal(t, base+"/data/fr_FR/champion.json", c.DataURL("fr_FR", "champion.json"))
	assert.Equal(t, base+"/img/champion/Ahri.png", c.ChampionImage("Ahri"))
	assert.Equal(t, base+"/img/item/3031.png", c.ItemImage("3031"))
	assert.Equal(t, base+"/img/passive/Ahri_P.png", c.PassiveImage("Ahri_P.png"))
	assert.Equal(t, base+"/img/spell/AhriQ.png", c.SpellImage("AhriQ.png"))
	assert.Equal(t, base+"/img/champion/splash/Ahri_7.jpg", c.SplashImage("Ahri", 7))

	other := c.WithVersion("15.1.1")
	assert.Equal(t, "15.1.1", other.Version())
	assert.Equal(t, "16.3.1", c.Version())
}

func TestLatestVersion(t *testing.T) {
	v, err := newTestClient(t).LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "16.4.1", v)
}

func TestChampions(t *testing.T) {
	list, err := newTestClient(t).Champions(context.Background(), "en_US")
	require.NoError(t, err)
	require.Contains(t, list.Data, "Ahri")
	assert.Equal(t, "the Nine-Tailed Fox", list.Data["Ahri"].Title)
}

func TestChampionList_IDs(t *testing.T) {
	var list ChampionList
	doc := `{"data":{"Kaisa":{"id":"Kaisa"},"KSante":{"id":"KSante"},"Aatrox":{"id":"Aatrox"}}}`
	require.NoError(t, json.Unmarshal([]byte(doc), &list))
	assert.Equal(t, []string{"Kaisa", "KSante", "Aatrox"}, list.IDs())

	built := ChampionList{Data: map[string]ChampionSummary{"Zed": {}, "KSante": {}, "Kaisa": {}}}
	assert.Equal(t, []string{"KSante", "Kaisa", "Zed"}, built.IDs())
}

func TestChampion(t *testing.T) {
	c := newTestClient(t)

	champ, err := c.Champion(context.Background(), "en_US", "Ahri")
	require.NoError(t, err)
	assert.Equal(t, "103", champ.Key)
	require.NotNil(t, champ.Passive)
	assert.Equal(t, "Ahri_P.png", champ.Passive.Image.Full)
	require.Len(t, champ.Spells, 1)
	require.Len(t, champ.Skins, 1)
	assert.Equal(t, "default", champ.Skins[0].Name)

	_, err = c.Champion(context.Background(), "en_US", "Ghost")
	assert.ErrorContains(t, err, "entry missing")

	_, err = c.Champion(context.Background(), "en_US", "Nobody")
	assert.ErrorIs(t, err, cdn.ErrNotFound)
}

func TestItems(t *testing.T) {
	list, err := newTestClient(t).Items(context.Background(), "en_US")
	require.NoError(t, err)
	boots := list.Data["1001"]
	require.NotNil(t, boots.Gold)
	assert.Equal(t, 300.0, boots.Gold.Total)
	assert.JSONEq(t, `{"FlatMovementSpeedMod":25}`, string(boots.Stats))
}

func TestNumericKey(t *testing.T) {
	n, ok := NumericKey("266")
	assert.True(t, ok)
	assert.Equal(t, 266, n)

	_, ok = NumericKey("")
	assert.False(t, ok)
	_, ok = NumericKey("Aatrox")
	assert.False(t, ok)
}
