package stats

import (
	"math"

	"github.com/tidwall/gjson"
)

// FieldDef describes how one Data Dragon stat field is displayed.
type FieldDef struct {
	Label   string
	Icon    string
	Percent bool
}

// Fields maps Data Dragon item stat fields to display labels. Several fields
// share a label; whichever appears first in the item wins.
var Fields = map[string]FieldDef{
	"FlatPhysicalDamageMod":    {"AD", "⚔️", false},
	"rFlatPhysicalDamageMod":   {"AD", "⚔️", false},
	"FlatMagicDamageMod":       {"AP", "✨", false},
	"FlatHPPoolMod":            {"HP", "❤️", false},
	"FlatMPPoolMod":            {"Mana", "💙", false},
	"FlatArmorMod":             {"AR", "🛡️", false},
	"FlatSpellBlockMod":        {"MR", "🔮", false},
	"PercentAttackSpeedMod":    {"Atk Speed", "⚡", true},
	"FlatCritChanceMod":        {"Crit Chance", "🎯", true},
	"FlatCritDamageMod":        {"Crit Dmg", "💥", true},
	"FlatMovementSpeedMod":     {"Speed", "👟", false},
	"PercentMovementSpeedMod":  {"Speed", "👟", true},
	"PercentLifeStealMod":      {"Lifesteal", "🩸", true},
	"FlatHPRegenMod":           {"HP Regen", "💚", false},
	"FlatMPRegenMod":           {"Mana Regen", "🔵", false},
	"rFlatArmorPenetrationMod": {"Lethality", "🗡️", false},
	"FlatMagicPenetrationMod":  {"Magic Pen", "🌀", false},
	"rFlatMagicPenetrationMod": {"Magic Pen", "🌀", false},
	"PercentHPPoolMod":         {"Bonus HP", "❤️", true},
	"FlatEXPBonus":             {"XP Bonus", "⭐", false},
	"rFlatTimeDeadMod":         {"Death Timer", "💀", false},
	"FlatCooldownMod":          {"AH", "⏱️", false},
	"AbilityHasteMod":          {"AH", "⏱️", false},
	"PercentBaseHPRegenMod":    {"HP Regen%", "💚", true},
}

// FromStructured reads a raw item "stats" object in document order.
// Unknown fields and non-numeric values are ignored. Percent fields are
// fractions (0.12) and become rounded whole percentages ("12%").
func FromStructured(raw []byte) *Map {
	m := NewMap()
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return m
	}

	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return m
	}

	obj.ForEach(func(key, value gjson.Result) bool {
		def, ok := Fields[key.String()]
		if !ok || m.Has(def.Label) || value.Type != gjson.Number {
			return true
		}

		v := Number(value.Float())
		if def.Percent {
			v = Percent(roundHalfUp(value.Float() * 100))
		}
		m.Add(def.Label, Stat{Value: v, Icon: def.Icon, Percent: def.Percent})
		return true
	})
	return m
}

// roundHalfUp rounds x to the nearest integer, ties toward +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
