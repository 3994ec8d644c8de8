// Package key provides the registry of characteristics and skills that
// character profiles are keyed by.
//
// The registry is a fixed table built once at package initialisation and is
// never mutated afterwards, so every function here is safe for concurrent use.
package key

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes characteristics from skills.
type Kind int

const (
	// KindStat marks a characteristic.
	KindStat Kind = iota + 1
	// KindSkill marks a skill governed by a default characteristic.
	KindSkill
)

// String returns "Stat" or "Skill".
func (k Kind) String() string {
	switch k {
	case KindStat:
		return "Stat"
	case KindSkill:
		return "Skill"
	default:
		return "Unknown"
	}
}

// Key identifies a characteristic or a skill. The zero value None means
// "no key".
type Key int

// Characteristics.
const (
	None Key = iota
	WeaponSkill
	BallisticSkill
	Strength
	Toughness
	Agility
	Intelligence
	Perception
	Willpower
	Fellowship
	Influence
)

// Skills. These must follow the characteristics.
const (
	Acrobatics Key = iota + Influence + 1
	Athletics
	Awareness
	Charm
	Command
	Commerce
	Deceive
	Dodge
	Inquiry
	Interrogation
	Intimidate
	Logic
	Medicae
	NavigateSurface
	NavigateStellar
	NavigateWarp
	OperateAeronautica
	OperateSurface
	OperateVoidship
	Parry
	Psyniscience
	Scrutiny
	Security
	SleightOfHand
	Stealth
	Survival
	TechUse

	count
)

type entry struct {
	code    string
	display string
	kind    Kind
	stat    Key
}

var table = [count]entry{
	WeaponSkill:    {code: "WS", display: "Weapon Skill", kind: KindStat, stat: WeaponSkill},
	BallisticSkill: {code: "BS", display: "Ballistic Skill", kind: KindStat, stat: BallisticSkill},
	Strength:       {code: "S", display: "Strength", kind: KindStat, stat: Strength},
	Toughness:      {code: "T", display: "Toughness", kind: KindStat, stat: Toughness},
	Agility:        {code: "AG", display: "Agility", kind: KindStat, stat: Agility},
	Intelligence:   {code: "INT", display: "Intelligence", kind: KindStat, stat: Intelligence},
	Perception:     {code: "PER", display: "Perception", kind: KindStat, stat: Perception},
	Willpower:      {code: "WP", display: "Willpower", kind: KindStat, stat: Willpower},
	Fellowship:     {code: "FEL", display: "Fellowship", kind: KindStat, stat: Fellowship},
	Influence:      {code: "IFL", display: "Influence", kind: KindStat, stat: Influence},

	Acrobatics:         {code: "ACROBATICS", display: "Acrobatics", kind: KindSkill, stat: Agility},
	Athletics:          {code: "ATHLETICS", display: "Athletics", kind: KindSkill, stat: Strength},
	Awareness:          {code: "AWARENESS", display: "Awareness", kind: KindSkill, stat: Perception},
	Charm:              {code: "CHARM", display: "Charm", kind: KindSkill, stat: Fellowship},
	Command:            {code: "COMMAND", display: "Command", kind: KindSkill, stat: Fellowship},
	Commerce:           {code: "COMMERCE", display: "Commerce", kind: KindSkill, stat: Intelligence},
	Deceive:            {code: "DECEIVE", display: "Deceive", kind: KindSkill, stat: Fellowship},
	Dodge:              {code: "DODGE", display: "Dodge", kind: KindSkill, stat: Agility},
	Inquiry:            {code: "INQUIRY", display: "Inquiry", kind: KindSkill, stat: Fellowship},
	Interrogation:      {code: "INTERROGATE", display: "Interrogation", kind: KindSkill, stat: Willpower},
	Intimidate:         {code: "INTIMIDATE", display: "Intimidate", kind: KindSkill, stat: Strength},
	Logic:              {code: "LOGIC", display: "Logic", kind: KindSkill, stat: Intelligence},
	Medicae:            {code: "MEDICAE", display: "Medicae", kind: KindSkill, stat: Intelligence},
	NavigateSurface:    {code: "NAV_SURFACE", display: "Navigate Surface", kind: KindSkill, stat: Intelligence},
	NavigateStellar:    {code: "NAV_STELLAR", display: "Navigate Stellar", kind: KindSkill, stat: Intelligence},
	NavigateWarp:       {code: "NAV_WARP", display: "Navigate Warp", kind: KindSkill, stat: Intelligence},
	OperateAeronautica: {code: "OP_AERO", display: "Operate Aeronautica", kind: KindSkill, stat: Agility},
	OperateSurface:     {code: "OP_SURFACE", display: "Operate Surface", kind: KindSkill, stat: Agility},
	OperateVoidship:    {code: "OP_VOID", display: "Operate Voidship", kind: KindSkill, stat: Agility},
	Parry:              {code: "PARRY", display: "Parry", kind: KindSkill, stat: WeaponSkill},
	Psyniscience:       {code: "PSY", display: "Psyniscience", kind: KindSkill, stat: Perception},
	Scrutiny:           {code: "SCRUTINY", display: "Scrutiny", kind: KindSkill, stat: Perception},
	Security:           {code: "SECURITY", display: "Security", kind: KindSkill, stat: Intelligence},
	SleightOfHand:      {code: "SLT_OF_HAND", display: "Sleight of Hand", kind: KindSkill, stat: Agility},
	Stealth:            {code: "STEALTH", display: "Stealth", kind: KindSkill, stat: Agility},
	Survival:           {code: "SURVIVAL", display: "Survival", kind: KindSkill, stat: Perception},
	TechUse:            {code: "TECH_USE", display: "Tech Use", kind: KindSkill, stat: Intelligence},
}

// registry holds the lookup indexes derived from table.
//
// Invariant: canonical values are unique across all keys.
type registry struct {
	all     []Key
	values  []string
	byValue map[string]Key
	byCode  map[string]Key
}

var reg = buildRegistry()

func buildRegistry() registry {
	r := registry{
		byValue: make(map[string]Key, int(count)),
		byCode:  make(map[string]Key, int(count)),
	}
	for k := WeaponSkill; k < count; k++ {
		value := lower(table[k].display)
		if _, dup := r.byValue[value]; dup {
			panic("key: duplicate canonical value " + value)
		}
		r.all = append(r.all, k)
		r.values = append(r.values, value)
		r.byValue[value] = k
		r.byCode[table[k].code] = k
	}
	return r
}

func lower(s string) string { return cases.Lower(language.Und).String(s) }

func upper(s string) string { return cases.Upper(language.Und).String(s) }

// All returns every key in declaration order: characteristics first, then skills.
func All() []Key {
	out := make([]Key, len(reg.all))
	copy(out, reg.all)
	return out
}

// Stats returns the characteristics in declaration order.
func Stats() []Key {
	var out []Key
	for _, k := range reg.all {
		if k.IsStat() {
			out = append(out, k)
		}
	}
	return out
}

// Valid reports whether k names a registered key.
func (k Key) Valid() bool { return k > None && k < count }

// String returns the display name, e.g. "Weapon Skill".
func (k Key) String() string {
	if !k.Valid() {
		return ""
	}
	return table[k].display
}

// Value returns the canonical lowercase value, e.g. "weapon skill".
func (k Key) Value() string {
	if !k.Valid() {
		return ""
	}
	return lower(table[k].display)
}

// Code returns the symbolic code, e.g. "WS" or "SLT_OF_HAND".
func (k Key) Code() string {
	if !k.Valid() {
		return ""
	}
	return table[k].code
}

// Kind returns whether k is a characteristic or a skill.
func (k Key) Kind() Kind {
	if !k.Valid() {
		return 0
	}
	return table[k].kind
}

// IsStat reports whether k is a characteristic.
func (k Key) IsStat() bool { return k.Kind() == KindStat }

// IsSkill reports whether k is a skill.
func (k Key) IsSkill() bool { return k.Kind() == KindSkill }

// Stat returns the governing characteristic: k itself for a characteristic,
// the default characteristic for a skill.
func (k Key) Stat() Key {
	if !k.Valid() {
		return None
	}
	return table[k].stat
}

// Skill returns k for a skill and None for a characteristic.
func (k Key) Skill() Key {
	if k.IsSkill() {
		return k
	}
	return None
}

// GoString renders keys as <Kind~CODE> in %#v output.
func (k Key) GoString() string {
	if !k.Valid() {
		return "<None>"
	}
	return "<" + k.Kind().String() + "~" + k.Code() + ">"
}

// ByValue resolves an exact canonical value (case-insensitive).
func ByValue(raw string) (Key, bool) {
	k, ok := reg.byValue[lower(raw)]
	return k, ok
}

// ByCode resolves the symbolic code of a characteristic (case-insensitive).
// Skill codes never resolve.
func ByCode(raw string) (Key, bool) {
	k, ok := reg.byCode[upper(raw)]
	if !ok || !k.IsStat() {
		return None, false
	}
	return k, true
}

// ByAnyCode resolves the symbolic code of any key, skills included. It is
// used for decoding stored entries, never for player input.
func ByAnyCode(code string) (Key, bool) {
	k, ok := reg.byCode[code]
	return k, ok
}

// Lookup resolves raw by canonical value, then by characteristic code, then,
// when fuzzy is set, by the closest canonical value with a similarity of at
// least 0.6.
func Lookup(raw string, fuzzy bool) (Key, bool) {
	if k, ok := ByValue(raw); ok {
		return k, true
	}
	if k, ok := ByCode(raw); ok {
		return k, true
	}
	if !fuzzy {
		return None, false
	}
	match, ok := closestMatch(lower(raw), reg.values, fuzzyCutoff)
	if !ok {
		return None, false
	}
	return ByValue(match)
}

// ReadCommand resolves a single-name command. A characteristic yields
// (stat, None); a skill yields (default stat, skill).
func ReadCommand(name string) (stat, skill Key, ok bool) {
	k, found := Lookup(name, true)
	if !found {
		return None, None, false
	}
	return k.Stat(), k.Skill(), true
}

// ReadPairedCommand resolves a "skill on stat" command. skillName must
// resolve to a skill and statName to a characteristic.
func ReadPairedCommand(skillName, statName string) (stat, skill Key, ok bool) {
	sk, found := Lookup(skillName, true)
	if !found || !sk.IsSkill() {
		return None, None, false
	}
	st, found := Lookup(statName, true)
	if !found || !st.IsStat() {
		return None, None, false
	}
	return st, sk, true
}
