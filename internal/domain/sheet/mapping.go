package sheet

import (
	"strings"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	"github.com/FACorreiaa/raiox-score/pkg/textnorm"
)

// Field names a canonical record attribute a sheet column can bind to.
type Field string

const (
	FieldStoreCode         Field = "eg"
	FieldDisplayName       Field = "nome_fantasia"
	FieldChainName         Field = "rede"
	FieldCoordinatorName   Field = "coordenador"
	FieldManagerName       Field = "gn"
	FieldSegment           Field = "segmento"
	FieldShareSpacePrior   Field = "share_espaco_m1"
	FieldShareSpaceCurrent Field = "share_espaco_m0"
	FieldShareSpaceDelta   Field = "share_espaco_vs_m1"
	FieldShareColdPrior    Field = "share_gelado_m1"
	FieldShareColdCurrent  Field = "share_gelado_m0"
	FieldShareColdDelta    Field = "share_gelado_vs_m1"
	FieldExtraDisplay      Field = "ponto_extra"
	FieldGondola           Field = "gondola"
	FieldBaseFocus         Field = "base_foco"
	FieldCorona            Field = "corona"
	FieldSpaten            Field = "spaten"
	FieldStella            Field = "stella"
	FieldBeerTotalTrend    Field = "cerv_tt_tend"
	FieldBeerVsLastYear    Field = "cerv_vs_ly"
	FieldBeerHETrend       Field = "cerv_he_tend"
	FieldHEVsLastYear      Field = "he_vs_ly"
	FieldKPIsOK            Field = "kpis_ok"
	FieldPoints            Field = "pts"
	FieldHighlightHE       Field = "dtq_he"
	FieldSupervisorVisit   Field = "visita_sup"
	FieldHardware          Field = "hardware"
	FieldPromoter          Field = "promotor"
)

// Rule binds header keys accepted by Match to Field.
type Rule struct {
	Field Field
	Match func(key string) bool
}

type matcher func(key string) bool

func exact(keys ...string) matcher {
	return func(key string) bool {
		for _, k := range keys {
			if key == k {
				return true
			}
		}
		return false
	}
}

func containsAll(parts ...string) matcher {
	return func(key string) bool {
		for _, p := range parts {
			if !strings.Contains(key, p) {
				return false
			}
		}
		return true
	}
}

// tokens matches keys carrying every part as a whole "_"-separated segment.
func tokens(parts ...string) matcher {
	return func(key string) bool {
		segments := strings.Split(key, "_")
		for _, p := range parts {
			found := false
			for _, seg := range segments {
				if seg == p {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
}

func anyOf(ms ...matcher) matcher {
	return func(key string) bool {
		for _, m := range ms {
			if m(key) {
				return true
			}
		}
		return false
	}
}

func without(m matcher, excluded ...string) matcher {
	return func(key string) bool {
		if !m(key) {
			return false
		}
		for _, e := range excluded {
			if strings.Contains(key, e) {
				return false
			}
		}
		return true
	}
}

// shareRules builds the delta/prior/current rules for one share family.
// The "vs" rule runs first so "share_de_espaco_m0_vs_m_1" is a delta.
// "share_espaco" and "share_de_espaco" spell the same family.
func shareRules(family string, delta, prior, current Field) []Rule {
	long, short := "share_de_"+family, "share_"+family
	return []Rule{
		{Field: delta, Match: anyOf(containsAll(long, "vs"), containsAll(short, "vs"))},
		{Field: prior, Match: anyOf(containsAll(long+"_m_1"), containsAll(short+"_m_1"))},
		{Field: current, Match: anyOf(containsAll(long+"_m0"), containsAll(short+"_m0"), exact(short, long))},
	}
}

// DefaultRules returns the ordered header table for the store sheet.
// Order matters: the first matching rule wins.
func DefaultRules() []Rule {
	rules := []Rule{
		{Field: FieldStoreCode, Match: exact("eg", "codigo", "code", "chave_pdv", "cod_pdv", "codigo_pdv", "n", "numero")},
		// "Nome GN", "Nome do Coordenador" and "Nome da Rede" must not reach the
		// general "nome" rule below.
		{Field: FieldChainName, Match: anyOf(exact("rede"), tokens("nome", "rede"))},
		{Field: FieldCoordinatorName, Match: anyOf(exact("coordenador"), tokens("nome", "coordenador"))},
		{Field: FieldManagerName, Match: anyOf(exact("gn"), tokens("nome", "gn"))},
		{Field: FieldDisplayName, Match: anyOf(exact("nome_pdv"), containsAll("nome"))},
		{Field: FieldSegment, Match: anyOf(exact("segmento"), containsAll("sl_sc"))},
	}
	rules = append(rules, shareRules("espaco", FieldShareSpaceDelta, FieldShareSpacePrior, FieldShareSpaceCurrent)...)
	rules = append(rules, shareRules("gelado", FieldShareColdDelta, FieldShareColdPrior, FieldShareColdCurrent)...)
	rules = append(rules,
		Rule{Field: FieldExtraDisplay, Match: containsAll("ponto_extra")},
		Rule{Field: FieldGondola, Match: containsAll("gondola")},
		Rule{Field: FieldBaseFocus, Match: containsAll("base_foco")},
		Rule{Field: FieldCorona, Match: containsAll("corona")},
		Rule{Field: FieldSpaten, Match: containsAll("spaten")},
		Rule{Field: FieldStella, Match: containsAll("stella")},
		Rule{Field: FieldBeerTotalTrend, Match: containsAll("cerv", "tt", "tend")},
		Rule{Field: FieldBeerVsLastYear, Match: containsAll("cerv", "vs", "ly")},
		Rule{Field: FieldBeerHETrend, Match: containsAll("cerv", "he", "tend")},
		Rule{Field: FieldHEVsLastYear, Match: without(containsAll("he", "vs", "ly"), "cerv")},
		Rule{Field: FieldKPIsOK, Match: exact("kpis_ok")},
		Rule{Field: FieldPoints, Match: exact("pts")},
		Rule{Field: FieldHighlightHE, Match: exact("dtq_he")},
		Rule{Field: FieldSupervisorVisit, Match: exact("visita_sup")},
		Rule{Field: FieldHardware, Match: exact("hardware")},
		Rule{Field: FieldPromoter, Match: exact("promotor")},
	)
	return rules
}

// FieldMapper resolves normalized header keys to record fields.
type FieldMapper struct {
	rules []Rule
}

// NewFieldMapper creates a mapper over rules; nil means DefaultRules.
func NewFieldMapper(rules []Rule) *FieldMapper {
	if rules == nil {
		rules = DefaultRules()
	}
	return &FieldMapper{rules: rules}
}

// Resolve returns the field bound to a normalized header key.
func (m *FieldMapper) Resolve(key string) (Field, bool) {
	if key == "" {
		return "", false
	}
	for _, r := range m.rules {
		if r.Match(key) {
			return r.Field, true
		}
	}
	return "", false
}

// Column is the binding of one sheet column, made once per header row.
type Column struct {
	Index  int
	Header string
	Key    string
	Field  Field // empty when the column lands in Extras
}

// Bind normalizes every header and binds it to a field.
func (m *FieldMapper) Bind(headers []string) []Column {
	columns := make([]Column, len(headers))
	for i, h := range headers {
		key := textnorm.Key(h)
		field, _ := m.Resolve(key)
		columns[i] = Column{Index: i, Header: h, Key: key, Field: field}
	}
	return columns
}

// assign writes value into the record attribute named by f.
func assign(r *store.Record, f Field, value string) {
	var target *string
	switch f {
	case FieldStoreCode:
		target = &r.StoreCode
	case FieldDisplayName:
		target = &r.DisplayName
	case FieldChainName:
		target = &r.ChainName
	case FieldCoordinatorName:
		target = &r.CoordinatorName
	case FieldManagerName:
		target = &r.ManagerName
	case FieldSegment:
		target = &r.Segment
	case FieldShareSpacePrior:
		target = &r.ShareSpacePrior
	case FieldShareSpaceCurrent:
		target = &r.ShareSpaceCurrent
	case FieldShareSpaceDelta:
		target = &r.ShareSpaceDelta
	case FieldShareColdPrior:
		target = &r.ShareColdPrior
	case FieldShareColdCurrent:
		target = &r.ShareColdCurrent
	case FieldShareColdDelta:
		target = &r.ShareColdDelta
	case FieldExtraDisplay:
		target = &r.ExtraDisplay
	case FieldGondola:
		target = &r.Gondola
	case FieldBaseFocus:
		target = &r.BaseFocus
	case FieldCorona:
		target = &r.Corona
	case FieldSpaten:
		target = &r.Spaten
	case FieldStella:
		target = &r.Stella
	case FieldBeerTotalTrend:
		target = &r.BeerTotalTrend
	case FieldBeerVsLastYear:
		target = &r.BeerVsLastYear
	case FieldBeerHETrend:
		target = &r.BeerHETrend
	case FieldHEVsLastYear:
		target = &r.HEVsLastYear
	case FieldKPIsOK:
		target = &r.KPIsOK
	case FieldPoints:
		target = &r.Points
	case FieldHighlightHE:
		target = &r.HighlightHE
	case FieldSupervisorVisit:
		target = &r.SupervisorVisit
	case FieldHardware:
		target = &r.Hardware
	case FieldPromoter:
		target = &r.Promoter
	default:
		return
	}

	// A later column bound to the same field only overwrites with data.
	if value != "" || *target == "" {
		*target = value
	}
}
