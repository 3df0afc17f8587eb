// Package store holds the in-memory view of the store performance sheet:
// one Record per point of sale, grouped into an immutable Snapshot that a
// DataSource refreshes and swaps atomically.
package store

import (
	"sort"
	"strings"

	"github.com/FACorreiaa/raiox-score/pkg/textnorm"
)

// OtherChain is the chain assigned to stores whose chain could not be determined.
const OtherChain = "Outros"

// Record is one point of sale as read from the sheet. Text fields are trimmed;
// missing fields are empty strings, never absent.
type Record struct {
	StoreCode       string `json:"eg" csv:"eg"`
	DisplayName     string `json:"nome_fantasia" csv:"nome_fantasia"`
	ChainName       string `json:"rede" csv:"rede"`
	ManagerName     string `json:"gn" csv:"gn"`
	CoordinatorName string `json:"coordenador" csv:"coordenador"`
	Segment         string `json:"segmento,omitempty" csv:"segmento"`

	// Shelf space share, percentage points
	ShareSpacePrior   string `json:"share_espaco_m1,omitempty" csv:"share_espaco_m1"`
	ShareSpaceCurrent string `json:"share_espaco_m0,omitempty" csv:"share_espaco_m0"`
	ShareSpaceDelta   string `json:"share_espaco_vs_m1,omitempty" csv:"share_espaco_vs_m1"`

	// Cold storage share, percentage points
	ShareColdPrior   string `json:"share_gelado_m1,omitempty" csv:"share_gelado_m1"`
	ShareColdCurrent string `json:"share_gelado_m0,omitempty" csv:"share_gelado_m0"`
	ShareColdDelta   string `json:"share_gelado_vs_m1,omitempty" csv:"share_gelado_vs_m1"`

	// Execution
	ExtraDisplay string `json:"ponto_extra,omitempty" csv:"ponto_extra"`
	Gondola      string `json:"gondola,omitempty" csv:"gondola"`
	BaseFocus    string `json:"base_foco,omitempty" csv:"base_foco"`
	Corona       string `json:"corona,omitempty" csv:"corona"`
	Spaten       string `json:"spaten,omitempty" csv:"spaten"`
	Stella       string `json:"stella,omitempty" csv:"stella"`

	// Volume KPIs
	BeerTotalTrend string `json:"cerv_tt_tend,omitempty" csv:"cerv_tt_tend"`
	BeerVsLastYear string `json:"cerv_vs_ly,omitempty" csv:"cerv_vs_ly"`
	BeerHETrend    string `json:"cerv_he_tend,omitempty" csv:"cerv_he_tend"`
	HEVsLastYear   string `json:"he_vs_ly,omitempty" csv:"he_vs_ly"`
	KPIsOK         string `json:"kpis_ok,omitempty" csv:"kpis_ok"`
	Points         string `json:"pts,omitempty" csv:"pts"`
	HighlightHE    string `json:"dtq_he,omitempty" csv:"dtq_he"`

	// Structure
	SupervisorVisit string `json:"visita_sup,omitempty" csv:"visita_sup"`
	Hardware        string `json:"hardware,omitempty" csv:"hardware"`
	Promoter        string `json:"promotor,omitempty" csv:"promotor"`

	// Extras keeps every column that matched no field, keyed by normalized header.
	Extras map[string]string `json:"extras,omitempty" csv:"-"`

	// SearchKey is the folded concatenation of code, name, chain and manager.
	SearchKey string `json:"-" csv:"search_key"`
}

// HasChain reports whether the record belongs to a known chain.
func (r Record) HasChain() bool {
	return r.ChainName != "" && r.ChainName != OtherChain
}

// Label is the name shown in lists; it falls back to the store code.
func (r Record) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.StoreCode
}

// ExtraKeys returns the Extras keys in sorted order.
func (r Record) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extras))
	for k := range r.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildResult is the outcome of turning raw sheet text into records.
type BuildResult struct {
	Records []Record
	// Rows counts data rows seen, excluding the header row.
	Rows int
	// Dropped counts rows discarded for lacking a store code.
	Dropped int
	// UnmappedHeaders lists normalized header keys that fell into Extras.
	UnmappedHeaders []string
}

// RecordBuilder turns raw sheet text into records.
type RecordBuilder interface {
	Build(text string) BuildResult
}

// BuildSearchKey folds the fields a free-text lookup matches against.
func BuildSearchKey(r Record) string {
	return textnorm.Fold(joinNonEmpty(r.StoreCode, r.DisplayName, r.ChainName, r.ManagerName))
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
