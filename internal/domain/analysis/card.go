package analysis

import (
	"fmt"

	"github.com/FACorreiaa/raiox-score/pkg/numeric"
)

// CardType tags the structured card so clients can pick a renderer.
const CardType = "analysis_v2"

const cardPlaceholder = "-"

// beerGrowthTarget is the total beer trend, in percent of target, above which
// the card praises the store.
const beerGrowthTarget = 100

// Card is the structured companion of a text report, rendered by the app as a
// dashboard tile.
type Card struct {
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Subtitle  string        `json:"subtitle"`
	Metrics   CardMetrics   `json:"metrics"`
	Execution CardExecution `json:"execution"`
	Structure CardStructure `json:"structure"`
	Share     CardShare     `json:"share"`
	Gaps      []string      `json:"gaps"`
	Insight   string        `json:"insight"`
}

// CardMetrics are the volume and share KPIs.
type CardMetrics struct {
	BeerTotalTrend string `json:"cerv_tt_tend"`
	BeerVsLastYear string `json:"cerv_vs_ly"`
	BeerHETrend    string `json:"cerv_he_tend"`
	HEVsLastYear   string `json:"he_vs_ly"`
	ShareSpace     string `json:"share_espaco"`
	ShareCold      string `json:"share_gelado"`
}

// CardExecution are the execution scores.
type CardExecution struct {
	KPIsOK      string `json:"kpis_ok"`
	Points      string `json:"pts"`
	HighlightHE string `json:"dtq_he"`
}

// CardStructure describes the store's support structure.
type CardStructure struct {
	Hardware        string `json:"hardware"`
	Promoter        string `json:"promotor"`
	SupervisorVisit string `json:"visita_sup"`
}

// CardShare is the shelf share trend.
type CardShare struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Delta string `json:"delta"`
}

// Card builds the structured card for the report.
func (r Report) Card() Card {
	rec := r.Record
	gaps := make([]string, 0, len(r.Gaps))
	for _, g := range r.Gaps {
		gaps = append(gaps, g.Item)
	}

	return Card{
		Type:     CardType,
		Title:    rec.Label(),
		Subtitle: fmt.Sprintf("EG: %s | %s", rec.StoreCode, dash(rec.ChainName)),
		Metrics: CardMetrics{
			BeerTotalTrend: dash(rec.BeerTotalTrend),
			BeerVsLastYear: dash(rec.BeerVsLastYear),
			BeerHETrend:    dash(rec.BeerHETrend),
			HEVsLastYear:   dash(rec.HEVsLastYear),
			ShareSpace:     dash(firstNonEmpty(rec.ShareSpaceCurrent, rec.ShareSpacePrior)),
			ShareCold:      dash(firstNonEmpty(rec.ShareColdCurrent, rec.ShareColdPrior)),
		},
		Execution: CardExecution{
			KPIsOK:      dash(rec.KPIsOK),
			Points:      dash(rec.Points),
			HighlightHE: dash(rec.HighlightHE),
		},
		Structure: CardStructure{
			Hardware:        dash(rec.Hardware),
			Promoter:        dash(rec.Promoter),
			SupervisorVisit: dash(rec.SupervisorVisit),
		},
		Share: CardShare{
			Icon:  r.SpaceTrend.Class.Icon(),
			Label: r.SpaceTrend.Class.Label(),
			Delta: r.SpaceTrend.DeltaText(),
		},
		Gaps:    gaps,
		Insight: r.insight(),
	}
}

func (r Report) insight() string {
	trend, ok := numeric.Parse(r.Record.BeerTotalTrend)
	if !ok {
		return r.SpaceTrend.Class.Advice()
	}
	if trend > beerGrowthTarget {
		return "🚀 Cerveja crescendo acima da meta! Mantenha o foco na execução."
	}
	return "⚠️ Atenção à tendência de Cerveja. Reforce ponto extra e mix premium."
}

func dash(s string) string {
	if s == "" {
		return cardPlaceholder
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
