package analysis

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	"github.com/FACorreiaa/raiox-score/pkg/numeric"
)

// NotFoundMessage is returned when no record backs the analysis.
const NotFoundMessage = "❌ Loja não encontrada ou dados indisponíveis."

const placeholder = "N/A"

// GapKind groups execution gaps.
type GapKind string

const (
	GapPremiumMix   GapKind = "mix_premium"
	GapExtraDisplay GapKind = "ponto_extra"
)

// Gap is one missing execution item.
type Gap struct {
	Kind GapKind `json:"kind"`
	Item string  `json:"item"`
}

// PremiumItem is one product of the premium mix and whether the store has it.
type PremiumItem struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// Report is the structured diagnosis of one store.
type Report struct {
	Record          store.Record  `json:"-"`
	SpaceTrend      Trend         `json:"share_espaco"`
	HasSpaceShare   bool          `json:"has_share_espaco"`
	ColdTrend       Trend         `json:"share_gelado"`
	HasColdShare    bool          `json:"has_share_gelado"`
	Premium         []PremiumItem `json:"mix_premium"`
	HasExtraDisplay bool          `json:"ponto_extra"`
	Gaps            []Gap         `json:"gaps"`
	Action          string        `json:"acao_sugerida"`
}

// Analyze applies the diagnosis rules to r.
func Analyze(r store.Record) Report {
	rep := Report{
		Record:          r,
		SpaceTrend:      ClassifyRaw(r.ShareSpacePrior, r.ShareSpaceCurrent),
		HasSpaceShare:   r.ShareSpacePrior != "" || r.ShareSpaceCurrent != "",
		ColdTrend:       ClassifyRaw(r.ShareColdPrior, r.ShareColdCurrent),
		HasColdShare:    r.ShareColdPrior != "" || r.ShareColdCurrent != "",
		HasExtraDisplay: HasExtraDisplay(r.ExtraDisplay),
		Premium: []PremiumItem{
			{Name: "Corona", Present: IsYes(r.Corona)},
			{Name: "Spaten", Present: IsYes(r.Spaten)},
			{Name: "Stella", Present: IsYes(r.Stella)},
		},
	}

	for _, p := range rep.Premium {
		if !p.Present {
			rep.Gaps = append(rep.Gaps, Gap{Kind: GapPremiumMix, Item: p.Name})
		}
	}
	if !rep.HasExtraDisplay {
		rep.Gaps = append(rep.Gaps, Gap{Kind: GapExtraDisplay, Item: "Ponto Extra"})
	}
	rep.Action = suggestAction(rep)
	return rep
}

// MissingPremium lists the premium products the store lacks.
func (r Report) MissingPremium() []string {
	var missing []string
	for _, p := range r.Premium {
		if !p.Present {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

func suggestAction(r Report) string {
	missing := r.MissingPremium()
	switch {
	case !r.HasExtraDisplay:
		return "Leve hoje a proposta de Ponto Extra para o gerente da loja e use o share como argumento."
	case len(missing) > 0:
		return fmt.Sprintf("Garanta a entrada de %s no mix para completar o portfólio premium.", joinPT(missing))
	case r.SpaceTrend.Class == TrendDecline:
		return "Revise a gôndola com o promotor e recupere o espaço perdido para a concorrência."
	default:
		return "Mantenha a gôndola abastecida e precificada para sustentar o resultado."
	}
}

// Text renders the report as the chat message.
func (r Report) Text() string {
	rec := r.Record
	var b strings.Builder

	fmt.Fprintf(&b, "📊 **ANÁLISE RAIO-X | %s**\n", orPlaceholder(rec.Label()))
	fmt.Fprintf(&b, "*(EG: %s | Rede: %s)*\n\n", rec.StoreCode, orPlaceholder(rec.ChainName))

	b.WriteString("🏆 **PERFORMANCE DE SHARE**\n")
	if r.HasSpaceShare {
		writeShare(&b, "Espaço", rec.ShareSpacePrior, rec.ShareSpaceCurrent, r.SpaceTrend)
		fmt.Fprintf(&b, "💡 %s\n", r.SpaceTrend.Class.Advice())
	} else {
		fmt.Fprintf(&b, "• Espaço: %s\n", placeholder)
	}
	if r.HasColdShare {
		writeShare(&b, "Gelado", rec.ShareColdPrior, rec.ShareColdCurrent, r.ColdTrend)
	}
	b.WriteString("\n")

	b.WriteString("🍺 **MIX PREMIUM**\n")
	for _, p := range r.Premium {
		fmt.Fprintf(&b, "• %s: %s\n", p.Name, checkMark(p.Present))
	}
	b.WriteString("\n")

	b.WriteString("🛠️ **EXECUÇÃO & GAPS**\n")
	if r.HasExtraDisplay {
		b.WriteString("• Ponto Extra: ✅ Ativo\n")
	} else {
		b.WriteString("• 🎯 OPORTUNIDADE: Negocie um Ponto Extra!\n")
	}
	fmt.Fprintf(&b, "• Gôndola: %s\n", orPlaceholder(rec.Gondola))
	fmt.Fprintf(&b, "• Base Foco: %s\n", orPlaceholder(rec.BaseFocus))
	if len(r.Gaps) == 0 {
		b.WriteString("✅ Nenhum gap de execução identificado.\n")
	} else {
		for _, g := range r.Gaps {
			fmt.Fprintf(&b, "🎯 Gap: %s\n", g.Item)
		}
	}
	b.WriteString("\n")

	b.WriteString("👥 **EQUIPE**\n")
	fmt.Fprintf(&b, "• GN: %s\n", orDefault(rec.ManagerName, "não informado"))
	fmt.Fprintf(&b, "• Coord: %s\n\n", orDefault(rec.CoordinatorName, "não informado"))

	fmt.Fprintf(&b, "🚀 *Ação Sugerida:* %s", r.Action)
	return b.String()
}

// RenderReport is the text for a possibly missing record.
func RenderReport(rec *store.Record) string {
	if rec == nil || rec.StoreCode == "" {
		return NotFoundMessage
	}
	return Analyze(*rec).Text()
}

func writeShare(b *strings.Builder, label, prior, current string, t Trend) {
	fmt.Fprintf(b, "• %s: %s ➡️ %s\n", label, percentOrPlaceholder(prior), percentOrPlaceholder(current))
	fmt.Fprintf(b, "• Tendência: %s %s (%s p.p.)\n", t.Class.Icon(), t.Class.Label(), t.DeltaText())
}

func percentOrPlaceholder(raw string) string {
	v, ok := numeric.Parse(raw)
	if !ok {
		return placeholder
	}
	return numeric.Percent(v)
}

func checkMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func orPlaceholder(s string) string {
	return orDefault(s, placeholder)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// joinPT joins names the Portuguese way: "A", "A e B", "A, B e C".
func joinPT(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " e " + items[len(items)-1]
	}
}
