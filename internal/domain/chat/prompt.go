package chat

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/raiox-score/internal/domain/analysis"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

const persona = "Você é o **Assistente Virtual do Raio-X Score 5**, especialista em execução de cerveja no varejo. " +
	"Você conversa com um Gerente de Negócio (GN) que visita supermercados."

var promptRules = []string{
	"Responda sempre em português, de forma curta, objetiva e com emojis moderados.",
	"Use apenas os dados da loja informados abaixo. Se um dado não estiver disponível, diga que não foi informado.",
	fmt.Sprintf("Variação de share acima de %.1f p.p. é crescimento, abaixo de -%.1f p.p. é queda, caso contrário estável.",
		analysis.TrendThreshold, analysis.TrendThreshold),
	"Mix premium completo significa Corona, Spaten e Stella presentes. Aponte os produtos ausentes como gap.",
	"Sem ponto extra é um gap de execução prioritário.",
	"Termine sempre com uma ação sugerida para o GN.",
}

type promptField struct {
	label string
	value func(store.Record) string
}

var promptFields = []promptField{
	{"Nome", func(r store.Record) string { return r.DisplayName }},
	{"Rede", func(r store.Record) string { return r.ChainName }},
	{"GN", func(r store.Record) string { return r.ManagerName }},
	{"Coordenador", func(r store.Record) string { return r.CoordinatorName }},
	{"Segmento", func(r store.Record) string { return r.Segment }},
	{"Share de espaço M-1", func(r store.Record) string { return r.ShareSpacePrior }},
	{"Share de espaço M0", func(r store.Record) string { return r.ShareSpaceCurrent }},
	{"Share de espaço vs", func(r store.Record) string { return r.ShareSpaceDelta }},
	{"Share de gelado M-1", func(r store.Record) string { return r.ShareColdPrior }},
	{"Share de gelado M0", func(r store.Record) string { return r.ShareColdCurrent }},
	{"Share de gelado vs", func(r store.Record) string { return r.ShareColdDelta }},
	{"Ponto extra", func(r store.Record) string { return r.ExtraDisplay }},
	{"Gôndola", func(r store.Record) string { return r.Gondola }},
	{"Base foco", func(r store.Record) string { return r.BaseFocus }},
	{"Corona", func(r store.Record) string { return r.Corona }},
	{"Spaten", func(r store.Record) string { return r.Spaten }},
	{"Stella", func(r store.Record) string { return r.Stella }},
	{"Cerveja TT tendência", func(r store.Record) string { return r.BeerTotalTrend }},
	{"Cerveja vs LY", func(r store.Record) string { return r.BeerVsLastYear }},
	{"Cerveja HE tendência", func(r store.Record) string { return r.BeerHETrend }},
	{"HE vs LY", func(r store.Record) string { return r.HEVsLastYear }},
	{"KPIs OK", func(r store.Record) string { return r.KPIsOK }},
	{"Pontos", func(r store.Record) string { return r.Points }},
	{"Destaque HE", func(r store.Record) string { return r.HighlightHE }},
	{"Visita supervisor", func(r store.Record) string { return r.SupervisorVisit }},
	{"Hardware", func(r store.Record) string { return r.Hardware }},
	{"Promotor", func(r store.Record) string { return r.Promoter }},
}

// BuildPrompt assembles the instruction text sent to a completion service.
// rec may be nil when no store was located.
func BuildPrompt(message string, rec *store.Record) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nREGRAS:\n")
	for i, rule := range promptRules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	b.WriteString("\nDADOS DA LOJA:\n")
	if rec == nil {
		b.WriteString("Nenhuma loja localizada para esta pergunta.\n")
	} else {
		for _, f := range promptFields {
			if v := f.value(*rec); v != "" {
				fmt.Fprintf(&b, "- %s: %s\n", f.label, v)
			}
		}
		for _, key := range rec.ExtraKeys() {
			fmt.Fprintf(&b, "- %s: %s\n", key, rec.Extras[key])
		}
		fmt.Fprintf(&b, "\nEG: %s\n", rec.StoreCode)
	}

	fmt.Fprintf(&b, "PERGUNTA DO GN: %q", strings.TrimSpace(message))
	return b.String()
}
