// Package analysis turns a store record into the rule-based diagnosis sent to
// field managers: share trend, premium mix, execution gaps and a suggested action.
package analysis

import (
	"math"

	"github.com/FACorreiaa/raiox-score/pkg/numeric"
)

// TrendThreshold is the smallest share change, in percentage points, that
// counts as movement. Changes at or below it are Stable.
const TrendThreshold = 0.5

// TrendClass is the direction of a share change.
type TrendClass string

const (
	TrendGrowth  TrendClass = "growth"
	TrendDecline TrendClass = "decline"
	TrendStable  TrendClass = "stable"
)

// Icon returns the emoji shown next to the trend.
func (c TrendClass) Icon() string {
	switch c {
	case TrendGrowth:
		return "📈"
	case TrendDecline:
		return "📉"
	default:
		return "➖"
	}
}

// Label returns the trend name shown to users.
func (c TrendClass) Label() string {
	switch c {
	case TrendGrowth:
		return "Crescimento"
	case TrendDecline:
		return "Queda"
	default:
		return "Estável"
	}
}

// Advice returns the tip attached to the trend.
func (c TrendClass) Advice() string {
	switch c {
	case TrendGrowth:
		return "Ótimo trabalho! Mantenha a execução para segurar esse ganho."
	case TrendDecline:
		return "🚨 Atenção! Perdemos espaço. Verifique invasões da concorrência urgente."
	default:
		return "Share estável. Tente negociar um ponto extra para destravar crescimento."
	}
}

// Trend is a classified share change.
type Trend struct {
	Class   TrendClass `json:"class"`
	Prior   float64    `json:"prior"`
	Current float64    `json:"current"`
	Delta   float64    `json:"delta"`
}

// ClassifyTrend compares prior and current shares.
func ClassifyTrend(prior, current float64) Trend {
	delta := current - prior
	t := Trend{Class: TrendStable, Prior: prior, Current: current, Delta: delta}
	switch {
	case math.Abs(delta) <= TrendThreshold:
	case delta > 0:
		t.Class = TrendGrowth
	default:
		t.Class = TrendDecline
	}
	return t
}

// ClassifyRaw parses both sheet cells before classifying.
func ClassifyRaw(prior, current string) Trend {
	return ClassifyTrend(numeric.ToNumber(prior), numeric.ToNumber(current))
}

// DeltaText renders the delta with sign and one decimal ("+5.0").
func (t Trend) DeltaText() string {
	return numeric.FormatSigned(t.Delta, 1)
}
