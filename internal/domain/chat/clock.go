package chat

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultZone is the zone greetings are computed in.
const DefaultZone = "America/Sao_Paulo"

// Clock reports the current wall-clock hour in a zone.
type Clock interface {
	CurrentHourInZone(loc *time.Location) int
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) CurrentHourInZone(loc *time.Location) int {
	return time.Now().In(loc).Hour()
}

// LoadZone resolves a zone name, falling back to DefaultZone when empty.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", name, err)
	}
	return loc, nil
}

type period int

const (
	morning period = iota
	afternoon
	evening
)

func periodOf(hour int) period {
	switch {
	case hour < 12:
		return morning
	case hour < 18:
		return afternoon
	default:
		return evening
	}
}

// Picker returns an index in [0, n).
type Picker func(n int) int
