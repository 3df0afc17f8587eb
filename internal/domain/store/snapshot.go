package store

import (
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/raiox-score/pkg/textnorm"
)

// Source identifies where a snapshot's records came from.
type Source string

const (
	SourceSheet Source = "sheet"
	SourceCache Source = "cache"
	SourceEmpty Source = "empty"
)

// Snapshot is an immutable set of records. Readers may hold one for as long
// as they like; refreshes publish a new Snapshot instead of mutating this one.
type Snapshot struct {
	records   []Record
	byCode    map[string][]int
	fetchedAt time.Time
	source    Source
	dropped   int
}

// NewSnapshot indexes records. The slice is owned by the snapshot afterwards.
func NewSnapshot(records []Record, fetchedAt time.Time, source Source, dropped int) *Snapshot {
	s := &Snapshot{
		records:   records,
		byCode:    make(map[string][]int, len(records)),
		fetchedAt: fetchedAt,
		source:    source,
		dropped:   dropped,
	}
	for i, r := range records {
		code := textnorm.Alnum(r.StoreCode)
		s.byCode[code] = append(s.byCode[code], i)
	}
	return s
}

// EmptySnapshot is the state before any data could be loaded.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil, time.Time{}, SourceEmpty, 0)
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// IsEmpty reports whether the snapshot holds no records.
func (s *Snapshot) IsEmpty() bool { return s.Len() == 0 }

// FetchedAt returns when the underlying data was fetched.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Source returns where the data came from.
func (s *Snapshot) Source() Source { return s.source }

// Dropped returns how many sheet rows were discarded while building it.
func (s *Snapshot) Dropped() int { return s.dropped }

// Records returns a copy of the records in sheet order.
func (s *Snapshot) Records() []Record {
	if s == nil {
		return nil
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// FindByCode returns the records whose store code matches code exactly once
// punctuation and spacing are ignored.
func (s *Snapshot) FindByCode(code string) []Record {
	norm := textnorm.Alnum(code)
	if s == nil || norm == "" {
		return nil
	}
	idx := s.byCode[norm]
	out := make([]Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.records[i])
	}
	return out
}

// LookupCode resolves a user supplied store code: exact matches win, otherwise
// every store whose normalized code contains the given digits is returned.
func (s *Snapshot) LookupCode(code string) []Record {
	if exact := s.FindByCode(code); len(exact) > 0 {
		return exact
	}

	norm := textnorm.Alnum(code)
	if s == nil || norm == "" {
		return nil
	}
	var out []Record
	for _, r := range s.records {
		if strings.Contains(textnorm.Alnum(r.StoreCode), norm) {
			out = append(out, r)
		}
	}
	return out
}

// SearchByName returns records whose search key contains the folded query,
// closest names first. Hyphens, slashes and underscores match spaces.
func (s *Snapshot) SearchByName(query string) []Record {
	q := textnorm.Fold(query)
	if s == nil || q == "" {
		return nil
	}
	words := textnorm.Words(q)

	var out []Record
	for _, r := range s.records {
		if strings.Contains(r.SearchKey, q) || (words != "" && strings.Contains(textnorm.Words(r.SearchKey), words)) {
			out = append(out, r)
		}
	}
	RankByName(q, out)
	return out
}

// Filter narrows records by chain (case and accent insensitive) and free text.
// Empty arguments do not filter.
func (s *Snapshot) Filter(chain, query string) []Record {
	if s == nil {
		return nil
	}
	chain = textnorm.Fold(chain)
	query = textnorm.Fold(query)

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if chain != "" && textnorm.Fold(r.ChainName) != chain {
			continue
		}
		if query != "" && !strings.Contains(r.SearchKey, query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ChainCount is one chain and how many stores it has.
type ChainCount struct {
	Chain  string `json:"rede"`
	Stores int    `json:"lojas"`
}

// Chains lists known chains alphabetically. Stores without a chain are not listed.
func (s *Snapshot) Chains() []ChainCount {
	if s == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, r := range s.records {
		if r.HasChain() {
			counts[r.ChainName]++
		}
	}

	out := make([]ChainCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ChainCount{Chain: c, Stores: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return textnorm.Fold(out[i].Chain) < textnorm.Fold(out[j].Chain)
	})
	return out
}

// RankByName orders records in place: names where the query appears earlier
// come first, then by edit distance to the query, then by store code.
func RankByName(query string, records []Record) {
	type ranked struct {
		rec       Record
		pos, dist int
	}
	q := textnorm.Fold(query)
	items := make([]ranked, len(records))
	for i, r := range records {
		name := textnorm.Fold(r.Label())
		pos := strings.Index(name, q)
		if pos < 0 {
			pos = len(name) + 1
		}
		items[i] = ranked{rec: r, pos: pos, dist: fuzzy.LevenshteinDistance(q, name)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.rec.StoreCode < b.rec.StoreCode
	})
	for i := range items {
		records[i] = items[i].rec
	}
}

// Suggest returns up to limit store labels that loosely resemble query, for
// "did you mean" hints when nothing matched.
func (s *Snapshot) Suggest(query string, limit int) []string {
	q := textnorm.Fold(query)
	if s == nil || q == "" || limit <= 0 {
		return nil
	}

	labels := make([]string, 0, len(s.records))
	for _, r := range s.records {
		labels = append(labels, r.Label())
	}
	found := fuzzy.RankFindNormalizedFold(q, labels)
	sort.Sort(found)

	out := make([]string, 0, limit)
	for _, f := range found {
		if len(out) == limit {
			break
		}
		out = append(out, f.Target)
	}
	return out
}
