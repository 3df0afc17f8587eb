package sheet

import (
	"sort"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

// Builder converts sheet text into store records. It is safe for concurrent use.
type Builder struct {
	mapper *FieldMapper
	chains *ChainEngine
}

// NewBuilder creates a builder; nil arguments select the default tables.
func NewBuilder(mapper *FieldMapper, chains *ChainEngine) *Builder {
	if mapper == nil {
		mapper = NewFieldMapper(nil)
	}
	if chains == nil {
		chains = NewChainEngine(nil)
	}
	return &Builder{mapper: mapper, chains: chains}
}

var _ store.RecordBuilder = (*Builder)(nil)

// Build tokenizes text, binds the first row as headers and turns every other
// row into a record. Rows without a store code are dropped and counted.
func (b *Builder) Build(text string) store.BuildResult {
	rows := Tokenize(text)
	if len(rows) == 0 {
		return store.BuildResult{}
	}

	columns := b.mapper.Bind(rows[0])
	result := store.BuildResult{
		Records:         make([]store.Record, 0, len(rows)-1),
		UnmappedHeaders: unmappedKeys(columns),
	}

	for _, row := range rows[1:] {
		result.Rows++
		rec, ok := b.buildRecord(columns, row)
		if !ok {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

func (b *Builder) buildRecord(columns []Column, row []string) (store.Record, bool) {
	var rec store.Record
	for _, col := range columns {
		// Short rows leave trailing fields empty
		value := ""
		if col.Index < len(row) {
			value = row[col.Index]
		}

		if col.Field != "" {
			assign(&rec, col.Field, value)
			continue
		}
		if col.Key == "" || value == "" {
			continue
		}
		if rec.Extras == nil {
			rec.Extras = make(map[string]string)
		}
		rec.Extras[col.Key] = value
	}

	if rec.StoreCode == "" {
		return store.Record{}, false
	}

	rec.ChainName = b.chains.Resolve(rec.ChainName, rec.DisplayName)
	rec.SearchKey = store.BuildSearchKey(rec)
	return rec, true
}

func unmappedKeys(columns []Column) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, c := range columns {
		if c.Field != "" || c.Key == "" {
			continue
		}
		if _, dup := seen[c.Key]; dup {
			continue
		}
		seen[c.Key] = struct{}{}
		keys = append(keys, c.Key)
	}
	sort.Strings(keys)
	return keys
}
