package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

func TestChainEngine_Infer(t *testing.T) {
	engine := NewChainEngine(nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"exact keyword", "EPA Savassi", "EPA"},
		{"accented keyword", "Mineirão Contagem", "EPA"},
		{"two word keyword", "SUPER NOSSO GOURMET", "Super Nosso"},
		{"joined spelling", "supernosso express", "Super Nosso"},
		{"alias keyword", "Pampulha Loja 3", "Super Nosso"},
		{"abbreviation", "SBH Venda Nova", "Super BH"},
		{"capitalized default", "Verdemar Lourdes", "Verdemar"},
		{"accent folded", "Atacadão BH", "Atacadao"},
		{"list order wins over text order", "Bahamas dentro do EPA", "Bahamas"},
		{"list order wins when later in text", "EPA Bahamas", "Bahamas"},
		{"unknown", "Padaria do Bairro", store.OtherChain},
		{"empty", "", store.OtherChain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.Infer(tt.input))
		})
	}
}

func TestChainEngine_Resolve(t *testing.T) {
	engine := NewChainEngine(nil)

	assert.Equal(t, "Rede Própria", engine.Resolve(" Rede Própria ", "EPA Centro"))
	assert.Equal(t, "EPA", engine.Resolve("", "EPA Centro"))
	assert.Equal(t, store.OtherChain, engine.Resolve("  ", "Mercearia"))
}

func TestChainEngine_CustomKeywords(t *testing.T) {
	engine := NewChainEngine([]ChainKeyword{{Keyword: "Zona Sul", Chain: "Zona Sul"}, {Keyword: "", Chain: "X"}})

	assert.Equal(t, "Zona Sul", engine.Infer("zona sul leblon"))
	assert.Equal(t, store.OtherChain, engine.Infer("EPA"))
}
