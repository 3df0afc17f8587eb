package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		folded string
		want   Intent
	}{
		{"oi", IntentGreeting},
		{"bom dia, tudo bem?", IntentGreeting},
		{"e ai", IntentGreeting},
		{"oito lojas", intentLookup},
		{"menu", IntentHelpMenu},
		{"quais as opcoes?", IntentHelpMenu},
		{"preciso de suporte", IntentHelpMenu},
		{"tem corona?", IntentProductInfo},
		{"coronavirus", intentLookup},
		{"obrigado pela ajuda", IntentHelpMenu},
		{"obrigado", IntentThanks},
		{"174028-1", intentLookup},
		// Greeting must start the message
		{"loja oi", intentLookup},
	}

	for _, tt := range tests {
		t.Run(tt.folded, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.folded))
		})
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"como esta 174028-1?", "174028-1"},
		{"eg 12-3", "12-3"},
		{"loja 1740281", "1740281"},
		{"tenho 3 lojas", ""},
		{"123", ""},
		{"12345678", ""},
		{"sem codigo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCode(tt.in))
		})
	}
}

func TestNameQuery(t *testing.T) {
	assert.Equal(t, "verdemar lourdes", nameQuery("analisar a loja verdemar lourdes"))
	assert.Equal(t, "bahamas", nameQuery("como esta o bahamas?"))
	assert.Equal(t, "", nameQuery("me mostra a loja"))
	assert.Equal(t, "epa savassi", nameQuery("epa-savassi"))
	assert.Equal(t, "super nosso gourmet", nameQuery("super_nosso/gourmet"))
	assert.Equal(t, "bahamas", nameQuery("raio-x do bahamas"))
}

func TestLetterCount(t *testing.T) {
	assert.Equal(t, 0, letterCount("12-3 !"))
	assert.Equal(t, 3, letterCount("e p a"))
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, morning, periodOf(0))
	assert.Equal(t, morning, periodOf(11))
	assert.Equal(t, afternoon, periodOf(12))
	assert.Equal(t, afternoon, periodOf(17))
	assert.Equal(t, evening, periodOf(18))
	assert.Equal(t, evening, periodOf(23))
}
