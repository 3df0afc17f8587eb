package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

func TestBuildPrompt_WithoutStore(t *testing.T) {
	prompt := BuildPrompt("  qual a regra do ponto extra?  ", nil)

	assert.True(t, strings.HasPrefix(prompt, persona))
	assert.Contains(t, prompt, "REGRAS:\n1. ")
	assert.Contains(t, prompt, "Variação de share acima de 0.5 p.p.")
	assert.Contains(t, prompt, "Nenhuma loja localizada")
	assert.True(t, strings.HasSuffix(prompt, `PERGUNTA DO GN: "qual a regra do ponto extra?"`))
}

func TestBuildPrompt_WithStore(t *testing.T) {
	r := store.Record{
		StoreCode:         "174028-1",
		DisplayName:       "Supermercado Bahamas Centro",
		ChainName:         "Bahamas",
		ShareSpaceCurrent: "35,2%",
		Extras:            map[string]string{"volume_hl": "120", "canal": "AS"},
	}

	prompt := BuildPrompt("como está?", &r)

	assert.Contains(t, prompt, "- Nome: Supermercado Bahamas Centro\n")
	assert.Contains(t, prompt, "- Share de espaço M0: 35,2%\n")
	assert.NotContains(t, prompt, "- GN:")
	assert.Contains(t, prompt, "EG: 174028-1\n")
	assert.NotContains(t, prompt, "Nenhuma loja localizada")

	// Extras follow the known fields in key order
	canal := strings.Index(prompt, "- canal: AS")
	volume := strings.Index(prompt, "- volume_hl: 120")
	assert.Greater(t, canal, strings.Index(prompt, "- Share de espaço M0"))
	assert.Less(t, canal, volume)
}
