package chat

import (
	"regexp"
	"strings"
)

// Intent is the category a message was routed to.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentHelpMenu     Intent = "help_menu"
	IntentProductInfo  Intent = "product_info"
	IntentThanks       Intent = "thanks"
	IntentStoreByCode  Intent = "store_lookup_by_code"
	IntentStoreByName  Intent = "store_lookup_by_name"
	IntentUnrecognized Intent = "unrecognized"
	intentLookup       Intent = "lookup"
)

var (
	greetingPattern = regexp.MustCompile(`^(oi|ola|oie|bom dia|boa tarde|boa noite|hey|hello|hi|e ai|eai|salve|opa)\b`)
	helpPattern     = regexp.MustCompile(`\b(menu|ajuda|help|opcoes|options|opcao)\b`)
	thanksPattern   = regexp.MustCompile(`\b(obrigado|obrigada|valeu|thanks|vlw|brigado)\b`)

	dashedCodePattern = regexp.MustCompile(`\b\d{2,6}-\d\b`)
	bareCodePattern   = regexp.MustCompile(`\b\d{4,7}\b`)
)

// classify applies the fixed priority order to a folded message.
// Anything that is not a canned intent is a lookup.
func classify(folded string) Intent {
	switch {
	case greetingPattern.MatchString(folded):
		return IntentGreeting
	case helpPattern.MatchString(folded), knowledgeTopic(folded) != "":
		return IntentHelpMenu
	case productIn(folded) != "":
		return IntentProductInfo
	case thanksPattern.MatchString(folded):
		return IntentThanks
	default:
		return intentLookup
	}
}

// extractCode returns the first store-code-shaped token in the message.
func extractCode(folded string) string {
	if code := dashedCodePattern.FindString(folded); code != "" {
		return code
	}
	return bareCodePattern.FindString(folded)
}

var stopWords = map[string]struct{}{
	"a": {}, "o": {}, "as": {}, "os": {}, "e": {}, "de": {}, "da": {}, "do": {}, "das": {}, "dos": {},
	"na": {}, "no": {}, "em": {}, "um": {}, "uma": {}, "para": {}, "pra": {}, "por": {}, "favor": {},
	"loja": {}, "lojas": {}, "pdv": {}, "eg": {}, "codigo": {}, "nome": {},
	"analise": {}, "analisar": {}, "analisa": {}, "raio": {}, "x": {}, "score": {},
	"como": {}, "esta": {}, "estao": {}, "qual": {}, "quais": {}, "sobre": {}, "me": {}, "mostra": {},
	"mostre": {}, "mostrar": {}, "ver": {}, "quero": {}, "fala": {}, "dados": {}, "resultado": {},
	"resultados": {}, "performance": {},
}

// nameQuery strips stop-words and punctuation from a folded message.
func nameQuery(folded string) string {
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		switch r {
		case ' ', ',', '?', '!', '.', ':', ';', '-', '/', '_':
			return true
		}
		return false
	})
	kept := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			n++
		}
	}
	return n
}
