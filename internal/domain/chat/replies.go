package chat

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

const (
	emptyMessageReply   = "Por favor, digite algo."
	loadingReply        = "⏳ Os dados da planilha ainda estão carregando... Tente novamente em alguns segundos."
	clarificationReply  = "🤔 Não entendi qual loja você procura. Digite o **Código EG** (Ex: 174028-1) ou parte do nome da loja."
	maxCandidatesListed = 5
	maxSuggestions      = 3
)

var salutations = map[period]string{
	morning:   "Bom dia! ☀️",
	afternoon: "Boa tarde! 🕑",
	evening:   "Boa noite! 🌙",
}

var greetingFollowUps = []string{
	"Tudo pronto para analisar seus resultados hoje?",
	"Como posso ajudar na sua rota hoje?",
	"Vamos buscar o Score 5 hoje?",
	"Hora de acelerar a execução!",
	"Me diga o EG da loja e eu preparo o Raio-X.",
}

var thanksReplies = []string{
	"Por nada! 🍻 Se precisar de outra loja, é só mandar o EG.",
	"Disponha! 💪 Boa execução na rota.",
	"Tamo junto! 🙌 Qualquer coisa, estou por aqui.",
	"Imagina! 😉 Bora buscar o Score 5.",
}

const helpMenuReply = "🤖 **Menu Rápido**\n\n" +
	"1️⃣ Digite o **EG** ou **Nome** da loja para um Raio-X completo.\n" +
	"2️⃣ Pergunte sobre produtos (Corona, Spaten, Stella).\n" +
	"3️⃣ Peça **dicas de uso** ou **suporte**.\n\n" +
	"Estou pronto!"

type topic struct {
	phrase string
	reply  string
}

// Order matters: the first phrase contained in the message wins.
var knowledgeBase = []topic{
	{"quem e voce", "Sou o **Assistente Virtual do Raio-X Score 5**. 🤖\n\nFui criado para te ajudar a analisar a performance das lojas, identificar gaps de execução e fornecer insights rápidos para melhorar seus resultados."},
	{"dicas", "Aqui estão algumas dicas para aproveitar ao máximo: 💡\n\n1. **Digite o Código EG** da loja para uma análise completa.\n2. Digite **\"Menu\"** a qualquer momento para voltar ao início.\n3. Use as opções rápidas para agilidade.\n4. Se precisar de algo externo, use **Abrir solicitação**."},
	{"suporte", "Para suporte técnico, você pode:\n\n1. Entrar em contato com o coordenador regional.\n2. Abrir um chamado no portal de chamados.\n3. Se for dúvida de uso, eu posso tentar te explicar! O que está acontecendo?"},
	{"analisar uma loja", "Claro! Por favor, **digite o Código EG** da loja que você deseja analisar. 🔢"},
}

func knowledgeTopic(folded string) string {
	for _, t := range knowledgeBase {
		if strings.Contains(folded, t.phrase) {
			return t.reply
		}
	}
	return ""
}

type product struct {
	keyword string
	reply   string
}

var products = []product{
	{"corona", "🍺 **Corona** é a cerveja premium mexicana do portfólio. Na loja, garanta presença na gôndola de premium e no gelado, sempre com a comunicação do limão."},
	{"spaten", "🍺 **Spaten** é a puro malte de Munique. Priorize exposição ao lado das mainstream para incentivar o trade-up e mantenha o gelado abastecido."},
	{"stella", "🍺 **Stella Artois** é a premium belga do portfólio. Exposição em bloco na gôndola e presença no ponto extra puxam o mix premium da loja."},
}

func productIn(folded string) string {
	for _, p := range products {
		if containsWord(folded, p.keyword) {
			return p.reply
		}
	}
	return ""
}

func containsWord(folded, word string) bool {
	for _, f := range strings.FieldsFunc(folded, func(r rune) bool { return !(r >= 'a' && r <= 'z') }) {
		if f == word {
			return true
		}
	}
	return false
}

func codeNotFoundReply(code string, total int) string {
	return fmt.Sprintf("❌ Código %s não encontrado na base de dados.\nBase atual: %d estabelecimentos.", code, total)
}

func nameNotFoundReply(query string, suggestions []string) string {
	text := fmt.Sprintf("🤔 Não encontrei loja com \"%s\". Tente o EG (Ex: 174028).", query)
	if len(suggestions) > 0 {
		text += "\n\nVocê quis dizer: " + strings.Join(suggestions, ", ") + "?"
	}
	return text
}

func disambiguationReply(query string, matches []store.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 Encontrei %d lojas para \"%s\":\n\n", len(matches), query)
	for i, r := range matches {
		if i == maxCandidatesListed {
			break
		}
		fmt.Fprintf(&b, "• **%s** (EG: %s | %s)\n", r.Label(), r.StoreCode, r.ChainName)
	}
	if rest := len(matches) - maxCandidatesListed; rest > 0 {
		fmt.Fprintf(&b, "\n...e mais %d lojas.\n", rest)
	}
	b.WriteString("\nDigite o **EG** da loja desejada.")
	return b.String()
}
