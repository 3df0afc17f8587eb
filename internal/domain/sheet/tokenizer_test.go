package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"plain cells", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma and escaped quote", `a,"b,c","d""e"`, []string{"a", "b,c", `d"e`}},
		{"cells are trimmed", "  a , b ,c  ", []string{"a", "b", "c"}},
		{"empty cells kept", "a,,c,", []string{"a", "", "c", ""}},
		{"unterminated quote runs to end", `a,"b,c`, []string{"a", "b,c"}},
		{"single cell", "solo", []string{"solo"}},
		{"empty line", "", []string{""}},
		{"accented text", "Mineirão,Pão de Açúcar", []string{"Mineirão", "Pão de Açúcar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLine(tt.line))
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Run("skips blank lines and carriage returns", func(t *testing.T) {
		text := "EG,Nome\r\n\r\n12345-6,Loja A\r\n   \n65432-1,\"Loja, B\"\n"
		rows := Tokenize(text)

		assert.Equal(t, [][]string{
			{"EG", "Nome"},
			{"12345-6", "Loja A"},
			{"65432-1", "Loja, B"},
		}, rows)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		rows := Tokenize("\ufeffEG,Nome\n1-2,X")
		assert.Equal(t, "EG", rows[0][0])
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize(" \n \r\n"))
	})

	t.Run("quotes do not span lines", func(t *testing.T) {
		rows := Tokenize("a,\"b\nc\",d")
		assert.Len(t, rows, 2)
		assert.Equal(t, []string{"a", "b"}, rows[0])
		assert.Equal(t, []string{"c,d"}, rows[1])
	})
}
