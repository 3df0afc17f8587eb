package sheet

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

const sampleSheet = `EG,Nome Fantasia,Rede,GN,Coordenador,Share de Espaço M-1,Share de Espaço M0,Share de Espaço vs M-1,Corona,Spaten,Stella,Ponto Extra,Cidade
12345-6,EPA Savassi,,Ana Souza,Carlos Lima,"30,0","35,0","5,0",SIM,OK,Não,2,Belo Horizonte
,Loja Sem Código,EPA,,,,,,,,,,
65432-1,"Mercearia ""Boa Vista""",Independentes,Bruno,,28,27,-1,,,,,Contagem
77777-7,Super Nosso Pampulha`

func TestBuilder_Build(t *testing.T) {
	result := NewBuilder(nil, nil).Build(sampleSheet)

	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Records, 3)
	assert.Equal(t, []string{"cidade"}, result.UnmappedHeaders)

	first := result.Records[0]
	assert.Equal(t, "12345-6", first.StoreCode)
	assert.Equal(t, "EPA Savassi", first.DisplayName)
	assert.Equal(t, "EPA", first.ChainName, "chain inferred from the name")
	assert.Equal(t, "Ana Souza", first.ManagerName)
	assert.Equal(t, "Carlos Lima", first.CoordinatorName)
	assert.Equal(t, "30,0", first.ShareSpacePrior)
	assert.Equal(t, "35,0", first.ShareSpaceCurrent)
	assert.Equal(t, "5,0", first.ShareSpaceDelta)
	assert.Equal(t, "SIM", first.Corona)
	assert.Equal(t, "OK", first.Spaten)
	assert.Equal(t, "Não", first.Stella)
	assert.Equal(t, "2", first.ExtraDisplay)
	assert.Equal(t, map[string]string{"cidade": "Belo Horizonte"}, first.Extras)
	assert.Contains(t, first.SearchKey, "epa savassi")
	assert.Contains(t, first.SearchKey, "ana souza")

	second := result.Records[1]
	assert.Equal(t, `Mercearia "Boa Vista"`, second.DisplayName)
	assert.Equal(t, "Independentes", second.ChainName, "sheet chain wins over inference")

	short := result.Records[2]
	assert.Equal(t, "Super Nosso", short.ChainName)
	assert.Empty(t, short.ManagerName, "short rows leave trailing fields empty")
	assert.Nil(t, short.Extras)
}

func TestBuilder_EmptyInput(t *testing.T) {
	result := NewBuilder(nil, nil).Build("")
	assert.Empty(t, result.Records)
	assert.Zero(t, result.Rows)

	headerOnly := NewBuilder(nil, nil).Build("EG,Nome\n")
	assert.Empty(t, headerOnly.Records)
	assert.Zero(t, headerOnly.Dropped)
}

func TestBuilder_DuplicateColumns(t *testing.T) {
	result := NewBuilder(nil, nil).Build("EG,Nome PDV,Nome Fantasia\n1-1,Primeiro,\n2-2,,Segundo\n3-3,Um,Dois")
	require.Len(t, result.Records, 3)

	assert.Equal(t, "Primeiro", result.Records[0].DisplayName, "empty later column keeps earlier value")
	assert.Equal(t, "Segundo", result.Records[1].DisplayName)
	assert.Equal(t, "Dois", result.Records[2].DisplayName, "later non-empty column overwrites")
}

func TestBuilder_ManyRows(t *testing.T) {
	faker := gofakeit.New(42)

	var b strings.Builder
	b.WriteString("EG,Nome Fantasia,GN\n")
	const rows = 200
	for i := 0; i < rows; i++ {
		code := faker.Numerify("#####-#")
		if i%10 == 0 {
			code = ""
		}
		b.WriteString(code + "," + strings.ReplaceAll(faker.Company(), ",", " ") + "," + faker.Name() + "\n")
	}

	result := NewBuilder(nil, nil).Build(b.String())
	assert.Equal(t, rows, result.Rows)
	assert.Equal(t, rows/10, result.Dropped)
	assert.Len(t, result.Records, rows-rows/10)
	for _, rec := range result.Records {
		assert.NotEmpty(t, rec.StoreCode)
		assert.NotEmpty(t, rec.ChainName)
		assert.Equal(t, store.BuildSearchKey(rec), rec.SearchKey)
	}
}

func TestBuilder_TeamNameColumnsKeepStoreName(t *testing.T) {
	text := "EG,Nome PDV,GN,Nome GN,Coordenador,Nome Coordenador,Share Espaço M-1,Share Espaço M0\n" +
		"174028-1,EPA Savassi,G1,Joao Silva,C1,Maria Souza,30,32"

	result := NewBuilder(nil, nil).Build(text)
	require.Len(t, result.Records, 1)
	assert.Empty(t, result.UnmappedHeaders)

	r := result.Records[0]
	assert.Equal(t, "EPA Savassi", r.DisplayName)
	assert.Equal(t, "EPA", r.ChainName)
	assert.Equal(t, "Joao Silva", r.ManagerName, "later non-empty column overwrites")
	assert.Equal(t, "Maria Souza", r.CoordinatorName)
	assert.Equal(t, "30", r.ShareSpacePrior)
	assert.Equal(t, "32", r.ShareSpaceCurrent)
	assert.Contains(t, r.SearchKey, "epa savassi")
}
