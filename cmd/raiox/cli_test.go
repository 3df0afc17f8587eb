package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const cliSheet = `EG,Nome PDV,Rede,GN,Coordenador,Share de Espaço M-1,Share de Espaço M0,Corona,Spaten,Stella
174028-1,Supermercado Bahamas Centro,,Ana Souza,Carlos Lima,30,35,SIM,SIM,Não
200002-3,EPA Savassi,,Ana Souza,,31,30,,,
200003-4,EPA Buritis,,Bruno Reis,,28,28,SIM,SIM,SIM
`

// withSheet points the global flags at a temp CSV and resets them afterwards.
func withSheet(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte(cliSheet), 0o644))

	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	sheetFile = path
	timeout = 5 * time.Second
	t.Cleanup(func() {
		sheetFile = ""
		askCode = ""
		storesChain = ""
		storesQuery = ""
		storesJSON = false
	})
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	err := fn(cmd, args)
	return out.String(), err
}

func TestAskCmd(t *testing.T) {
	withSheet(t)

	tests := []struct {
		name string
		code string
		args []string
		want string
	}{
		{name: "code in message", args: []string{"como", "está", "a", "loja", "174028-1?"}, want: "ANÁLISE RAIO-X | Supermercado Bahamas Centro"},
		{name: "code flag", code: "200002-3", args: []string{"tem ponto extra?"}, want: "ANÁLISE RAIO-X | EPA Savassi"},
		{name: "name with several matches", args: []string{"epa"}, want: "EPA Buritis"},
		{name: "product", args: []string{"corona"}, want: "Corona"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			askCode = tt.code
			out, err := run(t, runAsk, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestReportCmd(t *testing.T) {
	withSheet(t)

	out, err := run(t, runReport, "1740281")
	require.NoError(t, err)
	assert.Contains(t, out, "🎯 Gap: Stella")

	_, err = run(t, runReport, "99999-9")
	assert.Error(t, err)
}

func TestStoresCmd(t *testing.T) {
	withSheet(t)

	storesChain = "epa"
	out, err := run(t, runStores)
	require.NoError(t, err)
	assert.Contains(t, out, "EPA Savassi")
	assert.Contains(t, out, "EPA Buritis")
	assert.NotContains(t, out, "Bahamas")
	assert.Contains(t, out, "2 lojas")

	storesChain = ""
	storesQuery = "bruno"
	out, err = run(t, runStores)
	require.NoError(t, err)
	assert.Contains(t, out, "200003-4")
	assert.Contains(t, out, "1 lojas")
}

func TestChainsCmd(t *testing.T) {
	withSheet(t)

	out, err := run(t, runChains)
	require.NoError(t, err)
	assert.Regexp(t, `Bahamas\s+1`, out)
	assert.Regexp(t, `EPA\s+2`, out)
}

func TestExportCmd(t *testing.T) {
	withSheet(t)
	target := filepath.Join(t.TempDir(), "lojas.xlsx")

	out, err := run(t, runExport, target)
	require.NoError(t, err)
	assert.Contains(t, out, "3 lojas exportadas")

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Redes")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestMissingSheet(t *testing.T) {
	withSheet(t)
	sheetFile = filepath.Join(t.TempDir(), "missing.csv")

	_, err := run(t, runChains)
	assert.ErrorContains(t, err, "failed to load sheet")
}
