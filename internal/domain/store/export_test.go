package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	snap := testSnapshot()

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, snap.Records(), snap.Chains()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{storesSheet, chainsSheet}, f.GetSheetList())

	rows, err := f.GetRows(storesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "EG", rows[0][0])
	assert.Equal(t, "12345-6", rows[1][0])
	assert.Equal(t, "EPA Savassi", rows[1][1])

	chains, err := f.GetRows(chainsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Rede", "Lojas"}, {"EPA", "2"}, {"Super Nosso", "2"}}, chains)
}
