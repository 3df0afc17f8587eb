package store

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	storesSheet = "Lojas"
	chainsSheet = "Redes"
)

// exportColumns lists the exported headers with their accessor, in sheet order.
var exportColumns = []struct {
	header string
	value  func(Record) string
}{
	{"EG", func(r Record) string { return r.StoreCode }},
	{"Nome Fantasia", func(r Record) string { return r.DisplayName }},
	{"Rede", func(r Record) string { return r.ChainName }},
	{"GN", func(r Record) string { return r.ManagerName }},
	{"Coordenador", func(r Record) string { return r.CoordinatorName }},
	{"Segmento", func(r Record) string { return r.Segment }},
	{"Share de Espaço M-1", func(r Record) string { return r.ShareSpacePrior }},
	{"Share de Espaço M0", func(r Record) string { return r.ShareSpaceCurrent }},
	{"Share de Espaço vs M-1", func(r Record) string { return r.ShareSpaceDelta }},
	{"Share de Gelado M-1", func(r Record) string { return r.ShareColdPrior }},
	{"Share de Gelado M0", func(r Record) string { return r.ShareColdCurrent }},
	{"Share de Gelado vs M-1", func(r Record) string { return r.ShareColdDelta }},
	{"Ponto Extra", func(r Record) string { return r.ExtraDisplay }},
	{"Gôndola", func(r Record) string { return r.Gondola }},
	{"Base Foco", func(r Record) string { return r.BaseFocus }},
	{"Corona", func(r Record) string { return r.Corona }},
	{"Spaten", func(r Record) string { return r.Spaten }},
	{"Stella", func(r Record) string { return r.Stella }},
	{"Cerv TT Tend", func(r Record) string { return r.BeerTotalTrend }},
	{"Cerv vs LY", func(r Record) string { return r.BeerVsLastYear }},
	{"Cerv HE Tend", func(r Record) string { return r.BeerHETrend }},
	{"HE vs LY", func(r Record) string { return r.HEVsLastYear }},
	{"KPIs OK", func(r Record) string { return r.KPIsOK }},
	{"PTS", func(r Record) string { return r.Points }},
	{"DTQ HE", func(r Record) string { return r.HighlightHE }},
	{"Visita Sup", func(r Record) string { return r.SupervisorVisit }},
	{"Hardware", func(r Record) string { return r.Hardware }},
	{"Promotor", func(r Record) string { return r.Promoter }},
}

// ExportXLSX writes records and a chain summary as an Excel workbook.
func ExportXLSX(w io.Writer, records []Record, chains []ChainCount) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), storesSheet); err != nil {
		return fmt.Errorf("failed to name stores sheet: %w", err)
	}

	header := make([]any, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c.header
	}
	if err := f.SetSheetRow(storesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		row := make([]any, len(exportColumns))
		for j, c := range exportColumns {
			row[j] = c.value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(storesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write store %s: %w", r.StoreCode, err)
		}
	}

	if _, err := f.NewSheet(chainsSheet); err != nil {
		return fmt.Errorf("failed to create chains sheet: %w", err)
	}
	if err := f.SetSheetRow(chainsSheet, "A1", &[]any{"Rede", "Lojas"}); err != nil {
		return fmt.Errorf("failed to write chains header: %w", err)
	}
	for i, c := range chains {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(chainsSheet, cell, &[]any{c.Chain, c.Stores}); err != nil {
			return fmt.Errorf("failed to write chain %s: %w", c.Chain, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
