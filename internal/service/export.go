package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"accreditation-backend/internal/model"

	"github.com/xuri/excelize/v2"
)

// exportHeaders are the human-readable column labels, matching what the
// admin team expects to re-import.
var exportHeaders = []string{
	"ID", "Date de création", "Statut", "Nom complet", "Téléphone", "Email",
	"Rôle", "Ville Agence", "Manager Direct", "Directeur", "Animateur Réseau",
	"Date de début", "Code équipe", "Email gestionnaire", "Email RH",
	"Test fibre effectué", "Nom du mandataire", "Conditions acceptées",
}

// exportColWidths keeps the workbook readable without manual resizing.
var exportColWidths = []float64{5, 15, 12, 25, 15, 30, 15, 20, 25, 25, 25, 15, 12, 30, 30, 18, 25, 20}

func ouiNon(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}

func orDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func orEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func exportRow(acc *model.Accreditation) []string {
	return []string{
		fmt.Sprintf("%d", acc.ID),
		acc.CreatedAt.Format("02/01/2006"),
		acc.Status,
		acc.FullName,
		acc.Phone,
		acc.Email,
		acc.Role,
		orDash(acc.AgencyCity),
		orDash(acc.DirectManagerName),
		orDash(acc.DirectorName),
		orDash(acc.NetworkAnimatorName),
		acc.StartDate.Format("02/01/2006"),
		acc.TeamCode,
		acc.ManagerEmail,
		acc.HREmail,
		ouiNon(acc.FiberTestDone),
		orEmpty(acc.ProxyName),
		ouiNon(acc.TermsAccepted),
	}
}

func (s *accreditationService) exportRecords(ctx context.Context) ([]model.Accreditation, error) {
	accs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(accs) == 0 {
		return nil, ErrNoData
	}
	return accs, nil
}

// ExportCSV renders every record as UTF-8 CSV with a BOM so spreadsheet
// tools pick up the encoding.
func (s *accreditationService) ExportCSV(ctx context.Context) ([]byte, error) {
	accs, err := s.exportRecords(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for i := range accs {
		if err := w.Write(exportRow(&accs[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ExportExcel renders every record into a single-sheet XLSX workbook.
func (s *accreditationService) ExportExcel(ctx context.Context) ([]byte, error) {
	accs, err := s.exportRecords(ctx)
	if err != nil {
		return nil, err
	}

	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "Accréditations"
	if err := wb.SetSheetName(wb.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	for i, width := range exportColWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i := range accs {
		row := exportRow(&accs[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
