package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"accreditation-backend/internal/model"

	"github.com/xuri/excelize/v2"
)

// ImportResult reports a batch import: one malformed row never aborts the
// remaining rows, it only lands in Errors.
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// importAliases maps each canonical field to the column labels accepted in
// an imported sheet, resolved first-match. Display labels mirror the export
// headers.
var importAliases = map[string][]string{
	"full_name":             {"full_name", "Nom complet", "Nom", "nom"},
	"phone":                 {"phone", "Téléphone", "telephone"},
	"email":                 {"email", "Email", "E-mail"},
	"address":               {"address", "Adresse"},
	"role":                  {"role", "Rôle"},
	"contract_type":         {"contract_type", "Type de contrat"},
	"agency_city":           {"agency_city", "Ville Agence"},
	"direct_manager_name":   {"direct_manager_name", "Manager Direct"},
	"director_name":         {"director_name", "Directeur"},
	"network_animator_name": {"network_animator_name", "Animateur Réseau"},
	"start_date":            {"start_date", "Date de début"},
	"team_code":             {"team_code", "Code équipe"},
	"manager_email":         {"manager_email", "Email gestionnaire"},
	"hr_email":              {"hr_email", "Email RH"},
	"fiber_test_done":       {"fiber_test_done", "Test fibre effectué"},
	"proxy_name":            {"proxy_name", "Nom du mandataire"},
	"terms_accepted":        {"terms_accepted", "Conditions acceptées"},
	"status":                {"status", "Statut"},
	"id_card_front_path":    {"id_card_front_path"},
	"id_card_back_path":     {"id_card_back_path"},
	"photo_path":            {"photo_path"},
	"signature_path":        {"signature_path"},
	"signed_pdf_path":       {"signed_pdf_path"},
	"signed_charte_path":    {"signed_charte_path"},
}

// resolveColumns maps canonical field names to column indexes using the
// first alias present in the header row.
func resolveColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, label := range header {
		index[strings.TrimSpace(label)] = i
	}
	cols := make(map[string]int)
	for field, aliases := range importAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}

func cellValue(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// excelEpoch is day zero of spreadsheet date serials.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseImportDate is deliberately forgiving: numeric cells are treated as
// spreadsheet serials, strings go through the usual layouts with a
// day/month/year retry for slash-delimited values, and anything else
// defaults to now instead of failing the row.
func parseImportDate(cell string) time.Time {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Now()
	}
	if serial, err := strconv.ParseFloat(cell, 64); err == nil && !strings.ContainsAny(cell, "/-") {
		days := int(math.Floor(serial))
		return excelEpoch.AddDate(0, 0, days)
	}
	if t, err := parseDate(cell); err == nil {
		return t
	}
	if parts := strings.Split(cell, "/"); len(parts) == 3 {
		day, errD := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		year, errY := strconv.Atoi(parts[2])
		if errD == nil && errM == nil && errY == nil && month >= 1 && month <= 12 {
			if year < 100 {
				year += 2000
			}
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Now()
}

// truthyLabel recognizes the accepted/done markers a sheet may carry.
func truthyLabel(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "oui", "true", "yes", "1", "x":
		return true
	}
	return false
}

// readRows extracts the raw rows of the uploaded sheet: CSV files via
// encoding/csv, anything else through the first sheet of an XLSX workbook.
func readRows(file *multipart.FileHeader) ([][]string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer src.Close()

	if strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		reader := csv.NewReader(src)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		// Strip a UTF-8 BOM left by spreadsheet tools.
		if len(rows) > 0 && len(rows[0]) > 0 {
			rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
		}
		return rows, nil
	}

	wb, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func (s *accreditationService) Import(ctx context.Context, file *multipart.FileHeader, defaultType string) (*ImportResult, error) {
	rows, err := readRows(file)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return &ImportResult{Errors: []string{}}, nil
	}

	cols := resolveColumns(rows[0])
	accType := model.NormalizeType(defaultType)
	result := &ImportResult{Errors: []string{}}

	for n, row := range rows[1:] {
		line := n + 2 // 1-based, after the header
		if err := s.importRow(ctx, row, cols, accType); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("ligne %d: %v", line, err))
			continue
		}
		result.Success++
	}

	return result, nil
}

func (s *accreditationService) importRow(ctx context.Context, row []string, cols map[string]int, accType string) error {
	fullName := cellValue(row, cols, "full_name")
	email := cellValue(row, cols, "email")
	if fullName == "" || email == "" {
		return fmt.Errorf("nom complet et email requis")
	}

	teamCode := cellValue(row, cols, "team_code")
	hrEmail := cellValue(row, cols, "hr_email")
	if model.IsGVD(teamCode) {
		hrEmail = model.GVDHREmail
	}

	role := cellValue(row, cols, "role")
	if role == "" {
		role = model.RoleVendeur
	}
	status := cellValue(row, cols, "status")
	if !model.ValidStatus(status) {
		status = model.StatusPending
	}

	sanitized := func(field string) *string {
		if v := cellValue(row, cols, field); v != "" {
			clean := model.BareFilename(v)
			return &clean
		}
		return nil
	}

	acc := &model.Accreditation{
		Type:                accType,
		Status:              status,
		FullName:            fullName,
		Phone:               cellValue(row, cols, "phone"),
		Email:               email,
		Address:             cellValue(row, cols, "address"),
		Role:                role,
		ContractType:        optional(cellValue(row, cols, "contract_type")),
		AgencyCity:          optional(cellValue(row, cols, "agency_city")),
		DirectManagerName:   optional(cellValue(row, cols, "direct_manager_name")),
		DirectorName:        optional(cellValue(row, cols, "director_name")),
		NetworkAnimatorName: optional(cellValue(row, cols, "network_animator_name")),
		StartDate:           parseImportDate(cellValue(row, cols, "start_date")),
		TeamCode:            teamCode,
		ManagerEmail:        cellValue(row, cols, "manager_email"),
		HREmail:             hrEmail,
		FiberTestDone:       truthyLabel(cellValue(row, cols, "fiber_test_done")),
		ProxyName:           optional(cellValue(row, cols, "proxy_name")),
		TermsAccepted:       truthyLabel(cellValue(row, cols, "terms_accepted")),
		IDCardFrontPath:     sanitized("id_card_front_path"),
		IDCardBackPath:      sanitized("id_card_back_path"),
		PhotoPath:           sanitized("photo_path"),
		SignaturePath:       sanitized("signature_path"),
		SignedPDFPath:       sanitized("signed_pdf_path"),
		SignedChartePath:    sanitized("signed_charte_path"),
	}

	return s.repo.Create(ctx, acc)
}
