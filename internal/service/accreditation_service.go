package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"accreditation-backend/internal/model"
	"accreditation-backend/internal/repository"
	"accreditation-backend/internal/storage"
	"accreditation-backend/pkg/pagination"

	"gorm.io/gorm"
)

// Sentinel errors mapped to HTTP statuses by the handler layer.
var (
	ErrNotFound         = errors.New("accreditation not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidType      = errors.New("invalid accreditation type")
	ErrNoFieldsToUpdate = errors.New("no valid fields to update")
	ErrForbidden        = errors.New("invalid admin password")
	ErrInvalidFile      = errors.New("fichier invalide")
	ErrNoData           = errors.New("no data to export")
)

// SubmitRequest carries the scalar fields of the public form. File parts
// travel separately as multipart headers.
type SubmitRequest struct {
	Type                string `form:"type"`
	FullName            string `form:"full_name" binding:"required"`
	Phone               string `form:"phone"`
	Email               string `form:"email" binding:"required"`
	Address             string `form:"address"`
	Role                string `form:"role"`
	ContractType        string `form:"contract_type"`
	AgencyCity          string `form:"agency_city"`
	DirectManagerName   string `form:"direct_manager_name"`
	DirectorName        string `form:"director_name"`
	NetworkAnimatorName string `form:"network_animator_name"`
	StartDate           string `form:"start_date"`
	TeamCode            string `form:"team_code"`
	ManagerEmail        string `form:"manager_email"`
	HREmail             string `form:"hr_email"`
	FiberTestDone       string `form:"fiber_test_done"`
	ProxyName           string `form:"proxy_name"`
	TermsAccepted       string `form:"terms_accepted"`
}

// ListResult is a page of sanitized records plus its pagination block.
type ListResult struct {
	Data       []model.Accreditation `json:"data"`
	Pagination pagination.Meta       `json:"pagination"`
}

// BulkDeleteResult reports how many records and files a type-scoped
// delete removed.
type BulkDeleteResult struct {
	Deleted      int64 `json:"deleted"`
	FilesRemoved int   `json:"files_removed"`
}

// AccreditationService defines the interface for business logic around
// accreditation records.
type AccreditationService interface {
	Submit(ctx context.Context, req SubmitRequest, files map[string]*multipart.FileHeader) (uint, error)
	List(ctx context.Context, params pagination.Params, accType, status, search string) (*ListResult, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (*model.Accreditation, error)
	UpdateStatus(ctx context.Context, id uint, status, motif string) error
	Delete(ctx context.Context, id uint) error
	DeleteByType(ctx context.Context, accType, password string) (*BulkDeleteResult, error)
	Import(ctx context.Context, file *multipart.FileHeader, defaultType string) (*ImportResult, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	ExportExcel(ctx context.Context) ([]byte, error)
}

type accreditationService struct {
	repo          repository.AccreditationRepository
	files         storage.FileStore
	mailer        Mailer
	adminPassword string
}

// NewAccreditationService returns a new instance of AccreditationService
func NewAccreditationService(repo repository.AccreditationRepository, files storage.FileStore, mailer Mailer, adminPassword string) AccreditationService {
	return &accreditationService{
		repo:          repo,
		files:         files,
		mailer:        mailer,
		adminPassword: adminPassword,
	}
}

// UploadFields enumerates the accepted multipart file parts. The image set
// additionally accepts PNG/JPEG; every field accepts PDF.
var UploadFields = []string{
	"id_card_front", "id_card_back", "photo", "signature", "signed_pdf", "signed_charte",
}

var imageUploadFields = map[string]bool{
	"signature":     true,
	"photo":         true,
	"id_card_front": true,
	"id_card_back":  true,
}

func allowedUpload(field, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "application/pdf" {
		return true
	}
	if imageUploadFields[field] {
		return ct == "image/png" || ct == "image/jpeg" || ct == "image/jpg"
	}
	return false
}

// validateUploads checks every part before anything is written, so a bad
// file rejects the whole submission.
func validateUploads(files map[string]*multipart.FileHeader) error {
	for _, field := range UploadFields {
		fh, ok := files[field]
		if !ok || fh == nil {
			continue
		}
		if !allowedUpload(field, fh.Header.Get("Content-Type")) {
			return fmt.Errorf("%w: le fichier %s doit être un PDF (ou une image pour la signature/photo)", ErrInvalidFile, field)
		}
	}
	return nil
}

// parseFormBool coerces the form's string representation of a boolean.
// Anything unrecognized is false.
func parseFormBool(s string) bool {
	return strings.EqualFold(s, "true") || s == "1"
}

// coerceBool handles the JSON-side representations seen on update payloads.
func coerceBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return parseFormBool(t)
	case float64:
		return t == 1
	case int:
		return t == 1
	default:
		return false
	}
}

// parseDate accepts the date layouts the form and admin table produce.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006", "2/1/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func (s *accreditationService) Submit(ctx context.Context, req SubmitRequest, files map[string]*multipart.FileHeader) (uint, error) {
	if err := validateUploads(files); err != nil {
		return 0, err
	}

	// GVD rule: team code wins over whatever hr_email the client sent.
	if model.IsGVD(req.TeamCode) {
		req.HREmail = model.GVDHREmail
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		startDate = time.Now()
	}

	acc := &model.Accreditation{
		Type:                model.NormalizeType(req.Type),
		Status:              model.StatusPending,
		FullName:            req.FullName,
		Phone:               req.Phone,
		Email:               req.Email,
		Address:             req.Address,
		Role:                req.Role,
		ContractType:        optional(req.ContractType),
		AgencyCity:          optional(req.AgencyCity),
		DirectManagerName:   optional(req.DirectManagerName),
		DirectorName:        optional(req.DirectorName),
		NetworkAnimatorName: optional(req.NetworkAnimatorName),
		StartDate:           startDate,
		TeamCode:            req.TeamCode,
		ManagerEmail:        req.ManagerEmail,
		HREmail:             req.HREmail,
		FiberTestDone:       parseFormBool(req.FiberTestDone),
		ProxyName:           optional(req.ProxyName),
		TermsAccepted:       parseFormBool(req.TermsAccepted),
	}
	if acc.Role == "" {
		acc.Role = model.RoleVendeur
	}

	var saved []string
	cleanup := func() {
		for _, name := range saved {
			if err := s.files.Remove(name); err != nil {
				log.Printf("cleanup of %s failed: %v", name, err)
			}
		}
	}

	for _, field := range UploadFields {
		fh, ok := files[field]
		if !ok || fh == nil {
			continue
		}
		name, err := s.files.Save(fh, field)
		if err != nil {
			cleanup()
			return 0, fmt.Errorf("saving %s: %w", field, err)
		}
		saved = append(saved, name)
		switch field {
		case "id_card_front":
			acc.IDCardFrontPath = &name
		case "id_card_back":
			acc.IDCardBackPath = &name
		case "photo":
			acc.PhotoPath = &name
		case "signature":
			acc.SignaturePath = &name
		case "signed_pdf":
			acc.SignedPDFPath = &name
		case "signed_charte":
			acc.SignedChartePath = &name
		}
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		cleanup()
		return 0, err
	}

	// Confirmation email is best-effort and never fails the submission.
	if s.mailer != nil {
		cc := FilterCC([]string{acc.ManagerEmail, acc.HREmail})
		if err := s.mailer.SendSubmissionReceived(ctx, acc.Email, acc.FullName, cc, acc.Type); err != nil {
			log.Printf("submission email for accreditation %d failed: %v", acc.ID, err)
		}
	}

	return acc.ID, nil
}

func (s *accreditationService) List(ctx context.Context, params pagination.Params, accType, status, search string) (*ListResult, error) {
	filter := repository.ListFilter{
		Type:   accType,
		Status: status,
		Search: search,
		Page:   params.Page,
		Limit:  params.Limit,
	}

	accs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Legacy rows may hold full paths; returned rows never do.
	for i := range accs {
		accs[i].SanitizeDocumentPaths()
	}
	if accs == nil {
		accs = []model.Accreditation{}
	}

	return &ListResult{
		Data:       accs,
		Pagination: params.BuildMeta(total),
	}, nil
}

// updatableFields is the fixed allow-list for partial updates. id,
// created_at, type and document paths are never client-writable here.
var updatableFields = map[string]bool{
	"full_name": true, "phone": true, "email": true, "address": true,
	"start_date": true, "role": true, "contract_type": true,
	"agency_city": true, "direct_manager_name": true, "director_name": true,
	"network_animator_name": true, "team_code": true, "manager_email": true,
	"hr_email": true, "fiber_test_done": true, "proxy_name": true,
	"terms_accepted": true, "status": true,
}

func (s *accreditationService) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (*model.Accreditation, error) {
	// GVD rule applies whenever the update carries a matching team code.
	if tc, ok := updates["team_code"].(string); ok && model.IsGVD(tc) {
		updates["hr_email"] = model.GVDHREmail
	}

	fields := make(map[string]interface{})
	for key, value := range updates {
		if !updatableFields[key] {
			continue
		}
		switch key {
		case "fiber_test_done", "terms_accepted":
			fields[key] = coerceBool(value)
		case "start_date":
			if str, ok := value.(string); ok {
				if t, err := parseDate(str); err == nil {
					fields[key] = t
					continue
				}
			}
			fields[key] = value
		default:
			fields[key] = value
		}
	}

	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	acc.SanitizeDocumentPaths()
	return acc, nil
}

func (s *accreditationService) UpdateStatus(ctx context.Context, id uint, status, motif string) error {
	if !model.ValidStatus(status) {
		return ErrInvalidStatus
	}

	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	oldStatus := acc.Status

	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return err
	}

	// Notify only on an actual transition; repeating the current status is
	// a no-op for email purposes.
	if oldStatus == status || s.mailer == nil {
		return nil
	}

	cc := FilterCC([]string{acc.ManagerEmail, acc.HREmail})
	switch status {
	case model.StatusApproved:
		if err := s.mailer.SendApproval(ctx, acc.Email, acc.FullName, cc); err != nil {
			log.Printf("approval email for accreditation %d failed: %v", id, err)
		}
	case model.StatusRefused:
		if err := s.mailer.SendRefusal(ctx, acc.Email, acc.FullName, motif, cc); err != nil {
			log.Printf("refusal email for accreditation %d failed: %v", id, err)
		}
	}

	return nil
}

func (s *accreditationService) Delete(ctx context.Context, id uint) error {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Files go first, best-effort; a missing file is not an error.
	for _, name := range acc.DocumentPaths() {
		if err := s.files.Remove(model.BareFilename(name)); err != nil {
			log.Printf("deleting file %s for accreditation %d failed: %v", name, id, err)
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *accreditationService) DeleteByType(ctx context.Context, accType, password string) (*BulkDeleteResult, error) {
	if password != s.adminPassword {
		return nil, ErrForbidden
	}
	if !model.ValidType(accType) {
		return nil, ErrInvalidType
	}

	accs, err := s.repo.ListByType(ctx, accType)
	if err != nil {
		return nil, err
	}
	if len(accs) == 0 {
		return nil, ErrNotFound
	}

	filesRemoved := 0
	for _, acc := range accs {
		for _, name := range acc.DocumentPaths() {
			if err := s.files.Remove(model.BareFilename(name)); err != nil {
				log.Printf("bulk delete: removing file %s failed: %v", name, err)
				continue
			}
			filesRemoved++
		}
	}

	deleted, err := s.repo.DeleteByType(ctx, accType)
	if err != nil {
		return nil, err
	}

	return &BulkDeleteResult{Deleted: deleted, FilesRemoved: filesRemoved}, nil
}
