package model

import (
	"strings"
	"time"
)

// Accreditation types (domaine d'activité).
const (
	TypeFibre   = "Fibre"
	TypeEnergie = "Energie"
)

// Accreditation statuses.
const (
	StatusPending  = "En Cours"
	StatusApproved = "Approuvé"
	StatusRefused  = "Refusé"
)

// Roles accepted on the public form.
const (
	RoleVendeur         = "Vendeur"
	RoleManager         = "Manager"
	RoleDirecteur       = "Directeur"
	RoleAnimateurReseau = "Animateur Réseau"
)

// GVDTeamCode triggers the HR email override; GVDHREmail is the address
// forced onto every record whose team code matches, whatever the client sent.
const (
	GVDTeamCode = "GVD"
	GVDHREmail  = "accredgovad@ikmail.com"
)

// Accreditation represents one applicant's submission, the single entity
// of the system. Document *Path columns hold bare upload filenames, never
// directory components.
type Accreditation struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Type   string `gorm:"type:varchar(20);not null;default:'Fibre'" json:"type"`
	Status string `gorm:"type:varchar(20);not null;default:'En Cours'" json:"status"`

	FullName     string  `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone        string  `gorm:"type:varchar(30)" json:"phone"`
	Email        string  `gorm:"type:varchar(255);not null;index" json:"email"`
	Address      string  `gorm:"type:text" json:"address"`
	Role         string  `gorm:"type:varchar(50);not null;default:'Vendeur'" json:"role"`
	ContractType *string `gorm:"type:varchar(50)" json:"contract_type"`

	AgencyCity          *string `gorm:"type:varchar(255)" json:"agency_city"`
	DirectManagerName   *string `gorm:"type:varchar(255)" json:"direct_manager_name"`
	DirectorName        *string `gorm:"type:varchar(255)" json:"director_name"`
	NetworkAnimatorName *string `gorm:"type:varchar(255)" json:"network_animator_name"`

	StartDate     time.Time `gorm:"type:date" json:"start_date"`
	TeamCode      string    `gorm:"type:varchar(50)" json:"team_code"`
	ManagerEmail  string    `gorm:"type:varchar(255)" json:"manager_email"`
	HREmail       string    `gorm:"column:hr_email;type:varchar(255)" json:"hr_email"`
	FiberTestDone bool      `gorm:"not null;default:false" json:"fiber_test_done"`
	ProxyName     *string   `gorm:"type:varchar(255)" json:"proxy_name"`
	TermsAccepted bool      `gorm:"not null;default:false" json:"terms_accepted"`

	IDCardFrontPath  *string `gorm:"column:id_card_front_path;type:varchar(255)" json:"id_card_front_path"`
	IDCardBackPath   *string `gorm:"column:id_card_back_path;type:varchar(255)" json:"id_card_back_path"`
	PhotoPath        *string `gorm:"type:varchar(255)" json:"photo_path"`
	SignaturePath    *string `gorm:"type:varchar(255)" json:"signature_path"`
	SignedPDFPath    *string `gorm:"column:signed_pdf_path;type:varchar(255)" json:"signed_pdf_path"`
	SignedChartePath *string `gorm:"type:varchar(255)" json:"signed_charte_path"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName pins the historical table name.
func (Accreditation) TableName() string { return "accreditations" }

// NormalizeType maps arbitrary input to a valid accreditation type,
// defaulting to Fibre.
func NormalizeType(t string) string {
	if t == TypeEnergie {
		return TypeEnergie
	}
	return TypeFibre
}

// ValidType reports whether t is one of the enumerated types.
func ValidType(t string) bool {
	return t == TypeFibre || t == TypeEnergie
}

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRefused
}

// IsGVD reports whether the team code triggers the HR email override.
func IsGVD(teamCode string) bool {
	return strings.EqualFold(strings.TrimSpace(teamCode), GVDTeamCode)
}

// DocumentPaths lists the referenced upload filenames, skipping unset fields.
func (a *Accreditation) DocumentPaths() []string {
	var paths []string
	for _, p := range []*string{
		a.IDCardFrontPath, a.IDCardBackPath, a.PhotoPath,
		a.SignaturePath, a.SignedPDFPath, a.SignedChartePath,
	} {
		if p != nil && *p != "" {
			paths = append(paths, *p)
		}
	}
	return paths
}

// SanitizeDocumentPaths reduces every document reference to its bare
// filename. Legacy rows may contain full paths from either platform, so
// both separator styles are stripped.
func (a *Accreditation) SanitizeDocumentPaths() {
	for _, p := range []**string{
		&a.IDCardFrontPath, &a.IDCardBackPath, &a.PhotoPath,
		&a.SignaturePath, &a.SignedPDFPath, &a.SignedChartePath,
	} {
		if *p != nil {
			clean := BareFilename(**p)
			*p = &clean
		}
	}
}

// BareFilename strips any directory component, handling both '/' and '\'
// so values written on Windows hosts stay usable.
func BareFilename(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
