package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// Money goes out as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

/* =============================== Enums ================================== */

// CaseStatus defines lifecycle states for a case.
type CaseStatus string

const (
	CaseActive     CaseStatus = "active"
	CaseInProgress CaseStatus = "in_progress"
	CaseCompleted  CaseStatus = "completed"
	CaseCancelled  CaseStatus = "cancelled"
)

// PaymentStatus tracks how much of the contracted amount the client has paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Priority of a case.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// CommissionType selects how a commission amount is derived.
type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

// LawyerStatus marks whether a lawyer can take new assignments.
type LawyerStatus string

const (
	LawyerActive   LawyerStatus = "active"
	LawyerInactive LawyerStatus = "inactive"
)

/* =============================== Entities =============================== */

// Client is the party that contracts a case.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// LegalService is a catalog entry used for default pricing of new cases.
type LegalService struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                 string          `gorm:"not null" json:"name"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	BasePrice            decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"base_price"`
	CommissionType       CommissionType  `gorm:"type:varchar(20);not null;default:'percentage'" json:"commission_type"`
	CommissionPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"commission_percentage"`
	IsActive             bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Lawyer is a professional who can be assigned to cases.
type Lawyer struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string                      `gorm:"not null" json:"name"`
	Email       string                      `json:"email"`
	Phone       string                      `json:"phone"`
	Specialties datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"specialties"`
	Status      LawyerStatus                `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	HireDate    *time.Time                  `gorm:"type:date" json:"hire_date"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// Case is a contracted engagement.
//
// LawyerID, CommissionPaid and (when no CaseLawyers exist) CommissionAmount
// hold the legacy single-lawyer assignment. Rows in CaseLawyers always win.
type Case struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseNumber       string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"case_number"`
	ClientID         *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	ServiceID        *uuid.UUID      `gorm:"type:uuid;index" json:"service_id"`
	LawyerID         *uuid.UUID      `gorm:"type:uuid;index" json:"lawyer_id"`
	Status           CaseStatus      `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	PaymentStatus    PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Priority         Priority        `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"commission_amount"`
	CommissionPaid   bool            `gorm:"not null;default:false" json:"commission_paid"`
	StartDate        time.Time       `gorm:"type:date;not null;default:CURRENT_DATE" json:"start_date"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relations
	Client      *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Service     *LegalService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Lawyer      *Lawyer       `gorm:"foreignKey:LawyerID" json:"lawyer,omitempty"`
	CaseLawyers []CaseLawyer  `gorm:"constraint:OnDelete:CASCADE" json:"case_lawyers"`
}

// CaseLawyer assigns one lawyer to one case with a commission snapshot.
type CaseLawyer struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID               uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_case_lawyer" json:"case_id"`
	LawyerID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_case_lawyer;index" json:"lawyer_id"`
	CommissionType       CommissionType  `gorm:"type:varchar(20);not null" json:"commission_type"`
	CommissionPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"commission_percentage"`
	CommissionAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"commission_amount"`
	CommissionPaid       bool            `gorm:"not null;default:false;index" json:"commission_paid"`
	PaidAt               *time.Time      `json:"paid_at"`
	CreatedAt            time.Time       `json:"created_at"`

	Lawyer *Lawyer `gorm:"foreignKey:LawyerID" json:"lawyer,omitempty"`
}

// AppSetting is a key/value pair editable from the settings screen.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CaseHistory is an audit log entry for important case changes.
type CaseHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CaseID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"type:uuid;index"`           // zero for system jobs
	Action    string    `gorm:"type:varchar(50);not null"` // e.g. created, updated, allocation_added, commission_liquidated
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ReportExport records a document uploaded to object storage.
type ReportExport struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind      string    `gorm:"type:varchar(40);not null" json:"kind"`
	Format    string    `gorm:"type:varchar(10);not null" json:"format"`
	ObjectKey string    `gorm:"not null" json:"object_key"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every table owned by the service, in dependency order.
func All() []any {
	return []any{
		&Client{}, &LegalService{}, &Lawyer{}, &Case{}, &CaseLawyer{},
		&AppSetting{}, &CaseHistory{}, &ReportExport{},
	}
}
