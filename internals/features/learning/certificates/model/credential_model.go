package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	IssuerName = "CrediLink+"
	IssuerID   = "credilink-system"
)

// DefaultSkills is the fallback tag set when a course has no module titles
// to derive skills from.
var DefaultSkills = []string{"blockchain", "web3"}

/* =============================================================================
   MODEL: credentials
   At most one credential per (user, course): the unique index backs the
   idempotency check in the certification service.
============================================================================= */
type CredentialModel struct {
	CredentialID       uuid.UUID `json:"credential_id" gorm:"column:credential_id;type:uuid;primaryKey"`
	CredentialUserID   string    `json:"credential_user_id" gorm:"column:credential_user_id;type:varchar(128);not null;uniqueIndex:uq_credential_user_course,priority:1"`
	CredentialCourseID uuid.UUID `json:"credential_course_id" gorm:"column:credential_course_id;type:uuid;not null;uniqueIndex:uq_credential_user_course,priority:2"`

	CredentialCourseName string     `json:"credential_course_name" gorm:"column:credential_course_name;type:varchar(180);not null"`
	CredentialIssueDate  time.Time  `json:"credential_issue_date" gorm:"column:credential_issue_date;not null"`
	CredentialExpiryDate *time.Time `json:"credential_expiry_date,omitempty" gorm:"column:credential_expiry_date"`

	CredentialSkills   datatypes.JSONSlice[string] `json:"credential_skills" gorm:"column:credential_skills"`
	CredentialVerified bool                        `json:"credential_verified" gorm:"column:credential_verified;not null;default:false"`
	CredentialTxHash   *string                     `json:"credential_tx_hash,omitempty" gorm:"column:credential_tx_hash;type:varchar(80)"`

	CredentialIssuer   string `json:"credential_issuer" gorm:"column:credential_issuer;type:varchar(80);not null"`
	CredentialIssuerID string `json:"credential_issuer_id" gorm:"column:credential_issuer_id;type:varchar(80);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (CredentialModel) TableName() string { return "credentials" }

func (m *CredentialModel) BeforeCreate(_ *gorm.DB) error {
	if m.CredentialID == uuid.Nil {
		m.CredentialID = uuid.New()
	}
	return nil
}
