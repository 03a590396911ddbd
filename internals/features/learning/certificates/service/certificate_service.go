package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	credentialModel "credilink_backend/internals/features/learning/certificates/model"
	"credilink_backend/internals/helpers/apperr"
)

type CertificateService struct {
	DB *gorm.DB
}

func NewCertificateService(db *gorm.DB) *CertificateService {
	return &CertificateService{DB: db}
}

func (s *CertificateService) GetByID(ctx context.Context, credentialID uuid.UUID) (*credentialModel.CredentialModel, error) {
	var credential credentialModel.CredentialModel
	if err := s.DB.WithContext(ctx).
		First(&credential, "credential_id = ?", credentialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("certificate not found")
		}
		return nil, err
	}
	return &credential, nil
}

func (s *CertificateService) ListByUser(ctx context.Context, userID string) ([]credentialModel.CredentialModel, error) {
	var credentials []credentialModel.CredentialModel
	if err := s.DB.WithContext(ctx).
		Where("credential_user_id = ?", userID).
		Order("credential_issue_date DESC").
		Find(&credentials).Error; err != nil {
		return nil, err
	}
	return credentials, nil
}

/* =========================================================
   Legacy migration: one-shot batch copy from the old
   "certificates" table into "credentials". Runtime reads
   never consult the legacy table.
========================================================= */

type legacyCertificateRow struct {
	UserID     string    `gorm:"column:user_id"`
	CourseID   uuid.UUID `gorm:"column:course_id"`
	CourseName string    `gorm:"column:course_name"`
	IssuedAt   time.Time `gorm:"column:issued_at"`
}

// MigrateLegacyCertificates copies legacy rows, skipping pairs that already
// have a credential. Returns the number of rows migrated.
func (s *CertificateService) MigrateLegacyCertificates(ctx context.Context) (int, error) {
	db := s.DB.WithContext(ctx)

	if !hasTable(db, "certificates") {
		return 0, nil
	}

	var rows []legacyCertificateRow
	if err := db.Table("certificates").Scan(&rows).Error; err != nil {
		return 0, err
	}

	migrated := 0
	for _, row := range rows {
		credential := credentialModel.CredentialModel{
			CredentialUserID:     row.UserID,
			CredentialCourseID:   row.CourseID,
			CredentialCourseName: row.CourseName,
			CredentialIssueDate:  row.IssuedAt,
			CredentialSkills:     credentialModel.DefaultSkills,
			CredentialVerified:   false,
			CredentialIssuer:     credentialModel.IssuerName,
			CredentialIssuerID:   credentialModel.IssuerID,
		}
		if err := db.Create(&credential).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // already migrated (or issued fresh) for this pair
			}
			return migrated, err
		}
		migrated++
	}
	log.Printf("[INFO] legacy certificate migration: %d of %d rows copied", migrated, len(rows))
	return migrated, nil
}

func hasTable(db *gorm.DB, table string) bool {
	return db.Migrator().HasTable(table)
}
