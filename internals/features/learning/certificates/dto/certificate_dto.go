package dto

import (
	"time"

	"github.com/google/uuid"

	credentialModel "credilink_backend/internals/features/learning/certificates/model"
)

type SubmitFinalTestRequest struct {
	// question index -> selected option index
	Answers map[int]int `json:"answers" validate:"required"`
}

type CredentialResponse struct {
	CredentialID uuid.UUID `json:"credential_id"`
	UserID       string    `json:"user_id"`
	CourseID     uuid.UUID `json:"course_id"`
	CourseName   string    `json:"course_name"`
	IssueDate    time.Time `json:"issue_date"`
	Skills       []string  `json:"skills"`
	Verified     bool      `json:"verified"`
	TxHash       *string   `json:"tx_hash,omitempty"`
	Issuer       string    `json:"issuer"`
	IssuerID     string    `json:"issuer_id"`
}

func NewCredentialResponse(m *credentialModel.CredentialModel) CredentialResponse {
	skills := m.CredentialSkills
	if skills == nil {
		skills = []string{}
	}
	return CredentialResponse{
		CredentialID: m.CredentialID,
		UserID:       m.CredentialUserID,
		CourseID:     m.CredentialCourseID,
		CourseName:   m.CredentialCourseName,
		IssueDate:    m.CredentialIssueDate,
		Skills:       skills,
		Verified:     m.CredentialVerified,
		TxHash:       m.CredentialTxHash,
		Issuer:       m.CredentialIssuer,
		IssuerID:     m.CredentialIssuerID,
	}
}

func NewCredentialResponses(models []credentialModel.CredentialModel) []CredentialResponse {
	out := make([]CredentialResponse, 0, len(models))
	for i := range models {
		out = append(out, NewCredentialResponse(&models[i]))
	}
	return out
}
