package model

import (
	"time"

	"gorm.io/datatypes"
)

/* =============================================================================
   ENUM-like: user type ('student' | 'recruiter')
============================================================================= */
type UserType string

const (
	UserTypeStudent   UserType = "student"
	UserTypeRecruiter UserType = "recruiter"
)

func (t UserType) Valid() bool {
	return t == UserTypeStudent || t == UserTypeRecruiter
}

/* =============================================================================
   MODEL: users
   The primary key is the opaque identity key from the auth provider: either
   a Firebase-style auth UID or a wallet address. It is NOT a UUID.
============================================================================= */
type UserModel struct {
	UserID    string  `json:"user_id" gorm:"column:user_id;type:varchar(128);primaryKey"`
	UserName  *string `json:"user_name,omitempty" gorm:"column:user_name;type:varchar(120)"`
	UserEmail *string `json:"user_email,omitempty" gorm:"column:user_email;type:varchar(255);uniqueIndex"`
	UserImage *string `json:"user_image,omitempty" gorm:"column:user_image;type:text"`

	UserType         UserType `json:"user_type" gorm:"column:user_type;type:varchar(16);not null;default:'student'"`
	UserPasswordHash *string  `json:"-" gorm:"column:user_password_hash;type:varchar(100)"`

	UserWalletAddress  *string `json:"user_wallet_address,omitempty" gorm:"column:user_wallet_address;type:varchar(128)"`
	UserIsWeb3Connected bool   `json:"user_is_web3_connected" gorm:"column:user_is_web3_connected;not null;default:false"`

	UserEnrolledCourses  datatypes.JSONSlice[string] `json:"user_enrolled_courses" gorm:"column:user_enrolled_courses"`
	UserCompletedCourses datatypes.JSONSlice[string] `json:"user_completed_courses" gorm:"column:user_completed_courses"`
	UserCredentials      datatypes.JSONSlice[string] `json:"user_credentials" gorm:"column:user_credentials"`
	UserSkills           datatypes.JSONSlice[string] `json:"user_skills" gorm:"column:user_skills"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

/* ===================================================================
   Helper methods
=================================================================== */

func (m *UserModel) HasEnrolled(courseID string) bool {
	return containsString(m.UserEnrolledCourses, courseID)
}

// AddEnrolledCourse appends with set semantics; reports whether it changed.
func (m *UserModel) AddEnrolledCourse(courseID string) bool {
	if m.HasEnrolled(courseID) {
		return false
	}
	m.UserEnrolledCourses = append(m.UserEnrolledCourses, courseID)
	return true
}

func (m *UserModel) AddCompletedCourse(courseID string) bool {
	if containsString(m.UserCompletedCourses, courseID) {
		return false
	}
	m.UserCompletedCourses = append(m.UserCompletedCourses, courseID)
	return true
}

func (m *UserModel) AddCredential(credentialID string) {
	m.UserCredentials = append(m.UserCredentials, credentialID)
}

func (m *UserModel) DisplayName() string {
	if m.UserName != nil && *m.UserName != "" {
		return *m.UserName
	}
	return "Anonymous"
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
