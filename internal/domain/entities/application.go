package entities

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the hiring-pipeline state of a candidate application
type ApplicationStatus string

const (
	ApplicationStatusApplied      ApplicationStatus = "applied"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusReviewReady  ApplicationStatus = "review_ready"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusHired        ApplicationStatus = "hired"
)

// Application is the read model the pipeline needs from the recruiting side:
// who owns the interview and which role it is for.
type Application struct {
	ID               uuid.UUID         `json:"id" gorm:"type:uuid;primary_key"`
	OrgID            uuid.UUID         `json:"org_id" gorm:"type:uuid;not null;index"`
	OrganisationName string            `json:"organisation_name" gorm:"type:varchar(255)"`
	CandidateName    string            `json:"candidate_name" gorm:"type:varchar(255)"`
	RoleTitle        string            `json:"role_title" gorm:"type:varchar(255)"`
	Seniority        string            `json:"seniority" gorm:"type:varchar(50)"`
	Status           ApplicationStatus `json:"status" gorm:"type:varchar(30);not null;index"`
	CreatedAt        time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Application) TableName() string {
	return "applications"
}
