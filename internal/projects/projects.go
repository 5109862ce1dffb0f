// Package projects holds the project, membership, API key and session
// models backing the analytics APIs.
package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ProjectNotFoundError represents an error when a project does not exist.
type ProjectNotFoundError struct {
	UUID string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project not found: %s", e.UUID)
}

// NewProjectNotFoundError creates a new ProjectNotFoundError
func NewProjectNotFoundError(uuid string) *ProjectNotFoundError {
	return &ProjectNotFoundError{UUID: uuid}
}

// Project represents a tracked site or application.
type Project struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        string    `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	OwnerUUID   string    `gorm:"size:36;index;not null" json:"owner_uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member links a user to a project. The owner also has a member row, so
// membership checks never special-case ownership.
type Member struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectUUID string    `gorm:"size:36;index:idx_project_user,unique;not null" json:"project_uuid"`
	UserUUID    string    `gorm:"size:36;index:idx_project_user,unique;not null" json:"user_uuid"`
	Role        string    `gorm:"size:32;default:'member'" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// APIKey guards the ingestion endpoint for a project.
type APIKey struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectUUID string    `gorm:"size:36;index;not null" json:"project_uuid"`
	PublicKey   string    `gorm:"size:64;uniqueIndex;not null" json:"public_key"`
	SecretKey   string    `gorm:"size:64;not null" json:"-"`
	Revoked     bool      `gorm:"default:false" json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is a minimal login session record used to resolve the requester
// identity on the read API. Issuance lives elsewhere.
type Session struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserUUID  string    `gorm:"size:36;index;not null" json:"user_uuid"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default gorm pluralization.
func (APIKey) TableName() string {
	return "project_api_keys"
}

// Repo provides read access to projects and related records.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// FindByUUID retrieves a project by its public UUID.
func (r *Repo) FindByUUID(ctx context.Context, projectUUID string) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).Where("uuid = ?", projectUUID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewProjectNotFoundError(projectUUID)
		}
		return nil, fmt.Errorf("querying project %s: %w", projectUUID, err)
	}
	return &project, nil
}

// IsMember reports whether the user belongs to the project's team.
func (r *Repo) IsMember(ctx context.Context, projectUUID, userUUID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Member{}).
		Where("project_uuid = ? AND user_uuid = ?", projectUUID, userUUID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("querying membership for project %s: %w", projectUUID, err)
	}
	return count > 0, nil
}

// FindAPIKey retrieves an active API key by its public part.
func (r *Repo) FindAPIKey(ctx context.Context, publicKey string) (*APIKey, error) {
	var key APIKey
	err := r.db.WithContext(ctx).
		Where("public_key = ? AND revoked = ?", publicKey, false).
		First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying api key: %w", err)
	}
	return &key, nil
}

// FindSession retrieves an unexpired session by token.
func (r *Repo) FindSession(ctx context.Context, token string, now time.Time) (*Session, error) {
	var session Session
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &session, nil
}
