// Package ban implements the ban lifecycle and place-scoped approval engine.
// Every operation takes the caller's Actor explicitly, is checked against the
// authorization gate, runs as one all-or-nothing transaction and appends its
// audit entry inside that transaction.
package ban

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/audit"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/directory"
)

var (
	// ErrBanNotFound is returned when a ban record does not exist.
	ErrBanNotFound = errors.New("ban not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Service is the ban engine.
type Service struct {
	db  *gorm.DB
	dir *directory.Service
}

// NewService creates a new ban engine on top of the given database handle.
func NewService(db *gorm.DB, dir *directory.Service) *Service {
	return &Service{db: db, dir: dir}
}

// Get loads one ban record including its approvals and violation log.
func (s *Service) Get(id uint64) (*models.Ban, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var ban models.Ban

	err := s.db.
		Preload("Person").
		Preload("Approvals").
		Preload("Approvals.Place").
		Preload("Violations").
		First(&ban, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBanNotFound
	}

	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	return &ban, nil
}

// List returns ban records, optionally filtered by person and active flag.
func (s *Service) List(personID *uint64, activeOnly bool) ([]models.Ban, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	tx := s.db.Preload("Approvals").Preload("Person").Order("created_at DESC")

	if personID != nil {
		tx = tx.Where("person_id = ?", *personID)
	}

	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}

	var bans []models.Ban
	if err := tx.Find(&bans).Error; err != nil {
		return nil, apperr.Unavailable(err)
	}

	return bans, nil
}

// History returns the ban's audit entries in a stable total order.
func (s *Service) History(banID uint64, newestFirst bool) ([]models.AuditEntry, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	if err := s.mustExist(s.db, banID); err != nil {
		return nil, err
	}

	entries, err := audit.ListFor(s.db, banID, newestFirst)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	return entries, nil
}

// ActiveBanStatus is the quick membership check collaborators use without
// loading full records.
type ActiveBanStatus struct {
	IsBanned    bool `json:"isBanned"`
	ActiveCount int  `json:"activeCount"`
}

// ActiveStatus reports whether a person currently has active bans.
func (s *Service) ActiveStatus(personID uint64) (ActiveBanStatus, error) {
	if s.db == nil {
		return ActiveBanStatus{}, ErrDBNil
	}

	var count int64

	err := s.db.Model(&models.Ban{}).
		Where("person_id = ? AND is_active = ?", personID, true).
		Count(&count).Error
	if err != nil {
		return ActiveBanStatus{}, apperr.Unavailable(err)
	}

	return ActiveBanStatus{IsBanned: count > 0, ActiveCount: int(count)}, nil
}

// mustExist fails with ErrBanNotFound when the ban id is unknown.
func (s *Service) mustExist(tx *gorm.DB, banID uint64) error {
	var count int64

	if err := tx.Model(&models.Ban{}).Where("id = ?", banID).Count(&count).Error; err != nil {
		return apperr.Unavailable(err)
	}

	if count == 0 {
		return ErrBanNotFound
	}

	return nil
}

// lockBan loads the ban row under a FOR UPDATE lock so place-set checks and
// the mutation they guard see one consistent snapshot. SQLite has no row
// locks and serializes writers itself, so the clause is skipped there.
func lockBan(tx *gorm.DB, banID uint64) (*models.Ban, error) {
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ban models.Ban

	err := tx.First(&ban, banID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBanNotFound
	}

	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	return &ban, nil
}

// lockPerson takes a FOR UPDATE lock on the person row. Create has no ban row
// to lock yet, so concurrent creates for the same person serialize on the
// person instead; without it two creates could both pass the incident-number
// conflict check. Skipped on SQLite like lockBan.
func lockPerson(tx *gorm.DB, personID uint64) error {
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var person models.Person

	err := tx.First(&person, personID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("personId", "person does not exist")
	}

	if err != nil {
		return apperr.Unavailable(err)
	}

	return nil
}

// wrapTxErr keeps typed engine failures as-is and converts everything else,
// storage faults included, into UnavailableError.
func wrapTxErr(err error) error {
	if err == nil {
		return nil
	}

	if apperr.IsValidation(err) || apperr.IsConflict(err) || apperr.IsAuthorization(err) ||
		apperr.IsUnavailable(err) || errors.Is(err, ErrBanNotFound) {
		return err
	}

	return apperr.Unavailable(err)
}
