package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agua24-backend/internal/model"
)

// Store defines the interface for all database operations. Each write is
// atomic per entity; there are no multi-entity transactions.
type Store interface {
	DB() *gorm.DB

	// Users
	GetUsers(ctx context.Context) ([]model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUsersByAssignedMachine(ctx context.Context, machineID string) ([]model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	SaveUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Machines
	GetMachines(ctx context.Context) ([]model.Machine, error)
	GetMachineByID(ctx context.Context, id string) (*model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	SaveMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, id string) error

	// Reports
	GetAllReports(ctx context.Context) ([]model.Report, error)
	GetReportsByMachine(ctx context.Context, machineID string, limit int) ([]model.Report, error)
	GetReportByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	CreateReport(ctx context.Context, r *model.Report) error
	SaveReport(ctx context.Context, r *model.Report) error
	DeleteReport(ctx context.Context, id uuid.UUID) error

	// Visits
	GetVisits(ctx context.Context) ([]model.Visit, error)
	GetVisitsByMachine(ctx context.Context, machineID string) ([]model.Visit, error)
	GetVisitsByTechnician(ctx context.Context, technicianID uuid.UUID) ([]model.Visit, error)
	GetVisitByID(ctx context.Context, id uuid.UUID) (*model.Visit, error)
	CreateVisit(ctx context.Context, v *model.Visit) error
	DeleteVisit(ctx context.Context, id uuid.UUID) error
	VisitExists(ctx context.Context, machineID string, date time.Time) (bool, error)

	// Push subscriptions
	SubscriptionsForMachine(ctx context.Context, machineID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// --- Users ---

func (s *gormStore) GetUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, classify(err)
	}
	return users, nil
}

func (s *gormStore) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (s *gormStore) GetUsersByAssignedMachine(ctx context.Context, machineID string) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Where("assigned_machine_id = ?", machineID).Order("created_at").Find(&users).Error; err != nil {
		return nil, classify(err)
	}
	return users, nil
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	return classify(s.db.WithContext(ctx).Create(u).Error)
}

func (s *gormStore) SaveUser(ctx context.Context, u *model.User) error {
	return classify(s.db.WithContext(ctx).Save(u).Error)
}

func (s *gormStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Machines ---

func (s *gormStore) GetMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("id").Find(&machines).Error; err != nil {
		return nil, classify(err)
	}
	return machines, nil
}

func (s *gormStore) GetMachineByID(ctx context.Context, id string) (*model.Machine, error) {
	var m model.Machine
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	return classify(s.db.WithContext(ctx).Create(m).Error)
}

func (s *gormStore) SaveMachine(ctx context.Context, m *model.Machine) error {
	return classify(s.db.WithContext(ctx).Save(m).Error)
}

// DeleteMachine removes the machine row only. Historical reports keep their
// machine id on purpose; referential cleanup is an explicit non-goal.
func (s *gormStore) DeleteMachine(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Machine{}, "id = ?", id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Reports ---

// GetAllReports returns every report, newest first.
func (s *gormStore) GetAllReports(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, classify(err)
	}
	return reports, nil
}

// GetReportsByMachine returns a machine's reports newest first, optionally
// limited. A limit <= 0 means no limit.
func (s *gormStore) GetReportsByMachine(ctx context.Context, machineID string, limit int) ([]model.Report, error) {
	q := s.db.WithContext(ctx).Where("machine_id = ?", machineID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var reports []model.Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, classify(err)
	}
	return reports, nil
}

func (s *gormStore) GetReportByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var r model.Report
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &r, nil
}

func (s *gormStore) CreateReport(ctx context.Context, r *model.Report) error {
	return classify(s.db.WithContext(ctx).Create(r).Error)
}

func (s *gormStore) SaveReport(ctx context.Context, r *model.Report) error {
	return classify(s.db.WithContext(ctx).Save(r).Error)
}

func (s *gormStore) DeleteReport(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.Report{}, "id = ?", id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Visits ---

func (s *gormStore) GetVisits(ctx context.Context) ([]model.Visit, error) {
	var visits []model.Visit
	if err := s.db.WithContext(ctx).Order("date").Find(&visits).Error; err != nil {
		return nil, classify(err)
	}
	return visits, nil
}

func (s *gormStore) GetVisitsByMachine(ctx context.Context, machineID string) ([]model.Visit, error) {
	var visits []model.Visit
	if err := s.db.WithContext(ctx).Where("machine_id = ?", machineID).Order("date").Find(&visits).Error; err != nil {
		return nil, classify(err)
	}
	return visits, nil
}

func (s *gormStore) GetVisitsByTechnician(ctx context.Context, technicianID uuid.UUID) ([]model.Visit, error) {
	var visits []model.Visit
	if err := s.db.WithContext(ctx).Where("technician_id = ?", technicianID).Order("date").Find(&visits).Error; err != nil {
		return nil, classify(err)
	}
	return visits, nil
}

func (s *gormStore) GetVisitByID(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	var v model.Visit
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &v, nil
}

func (s *gormStore) CreateVisit(ctx context.Context, v *model.Visit) error {
	v.Date = model.DateOnly(v.Date)
	return classify(s.db.WithContext(ctx).Create(v).Error)
}

func (s *gormStore) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&model.Visit{}, "id = ?", id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// VisitExists reports whether a visit is already scheduled for the machine
// on the given calendar date.
func (s *gormStore) VisitExists(ctx context.Context, machineID string, date time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Visit{}).
		Where("machine_id = ? AND date = ?", machineID, model.DateOnly(date)).
		Count(&count).Error
	if err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

// --- Push subscriptions ---

func (s *gormStore) SubscriptionsForMachine(ctx context.Context, machineID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_machine_mapping smm ON smm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("smm.machine_id = ?", machineID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for machine %s: %w", machineID, classify(err))
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return classify(s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error)
}
