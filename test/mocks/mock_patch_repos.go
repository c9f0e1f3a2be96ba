package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"upgrade-analyzer/internal/model"
)

// MockPatchRepository is a testify mock of repository.PatchRepository
type MockPatchRepository struct {
	mock.Mock
}

func (m *MockPatchRepository) CreatePatch(patch *model.Patch) error {
	args := m.Called(patch)
	return args.Error(0)
}

func (m *MockPatchRepository) GetPatchByChangeID(changeID string) (*model.Patch, error) {
	args := m.Called(changeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patch), args.Error(1)
}

func (m *MockPatchRepository) ListPatches(status string, limit int) ([]*model.Patch, error) {
	args := m.Called(status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Patch), args.Error(1)
}

func (m *MockPatchRepository) UpdatePatchStatus(changeID, status string) error {
	args := m.Called(changeID, status)
	return args.Error(0)
}

// MockBackupRepository is a testify mock of repository.BackupRepository
type MockBackupRepository struct {
	mock.Mock
}

func (m *MockBackupRepository) CreateBackup(backup *model.Backup) error {
	args := m.Called(backup)
	return args.Error(0)
}

func (m *MockBackupRepository) GetBackupsByChangeID(changeID string) ([]*model.Backup, error) {
	args := m.Called(changeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Backup), args.Error(1)
}

func (m *MockBackupRepository) DeleteBackupsByChangeID(changeID string) error {
	args := m.Called(changeID)
	return args.Error(0)
}

func (m *MockBackupRepository) GetBackupsOlderThan(cutoff time.Time) ([]*model.Backup, error) {
	args := m.Called(cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Backup), args.Error(1)
}

func (m *MockBackupRepository) DeleteBackup(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}
