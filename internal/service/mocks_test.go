package service

import (
	"context"
	"mime/multipart"

	"accreditation-backend/internal/model"
	"accreditation-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockAccreditationRepo
type MockAccreditationRepo struct {
	mock.Mock
}

func (m *MockAccreditationRepo) Create(ctx context.Context, acc *model.Accreditation) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccreditationRepo) GetByID(ctx context.Context, id uint) (*model.Accreditation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Accreditation), args.Error(1)
}

func (m *MockAccreditationRepo) List(ctx context.Context, filter repository.ListFilter) ([]model.Accreditation, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Accreditation), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccreditationRepo) ListAll(ctx context.Context) ([]model.Accreditation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Accreditation), args.Error(1)
}

func (m *MockAccreditationRepo) ListByType(ctx context.Context, accType string) ([]model.Accreditation, error) {
	args := m.Called(ctx, accType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Accreditation), args.Error(1)
}

func (m *MockAccreditationRepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockAccreditationRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccreditationRepo) DeleteByType(ctx context.Context, accType string) (int64, error) {
	args := m.Called(ctx, accType)
	return args.Get(0).(int64), args.Error(1)
}

// MockFileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(file *multipart.FileHeader, field string) (string, error) {
	args := m.Called(file, field)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Remove(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockFileStore) Dir() string {
	args := m.Called()
	return args.String(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendSubmissionReceived(ctx context.Context, to, name string, cc []string, accType string) error {
	args := m.Called(ctx, to, name, cc, accType)
	return args.Error(0)
}

func (m *MockMailer) SendApproval(ctx context.Context, to, name string, cc []string) error {
	args := m.Called(ctx, to, name, cc)
	return args.Error(0)
}

func (m *MockMailer) SendRefusal(ctx context.Context, to, name, reason string, cc []string) error {
	args := m.Called(ctx, to, name, reason, cc)
	return args.Error(0)
}
