package directory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oneclass/platform/config"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/services"
)

// MockSchoolRepository is a mock implementation of repositories.SchoolRepository
type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) Create(ctx context.Context, school *models.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

func (m *MockSchoolRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.School, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.School), args.Error(1)
}

func (m *MockSchoolRepository) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	args := m.Called(ctx, subdomain)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchoolRepository) List(ctx context.Context, limit, offset int) ([]*models.School, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.School), args.Error(1)
}

func (m *MockSchoolRepository) ListByStatus(ctx context.Context, status models.SchoolStatus, limit, offset int) ([]*models.School, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.School), args.Error(1)
}

func (m *MockSchoolRepository) Update(ctx context.Context, school *models.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) EnabledModules(ctx context.Context, schoolID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSchoolRepository) ModulesConfigured(ctx context.Context, schoolID uuid.UUID) (bool, error) {
	args := m.Called(ctx, schoolID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchoolRepository) SetModules(ctx context.Context, schoolID uuid.UUID, modules []string) error {
	args := m.Called(ctx, schoolID, modules)
	return args.Error(0)
}

func testDirectoryConfig() config.DirectoryConfig {
	return config.DirectoryConfig{
		CacheTTL:        time.Minute,
		CacheMaxEntries: 100,
	}
}

func newTestService(t *testing.T, schools *MockSchoolRepository) *Service {
	t.Helper()
	svc, err := NewService(schools, testDirectoryConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func testSchool(subdomain string) *models.School {
	return &models.School{
		ID:        uuid.New(),
		Name:      "Test School",
		Subdomain: subdomain,
		Status:    models.SchoolStatusActive,
		Tier:      models.TierBasic,
	}
}

func TestBySubdomain(t *testing.T) {
	t.Run("loads school and modules from storage", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		svc := newTestService(t, schools)

		school := testSchool("stmarys")
		schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil)
		schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)

		record, err := svc.BySubdomain(context.Background(), "stmarys")
		require.NoError(t, err)

		assert.Equal(t, school.ID, record.School.ID)
		assert.Equal(t, []string{models.ModuleSIS}, record.Modules)
		assert.True(t, record.ModuleEnabled(models.ModuleSIS))
		assert.False(t, record.ModuleEnabled(models.ModuleFinance))
		schools.AssertExpectations(t)
	})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		svc := newTestService(t, schools)

		school := testSchool("stmarys")
		schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil).Once()
		schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil).Once()

		first, err := svc.BySubdomain(context.Background(), "stmarys")
		require.NoError(t, err)

		// Ristretto admits entries asynchronously.
		svc.cache.Wait()

		second, err := svc.BySubdomain(context.Background(), "stmarys")
		require.NoError(t, err)
		assert.Same(t, first, second)
		schools.AssertExpectations(t)
	})

	t.Run("loading by subdomain also primes the id key", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		svc := newTestService(t, schools)

		school := testSchool("stmarys")
		schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil).Once()
		schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil).Once()

		_, err := svc.BySubdomain(context.Background(), "stmarys")
		require.NoError(t, err)
		svc.cache.Wait()

		record, err := svc.ByID(context.Background(), school.ID)
		require.NoError(t, err)
		assert.Equal(t, school.ID, record.School.ID)
		schools.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown subdomain passes the not-found through", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		svc := newTestService(t, schools)

		schools.On("GetBySubdomain", mock.Anything, "missing").Return(nil, services.ErrSchoolNotFound)

		_, err := svc.BySubdomain(context.Background(), "missing")
		assert.ErrorIs(t, err, services.ErrSchoolNotFound)
	})

	t.Run("suspended schools are returned, not filtered", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		svc := newTestService(t, schools)

		school := testSchool("suspended")
		school.Status = models.SchoolStatusSuspended
		schools.On("GetBySubdomain", mock.Anything, "suspended").Return(school, nil)
		schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil)

		record, err := svc.BySubdomain(context.Background(), "suspended")
		require.NoError(t, err)
		assert.Equal(t, models.SchoolStatusSuspended, record.School.Status)
	})
}

func TestDefaultModuleFallback(t *testing.T) {
	t.Run("unconfigured school gets the default set", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		svc := newTestService(t, schools)

		school := testSchool("fresh")
		schools.On("GetBySubdomain", mock.Anything, "fresh").Return(school, nil)
		schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{}, nil)
		schools.On("ModulesConfigured", mock.Anything, school.ID).Return(false, nil)

		record, err := svc.BySubdomain(context.Background(), "fresh")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultModules(), record.Modules)
	})

	t.Run("deliberately empty configuration stays empty", func(t *testing.T) {
		schools := new(MockSchoolRepository)
		svc := newTestService(t, schools)

		school := testSchool("locked")
		schools.On("GetBySubdomain", mock.Anything, "locked").Return(school, nil)
		schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{}, nil)
		schools.On("ModulesConfigured", mock.Anything, school.ID).Return(true, nil)

		record, err := svc.BySubdomain(context.Background(), "locked")
		require.NoError(t, err)
		assert.Empty(t, record.Modules)
		assert.False(t, record.ModuleEnabled(models.ModuleSIS))
	})
}

func TestByID(t *testing.T) {
	schools := new(MockSchoolRepository)
	svc := newTestService(t, schools)

	school := testSchool("stmarys")
	schools.On("GetByID", mock.Anything, school.ID).Return(school, nil).Once()
	schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil).Once()

	record, err := svc.ByID(context.Background(), school.ID)
	require.NoError(t, err)
	assert.Equal(t, school.ID, record.School.ID)

	svc.cache.Wait()

	again, err := svc.ByID(context.Background(), school.ID)
	require.NoError(t, err)
	assert.Same(t, record, again)
	schools.AssertExpectations(t)
}

func TestInvalidate(t *testing.T) {
	schools := new(MockSchoolRepository)
	svc := newTestService(t, schools)

	school := testSchool("stmarys")
	schools.On("GetBySubdomain", mock.Anything, "stmarys").Return(school, nil).Twice()
	schools.On("EnabledModules", mock.Anything, school.ID).Return([]string{models.ModuleSIS}, nil).Twice()

	_, err := svc.BySubdomain(context.Background(), "stmarys")
	require.NoError(t, err)
	svc.cache.Wait()

	svc.Invalidate(school.ID, "stmarys")
	svc.cache.Wait()

	_, err = svc.BySubdomain(context.Background(), "stmarys")
	require.NoError(t, err)
	schools.AssertExpectations(t)
}
