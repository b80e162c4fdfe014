package employee

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryEmployeeRepo struct {
	byID map[string]employee.Employee
}

func (m *memoryEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := m.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memoryEmployeeRepo) GetByMatricule(_ context.Context, matricule string) (employee.Employee, error) {
	for _, e := range m.byID {
		if e.Matricule == matricule {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m *memoryEmployeeRepo) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	for _, existing := range m.byID {
		if existing.Matricule == e.Matricule {
			return employee.Employee{}, employee.ErrMatriculeExists
		}
	}
	e.ID = uuid.NewString()
	m.byID[e.ID] = e
	return e, nil
}

func (m *memoryEmployeeRepo) Update(_ context.Context, e employee.Employee) error {
	if _, ok := m.byID[e.ID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	m.byID[e.ID] = e
	return nil
}

func (m *memoryEmployeeRepo) UpdatePhoto(_ context.Context, id string, photo *string) error {
	e, ok := m.byID[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.PhotoURL = photo
	m.byID[id] = e
	return nil
}

func (m *memoryEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryEmployeeRepo) List(context.Context, employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	out := make([]employee.Employee, 0, len(m.byID))
	for _, e := range m.byID {
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *memoryEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	all, _, _ := m.List(ctx, employee.EmployeeFilter{})
	return all, nil
}

func setup(t *testing.T) (employee.EmployeeService, *memoryEmployeeRepo, *storage.LocalStorage, *realtime.Hub) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	repo := &memoryEmployeeRepo{byID: map[string]employee.Employee{}}
	hub := realtime.NewHub()
	return NewEmployeeService(repo, file.NewFileService(local), hub), repo, local, hub
}

func validCreate() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Matricule:    " emp-001 ",
		FullName:     "Youssef Benali",
		Email:        strPtr(""),
		Position:     "Operator",
		Department:   "Production",
		ContractType: "CDI",
		HireDate:     "2024-01-15",
		BaseSalary:   decimal.NewFromInt(4500),
	}
}

func strPtr(s string) *string { return &s }

func samplePNG(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 40, 40))))
	return buf
}

func TestCreateEmployee(t *testing.T) {
	svc, _, _, hub := setup(t)
	changes, cancel := hub.Subscribe(realtime.TableEmployees)
	defer cancel()
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, validCreate())
	require.NoError(t, err)
	assert.Equal(t, "EMP-001", created.Matricule)
	assert.Nil(t, created.Email)
	assert.True(t, created.IsActive)
	assert.Equal(t, "2024-01-15", created.HireDate)

	got, err := svc.GetByMatricule(ctx, "emp-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.CreateEmployee(ctx, validCreate())
	assert.ErrorIs(t, err, employee.ErrMatriculeExists)

	c := <-changes
	assert.Equal(t, realtime.ActionInsert, c.Action)
	assert.Equal(t, created.ID, c.RecordID)
}

func TestUpdateEmployee_Deactivate(t *testing.T) {
	svc, repo, _, _ := setup(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, validCreate())
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID:           created.ID,
		FullName:     "Youssef Benali",
		Position:     "Supervisor",
		Department:   "Production",
		ContractType: "CDD",
		HireDate:     "2024-01-15",
		BaseSalary:   decimal.NewFromInt(5000),
		IsActive:     &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, employee.ContractCDD, repo.byID[created.ID].ContractType)
}

func TestUploadPhoto_ReplacesPrevious(t *testing.T) {
	svc, repo, local, _ := setup(t)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, validCreate())
	require.NoError(t, err)

	first, err := svc.UploadPhoto(ctx, employee.UploadPhotoRequest{EmployeeID: created.ID, File: samplePNG(t), Filename: "me.png", Size: 100})
	require.NoError(t, err)
	require.NotNil(t, first.PhotoURL)
	firstKey := *repo.byID[created.ID].PhotoURL
	assert.Equal(t, "http://files.test/"+firstKey, *first.PhotoURL)

	_, err = svc.UploadPhoto(ctx, employee.UploadPhotoRequest{EmployeeID: created.ID, File: samplePNG(t), Filename: "me2.png", Size: 100})
	require.NoError(t, err)

	exists, err := local.Exists(ctx, firstKey)
	require.NoError(t, err)
	assert.False(t, exists, "previous photo is removed")

	cleared, err := svc.DeletePhoto(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.PhotoURL)

	_, err = svc.DeletePhoto(ctx, created.ID)
	assert.ErrorIs(t, err, employee.ErrPhotoNotFound)
}

func TestUploadPhoto_RejectsUndecodable(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()
	created, err := svc.CreateEmployee(ctx, validCreate())
	require.NoError(t, err)

	_, err = svc.UploadPhoto(ctx, employee.UploadPhotoRequest{EmployeeID: created.ID, File: bytes.NewBufferString("nope"), Filename: "x.jpg", Size: 4})
	assert.ErrorIs(t, err, employee.ErrInvalidPhoto)
}

func TestBadge(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()
	created, err := svc.CreateEmployee(ctx, validCreate())
	require.NoError(t, err)

	data, err := svc.Badge(ctx, created.ID, 128)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	_, err = svc.Badge(ctx, "missing", 128)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeleteEmployee(t *testing.T) {
	svc, repo, _, _ := setup(t)
	ctx := context.Background()
	created, err := svc.CreateEmployee(ctx, validCreate())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, created.ID))
	assert.Empty(t, repo.byID)
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, created.ID), employee.ErrEmployeeNotFound)
}
