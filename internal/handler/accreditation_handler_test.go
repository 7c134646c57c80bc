package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accreditation-backend/internal/model"
	"accreditation-backend/internal/service"
	"accreditation-backend/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAccreditationService
type MockAccreditationService struct {
	mock.Mock
}

func (m *MockAccreditationService) Submit(ctx context.Context, req service.SubmitRequest, files map[string]*multipart.FileHeader) (uint, error) {
	args := m.Called(ctx, req, files)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockAccreditationService) List(ctx context.Context, params pagination.Params, accType, status, search string) (*service.ListResult, error) {
	args := m.Called(ctx, params, accType, status, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockAccreditationService) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (*model.Accreditation, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Accreditation), args.Error(1)
}

func (m *MockAccreditationService) UpdateStatus(ctx context.Context, id uint, status, motif string) error {
	args := m.Called(ctx, id, status, motif)
	return args.Error(0)
}

func (m *MockAccreditationService) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccreditationService) DeleteByType(ctx context.Context, accType, password string) (*service.BulkDeleteResult, error) {
	args := m.Called(ctx, accType, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BulkDeleteResult), args.Error(1)
}

func (m *MockAccreditationService) Import(ctx context.Context, file *multipart.FileHeader, defaultType string) (*service.ImportResult, error) {
	args := m.Called(ctx, file, defaultType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

func (m *MockAccreditationService) ExportCSV(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAccreditationService) ExportExcel(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func setupRouter(svc service.AccreditationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAccreditationHandler(svc).RegisterRoutes(router.Group("/api"))
	return router
}

func TestListReturnsDataAndPagination(t *testing.T) {
	svc := new(MockAccreditationService)
	svc.On("List", mock.Anything, pagination.Params{Page: 2, Limit: 10, Offset: 10}, "Fibre", "all", "jean").
		Return(&service.ListResult{
			Data:       []model.Accreditation{{ID: 1, FullName: "Jean"}},
			Pagination: pagination.Meta{Total: 11, Page: 2, Limit: 10, TotalPages: 2},
		}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/submissions?page=2&limit=10&type=Fibre&status=all&search=jean", nil)
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Data       []model.Accreditation `json:"data"`
			Pagination pagination.Meta       `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Data, 1)
	assert.Equal(t, 2, body.Data.Pagination.TotalPages)
	svc.AssertExpectations(t)
}

func TestUpdateStatusErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrInvalidStatus, http.StatusBadRequest},
		{service.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		svc := new(MockAccreditationService)
		svc.On("UpdateStatus", mock.Anything, uint(12), "Refusé", "motif").Return(tc.err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PATCH", "/api/submissions/12/status",
			strings.NewReader(`{"status":"Refusé","motif":"motif"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, tc.code, w.Code)
	}
}

func TestUpdateRejectsBadID(t *testing.T) {
	svc := new(MockAccreditationService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/submissions/abc", strings.NewReader(`{"full_name":"X"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkDeleteForbidden(t *testing.T) {
	svc := new(MockAccreditationService)
	svc.On("DeleteByType", mock.Anything, "Energie", "wrong").Return(nil, service.ErrForbidden)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/types/Energie/submissions",
		strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBulkDeleteSuccess(t *testing.T) {
	svc := new(MockAccreditationService)
	svc.On("DeleteByType", mock.Anything, "Energie", "pw").
		Return(&service.BulkDeleteResult{Deleted: 3, FilesRemoved: 5}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/types/Energie/submissions",
		strings.NewReader(`{"password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":3`)
}

func TestExportCSVNoDataIs404(t *testing.T) {
	svc := new(MockAccreditationService)
	svc.On("ExportCSV", mock.Anything).Return(nil, service.ErrNoData)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/submissions/export/csv", nil)
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportCSVSetsAttachmentHeaders(t *testing.T) {
	svc := new(MockAccreditationService)
	svc.On("ExportCSV", mock.Anything).Return([]byte("ID\n1\n"), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/submissions/export/csv", nil)
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=accreditations_")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestSubmitReturnsCreatedID(t *testing.T) {
	svc := new(MockAccreditationService)
	svc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(uint(42), nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("full_name", "Jean Dupont"))
	require.NoError(t, mw.WriteField("email", "jean@example.com"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setupRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)
}

func TestSubmitInvalidFileIs400(t *testing.T) {
	svc := new(MockAccreditationService)
	svc.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(uint(0), service.ErrInvalidFile)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("full_name", "Jean"))
	require.NoError(t, mw.WriteField("email", "jean@example.com"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
