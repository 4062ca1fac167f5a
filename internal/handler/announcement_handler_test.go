package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-announcements/internal/models"
	"github.com/noah-isme/sma-announcements/internal/service"
	appErrors "github.com/noah-isme/sma-announcements/pkg/errors"
	"github.com/noah-isme/sma-announcements/pkg/response"
)

type announcementServiceMock struct {
	listResp    []models.Announcement
	listHit     bool
	listErr     error
	createResp  *models.Announcement
	createErr   error
	updateResp  *models.Announcement
	updateErr   error
	deleteErr   error
	lastCreate  service.CreateAnnouncementRequest
	lastUpdate  service.UpdateAnnouncementRequest
	lastID      string
	lastTeacher string
	activeCalls int
}

func (m *announcementServiceMock) List(ctx context.Context) ([]models.Announcement, bool, error) {
	return m.listResp, m.listHit, m.listErr
}

func (m *announcementServiceMock) ListActive(ctx context.Context) ([]models.Announcement, bool, error) {
	m.activeCalls++
	return m.listResp, m.listHit, m.listErr
}

func (m *announcementServiceMock) Create(ctx context.Context, req service.CreateAnnouncementRequest) (*models.Announcement, error) {
	m.lastCreate = req
	return m.createResp, m.createErr
}

func (m *announcementServiceMock) Update(ctx context.Context, id string, req service.UpdateAnnouncementRequest) (*models.Announcement, error) {
	m.lastID = id
	m.lastUpdate = req
	return m.updateResp, m.updateErr
}

func (m *announcementServiceMock) Delete(ctx context.Context, id, teacherUsername string) error {
	m.lastID = id
	m.lastTeacher = teacherUsername
	return m.deleteErr
}

func newAnnouncementRouter(svc announcementService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAnnouncementHandler(svc).Register(r)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAnnouncementHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := models.NewAnnouncementID()
	mockSvc := &announcementServiceMock{
		listResp: []models.Announcement{{ID: id, Title: "Exam Notice", ExpireDate: "2099-01-01"}},
		listHit:  true,
	}
	handler := NewAnnouncementHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/announcements/", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, id.String(), items[0]["id"])
	assert.Nil(t, items[0]["start_date"])
}

func TestAnnouncementHandlerListActiveEmpty(t *testing.T) {
	mockSvc := &announcementServiceMock{listResp: []models.Announcement{}}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/announcements/active", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 1, mockSvc.activeCalls)
}

func TestAnnouncementHandlerListFailure(t *testing.T) {
	mockSvc := &announcementServiceMock{
		listErr: appErrors.Clone(appErrors.ErrInternal, "failed to list announcements"),
	}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/announcements/", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to list announcements", decodeError(t, w).Detail)
}

func TestAnnouncementHandlerCreate(t *testing.T) {
	created := &models.Announcement{ID: models.NewAnnouncementID(), Title: "Exam Notice", Message: "Midterm moved", ExpireDate: "2099-01-01", CreatedBy: "mrs.smith"}
	mockSvc := &announcementServiceMock{createResp: created}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/announcements/?expire_date=2099-01-01&start_date=2098-12-01&teacher_username=mrs.smith",
		bytes.NewBufferString(`{"title":"Exam Notice","message":"Midterm moved"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Exam Notice", mockSvc.lastCreate.Title)
	assert.Equal(t, "Midterm moved", mockSvc.lastCreate.Message)
	assert.Equal(t, "2099-01-01", mockSvc.lastCreate.ExpireDate)
	require.NotNil(t, mockSvc.lastCreate.StartDate)
	assert.Equal(t, "2098-12-01", *mockSvc.lastCreate.StartDate)
	assert.Equal(t, "mrs.smith", mockSvc.lastCreate.TeacherUsername)

	var body models.Announcement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, created.ID, body.ID)
}

func TestAnnouncementHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &announcementServiceMock{}
	handler := NewAnnouncementHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/announcements/?expire_date=2099-01-01&teacher_username=mrs.smith", bytes.NewBufferString(`{"title":"x"`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeError(t, w).Code)
	assert.Empty(t, mockSvc.lastCreate.Title)
}

func TestAnnouncementHandlerCreateUnauthorized(t *testing.T) {
	mockSvc := &announcementServiceMock{createErr: appErrors.ErrUnauthorized}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/announcements/?expire_date=2099-01-01&teacher_username=ghost",
		bytes.NewBufferString(`{"title":"t","message":"m"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Authentication required", body.Detail)
	assert.Nil(t, mockSvc.lastCreate.StartDate)
}

func TestAnnouncementHandlerUpdate(t *testing.T) {
	id := models.NewAnnouncementID()
	mockSvc := &announcementServiceMock{updateResp: &models.Announcement{ID: id, Title: "New"}}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/announcements/"+id.String()+"?start_date=&teacher_username=mrs.smith",
		bytes.NewBufferString(`{"title":"New"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), mockSvc.lastID)
	require.NotNil(t, mockSvc.lastUpdate.Title)
	assert.Equal(t, "New", *mockSvc.lastUpdate.Title)
	assert.Nil(t, mockSvc.lastUpdate.Message)
	assert.Nil(t, mockSvc.lastUpdate.ExpireDate)
	require.NotNil(t, mockSvc.lastUpdate.StartDate)
	assert.Equal(t, "", *mockSvc.lastUpdate.StartDate)
	assert.Equal(t, "mrs.smith", mockSvc.lastUpdate.TeacherUsername)
}

func TestAnnouncementHandlerUpdateWithoutBody(t *testing.T) {
	mockSvc := &announcementServiceMock{updateErr: appErrors.Clone(appErrors.ErrValidation, "No updates provided")}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/announcements/65f1c2a9e4b0a1b2c3d4e5f6?teacher_username=mrs.smith", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No updates provided", decodeError(t, w).Detail)
	assert.Nil(t, mockSvc.lastUpdate.Title)
	assert.Nil(t, mockSvc.lastUpdate.StartDate)
}

func TestAnnouncementHandlerDelete(t *testing.T) {
	mockSvc := &announcementServiceMock{}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/announcements/65f1c2a9e4b0a1b2c3d4e5f6?teacher_username=mrs.smith", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Announcement deleted"}`, w.Body.String())
	assert.Equal(t, "65f1c2a9e4b0a1b2c3d4e5f6", mockSvc.lastID)
	assert.Equal(t, "mrs.smith", mockSvc.lastTeacher)
}

func TestAnnouncementHandlerDeleteNotFound(t *testing.T) {
	mockSvc := &announcementServiceMock{deleteErr: appErrors.Clone(appErrors.ErrNotFound, "Announcement not found")}
	r := newAnnouncementRouter(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/announcements/65f1c2a9e4b0a1b2c3d4e5f6?teacher_username=mrs.smith", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Announcement not found", body.Detail)
	assert.Equal(t, appErrors.ErrNotFound.Code, body.Code)
}
