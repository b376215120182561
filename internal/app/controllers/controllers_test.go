package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/app/query"
	"github.com/huskybridge/marketplace/internal/app/services"
	"github.com/huskybridge/marketplace/internal/middleware"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	"github.com/huskybridge/marketplace/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterWithGin(); err != nil {
		panic(err)
	}
}

// stubPostService overrides only the methods a test needs. Calling any other
// method panics on the nil embedded interface.
type stubPostService struct {
	services.PostService
	create    func(actor *models.Actor, req *dto.PostRequest) (*dto.PostResponse, error)
	list      func(viewer *models.Actor, filters query.Filters, page, size int) (*dto.PostListResponse, error)
	selectFn  func(actor *models.Actor, postID, participantID int64) (*dto.PostResponse, error)
	cancel    func(actor *models.Actor, postID int64) (*dto.PostResponse, error)
	deletePst func(actor *models.Actor, postID int64) error
}

func (s *stubPostService) CreatePost(_ context.Context, actor *models.Actor, req *dto.PostRequest) (*dto.PostResponse, error) {
	return s.create(actor, req)
}

func (s *stubPostService) ListPosts(_ context.Context, viewer *models.Actor, filters query.Filters, page, size int) (*dto.PostListResponse, error) {
	return s.list(viewer, filters, page, size)
}

func (s *stubPostService) SelectParticipant(_ context.Context, actor *models.Actor, postID, participantID int64) (*dto.PostResponse, error) {
	return s.selectFn(actor, postID, participantID)
}

func (s *stubPostService) CancelCollaboration(_ context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error) {
	return s.cancel(actor, postID)
}

func (s *stubPostService) DeletePost(_ context.Context, actor *models.Actor, postID int64) error {
	return s.deletePst(actor, postID)
}

type stubReportService struct {
	services.ReportService
	report func(actor *models.Actor, postID int64, req *dto.CreateReportRequest) (*dto.ReportResponse, error)
	list   func(actor *models.Actor, resolution models.ReportResolution, page, size int) (*dto.ReportListResponse, error)
	keep   func(actor *models.Actor, reportID int64) (*dto.ReportResponse, error)
}

func (s *stubReportService) ReportPost(_ context.Context, actor *models.Actor, postID int64, req *dto.CreateReportRequest) (*dto.ReportResponse, error) {
	return s.report(actor, postID, req)
}

func (s *stubReportService) ListReports(_ context.Context, actor *models.Actor, resolution models.ReportResolution, page, size int) (*dto.ReportListResponse, error) {
	return s.list(actor, resolution, page, size)
}

func (s *stubReportService) ResolveKeep(_ context.Context, actor *models.Actor, reportID int64) (*dto.ReportResponse, error) {
	return s.keep(actor, reportID)
}

// asUser simulates JWTAuth by placing the actor's claims in the context
func asUser(id int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRoleType, string(role))
		c.Next()
	}
}

func doRequest(router *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error
}

func TestCreatePost(t *testing.T) {
	var gotActor *models.Actor
	svc := &stubPostService{
		create: func(actor *models.Actor, req *dto.PostRequest) (*dto.PostResponse, error) {
			gotActor = actor
			return &dto.PostResponse{ID: 99, Title: req.Title, Status: models.PostStatusPending}, nil
		},
	}
	router := gin.New()
	router.POST("/posts", asUser(7, models.RoleUser), NewPostController(svc).CreatePost)

	t.Run("created", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/posts", dto.PostRequest{
			Title: "Need a calculus tutor", PostType: "request", Category: "tutoring",
			Availability: "2025-03-01,2025-03-15",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, gotActor)
		assert.Equal(t, int64(7), gotActor.UserID)
		assert.Contains(t, w.Body.String(), `"success":true`)
		assert.Contains(t, w.Body.String(), "Need a calculus tutor")
	})

	t.Run("unknown category rejected before the service", func(t *testing.T) {
		gotActor = nil
		w := doRequest(router, http.MethodPost, "/posts", dto.PostRequest{
			Title: "Need a calculus tutor", PostType: "request", Category: "textbooks",
			Availability: "2025-03-01,2025-03-15",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, gotActor)
	})

	t.Run("missing availability rejected before the service", func(t *testing.T) {
		gotActor = nil
		w := doRequest(router, http.MethodPost, "/posts", dto.PostRequest{
			Title: "Need a calculus tutor", PostType: "request", Category: "tutoring",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, gotActor)
		assert.Contains(t, w.Body.String(), "availability")
	})
}

func TestListPostsBindsFilters(t *testing.T) {
	var got query.Filters
	var gotPage, gotSize int
	svc := &stubPostService{
		list: func(_ *models.Actor, filters query.Filters, page, size int) (*dto.PostListResponse, error) {
			got, gotPage, gotSize = filters, page, size
			return &dto.PostListResponse{}, nil
		},
	}
	router := gin.New()
	router.GET("/posts", NewPostController(svc).ListPosts)

	w := doRequest(router, http.MethodGet,
		"/posts?postType=offer&category=housing&category=tutoring&status=In%20Progress&dateRange=7d&sort=oldest&q=desk&page=2&pageSize=5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, models.PostTypeOffer, got.PostType)
	assert.Equal(t, []models.Category{models.CategoryHousing, models.CategoryTutoring}, got.Categories)
	assert.Equal(t, models.PostStatusInProgress, got.Status)
	assert.Equal(t, query.DateRangeLastWeek, got.DateRange)
	assert.Equal(t, query.SortOldest, got.Sort)
	assert.Equal(t, "desk", got.TitleQuery)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 5, gotSize)

	w = doRequest(router, http.MethodGet, "/posts?dateRange=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectParticipant(t *testing.T) {
	svc := &stubPostService{
		selectFn: func(_ *models.Actor, postID, participantID int64) (*dto.PostResponse, error) {
			if participantID == 3 {
				return nil, apperrors.ErrAlreadySelected
			}
			return &dto.PostResponse{ID: postID, Status: models.PostStatusInProgress}, nil
		},
	}
	router := gin.New()
	router.PUT("/posts/:id/participants/:userId/select", asUser(1, models.RoleUser), NewPostController(svc).SelectParticipant)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPut, "/posts/10/participants/2/select", nil).Code)

	w := doRequest(router, http.MethodPut, "/posts/10/participants/3/select", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeAlreadySelected, decodeError(t, w).Code)

	w = doRequest(router, http.MethodPut, "/posts/10/participants/abc/select", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "userId", decodeError(t, w).Field)
}

func TestDestructiveRoutesNeedConfirmation(t *testing.T) {
	deleted := 0
	svc := &stubPostService{
		deletePst: func(_ *models.Actor, postID int64) error {
			deleted++
			return nil
		},
		cancel: func(_ *models.Actor, postID int64) (*dto.PostResponse, error) {
			return nil, apperrors.ErrNotOwner
		},
	}
	ctrl := NewPostController(svc)
	router := gin.New()
	router.DELETE("/posts/:id", asUser(1, models.RoleUser), middleware.ConfirmAction(), ctrl.DeletePost)
	router.PUT("/posts/:id/cancel", asUser(1, models.RoleUser), middleware.ConfirmAction(), ctrl.CancelCollaboration)

	w := doRequest(router, http.MethodDelete, "/posts/10", nil)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.Equal(t, 0, deleted)

	w = doRequest(router, http.MethodDelete, "/posts/10", nil, dto.ConfirmActionHeader, "true")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, deleted)
	assert.Contains(t, w.Body.String(), "Post deleted")

	w = doRequest(router, http.MethodPut, "/posts/10/cancel", nil, dto.ConfirmActionHeader, "true")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeNotOwner, decodeError(t, w).Code)
}

func TestReportPostAnonymous(t *testing.T) {
	var gotActor *models.Actor
	called := false
	svc := &stubReportService{
		report: func(actor *models.Actor, postID int64, req *dto.CreateReportRequest) (*dto.ReportResponse, error) {
			called, gotActor = true, actor
			return &dto.ReportResponse{ID: 5, PostID: postID, Reason: models.ReportReason(req.Reason)}, nil
		},
	}
	router := gin.New()
	router.POST("/posts/:id/reports", NewReportController(svc, zerolog.Nop()).ReportPost)

	w := doRequest(router, http.MethodPost, "/posts/10/reports", dto.CreateReportRequest{Reason: "spam"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, called)
	assert.Nil(t, gotActor)

	w = doRequest(router, http.MethodPost, "/posts/10/reports", dto.CreateReportRequest{Reason: "boring"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModerationEndpoints(t *testing.T) {
	var gotResolution models.ReportResolution
	svc := &stubReportService{
		list: func(_ *models.Actor, resolution models.ReportResolution, page, size int) (*dto.ReportListResponse, error) {
			gotResolution = resolution
			return &dto.ReportListResponse{}, nil
		},
		keep: func(_ *models.Actor, reportID int64) (*dto.ReportResponse, error) {
			return nil, apperrors.NewInvalidStateError("report is already resolved")
		},
	}
	ctrl := NewReportController(svc, zerolog.Nop())
	router := gin.New()
	router.GET("/reports", asUser(1, models.RoleAdmin), ctrl.ListReports)
	router.POST("/reports/:reportId/keep", asUser(1, models.RoleAdmin), ctrl.KeepPost)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/reports?resolution=open", nil).Code)
	assert.Equal(t, models.ReportResolutionOpen, gotResolution)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/reports?resolution=maybe", nil).Code)

	w := doRequest(router, http.MethodPost, "/reports/4/keep", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidState, decodeError(t, w).Code)
}
