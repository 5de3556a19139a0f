package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// staticAuthenticator resolves the token "user" or "tutor" to a fixed identity
type staticAuthenticator struct{}

func (staticAuthenticator) Authenticate(ctx context.Context, authorization string) (*domain.Identity, error) {
	switch authorization {
	case "":
		return nil, domain.ErrMissingToken
	case "Bearer user":
		u := domain.NewUser("ana", "ana@example.com", domain.ProviderLocal, testNow)
		u.ID = "user-1"
		return domain.UserIdentity(u), nil
	case "Bearer tutor":
		return &domain.Identity{Kind: domain.KindTutor, Tutor: &domain.Tutor{ID: "tutor-1", Name: "Besa", Email: "besa@example.com"}}, nil
	}
	return nil, domain.ErrInvalidToken
}

type stubUserService struct {
	useAIResult   *dto.UseAIResponse
	useAIDecision *domain.Decision
	useAIErr      error
	uploadErr     error
	uploaded      *service.Upload
	profileErr    error
}

func (s *stubUserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	u := domain.NewUser("ana", "ana@example.com", domain.ProviderLocal, testNow)
	u.ID = userID
	return u, nil
}

func (s *stubUserService) UseAI(ctx context.Context, userID, prompt string) (*dto.UseAIResponse, *domain.Decision, error) {
	return s.useAIResult, s.useAIDecision, s.useAIErr
}

func (s *stubUserService) UploadProfilePicture(ctx context.Context, userID string, upload *service.Upload) (string, error) {
	s.uploaded = upload
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "http://cdn.test/profile_pictures/p.png", nil
}

func (s *stubUserService) DeleteProfilePicture(ctx context.Context, userID string) error {
	return nil
}

type stubPlanService struct {
	err error
}

func (s *stubPlanService) ChangePlan(ctx context.Context, userID, plan string, source domain.PlanChangeSource) (*domain.QuotaState, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, err := domain.ParsePlan(plan)
	if err != nil {
		return nil, err
	}
	q := domain.NewQuotaState(p, testNow)
	return &q, nil
}

type stubSubscriptionService struct {
	webhookErr     error
	payload        []byte
	signature      string
	idempotencyKey string
}

func (s *stubSubscriptionService) Subscribe(ctx context.Context, user *domain.User, plan, idempotencyKey string) (*dto.SubscribeResponse, error) {
	s.idempotencyKey = idempotencyKey
	return &dto.SubscribeResponse{SubscriptionID: "sub_1", Plan: plan}, nil
}

func (s *stubSubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	s.payload = payload
	s.signature = signature
	return s.webhookErr
}

type stubDataService struct {
	service.DataService
	fields   *dto.UploadDataRequest
	uploaded *service.Upload
}

func (s *stubDataService) Upload(ctx context.Context, userID string, dataType domain.DataType, fields *dto.UploadDataRequest, upload *service.Upload) (*domain.DataItem, error) {
	s.fields = fields
	s.uploaded = upload
	return &domain.DataItem{ID: "d1", UserID: userID, Type: dataType, Content: fields.ExtractedText, AISolution: fields.AISolution}, nil
}

type fixture struct {
	router        *gin.Engine
	users         *stubUserService
	plans         *stubPlanService
	data          *stubDataService
	subscriptions *stubSubscriptionService
}

func newFixture() *fixture {
	f := &fixture{
		users:         &stubUserService{},
		plans:         &stubPlanService{},
		data:          &stubDataService{},
		subscriptions: &stubSubscriptionService{},
	}

	f.router = gin.New()
	RegisterRoutes(f.router, &Handlers{
		Health:        NewHealthHandler(nil, nil),
		Auth:          NewAuthHandler(nil),
		User:          NewUserHandler(f.users, f.plans, 16),
		Data:          NewDataHandler(f.data, 16),
		Payment:       NewPaymentHandler(f.subscriptions),
		Blogs:         NewContentHandler(nil, domain.ContentBlog),
		LearningPaths: NewContentHandler(nil, domain.ContentLearningPath),
		Resources:     NewContentHandler(nil, domain.ContentResource),
	}, &RouterConfig{Authenticator: staticAuthenticator{}})
	return f
}

func (f *fixture) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
