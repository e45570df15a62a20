package http

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskdesk/internal/domain"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
	"taskdesk/internal/weather"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (r *mockUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (r *mockUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRepo) SetVerified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.IsVerified = true
	user.UpdatedAt = at
	r.users[id] = user
	return nil
}

func (r *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = at
	r.users[id] = user
	return nil
}

func (r *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastLoginAt = &at
	r.users[id] = user
	return nil
}

type mockTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]domain.Task)}
}

func (r *mockTaskRepo) Create(_ context.Context, task domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

func (r *mockTaskRepo) GetByID(_ context.Context, userID, id string) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return domain.Task{}, pgx.ErrNoRows
	}
	return task, nil
}

func (r *mockTaskRepo) List(_ context.Context, userID string, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, task := range r.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Complete != nil && task.Complete != *filter.Complete {
			continue
		}
		if filter.Search != "" && !strings.Contains(task.Title, filter.Search) && !strings.Contains(task.Description, filter.Search) {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (r *mockTaskRepo) Update(_ context.Context, task domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tasks[task.ID]
	if !ok || current.UserID != task.UserID {
		return pgx.ErrNoRows
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *mockTaskRepo) SetComplete(_ context.Context, userID, id string, complete bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return pgx.ErrNoRows
	}
	task.Complete = complete
	task.UpdatedAt = at
	r.tasks[id] = task
	return nil
}

func (r *mockTaskRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

func (r *mockTaskRepo) DeleteCompleted(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, task := range r.tasks {
		if task.Complete {
			delete(r.tasks, id)
			count++
		}
	}
	return count, nil
}

type mockAuthTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]domain.AuthToken
}

func newMockAuthTokenRepo() *mockAuthTokenRepo {
	return &mockAuthTokenRepo{tokens: make(map[string]domain.AuthToken)}
}

func (r *mockAuthTokenRepo) Create(_ context.Context, token domain.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Key] = token
	return nil
}

func (r *mockAuthTokenRepo) GetByUserID(_ context.Context, userID string) (domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.UserID == userID {
			return token, nil
		}
	}
	return domain.AuthToken{}, pgx.ErrNoRows
}

func (r *mockAuthTokenRepo) GetByKey(_ context.Context, key string) (domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[key]
	if !ok {
		return domain.AuthToken{}, pgx.ErrNoRows
	}
	return token, nil
}

func (r *mockAuthTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

type sentEmail struct {
	kind       string
	to         string
	confirmURL string
}

type mockEmailSender struct {
	sent chan sentEmail
}

func newMockEmailSender() *mockEmailSender {
	return &mockEmailSender{sent: make(chan sentEmail, 8)}
}

func (s *mockEmailSender) SendActivationEmail(_ context.Context, toEmail, _, confirmURL string) error {
	s.sent <- sentEmail{kind: "activation", to: toEmail, confirmURL: confirmURL}
	return nil
}

func (s *mockEmailSender) SendPasswordResetEmail(_ context.Context, toEmail, _, confirmURL string) error {
	s.sent <- sentEmail{kind: "reset", to: toEmail, confirmURL: confirmURL}
	return nil
}

func (s *mockEmailSender) waitSent(t *testing.T) sentEmail {
	t.Helper()
	select {
	case mail := <-s.sent:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatalf("no email dispatched in time")
		return sentEmail{}
	}
}

type stubWeatherClient struct {
	report weather.Report
	err    error
}

func (c *stubWeatherClient) Current(_ context.Context) (weather.Report, error) {
	return c.report, c.err
}

// testEnv arma el router completo con repos en memoria.
type testEnv struct {
	router *gin.Engine
	users  *mockUserRepo
	tasks  *mockTaskRepo
	tokens *mockAuthTokenRepo
	sender *mockEmailSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	users := newMockUserRepo()
	tasks := newMockTaskRepo()
	tokens := newMockAuthTokenRepo()
	sender := newMockEmailSender()

	issuer := service.NewSignedTokenIssuer("test-secret")
	userSvc := service.NewUserService(logger, users, issuer, sender, nil, "http://app.test", time.Hour, time.Hour)
	jwtSvc := service.NewJWTServiceWithStore("test-secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	authSvc := service.NewAuthService(logger, users, tokens, service.NewMemorySessionStore(), jwtSvc, time.Hour)
	taskSvc := service.NewTaskService(tasks)
	weatherSvc := weather.NewService(&stubWeatherClient{report: weather.Report{City: "Ahvaz", Description: "clear sky", Temp: 41.5}}, nil, time.Minute)

	userH := NewUserHandler(logger, userSvc)
	authH := NewAuthHandler(logger, authSvc, jwtSvc)
	taskH := NewTaskHandler(logger, taskSvc)
	weatherH := NewWeatherHandler(logger, weatherSvc)

	return &testEnv{
		router: NewRouter(logger, jwtSvc, authSvc, userH, authH, taskH, weatherH),
		users:  users,
		tasks:  tasks,
		tokens: tokens,
		sender: sender,
	}
}
