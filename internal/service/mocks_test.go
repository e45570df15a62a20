package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"taskdesk/internal/domain"
	"taskdesk/internal/repository"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[email]; ok {
		return true, nil
	}
	for _, u := range m.usersByID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) SetVerified(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.IsVerified = true
	user.UpdatedAt = at
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = at
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastLoginAt = &at
	m.usersByID[id] = user
	return nil
}

type sentEmail struct {
	kind       string
	to         string
	username   string
	confirmURL string
}

type mockEmailSender struct {
	sent chan sentEmail
	err  error
}

func newMockEmailSender() *mockEmailSender {
	return &mockEmailSender{sent: make(chan sentEmail, 8)}
}

func (m *mockEmailSender) SendActivationEmail(_ context.Context, toEmail, username, confirmURL string) error {
	m.sent <- sentEmail{kind: "activation", to: toEmail, username: username, confirmURL: confirmURL}
	return m.err
}

func (m *mockEmailSender) SendPasswordResetEmail(_ context.Context, toEmail, username, confirmURL string) error {
	m.sent <- sentEmail{kind: "reset", to: toEmail, username: username, confirmURL: confirmURL}
	return m.err
}

// waitSent espera el despacho asincrono de un correo.
func (m *mockEmailSender) waitSent(timeout time.Duration) (sentEmail, bool) {
	select {
	case e := <-m.sent:
		return e, true
	case <-time.After(timeout):
		return sentEmail{}, false
	}
}

type mockTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]domain.Task)}
}

func (m *mockTaskRepo) Create(_ context.Context, task domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, userID, id string) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return domain.Task{}, pgx.ErrNoRows
	}
	return task, nil
}

func (m *mockTaskRepo) List(_ context.Context, userID string, filter repository.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Complete != nil && t.Complete != *filter.Complete {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTaskRepo) Update(_ context.Context, task domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return nil
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) SetComplete(_ context.Context, userID, id string, complete bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return nil
	}
	task.Complete = complete
	task.UpdatedAt = at
	m.tasks[id] = task
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if ok && task.UserID == userID {
		delete(m.tasks, id)
	}
	return nil
}

func (m *mockTaskRepo) DeleteCompleted(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, t := range m.tasks {
		if t.Complete {
			delete(m.tasks, id)
			count++
		}
	}
	return count, nil
}

type mockAuthTokenRepo struct {
	mu     sync.Mutex
	byUser map[string]domain.AuthToken
}

func newMockAuthTokenRepo() *mockAuthTokenRepo {
	return &mockAuthTokenRepo{byUser: make(map[string]domain.AuthToken)}
}

func (m *mockAuthTokenRepo) Create(_ context.Context, token domain.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[token.UserID] = token
	return nil
}

func (m *mockAuthTokenRepo) GetByUserID(_ context.Context, userID string) (domain.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.byUser[userID]
	if !ok {
		return domain.AuthToken{}, pgx.ErrNoRows
	}
	return token, nil
}

func (m *mockAuthTokenRepo) GetByKey(_ context.Context, key string) (domain.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.byUser {
		if token.Key == key {
			return token, nil
		}
	}
	return domain.AuthToken{}, pgx.ErrNoRows
}

func (m *mockAuthTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, userID)
	return nil
}
