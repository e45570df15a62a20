package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskdesk/internal/domain"
	"taskdesk/internal/repository"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTitleMissing = errors.New("title is required")
)

// TaskService coordina el CRUD de tareas acotado al usuario dueño.
// El dueño siempre sale de la identidad autenticada, nunca del payload,
// y el acceso a tareas ajenas es indistinguible de un id inexistente.
type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

type TaskInput struct {
	Title       string
	Description string
	Complete    bool
}

func (s *TaskService) Create(ctx context.Context, userID string, input TaskInput) (domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Task{}, ErrTitleMissing
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: input.Description,
		Complete:    input.Complete,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string, filter repository.TaskFilter) ([]domain.Task, error) {
	return s.tasks.List(ctx, userID, filter)
}

func (s *TaskService) Update(ctx context.Context, userID, id string, input TaskInput) (domain.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.Task{}, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Task{}, ErrTitleMissing
	}

	task.Title = title
	task.Description = input.Description
	task.Complete = input.Complete
	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ToggleComplete invierte el booleano sin exigir el payload completo.
func (s *TaskService) ToggleComplete(ctx context.Context, userID, id string) (domain.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.Task{}, err
	}

	now := time.Now().UTC()
	if err := s.tasks.SetComplete(ctx, userID, id, !task.Complete, now); err != nil {
		return domain.Task{}, err
	}
	task.Complete = !task.Complete
	task.UpdatedAt = now
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, userID, id)
}

// CleanupCompleted borra en bloque todas las tareas completadas y
// devuelve cuantas filas salieron. Volver a correrlo sin completadas
// borra cero.
func (s *TaskService) CleanupCompleted(ctx context.Context) (int64, error) {
	return s.tasks.DeleteCompleted(ctx)
}
