package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskdesk/internal/domain"
)

// TaskFilter acota el listado de tareas de un usuario.
type TaskFilter struct {
	Complete *bool
	Search   string
	Ordering string
}

// TaskRepository define el contrato de persistencia para tareas.
// Todas las consultas de lectura/escritura van acotadas por el usuario dueño.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	GetByID(ctx context.Context, userID, id string) (domain.Task, error)
	List(ctx context.Context, userID string, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, task domain.Task) error
	SetComplete(ctx context.Context, userID, id string, complete bool, at time.Time) error
	Delete(ctx context.Context, userID, id string) error
	DeleteCompleted(ctx context.Context) (int64, error)
}

// PgTaskRepository implementa TaskRepository usando pgxpool.
type PgTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

func (r *PgTaskRepository) Create(ctx context.Context, task domain.Task) error {
	const query = `
		INSERT INTO tasks (id, user_id, title, description, complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Complete,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (r *PgTaskRepository) GetByID(ctx context.Context, userID, id string) (domain.Task, error) {
	const query = `
		SELECT id, user_id, title, description, complete, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	var t domain.Task
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Complete,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *PgTaskRepository) List(ctx context.Context, userID string, filter TaskFilter) ([]domain.Task, error) {
	query := `
		SELECT id, user_id, title, description, complete, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
	`
	args := []any{userID}

	if filter.Complete != nil {
		args = append(args, *filter.Complete)
		query += ` AND complete = $2`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		ph := "$" + strconv.Itoa(len(args))
		query += ` AND (title ILIKE ` + ph + ` OR description ILIKE ` + ph + `)`
	}
	query += orderClause(filter.Ordering)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		err = rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Description,
			&t.Complete,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PgTaskRepository) Update(ctx context.Context, task domain.Task) error {
	const query = `
		UPDATE tasks
		SET title = $3, description = $4, complete = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Complete,
		task.UpdatedAt,
	)
	return err
}

func (r *PgTaskRepository) SetComplete(ctx context.Context, userID, id string, complete bool, at time.Time) error {
	const query = `
		UPDATE tasks SET complete = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.pool.Exec(ctx, query, id, userID, complete, at)
	return err
}

func (r *PgTaskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, id, userID)
	return err
}

func (r *PgTaskRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	const query = `DELETE FROM tasks WHERE complete = TRUE`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// orderClause traduce el parametro de orden a SQL; por defecto las
// incompletas van primero.
func orderClause(ordering string) string {
	switch ordering {
	case "complete":
		return ` ORDER BY complete ASC, created_at ASC`
	case "created":
		return ` ORDER BY created_at ASC`
	case "-created":
		return ` ORDER BY created_at DESC`
	default:
		return ` ORDER BY complete ASC, created_at DESC`
	}
}
