package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func scanTask(scanFn func(dest ...any) error, task *Task) error {
	var description sql.NullString
	var completedAt sql.NullTime
	if err := scanFn(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Status,
		&task.CreatedAt,
		&completedAt,
	); err != nil {
		return err
	}
	if description.Valid {
		task.Description = description.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	} else {
		task.CompletedAt = nil
	}
	return nil
}

const taskColumns = `id, user_id, title, description, status, created_at, completed_at`

// CreateTask inserts a pending task for the user. Status and completed_at
// are forced here; callers cannot create a task in any other state.
func (s *Store) CreateTask(ctx context.Context, userID int64, title, description string) (*Task, error) {
	var task Task
	err := retryOnBusy(ctx, 5, func() error {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO tasks (user_id, title, description, status, created_at, completed_at)
			VALUES (?, ?, NULLIF(?, ''), ?, CURRENT_TIMESTAMP, NULL);
		`, userID, title, description, TaskStatusPending)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task last insert id: %w", err)
		}
		if err := scanTask(s.db.QueryRowContext(ctx, `
			SELECT `+taskColumns+` FROM tasks WHERE id = ?;
		`, id).Scan, &task); err != nil {
			return fmt.Errorf("read back task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the user's tasks with the given status. Pending tasks
// come newest-created first; completed tasks most-recently-completed first.
func (s *Store) ListTasks(ctx context.Context, userID int64, status TaskStatus) ([]Task, error) {
	order := `created_at DESC, id DESC`
	if status == TaskStatusCompleted {
		order = `completed_at DESC, id DESC`
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ? AND status = ?
		ORDER BY `+order+`;
	`, userID, status)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var task Task
		if err := scanTask(rows.Scan, &task); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task rows: %w", err)
	}
	return out, nil
}

// GetTask returns a single task scoped by owner, or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, taskID, userID int64) (*Task, error) {
	var task Task
	err := scanTask(s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?;
	`, taskID, userID).Scan, &task)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &task, nil
}

// CompleteTask marks a pending task completed and stamps completed_at.
// Returns ErrNotFound when the id does not exist or belongs to another
// user. Completing an already-completed task returns the task unchanged;
// the pending→completed transition is one-way.
func (s *Store) CompleteTask(ctx context.Context, taskID, userID int64) (*Task, error) {
	err := retryOnBusy(ctx, 5, func() error {
		_, err := s.db.ExecContext(ctx, `
			UPDATE tasks
			SET status = ?, completed_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ? AND status = ?;
		`, TaskStatusCompleted, taskID, userID, TaskStatusPending)
		if err != nil {
			return fmt.Errorf("update task completed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, taskID, userID)
}

// DeleteTask removes the task and returns the deleted record so callers can
// name it in the confirmation. Returns ErrNotFound when the id does not
// exist or belongs to another user.
func (s *Store) DeleteTask(ctx context.Context, taskID, userID int64) (*Task, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	err = retryOnBusy(ctx, 5, func() error {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM tasks WHERE id = ? AND user_id = ?;
		`, taskID, userID)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete task rows affected: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Stats aggregates the user's task counts and most recent completion.
func (s *Store) Stats(ctx context.Context, userID int64) (*Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(1),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM tasks
		WHERE user_id = ?;
	`, TaskStatusPending, TaskStatusCompleted, userID).Scan(&stats.Total, &stats.Pending, &stats.Completed)
	if err != nil {
		return nil, fmt.Errorf("select task counts: %w", err)
	}

	if stats.Completed > 0 {
		var task Task
		err := scanTask(s.db.QueryRowContext(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			WHERE user_id = ? AND status = ?
			ORDER BY completed_at DESC, id DESC
			LIMIT 1;
		`, userID, TaskStatusCompleted).Scan, &task)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("select most recent completed: %w", err)
		}
		if err == nil {
			stats.MostRecentCompleted = &task
		}
	}
	return &stats, nil
}
