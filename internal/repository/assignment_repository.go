package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/stuteach-backend/internal/model"
)

// assignmentColumns selects an assignment joined with its owner summary.
const assignmentColumns = `a.id, a.title, a.description, a.subject, a.deadline, a.status,
	       a.teacher_id, u.name, u.email, a.created_at, a.updated_at
	FROM assignments a JOIN users u ON u.id = a.teacher_id`

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create inserts a new assignment and fills in the generated id and timestamps.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignments (title, description, subject, deadline, status, teacher_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		a.Title, a.Description, a.Subject, a.Deadline, a.Status, a.TeacherID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// GetByID retrieves an assignment with its owner summary.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// List returns assignments newest first. A nil teacherID lists everything.
func (r *AssignmentRepository) List(ctx context.Context, teacherID *uuid.UUID) ([]model.Assignment, error) {
	query := `SELECT ` + assignmentColumns
	var args []interface{}
	if teacherID != nil {
		query += ` WHERE a.teacher_id = $1`
		args = append(args, *teacherID)
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// Update merges the provided fields and bumps updated_at.
func (r *AssignmentRepository) Update(ctx context.Context, id uuid.UUID, p model.AssignmentPatch) (*model.Assignment, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET
		        title = COALESCE($1, title),
		        description = COALESCE($2, description),
		        subject = COALESCE($3, subject),
		        deadline = COALESCE($4, deadline),
		        status = COALESCE($5, status),
		        updated_at = NOW()
		 WHERE id = $6`,
		p.Title, p.Description, p.Subject, p.Deadline, status, id)
	if err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete permanently removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAssignment(row pgx.Row) (*model.Assignment, error) {
	a := &model.Assignment{Teacher: &model.TeacherSummary{}}
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Subject, &a.Deadline, &a.Status,
		&a.TeacherID, &a.Teacher.Name, &a.Teacher.Email, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Teacher.ID = a.TeacherID
	return a, nil
}
