package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

const moodRequestColumns = `id, sequence, user_id, message, resolved_action, resolved_query, intent_source, similarity_score, created_at`

// MoodRequestRepository persists utterances and what they resolved to.
//
// Rows are append-only: there is no Update.
type MoodRequestRepository struct {
	db *sql.DB
}

// NewMoodRequestRepository creates a new [MoodRequestRepository] with the given database connection
func NewMoodRequestRepository(db *sql.DB) *MoodRequestRepository {
	return &MoodRequestRepository{db: db}
}

// Create inserts a mood request with generated ID and sequence
func (r *MoodRequestRepository) Create(req *models.MoodRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "mood_requests")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	req.SetID(id)
	req.SetSequence(sequence)

	query := `
		INSERT INTO mood_requests (id, sequence, user_id, message, resolved_action, resolved_query, intent_source, similarity_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		nullString(req.UserID),
		req.Message,
		req.ResolvedAction,
		req.ResolvedQuery,
		req.IntentSource,
		req.SimilarityScore,
		req.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert mood request: %w", err)
	}

	return nil
}

// Get retrieves a mood request by ID
func (r *MoodRequestRepository) Get(id string) (*models.MoodRequest, error) {
	query := `SELECT ` + moodRequestColumns + ` FROM mood_requests WHERE id = ?`
	return scanMoodRequest(r.db.QueryRow(query, id))
}

// Latest returns the most recent mood request, or nil when there are none.
func (r *MoodRequestRepository) Latest() (*models.MoodRequest, error) {
	query := `SELECT ` + moodRequestColumns + ` FROM mood_requests ORDER BY sequence DESC LIMIT 1`

	req, err := scanMoodRequest(r.db.QueryRow(query))
	if errors.Is(err, shared.ErrRecordNotFound) {
		return nil, nil
	}
	return req, err
}

// Recent returns up to limit mood requests, newest first.
func (r *MoodRequestRepository) Recent(limit int) ([]*models.MoodRequest, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.List(map[string]any{"limit": limit})
}

// List retrieves mood requests newest first. Supported criteria: "user_id" and "limit".
func (r *MoodRequestRepository) List(criteria map[string]any) ([]*models.MoodRequest, error) {
	query := `SELECT ` + moodRequestColumns + ` FROM mood_requests WHERE 1 = 1`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.MoodRequest{}
	for rows.Next() {
		req, err := scanMoodRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return requests, nil
}

// Delete removes a mood request by ID
func (r *MoodRequestRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM mood_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mood request: %w", err)
	}
	return expectAffected(result, "mood request", id)
}

func scanMoodRequest(row scanner) (*models.MoodRequest, error) {
	var (
		id, message                   string
		sequence                      int
		userID, action, query, source sql.NullString
		score                         sql.NullFloat64
		createdAt                     time.Time
	)

	err := row.Scan(&id, &sequence, &userID, &message, &action, &query, &source, &score, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: mood request", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan mood request: %w", err)
	}

	req := &models.MoodRequest{
		UserID:         userID.String,
		Message:        message,
		ResolvedAction: action.String,
		ResolvedQuery:  query.String,
		IntentSource:   source.String,
	}
	if score.Valid {
		req.SimilarityScore = &score.Float64
	}
	req.SetID(id)
	req.SetSequence(sequence)
	req.SetCreatedAt(createdAt)
	req.SetUpdatedAt(createdAt)
	return req, nil
}

// nullString stores "" as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
