package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

const trackPlayColumns = `id, sequence, user_id, spotify_track_id, track_name, artists, album, uri, action, played_at`

// TrackHistoryRepository implements models.Repository[*models.TrackPlay].
//
// Artists are stored as a JSON array so multi-artist credits survive the round trip.
type TrackHistoryRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.TrackPlay] = (*TrackHistoryRepository)(nil)

// NewTrackHistoryRepository creates a new TrackHistoryRepository with the given database connection
func NewTrackHistoryRepository(db *sql.DB) *TrackHistoryRepository {
	return &TrackHistoryRepository{db: db}
}

// Create inserts a history row with generated ID and sequence
func (r *TrackHistoryRepository) Create(play *models.TrackPlay) error {
	if err := play.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	artists, err := encodeArtists(play.Artists)
	if err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "track_history")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	play.SetID(id)
	play.SetSequence(sequence)

	query := `
		INSERT INTO track_history (id, sequence, user_id, spotify_track_id, track_name, artists, album, uri, action, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		nullString(play.UserID),
		play.TrackID,
		play.Name,
		artists,
		nullString(play.Album),
		nullString(play.URI),
		play.Action,
		play.PlayedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track play: %w", err)
	}

	return nil
}

// Get retrieves a history row by ID
func (r *TrackHistoryRepository) Get(id string) (*models.TrackPlay, error) {
	query := `SELECT ` + trackPlayColumns + ` FROM track_history WHERE id = ?`
	return scanTrackPlay(r.db.QueryRow(query, id))
}

// Update rewrites the action of a history row. The played track itself is immutable.
func (r *TrackHistoryRepository) Update(play *models.TrackPlay) error {
	if err := play.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(`UPDATE track_history SET action = ? WHERE id = ?`, play.Action, play.ID())
	if err != nil {
		return fmt.Errorf("failed to update track play: %w", err)
	}
	return expectAffected(result, "track play", play.ID())
}

// Delete removes a history row by ID
func (r *TrackHistoryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM track_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track play: %w", err)
	}
	return expectAffected(result, "track play", id)
}

// Recent returns the newest limit plays, newest first.
func (r *TrackHistoryRepository) Recent(limit int) ([]*models.TrackPlay, error) {
	return r.List(map[string]any{"limit": limit})
}

// List retrieves plays newest first. Supported criteria: "user_id", "limit".
func (r *TrackHistoryRepository) List(criteria map[string]any) ([]*models.TrackPlay, error) {
	query := `SELECT ` + trackPlayColumns + ` FROM track_history`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track history: %w", err)
	}
	defer rows.Close()

	plays := []*models.TrackPlay{}
	for rows.Next() {
		play, err := scanTrackPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, play)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return plays, nil
}

func encodeArtists(artists []string) (string, error) {
	if artists == nil {
		artists = []string{}
	}
	data, err := json.Marshal(artists)
	if err != nil {
		return "", fmt.Errorf("failed to encode artists: %w", err)
	}
	return string(data), nil
}

func scanTrackPlay(row scanner) (*models.TrackPlay, error) {
	var (
		id, trackID, name, artists, action string
		sequence                           int
		userID, album, uri                 sql.NullString
		playedAt                           time.Time
	)

	err := row.Scan(&id, &sequence, &userID, &trackID, &name, &artists, &album, &uri, &action, &playedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: track play", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track play: %w", err)
	}

	play := &models.TrackPlay{
		UserID:  userID.String,
		TrackID: trackID,
		Name:    name,
		Album:   album.String,
		URI:     uri.String,
		Action:  action,
	}
	if err := json.Unmarshal([]byte(artists), &play.Artists); err != nil {
		return nil, fmt.Errorf("failed to decode artists: %w", err)
	}
	play.SetID(id)
	play.SetSequence(sequence)
	play.SetCreatedAt(playedAt)
	play.SetUpdatedAt(playedAt)
	return play, nil
}
