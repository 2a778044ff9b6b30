package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

const playlistColumns = `id, sequence, name, uri, created_at, updated_at`

// PlaylistRepository implements models.Repository[*models.ConnectedPlaylist] for playlists the
// listener connected by name.
//
// Names are unique case-insensitively through the name_key column.
type PlaylistRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.ConnectedPlaylist] = (*PlaylistRepository)(nil)

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.ConnectedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "connected_playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)
	playlist.SetSequence(sequence)

	query := `
		INSERT INTO connected_playlists (id, sequence, name, name_key, uri, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		playlist.Name,
		models.NameKey(playlist.Name),
		playlist.URI,
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID
func (r *PlaylistRepository) Get(id string) (*models.ConnectedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM connected_playlists WHERE id = ?`
	return scanPlaylist(r.db.QueryRow(query, id))
}

// FindByNameCI returns the playlist whose name equals name ignoring case and surrounding
// whitespace, or nil when there is none.
func (r *PlaylistRepository) FindByNameCI(name string) (*models.ConnectedPlaylist, error) {
	key := models.NameKey(name)
	if key == "" {
		return nil, nil
	}

	query := `SELECT ` + playlistColumns + ` FROM connected_playlists WHERE name_key = ?`
	playlist, err := scanPlaylist(r.db.QueryRow(query, key))
	if errors.Is(err, shared.ErrRecordNotFound) {
		return nil, nil
	}
	return playlist, err
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(playlist *models.ConnectedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE connected_playlists
		SET name = ?, name_key = ?, uri = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, playlist.Name, models.NameKey(playlist.Name), playlist.URI, now, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return expectAffected(result, "playlist", playlist.ID())
}

// Delete removes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM connected_playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return expectAffected(result, "playlist", id)
}

// List retrieves all connected playlists ordered by name. Supported criteria: "name" (case-insensitive).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.ConnectedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM connected_playlists`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " WHERE name_key = ?"
		args = append(args, models.NameKey(name))
	}

	query += " ORDER BY name_key ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*models.ConnectedPlaylist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

func scanPlaylist(row scanner) (*models.ConnectedPlaylist, error) {
	var (
		id, name, uri        string
		sequence             int
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &name, &uri, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewConnectedPlaylist(name, uri)
	playlist.SetID(id)
	playlist.SetSequence(sequence)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	return playlist, nil
}
