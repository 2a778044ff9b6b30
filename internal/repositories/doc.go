// Package repositories implements SQLite persistence for moodplay's entities.
//
// Each repository implements models.Repository[T] with atomic sequence generation for stable ordering.
// Users are soft deleted via deleted_at; request and track history rows and connected playlists are removed outright.
//
// Key Implementations:
//   - [UserRepository] : listener profiles keyed by Spotify user id
//   - [MoodRequestRepository] : every resolved utterance, newest first
//   - [PlaylistRepository] : playlists connected by name, matched case-insensitively
//   - [TrackHistoryRepository] : tracks started by the dispatcher
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
