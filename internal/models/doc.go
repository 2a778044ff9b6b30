// Package models defines domain entities and persistence interfaces for moodplay.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects: values exchanged with Spotify and the language model
//   - [Track] : catalog track as returned by search and top-tracks
//   - [Device] : a Spotify Connect playback device
//   - [UserProfile] : the authenticated listener
//   - [Intent] : structured action, query and extras resolved from an utterance
//
// 2. Persistent Entities: database-backed models
//   - [User] : listeners keyed by Spotify user id
//   - [MoodRequest] : every utterance and what it resolved to
//   - [ConnectedPlaylist] : playlists addressable by name from a play request
//   - [TrackPlay] : tracks started through the dispatcher
//
// All persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
