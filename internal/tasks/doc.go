// Package tasks orchestrates the assistant's operations with background recording and progress reporting.
//
// # Core Operations
//
// [Assistant] exposes:
//
//  1. [Assistant.Ask] : utterance → intent
//     - Resolves through the language model, degrading to keywords when it is unavailable
//     - Records the request
//
//  2. [Assistant.Play] : utterance → playback
//     - Resolves, normalizes the query, classifies it into a playback mode and starts playback
//     - Records the request with the mode as its action and the started track in history
//
//  3. [Assistant.Recommend] : top tracks → ranked candidates
//     - Builds a taste profile from the listener's top tracks
//     - Searches the profile's most frequent artists concurrently
//     - Ranks unseen tracks by cosine similarity
//
// # Progress Reporting
//
// Recommend sends [ProgressUpdate] values on an optional channel. Updates use select with default to prevent blocking.
//
// # Recording
//
// Requests, plays and users are written by a [Recorder] worker. Failures are logged and never returned.
package tasks
