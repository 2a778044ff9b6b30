// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [PromptView] : Type a mood, genre, artist or song and press enter to play it
//  2. [RecommendView] : Browse recommendations built from the listener's top tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Recommendation progress flows through a channel from [tasks.Assistant.Recommend] and is relayed one update at a time.
//
// Keys: enter plays, ctrl+r builds recommendations, tab switches views, esc clears the prompt and ctrl+c quits.
package ui
