package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodplay/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlayComplete MsgKind = iota
	MsgProgressUpdate
	MsgRecommendComplete
)

type playPayload struct {
	message string
	result  *tasks.PlayResult
	err     error
}

type progressPayload struct {
	update tasks.ProgressUpdate
	source <-chan tasks.ProgressUpdate
}

type recommendPayload struct {
	result *tasks.RecommendResult
	err    error
}

// playCompleteMsg is the constructor for [MsgPlayComplete]
func playCompleteMsg(message string, result *tasks.PlayResult, err error) Msg {
	return Msg{kind: MsgPlayComplete, data: playPayload{message, result, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate, source <-chan tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: progressPayload{update, source}}
}

// recommendCompleteMsg is the constructor for [MsgRecommendComplete]
func recommendCompleteMsg(result *tasks.RecommendResult, err error) Msg {
	return Msg{kind: MsgRecommendComplete, data: recommendPayload{result, err}}
}
