package workflow

import (
	"context"
	"fmt"
)

// Level is the severity of a notification shown to the user
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", l)
	}
}

// Input asks for free text as part of the confirmation
type Input struct {
	Label       string
	Placeholder string
	Initial     string
	MaxLength   int
}

// Option is a yes/no choice offered alongside the confirmation
type Option struct {
	Label   string
	Default bool
}

// Prompt is everything a surface needs to render a confirmation
type Prompt struct {
	Title        string
	Question     string
	Details      []Detail
	Warning      string
	ConfirmLabel string
	Destructive  bool

	// Token, when set, must be typed back exactly to confirm
	Token string

	Input  *Input
	Option *Option
}

// Detail is one labelled value shown in a prompt or result
type Detail struct {
	Label string
	Value string
}

// Answer is the user's response to a Prompt
type Answer struct {
	Accepted bool
	Text     string
	Option   bool
}

// Feedback is implemented by each user-facing surface. Confirm blocks until
// the user answers and must eventually return a declined Answer if the user
// walks away; Run re-prompts for as long as validation fails.
type Feedback interface {
	Confirm(p Prompt) Answer
	Notify(level Level, message string)
	Progress(message string) (stop func())
}

// Reloader re-fetches the view an operation was started from
type Reloader interface {
	Reload(ctx context.Context) error
}
