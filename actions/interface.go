package actions

import "context"

// Speaker is the part of the synthesizer the actions need.
type Speaker interface {
	Speak(ctx context.Context, message string) error
}

// Browser opens a URL in the user's default browser.
type Browser interface {
	OpenURL(url string) error
}

// Runner starts an operating system command.
type Runner interface {
	Start(command string) error
}
