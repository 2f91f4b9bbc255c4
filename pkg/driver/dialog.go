package driver

import (
	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

// Dialog is one step of a multi-step prompt sequence (login, character
// creation, confirmations). The driver shows Prompt, waits for the
// player's next input line, runs Validate, then Resume. Resume may
// return another Dialog to chain, or nil to hand control back to
// normal command handling.
type Dialog struct {
	Prompt string
	// NoEcho suppresses echoing of the response (passwords).
	NoEcho bool
	// Validate vets the response; an error re-prompts with its
	// message and the dialog stays pending.
	Validate func(answer string) error
	// Resume consumes the validated answer.
	Resume func(ctx *Context, answer string) (*Dialog, error)
}

// YesNoDialog asks a yes/no question and dispatches on the answer.
func YesNoDialog(prompt string, onAnswer func(ctx *Context, yes bool) (*Dialog, error)) *Dialog {
	return &Dialog{
		Prompt: prompt,
		Validate: func(answer string) error {
			if _, err := lang.ParseYesNo(answer); err != nil {
				return &validationError{"Please answer yes or no."}
			}
			return nil
		},
		Resume: func(ctx *Context, answer string) (*Dialog, error) {
			yes, err := lang.ParseYesNo(answer)
			if err != nil {
				return nil, err
			}
			return onAnswer(ctx, yes)
		},
	}
}

// PressEnterDialog shows a prompt and resumes on any input.
func PressEnterDialog(prompt string, next *Dialog) *Dialog {
	if prompt == "" {
		prompt = "Press enter to continue."
	}
	return &Dialog{
		Prompt: prompt,
		Resume: func(ctx *Context, _ string) (*Dialog, error) {
			return next, nil
		},
	}
}

// validationError is a re-prompt request from a dialog validator.
type validationError struct {
	Msg string
}

func (e *validationError) Error() string { return e.Msg }

// pendingDialog pairs a suspended dialog with its player.
type pendingDialog struct {
	player *world.Player
	dialog *Dialog
}
