package session

import (
	"encoding/json"

	"focusguard/internal/schedule"
)

// Command is a closed set of UI-driven operations. Each operation is its own
// variant so Dispatch can match them exhaustively instead of switching on
// string tags.
type Command interface{ isCommand() }

type GetState struct{}
type GetPresets struct{}

// ToggleFocus flips focus mode. Password is consulted only when disabling
// with password protection enabled on a pro account.
type ToggleFocus struct {
	Password string `json:"password"`
}

type SetFocusMode struct {
	Enabled  bool   `json:"enabled"`
	Password string `json:"password"`
}

type AddSite struct {
	Site string `json:"site"`
}

type RemoveSite struct {
	Site string `json:"site"`
}

type TogglePreset struct {
	ID string `json:"preset"`
}

type UpdateSchedule struct {
	Schedule schedule.Config `json:"schedule"`
}

// SetPassword enables password protection with the given password, or
// disables it when the password is empty.
type SetPassword struct {
	Password string `json:"password"`
}

// UpdateSettings patches the settings sub-document one key at a time: fields
// absent from the payload keep their current values.
type UpdateSettings struct {
	Patch json.RawMessage `json:"settings"`
}

type SignUp struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignOut struct{}

type ResetPassword struct {
	Email string `json:"email"`
}

type UpdatePassword struct {
	Password string `json:"password"`
}

type UpdateEmail struct {
	Email string `json:"email"`
}

type DeleteAccount struct{}

type CreateCheckout struct {
	PriceID string `json:"priceId"`
}

type OpenPortal struct{}

type RefreshSubscription struct{}

type ExportData struct{}

// ImportData carries a full export envelope; payloads without a data field
// are rejected.
type ImportData struct {
	Payload json.RawMessage `json:"payload"`
}

type ResetStats struct{}
type ResetAll struct{}
type SyncNow struct{}

func (GetState) isCommand()            {}
func (GetPresets) isCommand()          {}
func (ToggleFocus) isCommand()         {}
func (SetFocusMode) isCommand()        {}
func (AddSite) isCommand()             {}
func (RemoveSite) isCommand()          {}
func (TogglePreset) isCommand()        {}
func (UpdateSchedule) isCommand()      {}
func (SetPassword) isCommand()         {}
func (UpdateSettings) isCommand()      {}
func (SignUp) isCommand()              {}
func (SignIn) isCommand()              {}
func (SignOut) isCommand()             {}
func (ResetPassword) isCommand()       {}
func (UpdatePassword) isCommand()      {}
func (UpdateEmail) isCommand()         {}
func (DeleteAccount) isCommand()       {}
func (CreateCheckout) isCommand()      {}
func (OpenPortal) isCommand()          {}
func (RefreshSubscription) isCommand() {}
func (ExportData) isCommand()          {}
func (ImportData) isCommand()          {}
func (ResetStats) isCommand()          {}
func (ResetAll) isCommand()            {}
func (SyncNow) isCommand()             {}
