package session

import (
	"focusguard/internal/account"
	"focusguard/internal/preset"
	"focusguard/internal/state"
)

// Code is a machine-readable outcome tag for the command surface.
type Code string

const (
	CodeAlreadyBlocked     Code = "ALREADY_BLOCKED"
	CodeLimitReached       Code = "LIMIT_REACHED"
	CodePresetLimitReached Code = "PRESET_LIMIT_REACHED"
	CodeInvalidPreset      Code = "INVALID_PRESET"
	CodeInvalidSchedule    Code = "INVALID_SCHEDULE"
	CodeProRequired        Code = "PRO_REQUIRED"
	CodePasswordRequired   Code = "PASSWORD_REQUIRED"
	CodeInvalidData        Code = "INVALID_DATA"
	CodeNotAuthenticated   Code = "NOT_AUTHENTICATED"
	CodeAccountUnavailable Code = "ACCOUNT_UNAVAILABLE"
	CodeAuthFailed         Code = "AUTH_FAILED"
	CodeSyncFailed         Code = "SYNC_FAILED"
	CodeUnknownCommand     Code = "UNKNOWN_COMMAND"
)

// Result is the response to a dispatched command. Error and Warning carry
// codes from the vocabulary above; errors always mean no state was mutated.
type Result struct {
	State   *state.Document          `json:"state,omitempty"`
	IsPro   bool                     `json:"isPro"`
	Success bool                     `json:"success,omitempty"`
	Warning Code                     `json:"warning,omitempty"`
	Error   Code                     `json:"error,omitempty"`
	Message string                   `json:"message,omitempty"`
	Limit   int                      `json:"limit,omitempty"`
	User    *account.User            `json:"user,omitempty"`
	Presets map[string]preset.Preset `json:"presets,omitempty"`
	Export  *state.Export            `json:"export,omitempty"`
	URL     string                   `json:"url,omitempty"`
}

func errResult(code Code) Result { return Result{Error: code} }
