package api

import (
	"encoding/json"
	"fmt"

	"focusguard/internal/session"
)

// DecodeCommand turns a JSON body {"type": "...", ...fields} into the
// matching command variant. The wire keeps the string tag; the core never
// sees it.
func DecodeCommand(body json.RawMessage) (session.Command, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "getState":
		return session.GetState{}, nil
	case "getPresets":
		return session.GetPresets{}, nil
	case "toggleFocus":
		return decode[session.ToggleFocus](body)
	case "setFocusMode":
		return decode[session.SetFocusMode](body)
	case "addSite":
		return decode[session.AddSite](body)
	case "removeSite":
		return decode[session.RemoveSite](body)
	case "togglePreset":
		return decode[session.TogglePreset](body)
	case "updateSchedule":
		return decode[session.UpdateSchedule](body)
	case "setPassword":
		return decode[session.SetPassword](body)
	case "updateSettings":
		return decode[session.UpdateSettings](body)
	case "signUp":
		return decode[session.SignUp](body)
	case "signIn":
		return decode[session.SignIn](body)
	case "signOut":
		return session.SignOut{}, nil
	case "resetPassword":
		return decode[session.ResetPassword](body)
	case "updatePassword":
		return decode[session.UpdatePassword](body)
	case "updateEmail":
		return decode[session.UpdateEmail](body)
	case "deleteAccount":
		return session.DeleteAccount{}, nil
	case "createCheckout":
		return decode[session.CreateCheckout](body)
	case "openPortal":
		return session.OpenPortal{}, nil
	case "refreshSubscription":
		return session.RefreshSubscription{}, nil
	case "exportData":
		return session.ExportData{}, nil
	case "importData":
		return decode[session.ImportData](body)
	case "resetStats":
		return session.ResetStats{}, nil
	case "resetAll":
		return session.ResetAll{}, nil
	case "syncNow":
		return session.SyncNow{}, nil
	}
	return nil, fmt.Errorf("unknown command type %q", head.Type)
}

func decode[T session.Command](body json.RawMessage) (session.Command, error) {
	var cmd T
	if err := json.Unmarshal(body, &cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}
