package models

import "github.com/safewalk/safewalk/internal/sos"

// TriggerSOSRequest is a manual SOS with the user's position.
type TriggerSOSRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SOSResponse is the active SOS record.
type SOSResponse struct {
	Dispatch sos.Dispatch `json:"dispatch"`
}
