package store

import "errors"

var (
	// ErrUnconfirmed is returned when a dose was recorded locally but the
	// server did not acknowledge it. The entry stays queued for
	// ResyncUnconfirmed.
	ErrUnconfirmed = errors.New("dose recorded locally, server did not confirm")
	ErrNotFound    = errors.New("not found in cache")
)

// Fixed user-facing messages written to the shared error slot.
const (
	MsgFetchUser        = "could not load your profile"
	MsgFetchMedications = "could not load the medication list"
	MsgFetchTodayLogs   = "could not load today's medication log"
	MsgFetchAlerts      = "could not load alerts"
	MsgFetchGroups      = "could not load medication groups"
	MsgTake             = "could not record the dose on the server"
	MsgUpdateMedication = "could not update the medication"
	MsgDeleteMedication = "could not delete the medication"
	MsgCreateMedication = "could not add the medication"
	MsgCreateGroup      = "could not add the medication group"
	MsgDeleteGroup      = "could not delete the medication group"
	MsgLogin            = "login failed"
	MsgRegister         = "registration failed"
)
