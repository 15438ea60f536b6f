package entity

type HolderStatus int16

const (
	// HolderStatusUnknown is mean status is not known / not set.
	HolderStatusUnknown HolderStatus = 0

	// HolderStatusActive mean holder is allowed to sign in.
	HolderStatusActive HolderStatus = 1

	// HolderStatusBanned mean holder is blocked from using the app (policy/abuse/etc).
	HolderStatusBanned HolderStatus = 2

	// HolderStatusInactive mean holder is not currently active (e.g., deactivated, closed).
	HolderStatusInactive HolderStatus = 3
)

func (hs HolderStatus) String() string {
	switch hs {
	case HolderStatusActive:
		return "Active"
	case HolderStatusBanned:
		return "Banned"
	case HolderStatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

func (hs HolderStatus) Ensure() HolderStatus {
	switch hs {
	case HolderStatusActive, HolderStatusBanned, HolderStatusInactive:
		return hs
	default:
		return HolderStatusUnknown
	}
}

// TwoFactorState is the second-factor lifecycle of a holder. PendingSetup only
// lives inside a setup response and is never stored.
type TwoFactorState int

const (
	TwoFactorStateDisabled TwoFactorState = iota
	TwoFactorStatePendingSetup
	TwoFactorStateEnabled
)

func (s TwoFactorState) String() string {
	switch s {
	case TwoFactorStatePendingSetup:
		return "PendingSetup"
	case TwoFactorStateEnabled:
		return "Enabled"
	default:
		return "Disabled"
	}
}
