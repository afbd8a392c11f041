package embedded

import "github.com/pkg/errors"

type LaunchStage byte

const (
	AddTicketsStage LaunchStage = iota
	ConfirmStage
	WinnerSelectionStage
	ClaimStage
)

func (s LaunchStage) String() string {
	switch s {
	case AddTicketsStage:
		return "AddTickets"
	case ConfirmStage:
		return "Confirm"
	case WinnerSelectionStage:
		return "WinnerSelection"
	case ClaimStage:
		return "Claim"
	default:
		return "Unknown"
	}
}

var (
	errAddTicketsPassed    = errors.New("add tickets period has passed")
	errNotConfirmPeriod    = errors.New("not in confirmation period")
	errNotWinnerSelection  = errors.New("not in winner selection period")
	errNotClaimPeriod      = errors.New("not in claim period")
	errWinnerSelectionOpen = errors.New("winner selection already started")
)

// Flags only ever go from false to true.
type Flags struct {
	WinnerSelectionStarted  bool
	TicketsFiltered         bool
	WinnersSelected         bool
	AdditionalStepCompleted bool
}

// GetLaunchStage derives the stage from the logical time and the stored flags. Claim is only reached
// once both selection passes are over.
func GetLaunchStage(now uint64, params *LaunchParams, flags Flags) LaunchStage {
	if now < params.ConfirmationPeriodStart {
		return AddTicketsStage
	}
	if now < params.WinnerSelectionStart {
		return ConfirmStage
	}
	if !flags.WinnersSelected || !flags.AdditionalStepCompleted || now < params.ClaimStart {
		return WinnerSelectionStage
	}
	return ClaimStage
}

func (l *Launchpad) flags() Flags {
	var flags Flags
	if _, err := l.GetRlp("flags", &flags); err != nil {
		panic(err)
	}
	return flags
}

func (l *Launchpad) setFlags(flags Flags) {
	l.SetRlp("flags", flags)
}

func (l *Launchpad) stage() LaunchStage {
	return GetLaunchStage(l.env.BlockNumber(), l.params, l.flags())
}

func (l *Launchpad) requireStage(expected LaunchStage) error {
	if current := l.stage(); current != expected {
		switch expected {
		case AddTicketsStage:
			return errAddTicketsPassed
		case ConfirmStage:
			return errNotConfirmPeriod
		case WinnerSelectionStage:
			return errNotWinnerSelection
		default:
			return errNotClaimPeriod
		}
	}
	return nil
}

func (l *Launchpad) requireBeforeWinnerSelection() error {
	if l.flags().WinnerSelectionStarted {
		return errWinnerSelectionOpen
	}
	return nil
}
