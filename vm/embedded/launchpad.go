package embedded

import (
	"math/big"

	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/config"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/env"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/helpers"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/vesting"
	"github.com/pkg/errors"
)

var (
	errNotOwner      = errors.New("sender is not an owner")
	errUnknownMethod = errors.New("unknown method")
	errWrongPayment  = errors.New("wrong payment")
)

// LaunchParams is the immutable part of a launch, stored once at deploy.
type LaunchParams struct {
	TicketToken            string
	TicketPrice            *big.Int
	LaunchpadToken         string
	TokensPerWinningTicket *big.Int

	NrWinningTickets uint64

	ConfirmationPeriodStart uint64
	WinnerSelectionStart    uint64
	ClaimStart              uint64

	RequireFullConfirmation bool

	UnlockSchedule vesting.Schedule
}

func ParamsFromConfig(cfg *config.LaunchConfig) *LaunchParams {
	params := &LaunchParams{
		TicketToken:             cfg.TicketToken,
		TicketPrice:             cfg.TicketPriceUnits(),
		LaunchpadToken:          cfg.LaunchpadToken,
		TokensPerWinningTicket:  cfg.TokensPerWinningTicketUnits(),
		NrWinningTickets:        cfg.NrWinningTickets,
		ConfirmationPeriodStart: cfg.ConfirmationPeriodStart,
		WinnerSelectionStart:    cfg.WinnerSelectionStart,
		ClaimStart:              cfg.ClaimStart,
		RequireFullConfirmation: cfg.RequireFullConfirmation,
	}
	for _, m := range cfg.UnlockSchedule {
		params.UnlockSchedule = append(params.UnlockSchedule, vesting.UnlockMilestone{Time: m.Time, Percentage: m.Percentage})
	}
	return params
}

func (p *LaunchParams) validate(now uint64) error {
	if p.TicketToken == "" || p.LaunchpadToken == "" || p.TicketToken == p.LaunchpadToken {
		return errors.New("invalid token identifiers")
	}
	if p.TicketPrice == nil || p.TicketPrice.Sign() <= 0 {
		return errors.New("ticket price must be positive")
	}
	if p.TokensPerWinningTicket == nil || p.TokensPerWinningTicket.Sign() <= 0 {
		return errors.New("launchpad tokens per winning ticket must be positive")
	}
	if p.NrWinningTickets == 0 {
		return errors.New("number of winning tickets must be positive")
	}
	if now > p.ConfirmationPeriodStart || p.ConfirmationPeriodStart > p.WinnerSelectionStart ||
		p.WinnerSelectionStart > p.ClaimStart {
		return errors.New("invalid timeline")
	}
	if len(p.UnlockSchedule) > 0 {
		return vesting.ValidateSchedule(p.UnlockSchedule, now)
	}
	return nil
}

// Launchpad sells lottery tickets for a ticket token and distributes launchpad tokens to the winners.
type Launchpad struct {
	*BaseContract
	params     *LaunchParams
	operations *operation.Manager

	ticketRanges     *env.Map
	ticketBatches    *env.Map
	winningTickets   *env.Map
	ticketPositions  *env.Map
	confirmedTickets *env.Map
	blacklist        *env.Map
	guaranteedUsers  *env.Map
	userClaimable    *env.Map
	userClaimed      *env.Map
}

func NewLaunchpad(ctx env.CallContext, e env.Env) *Launchpad {
	return &Launchpad{
		BaseContract:     &BaseContract{ctx: ctx, env: e},
		operations:       operation.NewManager(e, ctx),
		ticketRanges:     env.NewMap([]byte("tr"), e, ctx),
		ticketBatches:    env.NewMap([]byte("tb"), e, ctx),
		winningTickets:   env.NewMap([]byte("wt"), e, ctx),
		ticketPositions:  env.NewMap([]byte("tp"), e, ctx),
		confirmedTickets: env.NewMap([]byte("nc"), e, ctx),
		blacklist:        env.NewMap([]byte("bl"), e, ctx),
		guaranteedUsers:  env.NewMap([]byte("gu"), e, ctx),
		userClaimable:    env.NewMap([]byte("uc"), e, ctx),
		userClaimed:      env.NewMap([]byte("ud"), e, ctx),
	}
}

func (l *Launchpad) loadParams() error {
	if l.params != nil {
		return nil
	}
	params := new(LaunchParams)
	found, err := l.GetRlp("params", params)
	if err != nil {
		return errors.Wrap(err, "failed to read launch params")
	}
	if !found {
		return errors.New("launch is not deployed")
	}
	l.params = params
	return nil
}

func (l *Launchpad) Deploy(args ...[]byte) error {
	params := new(LaunchParams)
	if err := helpers.ExtractRlp(0, params, args...); err != nil {
		return err
	}
	if err := params.validate(l.env.BlockNumber()); err != nil {
		return err
	}
	l.params = params
	l.SetOwner(l.ctx.Sender())
	l.SetRlp("params", params)
	l.SetUint64("nrWinningTickets", params.NrWinningTickets)
	if len(params.UnlockSchedule) > 0 {
		l.SetRlp("unlockSchedule", params.UnlockSchedule)
	}
	l.setFlags(Flags{})
	l.BaseContract.Deploy(LaunchpadContract)
	return nil
}

func (l *Launchpad) Call(method string, args ...[]byte) ([]byte, error) {
	if err := l.loadParams(); err != nil {
		return nil, err
	}
	switch method {
	case "addTickets":
		return nil, l.addTickets(args...)
	case "confirmTickets":
		return nil, l.confirmTickets(args...)
	case "addUsersToBlacklist":
		return nil, l.addUsersToBlacklist(args...)
	case "removeUsersFromBlacklist":
		return nil, l.removeUsersFromBlacklist(args...)
	case "depositLaunchpadTokens":
		return nil, l.depositLaunchpadTokens()
	case "setUnlockSchedule":
		return nil, l.setUnlockSchedule(args...)
	case "filterTickets":
		return l.filterTickets()
	case "selectWinners":
		return l.selectWinners()
	case "distributeGuaranteedTickets":
		return l.distributeGuaranteedTickets()
	case "claimLaunchpadTokens":
		return l.claimLaunchpadTokens()
	case "claimTicketPayment":
		return nil, l.claimTicketPayment()
	default:
		return nil, errUnknownMethod
	}
}

func (l *Launchpad) Read(method string, args ...[]byte) ([]byte, error) {
	if err := l.loadParams(); err != nil {
		return nil, err
	}
	switch method {
	case "launchStage":
		return []byte{byte(l.stage())}, nil
	case "flags":
		return helpers.RlpArg(l.flags()), nil
	case "ticketRange":
		addr, err := helpers.ExtractAddr(0, args...)
		if err != nil {
			return nil, err
		}
		r, ok := l.ticketRange(addr)
		if !ok {
			return nil, errNoTickets
		}
		return helpers.RlpArg(r), nil
	case "nrConfirmedTickets":
		addr, err := helpers.ExtractAddr(0, args...)
		if err != nil {
			return nil, err
		}
		return common.ToBytes(l.nrConfirmed(addr)), nil
	case "lastTicketId":
		return common.ToBytes(l.GetUint64("lastTicketId")), nil
	case "nrWinningTickets":
		return common.ToBytes(l.GetUint64("nrWinningTickets")), nil
	case "winningTicketCount":
		return common.ToBytes(l.GetUint64("winningTicketCount")), nil
	case "isWinningTicket":
		id, err := helpers.ExtractUInt64(0, args...)
		if err != nil {
			return nil, err
		}
		if l.isWinning(id) {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case "winningTickets":
		addr, err := helpers.ExtractAddr(0, args...)
		if err != nil {
			return nil, err
		}
		return l.readWinningTickets(addr)
	case "computeClaimableTokens":
		addr, err := helpers.ExtractAddr(0, args...)
		if err != nil {
			return nil, err
		}
		amount, err := l.computeClaimableTokens(addr)
		if err != nil {
			return nil, err
		}
		return amount.Bytes(), nil
	case "unlockedPercent":
		return []byte(l.unlockedPercent().String()), nil
	case "ongoingOperation":
		kind, err := l.operations.Current()
		if err != nil {
			return nil, err
		}
		return []byte{byte(kind)}, nil
	default:
		return nil, errUnknownMethod
	}
}

func (l *Launchpad) requireOwner() error {
	if !l.IsOwner() {
		return errNotOwner
	}
	return nil
}

func (l *Launchpad) requirePayment(token string, amount *big.Int) error {
	if l.ctx.PayToken() != token || l.ctx.PayAmount().Cmp(amount) != 0 {
		return errors.Wrapf(errWrongPayment, "expected %v %v", amount, token)
	}
	return nil
}

func (l *Launchpad) nrWinningTickets() uint64 {
	return l.GetUint64("nrWinningTickets")
}

func (l *Launchpad) bigUint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// ticketPayment is the price of n tickets in the ticket token.
func (l *Launchpad) ticketPayment(n uint64) *big.Int {
	return new(big.Int).Mul(l.params.TicketPrice, l.bigUint64(n))
}

func (l *Launchpad) launchpadTokens(n uint64) *big.Int {
	return new(big.Int).Mul(l.params.TokensPerWinningTicket, l.bigUint64(n))
}

func (l *Launchpad) addClaimableTicketPayment(amount *big.Int) {
	current := l.GetBigInt("claimableTicketPayment")
	if current == nil {
		current = new(big.Int)
	}
	l.SetBigInt("claimableTicketPayment", current.Add(current, amount))
}

func statusOutput(status operation.Status) []byte {
	return []byte{byte(status)}
}

var resumableMethods = map[string]struct{}{
	"filterTickets":               {},
	"selectWinners":               {},
	"distributeGuaranteedTickets": {},
}

// IsResumableMethod reports whether a successful call of method returns an operation.Status.
func IsResumableMethod(method string) bool {
	_, ok := resumableMethods[method]
	return ok
}
