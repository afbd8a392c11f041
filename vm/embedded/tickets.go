package embedded

import (
	"math/big"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/helpers"
	"github.com/pkg/errors"
)

var (
	errNoTickets            = errors.New("no tickets")
	errDuplicateEntry       = errors.New("duplicate entry for user")
	errTooManyConfirmed     = errors.New("trying to confirm too many tickets")
	errTooManyGuaranteed    = errors.New("too many guaranteed tickets")
	errBlacklisted          = errors.New("user is blacklisted")
	errAlreadyDeposited     = errors.New("launchpad tokens already deposited")
	errTokensNotDeposited   = errors.New("launchpad tokens not deposited")
	errInvalidTicketsNumber = errors.New("invalid number of tickets")
)

// TicketRange is the inclusive id interval owned by one buyer.
type TicketRange struct {
	FirstId uint64
	LastId  uint64
}

func (r TicketRange) Len() uint64 {
	return r.LastId - r.FirstId + 1
}

// TicketBatch is stored under the id of its first ticket.
type TicketBatch struct {
	Address     common.Address
	TicketCount uint64
}

type GuaranteedTicketInfo struct {
	GuaranteedTickets   uint64
	MinConfirmedTickets uint64
}

type TicketEntry struct {
	Address    common.Address
	Tickets    uint64
	Guarantees []GuaranteedTicketInfo
}

// guaranteedUser keeps the allotment next to the tiers because filtering rewrites the user's range.
type guaranteedUser struct {
	Address         common.Address
	AllottedTickets uint64
	Tiers           []GuaranteedTicketInfo
}

func (l *Launchpad) ticketRange(addr common.Address) (TicketRange, bool) {
	data := l.ticketRanges.Get(addr.Bytes())
	if data == nil {
		return TicketRange{}, false
	}
	var r TicketRange
	if err := rlp.DecodeBytes(data, &r); err != nil {
		panic(err)
	}
	return r, true
}

func (l *Launchpad) setTicketRange(addr common.Address, r TicketRange) {
	l.ticketRanges.Set(addr.Bytes(), helpers.RlpArg(r))
}

func (l *Launchpad) ticketBatch(firstId uint64) (TicketBatch, bool) {
	data := l.ticketBatches.Get(common.ToBytes(firstId))
	if data == nil {
		return TicketBatch{}, false
	}
	var b TicketBatch
	if err := rlp.DecodeBytes(data, &b); err != nil {
		panic(err)
	}
	return b, true
}

func (l *Launchpad) setTicketBatch(firstId uint64, b TicketBatch) {
	l.ticketBatches.Set(common.ToBytes(firstId), helpers.RlpArg(b))
}

func (l *Launchpad) nrConfirmed(addr common.Address) uint64 {
	return l.confirmedTickets.GetUint64(addr.Bytes())
}

func (l *Launchpad) isBlacklisted(addr common.Address) bool {
	return l.blacklist.Has(addr.Bytes())
}

func (l *Launchpad) isWinning(id uint64) bool {
	return l.winningTickets.Has(common.ToBytes(id))
}

func (l *Launchpad) markWinning(id uint64) {
	l.winningTickets.Set(common.ToBytes(id), []byte{1})
}

// ticketIdAt resolves a shuffle position; positions without an entry hold their own id.
func (l *Launchpad) ticketIdAt(pos uint64) uint64 {
	data := l.ticketPositions.Get(common.ToBytes(pos))
	if data == nil {
		return pos
	}
	return common.FromBytes(data)
}

func (l *Launchpad) setTicketIdAt(pos uint64, id uint64) {
	l.ticketPositions.SetUint64(common.ToBytes(pos), id)
}

func (l *Launchpad) guaranteedUsersCount() uint64 {
	return l.GetUint64("guaranteedUsersCount")
}

func (l *Launchpad) guaranteedUser(index uint64) guaranteedUser {
	var user guaranteedUser
	if err := rlp.DecodeBytes(l.guaranteedUsers.Get(common.ToBytes(index)), &user); err != nil {
		panic(err)
	}
	return user
}

func (l *Launchpad) addGuaranteedUser(user guaranteedUser) {
	count := l.guaranteedUsersCount()
	l.guaranteedUsers.Set(common.ToBytes(count), helpers.RlpArg(user))
	l.SetUint64("guaranteedUsersCount", count+1)
}

func (l *Launchpad) addTickets(args ...[]byte) error {
	if err := l.requireOwner(); err != nil {
		return err
	}
	if err := l.requireStage(AddTicketsStage); err != nil {
		return err
	}
	var entries []TicketEntry
	if err := helpers.ExtractRlp(0, &entries, args...); err != nil {
		return err
	}

	buyers := mapset.NewSet()
	totalGuaranteed := l.GetUint64("totalGuaranteedTickets")
	for _, entry := range entries {
		if entry.Tickets == 0 {
			return errInvalidTicketsNumber
		}
		if !buyers.Add(entry.Address) {
			return errors.Wrap(errDuplicateEntry, entry.Address.Hex())
		}
		if _, ok := l.ticketRange(entry.Address); ok {
			return errors.Wrap(errDuplicateEntry, entry.Address.Hex())
		}
		for _, tier := range entry.Guarantees {
			if tier.GuaranteedTickets == 0 {
				return errors.New("guaranteed tickets tier must be positive")
			}
			totalGuaranteed += tier.GuaranteedTickets
		}
	}
	if totalGuaranteed > l.nrWinningTickets() {
		return errTooManyGuaranteed
	}

	lastTicketId := l.GetUint64("lastTicketId")
	for _, entry := range entries {
		r := TicketRange{FirstId: lastTicketId + 1, LastId: lastTicketId + entry.Tickets}
		l.setTicketRange(entry.Address, r)
		l.setTicketBatch(r.FirstId, TicketBatch{Address: entry.Address, TicketCount: entry.Tickets})
		if len(entry.Guarantees) > 0 {
			l.addGuaranteedUser(guaranteedUser{
				Address:         entry.Address,
				AllottedTickets: entry.Tickets,
				Tiers:           entry.Guarantees,
			})
		}
		lastTicketId = r.LastId
	}
	l.SetUint64("lastTicketId", lastTicketId)
	l.SetUint64("totalGuaranteedTickets", totalGuaranteed)
	return nil
}

func (l *Launchpad) confirmTickets(args ...[]byte) error {
	if err := l.requireStage(ConfirmStage); err != nil {
		return err
	}
	n, err := helpers.ExtractUInt64(0, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return errInvalidTicketsNumber
	}
	sender := l.ctx.Sender()
	if l.isBlacklisted(sender) {
		return errBlacklisted
	}
	r, ok := l.ticketRange(sender)
	if !ok {
		return errNoTickets
	}
	if err := l.requirePayment(l.params.TicketToken, l.ticketPayment(n)); err != nil {
		return err
	}
	confirmed := l.nrConfirmed(sender)
	if confirmed+n > r.Len() {
		return errTooManyConfirmed
	}
	l.confirmedTickets.SetUint64(sender.Bytes(), confirmed+n)
	return nil
}

func (l *Launchpad) depositLaunchpadTokens() error {
	if err := l.requireOwner(); err != nil {
		return err
	}
	if err := l.requireBeforeWinnerSelection(); err != nil {
		return err
	}
	if l.launchpadTokensDeposited() {
		return errAlreadyDeposited
	}
	amount := l.launchpadTokens(l.nrWinningTickets())
	if err := l.requirePayment(l.params.LaunchpadToken, amount); err != nil {
		return err
	}
	l.SetBigInt("launchpadTokensDeposited", amount)
	return nil
}

func (l *Launchpad) launchpadTokensDeposited() bool {
	deposited := l.GetBigInt("launchpadTokensDeposited")
	return deposited != nil && deposited.Sign() > 0
}

func (l *Launchpad) depositedLaunchpadTokens() *big.Int {
	deposited := l.GetBigInt("launchpadTokensDeposited")
	if deposited == nil {
		return new(big.Int)
	}
	return deposited
}
