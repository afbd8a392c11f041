package embedded

import (
	mapset "github.com/deckarep/golang-set"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/helpers"
)

func (l *Launchpad) blacklistArgs(args ...[]byte) ([]common.Address, error) {
	if err := l.requireOwner(); err != nil {
		return nil, err
	}
	if err := l.requireBeforeWinnerSelection(); err != nil {
		return nil, err
	}
	addrs, err := helpers.ExtractAddrs(0, args...)
	if err != nil {
		return nil, err
	}
	unique := mapset.NewSet()
	var result []common.Address
	for _, addr := range addrs {
		if unique.Add(addr) {
			result = append(result, addr)
		}
	}
	return result, nil
}

// addUsersToBlacklist refunds whatever the users have confirmed so far.
func (l *Launchpad) addUsersToBlacklist(args ...[]byte) error {
	addrs, err := l.blacklistArgs(args...)
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		if confirmed := l.nrConfirmed(addr); confirmed > 0 {
			if err := l.env.Send(l.ctx, addr, l.params.TicketToken, l.ticketPayment(confirmed)); err != nil {
				return err
			}
			l.confirmedTickets.Remove(addr.Bytes())
		}
		l.blacklist.Set(addr.Bytes(), []byte{1})
	}
	return nil
}

func (l *Launchpad) removeUsersFromBlacklist(args ...[]byte) error {
	addrs, err := l.blacklistArgs(args...)
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		l.blacklist.Remove(addr.Bytes())
	}
	return nil
}
