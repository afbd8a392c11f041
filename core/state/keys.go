package state

import (
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
)

var (
	balancePrefix       = []byte{0x1}
	contractCodePrefix  = []byte{0x2}
	contractStorePrefix = []byte{0x5}
)

var StateDbKeys = &stateDbKeys{}

type stateDbKeys struct {
}

func (s *stateDbKeys) BalanceKey(addr common.Address, asset string) []byte {
	return append(append(append([]byte{}, balancePrefix...), addr[:]...), []byte(asset)...)
}

func (s *stateDbKeys) ContractCodeKey(addr common.Address) []byte {
	return append(append([]byte{}, contractCodePrefix...), addr[:]...)
}

func (s *stateDbKeys) ContractStoreKey(addr common.Address, key []byte) []byte {
	return append(append(append([]byte{}, contractStorePrefix...), addr[:]...), key...)
}
