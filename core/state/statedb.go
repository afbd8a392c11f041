package state

import (
	"math/big"
	"sort"
	"sync"

	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/log"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"
)

type pendingValue struct {
	value   []byte
	removed bool
}

// StateDB is the durable state of every deployed contract: contract stores, contract code
// identifiers and per-asset balances. Writes are buffered and reach the database in a single batch
// on Commit.
type StateDB struct {
	db  dbm.DB
	log log.Logger

	pending map[string]*pendingValue
	lock    sync.RWMutex
}

func NewStateDB(db dbm.DB) *StateDB {
	return &StateDB{
		db:      db,
		log:     log.New("component", "state"),
		pending: make(map[string]*pendingValue),
	}
}

func (s *StateDB) get(key []byte) []byte {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if v, ok := s.pending[string(key)]; ok {
		if v.removed {
			return nil
		}
		return v.value
	}
	value, err := s.db.Get(key)
	if err != nil {
		s.log.Error("failed to read state", "err", err)
		return nil
	}
	return value
}

func (s *StateDB) set(key []byte, value []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pending[string(key)] = &pendingValue{value: value}
}

func (s *StateDB) remove(key []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pending[string(key)] = &pendingValue{removed: true}
}

func (s *StateDB) GetContractValue(addr common.Address, key []byte) []byte {
	return s.get(StateDbKeys.ContractStoreKey(addr, key))
}

func (s *StateDB) SetContractValue(addr common.Address, key []byte, value []byte) {
	s.set(StateDbKeys.ContractStoreKey(addr, key), value)
}

func (s *StateDB) RemoveContractValue(addr common.Address, key []byte) {
	s.remove(StateDbKeys.ContractStoreKey(addr, key))
}

func (s *StateDB) GetBalance(addr common.Address, asset string) *big.Int {
	data := s.get(StateDbKeys.BalanceKey(addr, asset))
	return new(big.Int).SetBytes(data)
}

func (s *StateDB) SetBalance(addr common.Address, asset string, amount *big.Int) {
	key := StateDbKeys.BalanceKey(addr, asset)
	if amount.Sign() == 0 {
		s.remove(key)
		return
	}
	s.set(key, amount.Bytes())
}

func (s *StateDB) AddBalance(addr common.Address, asset string, amount *big.Int) {
	s.SetBalance(addr, asset, new(big.Int).Add(s.GetBalance(addr, asset), amount))
}

func (s *StateDB) GetCodeHash(addr common.Address) *common.Hash {
	data := s.get(StateDbKeys.ContractCodeKey(addr))
	if data == nil {
		return nil
	}
	var hash common.Hash
	copy(hash[:], data)
	return &hash
}

func (s *StateDB) DeployContract(addr common.Address, codeHash common.Hash) {
	s.set(StateDbKeys.ContractCodeKey(addr), codeHash[:])
}

// Commit atomically writes every pending change.
func (s *StateDB) Commit() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batch := s.db.NewBatch()
	defer batch.Close()
	for _, k := range keys {
		v := s.pending[k]
		if v.removed {
			batch.Delete([]byte(k))
		} else {
			batch.Set([]byte(k), v.value)
		}
	}
	if err := batch.WriteSync(); err != nil {
		return errors.Wrap(err, "failed to commit state")
	}
	s.pending = make(map[string]*pendingValue)
	return nil
}

// Reset drops every pending change.
func (s *StateDB) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pending = make(map[string]*pendingValue)
}
