package env

import (
	"math/big"

	"github.com/multiversx/mx-launchpad-sc-sub000/blockchain/types"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/core/state"
	"github.com/multiversx/mx-launchpad-sc-sub000/crypto"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/costs"
	"github.com/pkg/errors"
)

const maxEnvKeyLength = 32

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("value must be non-negative")
)

// Env is everything a contract can observe or change during one call.
type Env interface {
	BlockNumber() uint64
	BlockSeed() []byte
	SetValue(ctx CallContext, key []byte, value []byte)
	GetValue(ctx CallContext, key []byte) []byte
	RemoveValue(ctx CallContext, key []byte)
	Deploy(ctx CallContext, codeHash common.Hash)
	Send(ctx CallContext, dest common.Address, token string, amount *big.Int) error
	Balance(address common.Address, token string) *big.Int
	Hash(data []byte) [32]byte
	RemainingGas() uint64
}

type contractValue struct {
	value   []byte
	removed bool
}

type balanceKey struct {
	address common.Address
	token   string
}

type EnvImp struct {
	state      *state.StateDB
	block      *types.Header
	gasCounter *GasCounter

	contractStoreCache    map[common.Address]map[string]*contractValue
	balancesCache         map[balanceKey]*big.Int
	deployedContractCache map[common.Address]common.Hash
}

func NewEnvImp(s *state.StateDB, block *types.Header, gasCounter *GasCounter) *EnvImp {
	return &EnvImp{state: s, block: block, gasCounter: gasCounter,
		contractStoreCache:    map[common.Address]map[string]*contractValue{},
		balancesCache:         map[balanceKey]*big.Int{},
		deployedContractCache: map[common.Address]common.Hash{},
	}
}

func (e *EnvImp) getBalance(address common.Address, token string) *big.Int {
	if b, ok := e.balancesCache[balanceKey{address, token}]; ok {
		return b
	}
	return e.state.GetBalance(address, token)
}

func (e *EnvImp) setBalance(address common.Address, token string, amount *big.Int) {
	e.balancesCache[balanceKey{address, token}] = amount
}

func (e *EnvImp) addBalance(address common.Address, token string, amount *big.Int) {
	e.setBalance(address, token, new(big.Int).Add(e.getBalance(address, token), amount))
}

func (e *EnvImp) subBalance(address common.Address, token string, amount *big.Int) {
	e.setBalance(address, token, new(big.Int).Sub(e.getBalance(address, token), amount))
}

// Transfer moves funds between two accounts outside of a contract context, e.g. a call payment.
func (e *EnvImp) Transfer(from, to common.Address, token string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if e.getBalance(from, token).Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	e.gasCounter.AddGas(costs.MoveBalanceGas)
	e.subBalance(from, token, amount)
	e.addBalance(to, token, amount)
	return nil
}

func (e *EnvImp) Send(ctx CallContext, dest common.Address, token string, amount *big.Int) error {
	return e.Transfer(ctx.ContractAddr(), dest, token, amount)
}

func (e *EnvImp) Balance(address common.Address, token string) *big.Int {
	e.gasCounter.AddReadBytesAsGas(1)
	return new(big.Int).Set(e.getBalance(address, token))
}

func (e *EnvImp) Deploy(ctx CallContext, codeHash common.Hash) {
	e.deployedContractCache[ctx.ContractAddr()] = codeHash
	e.gasCounter.AddGas(costs.DeployContractGas)
}

func (e *EnvImp) BlockNumber() uint64 {
	e.gasCounter.AddGas(costs.ReadBlockGas)
	return e.block.Height
}

func (e *EnvImp) BlockSeed() []byte {
	e.gasCounter.AddGas(costs.ReadBlockGas)
	return e.block.Seed.Bytes()
}

func (e *EnvImp) Hash(data []byte) [32]byte {
	e.gasCounter.AddGas(costs.ComputeHashGas)
	return crypto.Hash(data)
}

func (e *EnvImp) RemainingGas() uint64 {
	return e.gasCounter.RemainingGas()
}

func (e *EnvImp) SetValue(ctx CallContext, key []byte, value []byte) {
	addr := ctx.ContractAddr()
	cache, ok := e.contractStoreCache[addr]
	if !ok {
		cache = make(map[string]*contractValue)
		e.contractStoreCache[addr] = cache
	}
	e.gasCounter.AddWrittenBytesAsGas(len(key) + len(value))
	cache[string(key)] = &contractValue{
		value:   value,
		removed: false,
	}
}

func (e *EnvImp) GetValue(ctx CallContext, key []byte) []byte {
	return e.ReadContractData(ctx.ContractAddr(), key)
}

func (e *EnvImp) RemoveValue(ctx CallContext, key []byte) {
	addr := ctx.ContractAddr()
	cache, ok := e.contractStoreCache[addr]
	if !ok {
		cache = map[string]*contractValue{}
		e.contractStoreCache[addr] = cache
	}
	e.gasCounter.AddGas(costs.RemoveStateGas)
	cache[string(key)] = &contractValue{removed: true}
}

func (e *EnvImp) ReadContractData(contractAddr common.Address, key []byte) []byte {
	if cache, ok := e.contractStoreCache[contractAddr]; ok {
		if value, ok := cache[string(key)]; ok {
			if value.removed {
				e.gasCounter.AddReadBytesAsGas(0)
				return nil
			}
			e.gasCounter.AddReadBytesAsGas(len(value.value))
			return value.value
		}
	}
	value := e.state.GetContractValue(contractAddr, key)
	e.gasCounter.AddReadBytesAsGas(len(value))
	return value
}

// Commit moves the changes of the call into the state; the state itself is committed by the caller.
func (e *EnvImp) Commit() {
	for contract, cache := range e.contractStoreCache {
		for k, v := range cache {
			if v.removed {
				e.state.RemoveContractValue(contract, []byte(k))
			} else {
				e.state.SetContractValue(contract, []byte(k), v.value)
			}
		}
	}
	for key, b := range e.balancesCache {
		e.state.SetBalance(key.address, key.token, b)
	}
	for contract, codeHash := range e.deployedContractCache {
		e.state.DeployContract(contract, codeHash)
	}
	e.Reset()
}

func (e *EnvImp) Reset() {
	e.contractStoreCache = map[common.Address]map[string]*contractValue{}
	e.balancesCache = map[balanceKey]*big.Int{}
	e.deployedContractCache = map[common.Address]common.Hash{}
}
