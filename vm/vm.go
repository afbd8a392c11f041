package vm

import (
	"github.com/multiversx/mx-launchpad-sc-sub000/blockchain/types"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/core/state"
	"github.com/multiversx/mx-launchpad-sc-sub000/log"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/costs"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/embedded"
	env2 "github.com/multiversx/mx-launchpad-sc-sub000/vm/env"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
)

var (
	UnexpectedTx = errors.New("unexpected tx type")
	ErrOutOfGas  = errors.New("out of gas")

	errUnknownContract = errors.New("unknown contract")
	errNotDeployed     = errors.New("contract is not deployed")
	errDeployed        = errors.New("contract is already deployed")
	errNoGasLimit      = errors.New("gas limit is not set")
)

type VM interface {
	Run(tx *types.Transaction) *types.TxReceipt
	Read(contractAddr common.Address, method string, args ...[]byte) ([]byte, error)
}

// VmImpl executes transactions against the state at one block header. Every successful transaction
// is committed on its own; a failed one leaves no trace except its receipt.
type VmImpl struct {
	state   *state.StateDB
	header  *types.Header
	metrics *vmMetrics
	log     log.Logger
	tlog    log.ThrottlingLogger
}

func NewVmImpl(s *state.StateDB, header *types.Header) *VmImpl {
	return NewVmImplWithRegistry(s, header, metrics.DefaultRegistry)
}

func NewVmImplWithRegistry(s *state.StateDB, header *types.Header, registry metrics.Registry) *VmImpl {
	logger := log.New("component", "vm", "height", header.Height)
	return &VmImpl{
		state:   s,
		header:  header,
		metrics: newVmMetrics(registry),
		log:     logger,
		tlog:    log.NewThrottlingLogger(logger),
	}
}

func (vm *VmImpl) createContract(ctx env2.CallContext, e env2.Env, codeHash common.Hash) embedded.Contract {
	switch codeHash {
	case embedded.LaunchpadContract:
		return embedded.NewLaunchpad(ctx, e)
	default:
		return nil
	}
}

// deploy expects the code hash of the contract as the first argument, the rest goes to the contract.
func (vm *VmImpl) deploy(tx *types.Transaction, e *env2.EnvImp) (common.Address, []byte, error) {
	ctx := env2.NewDeployContextImpl(tx)
	if len(tx.Args) == 0 {
		return ctx.ContractAddr(), nil, errUnknownContract
	}
	if vm.state.GetCodeHash(ctx.ContractAddr()) != nil {
		return ctx.ContractAddr(), nil, errDeployed
	}
	contract := vm.createContract(ctx, e, common.BytesToHash(tx.Args[0]))
	if contract == nil {
		return ctx.ContractAddr(), nil, errUnknownContract
	}
	if err := e.Transfer(tx.From, ctx.ContractAddr(), tx.PayToken, tx.AmountOrZero()); err != nil {
		return ctx.ContractAddr(), nil, err
	}
	return ctx.ContractAddr(), nil, contract.Deploy(tx.Args[1:]...)
}

func (vm *VmImpl) call(tx *types.Transaction, e *env2.EnvImp) (common.Address, []byte, error) {
	if tx.To == nil {
		return common.Address{}, nil, errNotDeployed
	}
	ctx := env2.NewCallContextImpl(tx)
	codeHash := vm.state.GetCodeHash(*tx.To)
	if codeHash == nil {
		return ctx.ContractAddr(), nil, errNotDeployed
	}
	contract := vm.createContract(ctx, e, *codeHash)
	if contract == nil {
		return ctx.ContractAddr(), nil, errUnknownContract
	}
	if err := e.Transfer(tx.From, ctx.ContractAddr(), tx.PayToken, tx.AmountOrZero()); err != nil {
		return ctx.ContractAddr(), nil, err
	}
	output, err := contract.Call(tx.Method, tx.Args...)
	return ctx.ContractAddr(), output, err
}

func (vm *VmImpl) execute(tx *types.Transaction, e *env2.EnvImp, gas *env2.GasCounter) (contractAddr common.Address, output []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if env2.IsOutOfGas(r) {
				err = ErrOutOfGas
			} else {
				err = errors.Errorf("contract panic: %v", r)
			}
			output = nil
		}
	}()
	gas.AddGas(costs.ContractCallGas)
	switch tx.Type {
	case types.CallContractTx:
		return vm.call(tx, e)
	default:
		gas.AddGas(costs.DeployContractGas)
		return vm.deploy(tx, e)
	}
}

func (vm *VmImpl) Run(tx *types.Transaction) *types.TxReceipt {
	receipt := &types.TxReceipt{
		TxHash: tx.Hash(),
		From:   tx.From,
		Method: tx.Method,
	}
	if tx.Type != types.CallContractTx && tx.Type != types.DeployContractTx {
		receipt.Error = UnexpectedTx
		return receipt
	}
	if tx.GasLimit == 0 {
		receipt.Error = errNoGasLimit
		return receipt
	}

	gas := env2.NewGasCounter(tx.GasLimit)
	e := env2.NewEnvImp(vm.state, vm.header, gas)
	contractAddr, output, err := vm.execute(tx, e, gas)
	if err == nil {
		e.Commit()
		if commitErr := vm.state.Commit(); commitErr != nil {
			vm.state.Reset()
			err = errors.Wrap(commitErr, "failed to commit state")
		}
	} else {
		e.Reset()
	}

	receipt.ContractAddress = contractAddr
	receipt.GasUsed = gas.UsedGas
	receipt.Error = err
	receipt.Success = err == nil
	if receipt.Success {
		receipt.Output = output
	}

	vm.metrics.addCall(tx.Method, gas.UsedGas, err)
	if err != nil {
		vm.log.Debug("Contract call failed", "method", tx.Method, "from", tx.From, "err", err)
		return receipt
	}
	if tx.Type == types.CallContractTx && embedded.IsResumableMethod(tx.Method) && len(output) > 0 {
		status := operation.Status(output[0])
		vm.metrics.addOperation(status)
		if status == operation.Interrupted {
			vm.tlog.Info("Operation interrupted, call again to resume", "method", tx.Method)
		}
	}
	return receipt
}

// Read runs a query without a gas limit; nothing it touches is committed.
func (vm *VmImpl) Read(contractAddr common.Address, method string, args ...[]byte) (output []byte, err error) {
	codeHash := vm.state.GetCodeHash(contractAddr)
	if codeHash == nil {
		return nil, errNotDeployed
	}
	ctx := &env2.ReadContextImpl{Contract: contractAddr}
	e := env2.NewEnvImp(vm.state, vm.header, env2.NewUnlimitedGasCounter())
	contract := vm.createContract(ctx, e, *codeHash)
	if contract == nil {
		return nil, errUnknownContract
	}
	defer func() {
		if r := recover(); r != nil {
			output, err = nil, errors.Errorf("contract panic: %v", r)
		}
	}()
	return contract.Read(method, args...)
}
