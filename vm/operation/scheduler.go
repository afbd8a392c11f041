package operation

import (
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/costs"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/env"
	"github.com/pkg/errors"
)

var ongoingOperationKey = []byte("ongoingOperation")

type LoopOp byte

const (
	Continue LoopOp = iota
	Stop
)

type Status byte

const (
	Completed Status = iota
	Interrupted
)

func (s Status) String() string {
	if s == Completed {
		return "completed"
	}
	return "interrupted"
}

// Storage is the slice of contract storage the scheduler needs.
type Storage interface {
	Get(key []byte) []byte
	Set(key []byte, value []byte)
	Remove(key []byte)
}

type GasMeter interface {
	RemainingGas() uint64
}

// Manager loads, saves and clears the single ongoing operation and runs budget-bounded loops.
type Manager struct {
	storage Storage
	meter   GasMeter
	reserve uint64
}

func NewManager(e env.Env, ctx env.CallContext) *Manager {
	return NewManagerWithStorage(env.NewMap(nil, e, ctx), e, costs.MinGasToSaveProgress)
}

func NewManagerWithStorage(storage Storage, meter GasMeter, reserve uint64) *Manager {
	return &Manager{storage: storage, meter: meter, reserve: reserve}
}

// RunWhileItHasGas calls step until it returns Stop or until the remaining gas no longer covers the
// most expensive iteration seen so far plus the reserve. Step always runs at least once.
func (m *Manager) RunWhileItHasGas(step func() LoopOp) Status {
	var gasPerIteration uint64
	gasBefore := m.meter.RemainingGas()
	for {
		if step() == Stop {
			m.Clear()
			return Completed
		}
		gasAfter := m.meter.RemainingGas()
		if cost := gasBefore - gasAfter; cost > gasPerIteration {
			gasPerIteration = cost
		}
		if !m.canContinue(gasPerIteration) {
			return Interrupted
		}
		gasBefore = gasAfter
	}
}

func (m *Manager) canContinue(operationCost uint64) bool {
	gasLeft := m.meter.RemainingGas()
	return gasLeft > m.reserve && gasLeft-m.reserve > operationCost
}

func (m *Manager) load() (Operation, error) {
	return Decode(m.storage.Get(ongoingOperationKey))
}

// Current reports the kind of the stored operation, KindNone if there is none.
func (m *Manager) Current() (Kind, error) {
	op, err := m.load()
	if err != nil {
		return KindNone, err
	}
	if op == nil {
		return KindNone, nil
	}
	return op.Kind(), nil
}

func (m *Manager) LoadFilterTickets(fresh func() *FilterTickets) (*FilterTickets, error) {
	op, err := m.load()
	if err != nil {
		return nil, err
	}
	switch op := op.(type) {
	case nil:
		return fresh(), nil
	case *FilterTickets:
		return op, nil
	default:
		return nil, ErrAnotherOperation
	}
}

func (m *Manager) LoadSelectWinners(fresh func() *SelectWinners) (*SelectWinners, error) {
	op, err := m.load()
	if err != nil {
		return nil, err
	}
	switch op := op.(type) {
	case nil:
		return fresh(), nil
	case *SelectWinners:
		return op, nil
	default:
		return nil, ErrAnotherOperation
	}
}

func (m *Manager) LoadAdditionalSelection(fresh func() *AdditionalSelection) (*AdditionalSelection, error) {
	op, err := m.load()
	if err != nil {
		return nil, err
	}
	switch op := op.(type) {
	case nil:
		return fresh(), nil
	case *AdditionalSelection:
		return op, nil
	default:
		return nil, ErrAnotherOperation
	}
}

func (m *Manager) Save(op Operation) error {
	data, err := Encode(op)
	if err != nil {
		return errors.Wrap(err, "failed to save ongoing operation")
	}
	m.storage.Set(ongoingOperationKey, data)
	return nil
}

func (m *Manager) Clear() {
	m.storage.Remove(ongoingOperationKey)
}
