package env

import (
	"math"

	"github.com/multiversx/mx-launchpad-sc-sub000/vm/costs"
)

const outOfGas = "not enough gas"

// GasCounter meters the work of one call. Exceeding the limit panics; the VM recovers the panic and
// discards every write of the call.
type GasCounter struct {
	UsedGas  uint64
	gasLimit uint64
}

func NewGasCounter(gasLimit uint64) *GasCounter {
	return &GasCounter{gasLimit: gasLimit}
}

// NewUnlimitedGasCounter is used by read-only queries.
func NewUnlimitedGasCounter() *GasCounter {
	return &GasCounter{gasLimit: math.MaxUint64}
}

func (g *GasCounter) AddGas(gas uint64) {
	if g.gasLimit-g.UsedGas < gas {
		g.UsedGas = g.gasLimit
		panic(outOfGas)
	}
	g.UsedGas += gas
}

func (g *GasCounter) AddWrittenBytesAsGas(size int) {
	g.AddGas(costs.WriteStateGas + uint64(size)*costs.WriteStatePerByteGas)
}

func (g *GasCounter) AddReadBytesAsGas(size int) {
	g.AddGas(costs.ReadStateGas + uint64(size)*costs.ReadStatePerByteGas)
}

func (g *GasCounter) RemainingGas() uint64 {
	return g.gasLimit - g.UsedGas
}

func (g *GasCounter) Reset(gasLimit uint64) {
	g.UsedGas = 0
	g.gasLimit = gasLimit
}

func IsOutOfGas(recovered interface{}) bool {
	s, ok := recovered.(string)
	return ok && s == outOfGas
}
