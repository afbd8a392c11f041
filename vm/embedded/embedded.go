package embedded

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/env"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/helpers"
)

type EmbeddedContractType = common.Hash

var (
	LaunchpadContract  EmbeddedContractType
	AvailableContracts map[EmbeddedContractType]struct{}
)

func init() {
	LaunchpadContract.SetBytes([]byte{0x1})

	AvailableContracts = map[EmbeddedContractType]struct{}{
		LaunchpadContract: {},
	}
}

type Contract interface {
	Deploy(args ...[]byte) error
	Call(method string, args ...[]byte) ([]byte, error)
	Read(method string, args ...[]byte) ([]byte, error)
}

// base contract with useful common methods

type BaseContract struct {
	ctx env.CallContext
	env env.Env
}

func (b *BaseContract) SetOwner(address common.Address) {
	b.env.SetValue(b.ctx, []byte("owner"), address.Bytes())
}

func (b *BaseContract) Owner() common.Address {
	bytes := b.env.GetValue(b.ctx, []byte("owner"))
	var owner common.Address
	owner.SetBytes(bytes)
	return owner
}

func (b *BaseContract) Deploy(contractType EmbeddedContractType) {
	b.env.Deploy(b.ctx, contractType)
}

func (b *BaseContract) SetUint64(s string, value uint64) {
	b.env.SetValue(b.ctx, []byte(s), common.ToBytes(value))
}

func (b *BaseContract) GetUint64(s string) uint64 {
	data := b.env.GetValue(b.ctx, []byte(s))
	if data == nil {
		return 0
	}
	ret, _ := helpers.ExtractUInt64(0, data)
	return ret
}

func (b *BaseContract) SetBigInt(s string, value *big.Int) {
	b.env.SetValue(b.ctx, []byte(s), value.Bytes())
}

func (b *BaseContract) GetBigInt(s string) *big.Int {
	data := b.env.GetValue(b.ctx, []byte(s))
	if data == nil {
		return nil
	}
	ret := new(big.Int)
	ret.SetBytes(data)
	return ret
}

func (b *BaseContract) SetByte(s string, value byte) {
	b.env.SetValue(b.ctx, []byte(s), []byte{value})
}

func (b *BaseContract) GetByte(s string) byte {
	data := b.env.GetValue(b.ctx, []byte(s))
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// SetRlp panics on values rlp cannot encode; every caller stores a fixed record type.
func (b *BaseContract) SetRlp(s string, value interface{}) {
	b.env.SetValue(b.ctx, []byte(s), helpers.RlpArg(value))
}

// GetRlp reports whether the key is present.
func (b *BaseContract) GetRlp(s string, out interface{}) (bool, error) {
	data := b.env.GetValue(b.ctx, []byte(s))
	if data == nil {
		return false, nil
	}
	return true, rlp.DecodeBytes(data, out)
}

func (b *BaseContract) IsOwner() bool {
	return b.Owner() == b.ctx.Sender()
}
