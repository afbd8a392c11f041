package env

import (
	"math/big"

	"github.com/multiversx/mx-launchpad-sc-sub000/blockchain/types"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/crypto"
)

type CallContext interface {
	Sender() common.Address
	ContractAddr() common.Address
	Nonce() uint64
	PayToken() string
	PayAmount() *big.Int
}

type CallContextImpl struct {
	tx *types.Transaction
}

func NewCallContextImpl(tx *types.Transaction) *CallContextImpl {
	return &CallContextImpl{tx: tx}
}

func (c *CallContextImpl) Sender() common.Address {
	return c.tx.From
}

func (c *CallContextImpl) ContractAddr() common.Address {
	return *c.tx.To
}

func (c *CallContextImpl) Nonce() uint64 {
	return c.tx.Nonce
}

func (c *CallContextImpl) PayToken() string {
	return c.tx.PayToken
}

func (c *CallContextImpl) PayAmount() *big.Int {
	return c.tx.AmountOrZero()
}

type DeployContextImpl struct {
	tx *types.Transaction
}

func NewDeployContextImpl(tx *types.Transaction) *DeployContextImpl {
	return &DeployContextImpl{tx: tx}
}

func (d *DeployContextImpl) Sender() common.Address {
	return d.tx.From
}

func (d *DeployContextImpl) ContractAddr() common.Address {
	return ComputeContractAddr(d.tx.From, d.tx.Nonce)
}

func (d *DeployContextImpl) Nonce() uint64 {
	return d.tx.Nonce
}

func (d *DeployContextImpl) PayToken() string {
	return d.tx.PayToken
}

func (d *DeployContextImpl) PayAmount() *big.Int {
	return d.tx.AmountOrZero()
}

// ReadContextImpl serves read-only queries; there is no sender and no payment.
type ReadContextImpl struct {
	Contract common.Address
}

func (r *ReadContextImpl) Sender() common.Address {
	return common.Address{}
}

func (r *ReadContextImpl) ContractAddr() common.Address {
	return r.Contract
}

func (r *ReadContextImpl) Nonce() uint64 {
	return 0
}

func (r *ReadContextImpl) PayToken() string {
	return ""
}

func (r *ReadContextImpl) PayAmount() *big.Int {
	return big.NewInt(0)
}

func ComputeContractAddr(from common.Address, nonce uint64) common.Address {
	hash := crypto.HashConcat(from.Bytes(), common.ToBytes(nonce))
	return common.BytesToAddress(hash[:])
}
