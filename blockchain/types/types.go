package types

import (
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/crypto"
)

type TxType = uint16

const (
	DeployContractTx TxType = 0x1
	CallContractTx   TxType = 0x2
)

type Seed [32]byte

func (s Seed) Bytes() []byte { return s[:] }

// Header carries the logical time and the randomness beacon value every call observes.
type Header struct {
	Height uint64
	Seed   Seed
}

func (h *Header) Time() uint64 {
	return h.Height
}

// NextHeader advances logical time by one step and derives the next beacon value from the current one.
func (h *Header) NextHeader() *Header {
	return &Header{
		Height: h.Height + 1,
		Seed:   crypto.HashConcat(h.Seed[:], common.ToBytes(h.Height+1)),
	}
}

type Transaction struct {
	From      common.Address
	Nonce     uint64
	Type      TxType
	To        *common.Address `rlp:"nil"`
	Method    string
	Args      [][]byte
	PayToken  string
	PayAmount *big.Int
	GasLimit  uint64

	hash atomic.Value
}

func (tx *Transaction) AmountOrZero() *big.Int {
	if tx.PayAmount == nil {
		return big.NewInt(0)
	}
	return tx.PayAmount
}

func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	enc, _ := rlp.EncodeToBytes([]interface{}{
		tx.From, tx.Nonce, tx.Type, tx.To, tx.Method, tx.Args, tx.PayToken, tx.AmountOrZero(), tx.GasLimit,
	})
	h := common.Hash(crypto.Hash(enc))
	tx.hash.Store(h)
	return h
}

type TxReceipt struct {
	TxHash          common.Hash
	From            common.Address
	ContractAddress common.Address
	Method          string
	Success         bool
	Error           error
	GasUsed         uint64
	Output          []byte
}
