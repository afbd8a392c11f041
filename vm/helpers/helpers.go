package helpers

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/pkg/errors"
)

var indexOufOfRange = errors.New("index out of range")

func assertLen(index int, args ...[]byte) error {
	if index >= len(args) {
		return indexOufOfRange
	}
	return nil
}

func ExtractAddr(index int, args ...[]byte) (common.Address, error) {
	if err := assertLen(index, args...); err != nil {
		return common.Address{}, err
	}
	if len(args[index]) != common.AddressLength {
		return common.Address{}, errors.Errorf("argument %v is not an address", index)
	}
	return common.BytesToAddress(args[index]), nil
}

func ExtractUInt64(index int, args ...[]byte) (uint64, error) {
	if err := assertLen(index, args...); err != nil {
		return 0, err
	}
	if len(args[index]) == 0 || len(args[index]) > 8 {
		return 0, errors.Errorf("argument %v is not an uint64", index)
	}
	return common.FromBytes(args[index]), nil
}

// ExtractRlp decodes a structured argument into out.
func ExtractRlp(index int, out interface{}, args ...[]byte) error {
	if err := assertLen(index, args...); err != nil {
		return err
	}
	if err := rlp.DecodeBytes(args[index], out); err != nil {
		return errors.Wrapf(err, "argument %v cannot be decoded", index)
	}
	return nil
}

// ExtractAddrs treats every argument starting at index as an address.
func ExtractAddrs(index int, args ...[]byte) ([]common.Address, error) {
	var result []common.Address
	for i := index; i < len(args); i++ {
		addr, err := ExtractAddr(i, args...)
		if err != nil {
			return nil, err
		}
		result = append(result, addr)
	}
	return result, nil
}

func RlpArg(v interface{}) []byte {
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		panic(err)
	}
	return data
}
