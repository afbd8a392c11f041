package env

import "github.com/multiversx/mx-launchpad-sc-sub000/common"

// Map is a namespace of contract storage: every key is stored as prefix || key.
type Map struct {
	env    Env
	prefix []byte
	ctx    CallContext
}

// prefix length should be <=30 or prefix will be truncated
func NewMap(prefix []byte, env Env, ctx CallContext) *Map {
	if len(prefix) >= maxEnvKeyLength-1 {
		prefix = prefix[:maxEnvKeyLength-2]
	}
	return &Map{prefix: prefix, env: env, ctx: ctx}
}

func (m *Map) formatKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(m.prefix)+len(key)), m.prefix...), key...)
}

func (m *Map) Set(key []byte, value []byte) {
	m.env.SetValue(m.ctx, m.formatKey(key), value)
}

func (m *Map) Get(key []byte) []byte {
	return m.env.GetValue(m.ctx, m.formatKey(key))
}

func (m *Map) Has(key []byte) bool {
	return m.Get(key) != nil
}

func (m *Map) Remove(key []byte) {
	m.env.RemoveValue(m.ctx, m.formatKey(key))
}

func (m *Map) SetUint64(key []byte, value uint64) {
	m.Set(key, common.ToBytes(value))
}

// GetUint64 returns zero for an absent key.
func (m *Map) GetUint64(key []byte) uint64 {
	data := m.Get(key)
	if data == nil {
		return 0
	}
	return common.FromBytes(data)
}
