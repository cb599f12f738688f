package entitlement

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	data    map[string]string
	failGet bool
	failSet bool
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.failGet {
		return "", false, errors.New("read failed")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	if m.failSet {
		return errors.New("write failed")
	}
	m.data[key] = value
	return nil
}

func TestDefaultsToNotEntitled(t *testing.T) {
	s := NewStore(&memKV{data: map[string]string{}}, zerolog.Nop())
	assert.False(t, s.IsEntitled())
}

func TestSetPurchased(t *testing.T) {
	kv := &memKV{data: map[string]string{}}
	s := NewStore(kv, zerolog.Nop())

	require.NoError(t, s.SetPurchased(true))
	assert.True(t, s.IsEntitled())
	assert.Equal(t, "true", kv.data[PurchasedKey])

	require.NoError(t, s.SetPurchased(false))
	assert.False(t, s.IsEntitled())
	assert.Equal(t, "false", kv.data[PurchasedKey])
}

func TestGarbageAndReadFailureMeanNotEntitled(t *testing.T) {
	kv := &memKV{data: map[string]string{PurchasedKey: "yes please"}}
	s := NewStore(kv, zerolog.Nop())
	assert.False(t, s.IsEntitled())

	kv.data[PurchasedKey] = "true"
	kv.failGet = true
	assert.False(t, s.IsEntitled())
}

func TestSetPurchasedWriteFailure(t *testing.T) {
	kv := &memKV{data: map[string]string{}, failSet: true}
	s := NewStore(kv, zerolog.Nop())
	assert.Error(t, s.SetPurchased(true))
	assert.False(t, s.IsEntitled())
}

func TestStatic(t *testing.T) {
	assert.True(t, Static(true).IsEntitled())
	assert.False(t, Static(false).IsEntitled())
}
