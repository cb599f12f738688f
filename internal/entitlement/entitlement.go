// Package entitlement tracks whether the user owns the paid tier.
package entitlement

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// PurchasedKey is the durable key holding "true" or "false".
const PurchasedKey = "isProPurchased"

type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Store answers entitlement queries from the persisted purchase flag.
// Anything other than a stored "true" means not entitled.
type Store struct {
	mu  sync.Mutex
	kv  KV
	log zerolog.Logger
}

func NewStore(kv KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log.With().Str("component", "entitlement").Logger()}
}

// IsEntitled reports whether the paid tier is unlocked. Read failures
// are treated as not entitled.
func (s *Store) IsEntitled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok, err := s.kv.Get(PurchasedKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("reading purchase flag failed")
		return false
	}
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// SetPurchased records the outcome of a purchase or restore flow.
func (s *Store) SetPurchased(purchased bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(PurchasedKey, strconv.FormatBool(purchased)); err != nil {
		return fmt.Errorf("persist purchase flag: %w", err)
	}
	s.log.Info().Bool("purchased", purchased).Msg("purchase flag updated")
	return nil
}

// Static is a fixed Checker, handy for tests and previews.
type Static bool

func (s Static) IsEntitled() bool { return bool(s) }
