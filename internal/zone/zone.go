// Package zone resolves the active IANA time zone and converts between wall
// time in a named zone and absolute UTC instants.
package zone

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// OverrideKey is the durable key holding the user-chosen zone.
const OverrideKey = "userTimeZone"

// Fallback is used when neither an override nor a device zone is available.
const Fallback = "UTC"

// FullLayout renders a complete local wall-clock timestamp.
const FullLayout = "2006-01-02 15:04:05"

// DateLayout is a local calendar date.
const DateLayout = "2006-01-02"

var ErrUnknownZone = errors.New("unknown time zone")

type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Adapter resolves the current zone: persisted override, then the device
// zone, then UTC.
type Adapter struct {
	kv     KV
	detect func() string
	log    zerolog.Logger

	mu       sync.Mutex
	override string
	loaded   bool
}

func NewAdapter(kv KV, log zerolog.Logger) *Adapter {
	return &Adapter{
		kv:     kv,
		detect: DeviceZone,
		log:    log.With().Str("component", "zone").Logger(),
	}
}

// WithDetector replaces the device zone detection, mostly for tests.
func (a *Adapter) WithDetector(detect func() string) *Adapter {
	a.detect = detect
	return a
}

// CurrentZone never fails; read errors fall through to the device zone.
func (a *Adapter) CurrentZone() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		v, ok, err := a.kv.Get(OverrideKey)
		switch {
		case err != nil:
			a.log.Warn().Err(err).Msg("reading zone override failed, using device zone")
		case ok && Valid(v):
			a.override = v
			a.loaded = true
		case ok:
			a.log.Warn().Str("zone", v).Msg("stored zone override is not a known zone, ignoring it")
			a.loaded = true
		default:
			a.loaded = true
		}
	}
	if a.override != "" {
		return a.override
	}
	if dev := a.detect(); dev != "" && Valid(dev) {
		return dev
	}
	return Fallback
}

// SetZone persists zone as the override. It is visible to the next
// CurrentZone call.
func (a *Adapter) SetZone(zone string) error {
	if !Valid(zone) {
		return fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.kv.Set(OverrideKey, zone); err != nil {
		return fmt.Errorf("persist zone override: %w", err)
	}
	a.override = zone
	a.loaded = true
	a.log.Info().Str("zone", zone).Msg("zone override set")
	return nil
}

// Location loads the current zone, falling back to UTC.
func (a *Adapter) Location() *time.Location {
	loc, err := time.LoadLocation(a.CurrentZone())
	if err != nil {
		return time.UTC
	}
	return loc
}

// Valid reports whether zone names a loadable IANA zone.
func Valid(zone string) bool {
	if zone == "" || zone == "Local" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}

// Load returns the location for zone or ErrUnknownZone.
func Load(zone string) (*time.Location, error) {
	if !Valid(zone) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	return time.LoadLocation(zone)
}

// DeviceZone detects the IANA name of the host zone from $TZ or the
// /etc/localtime symlink. It returns "" when the zone cannot be named.
func DeviceZone() string {
	if tz, ok := os.LookupEnv("TZ"); ok {
		tz = strings.TrimPrefix(tz, ":")
		if Valid(tz) {
			return tz
		}
	}
	target, err := filepath.EvalSymlinks("/etc/localtime")
	if err != nil {
		return ""
	}
	if i := strings.Index(target, "zoneinfo/"); i >= 0 {
		name := target[i+len("zoneinfo/"):]
		if Valid(name) {
			return name
		}
	}
	return ""
}
