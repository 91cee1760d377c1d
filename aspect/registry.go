// Package aspect decodes raw aspect payloads into typed values.
//
// Aspects are looked up by exact name in a Registry. A name without an entry
// is the normal "no typed decoder" case, not an error. The Default registry
// knows the aspects gmsctl works with and which of them are timeseries.
package aspect

import (
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/teranos/gmsctl/errors"
)

// Map holds aspects by name. Values are either raw decoded JSON
// (map[string]interface{}) or pointers to typed structs.
type Map map[string]interface{}

// Entry registers one aspect.
type Entry struct {
	Name string
	// New returns a pointer to a zero typed value to decode into.
	New        func() interface{}
	Timeseries bool
}

// Registry maps aspect names to typed decoders. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Default is populated with the built-in aspects at init.
var Default = NewRegistry()

// validate is a package-level singleton; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Register adds or replaces an entry.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Name] = e
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// IsTimeseries reports whether name is a registered timeseries aspect.
func (r *Registry) IsTimeseries(name string) bool {
	e, ok := r.Lookup(name)
	return ok && e.Timeseries
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Partition splits names into synchronous and timeseries aspects, keeping order.
// Timeseries names are deduplicated.
func (r *Registry) Partition(names []string) (synchronous, timeseries []string) {
	seen := make(map[string]bool)
	for _, name := range names {
		if !r.IsTimeseries(name) {
			synchronous = append(synchronous, name)
			continue
		}
		if !seen[name] {
			seen[name] = true
			timeseries = append(timeseries, name)
		}
	}
	return synchronous, timeseries
}

// Decode converts a raw aspect payload into its typed form.
//
// ok is false when no decoder is registered for name; err is then nil.
// Otherwise raw is normalized, decoded and validated, and any failure is
// returned as err.
func (r *Registry) Decode(name string, raw interface{}) (value interface{}, ok bool, err error) {
	entry, found := r.Lookup(name)
	if !found || entry.New == nil {
		return nil, false, nil
	}

	normalized, isMap := Normalize(raw).(map[string]interface{})
	if !isMap {
		return nil, true, errors.Newf("aspect %s: expected an object, got %T", name, raw)
	}

	target := entry.New()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, true, errors.Wrapf(err, "aspect %s: failed to create decoder", name)
	}
	if err := decoder.Decode(normalized); err != nil {
		return nil, true, errors.Wrapf(err, "aspect %s: failed to decode", name)
	}
	if err := validate.Struct(target); err != nil {
		return nil, true, errors.Wrapf(err, "aspect %s: invalid value", name)
	}

	return target, true, nil
}

// Decode uses the Default registry.
func Decode(name string, raw interface{}) (interface{}, bool, error) {
	return Default.Decode(name, raw)
}

// IsTimeseries uses the Default registry.
func IsTimeseries(name string) bool {
	return Default.IsTimeseries(name)
}
