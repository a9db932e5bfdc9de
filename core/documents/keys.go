package documents

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEntity is returned when an entity name cannot be turned into a
// collision-free key segment.
var ErrInvalidEntity = errors.New("invalid entity name")

// ErrPairedKeys is returned by single-key operations on a paired strategy.
var ErrPairedKeys = errors.New("strategy derives a key pair")

// Args is the structured argument record a job receives from the scheduler.
type Args struct {
	Flow   string            `json:"flow,omitempty"`
	Task   string            `json:"task,omitempty"`
	Entity string            `json:"entity,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// Get returns an extra argument, or "" when it is not set.
func (a Args) Get(key string) string {
	return a.Extra[key]
}

// With returns a copy of a with an extra argument set.
func (a Args) With(key, value string) Args {
	extra := make(map[string]string, len(a.Extra)+1)
	for k, v := range a.Extra {
		extra[k] = v
	}
	extra[key] = value
	a.Extra = extra
	return a
}

// Kind identifies a key derivation rule.
type Kind int

const (
	// KindFixed derives one constant key.
	KindFixed Kind = iota + 1
	// KindEntity derives one key per entity.
	KindEntity
	// KindPaired derives a metadata key and a matrix key written together.
	KindPaired
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindEntity:
		return "entity"
	case KindPaired:
		return "paired"
	default:
		return "unknown"
	}
}

// KeyStrategy derives document keys from job arguments. Derivation never
// depends on time or random state, so re-running a job with the same
// arguments addresses the same documents.
type KeyStrategy struct {
	kind       Kind
	key        string
	prefix     string
	namespaced bool
	meta       string
	matrix     string
}

// FixedKey always derives key.
func FixedKey(key string) KeyStrategy {
	return KeyStrategy{kind: KindFixed, key: key}
}

// EntityKeyed derives {flow}/{task-category}/{entity} when namespaced and
// {prefix}{entity} otherwise.
func EntityKeyed(prefix string, namespaced bool) KeyStrategy {
	return KeyStrategy{kind: KindEntity, prefix: prefix, namespaced: namespaced}
}

// PairedKeys always derives the metadata and matrix keys, in that order.
func PairedKeys(meta, matrix string) KeyStrategy {
	return KeyStrategy{kind: KindPaired, meta: meta, matrix: matrix}
}

// Kind returns the derivation rule.
func (s KeyStrategy) Kind() Kind { return s.kind }

// Key derives the single key for args.
func (s KeyStrategy) Key(args Args) (string, error) {
	switch s.kind {
	case KindFixed:
		return s.key, nil
	case KindEntity:
		if err := validateSegment(args.Entity); err != nil {
			return "", err
		}
		ns, err := s.Namespace(args)
		if err != nil {
			return "", err
		}
		return ns + args.Entity, nil
	case KindPaired:
		return "", ErrPairedKeys
	default:
		return "", fmt.Errorf("unknown key strategy %d", s.kind)
	}
}

// Keys derives every key for args.
func (s KeyStrategy) Keys(args Args) ([]string, error) {
	if s.kind == KindPaired {
		return []string{s.meta, s.matrix}, nil
	}
	key, err := s.Key(args)
	if err != nil {
		return nil, err
	}
	return []string{key}, nil
}

// Namespace returns the prefix shared by every entity key derived with the
// flow and task of args. Only entity keyed strategies have one.
func (s KeyStrategy) Namespace(args Args) (string, error) {
	if s.kind != KindEntity {
		return "", fmt.Errorf("%s strategy has no entity namespace", s.kind)
	}
	if !s.namespaced {
		return s.prefix, nil
	}
	category := TaskCategory(args.Task)
	if err := validateSegment(args.Flow); err != nil {
		return "", fmt.Errorf("flow: %w", err)
	}
	if err := validateSegment(category); err != nil {
		return "", fmt.Errorf("task category: %w", err)
	}
	return s.prefix + args.Flow + "/" + category + "/", nil
}

// TaskCategory strips the conventional "Task" suffix from a task name.
func TaskCategory(task string) string {
	return strings.TrimSuffix(task, "Task")
}

func validateSegment(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidEntity)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidEntity, name)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: %q contains a slash", ErrInvalidEntity, name)
	}
	return nil
}
