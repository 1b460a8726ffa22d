package core

import (
	"errors"
	"sync"
)

var (
	// ErrActivityNotFound is returned when no activity has the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadyEnrolled is returned when the email is already on the roster.
	ErrAlreadyEnrolled = errors.New("student is already signed up")
	// ErrNotEnrolled is returned when removing an email that is not on the roster.
	ErrNotEnrolled = errors.New("student is not signed up for this activity")
	// ErrActivityFull is returned when capacity enforcement is on and the roster is full.
	ErrActivityFull = errors.New("activity is full")
)

// Activity is one extracurricular offering and its roster.
type Activity struct {
	Description     string   `json:"description" yaml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants"`
	Participants    []string `json:"participants" yaml:"participants"`
}

func (a Activity) clone() Activity {
	a.Participants = append(make([]string, 0, len(a.Participants)), a.Participants...)
	return a
}

func (a Activity) indexOf(email string) int {
	for i, p := range a.Participants {
		if p == email {
			return i
		}
	}
	return -1
}

// Registry owns the activity map. All roster changes go through it.
type Registry struct {
	mu              sync.RWMutex
	activities      map[string]*Activity
	enforceCapacity bool
}

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithCapacityEnforcement makes Enroll reject signups once max_participants is reached.
func WithCapacityEnforcement(on bool) RegistryOption {
	return func(r *Registry) { r.enforceCapacity = on }
}

// NewRegistry copies seed into a new registry. Duplicate emails in a seed roster are dropped.
func NewRegistry(seed map[string]Activity, opts ...RegistryOption) *Registry {
	r := &Registry{activities: make(map[string]*Activity, len(seed))}
	for name, a := range seed {
		a = a.clone()
		a.Participants = dedupe(a.Participants)
		r.activities[name] = &a
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns a snapshot of every activity; callers may modify it freely.
func (r *Registry) List() map[string]Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Activity, len(r.activities))
	for name, a := range r.activities {
		out[name] = a.clone()
	}
	return out
}

// Enroll appends email to the activity roster.
func (r *Registry) Enroll(name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[name]
	if !ok {
		return ErrActivityNotFound
	}
	if a.indexOf(email) >= 0 {
		return ErrAlreadyEnrolled
	}
	if r.enforceCapacity && len(a.Participants) >= a.MaxParticipants {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// Unenroll removes email from the activity roster, keeping the order of the rest.
func (r *Registry) Unenroll(name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[name]
	if !ok {
		return ErrActivityNotFound
	}
	i := a.indexOf(email)
	if i < 0 {
		return ErrNotEnrolled
	}
	a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
	return nil
}

// Counts reports the number of activities and total roster entries.
func (r *Registry) Counts() (activities, participants int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.activities {
		participants += len(a.Participants)
	}
	return len(r.activities), participants
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := emails[:0]
	for _, e := range emails {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
