package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chessOnly() map[string]Activity {
	return map[string]Activity{
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
	}
}

func countOf(list []string, v string) int {
	n := 0
	for _, s := range list {
		if s == v {
			n++
		}
	}
	return n
}

func TestRegistry_EnrollTwice(t *testing.T) {
	r := NewRegistry(chessOnly())

	require.NoError(t, r.Enroll("Chess Club", "new@x.edu"))
	assert.Len(t, r.List()["Chess Club"].Participants, 3)

	err := r.Enroll("Chess Club", "new@x.edu")
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.Len(t, r.List()["Chess Club"].Participants, 3)
}

func TestRegistry_EnrollEveryActivity(t *testing.T) {
	r := NewRegistry(DefaultActivities())
	const email = "fresh@mergington.edu"

	for name := range r.List() {
		require.NoError(t, r.Enroll(name, email), name)
	}
	for name, a := range r.List() {
		assert.Equal(t, 1, countOf(a.Participants, email), name)
		assert.Equal(t, email, a.Participants[len(a.Participants)-1], "signup order kept for %s", name)
	}
}

func TestRegistry_UnknownActivity(t *testing.T) {
	r := NewRegistry(chessOnly())

	assert.ErrorIs(t, r.Enroll("Knitting", "a@x.edu"), ErrActivityNotFound)
	assert.ErrorIs(t, r.Unenroll("Knitting", "a@x.edu"), ErrActivityNotFound)
	assert.NotContains(t, r.List(), "Knitting")
}

func TestRegistry_Unenroll(t *testing.T) {
	r := NewRegistry(chessOnly())

	assert.ErrorIs(t, r.Unenroll("Chess Club", "never@x.edu"), ErrNotEnrolled)

	require.NoError(t, r.Enroll("Chess Club", "new@x.edu"))
	require.NoError(t, r.Unenroll("Chess Club", "michael@mergington.edu"))

	got := r.List()["Chess Club"].Participants
	assert.Equal(t, []string{"daniel@mergington.edu", "new@x.edu"}, got)
	assert.ErrorIs(t, r.Unenroll("Chess Club", "michael@mergington.edu"), ErrNotEnrolled)
}

func TestRegistry_EmailMatchIsExact(t *testing.T) {
	r := NewRegistry(chessOnly())

	require.NoError(t, r.Enroll("Chess Club", "Michael@mergington.edu"))
	assert.ErrorIs(t, r.Unenroll("Chess Club", "MICHAEL@mergington.edu"), ErrNotEnrolled)
}

func TestRegistry_CapacityAdvisoryByDefault(t *testing.T) {
	seed := map[string]Activity{"Tiny": {MaxParticipants: 1, Participants: []string{"a@x.edu"}}}

	r := NewRegistry(seed)
	require.NoError(t, r.Enroll("Tiny", "b@x.edu"))
	assert.Len(t, r.List()["Tiny"].Participants, 2)

	enforced := NewRegistry(seed, WithCapacityEnforcement(true))
	assert.ErrorIs(t, enforced.Enroll("Tiny", "b@x.edu"), ErrActivityFull)
	// duplicates are reported before capacity
	assert.ErrorIs(t, enforced.Enroll("Tiny", "a@x.edu"), ErrAlreadyEnrolled)
}

func TestRegistry_ListIsSnapshot(t *testing.T) {
	seed := chessOnly()
	r := NewRegistry(seed)

	snap := r.List()
	a := snap["Chess Club"]
	a.Participants[0] = "mutated@x.edu"
	a.Participants = append(a.Participants, "extra@x.edu")

	assert.Equal(t, "michael@mergington.edu", r.List()["Chess Club"].Participants[0])
	assert.Len(t, r.List()["Chess Club"].Participants, 2)
	assert.Equal(t, "michael@mergington.edu", seed["Chess Club"].Participants[0])
}

func TestRegistry_SeedDuplicatesDropped(t *testing.T) {
	r := NewRegistry(map[string]Activity{"X": {Participants: []string{"a@x.edu", "a@x.edu", "b@x.edu"}}})
	assert.Equal(t, []string{"a@x.edu", "b@x.edu"}, r.List()["X"].Participants)
}

func TestRegistry_ConcurrentEnroll(t *testing.T) {
	r := NewRegistry(chessOnly())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		email := fmt.Sprintf("s%d@x.edu", i)
		go func() { defer wg.Done(); _ = r.Enroll("Chess Club", email) }()
		go func() { defer wg.Done(); _ = r.Enroll("Chess Club", email) }()
	}
	wg.Wait()

	got := r.List()["Chess Club"].Participants
	assert.Len(t, got, 52)
	seen := map[string]bool{}
	for _, e := range got {
		assert.False(t, seen[e], "duplicate %s", e)
		seen[e] = true
	}

	activities, participants := r.Counts()
	assert.Equal(t, 1, activities)
	assert.Equal(t, 52, participants)
}
