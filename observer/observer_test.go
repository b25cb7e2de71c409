package observer_test

import (
	"testing"

	"github.com/purc-run/hvml/observer"
	"github.com/purc-run/hvml/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndFireExactSubName(t *testing.T) {
	bus := observer.New()
	src := variant.NewObject()
	defer src.Unref()

	var got observer.Event
	bus.Register(src, "expired", "tick1", func(ev observer.Event) { got = ev })

	bus.Fire(src, "expired", "tick1", nil)
	assert.Equal(t, "expired", got.Name)
	assert.Equal(t, "tick1", got.Sub)
}

func TestWildcardSubNameMatchesAnyFiring(t *testing.T) {
	bus := observer.New()
	src := variant.NewObject()
	defer src.Unref()

	count := 0
	bus.Register(src, "expired", "*", func(ev observer.Event) { count++ })

	bus.Fire(src, "expired", "tick1", nil)
	bus.Fire(src, "expired", "tick2", nil)
	assert.Equal(t, 2, count)
}

func TestForgetSourceCancelsAllRegistrations(t *testing.T) {
	bus := observer.New()
	src := variant.NewObject()
	defer src.Unref()

	count := 0
	bus.Register(src, "expired", "*", func(ev observer.Event) { count++ })
	bus.ForgetSource(src)
	bus.Fire(src, "expired", "x", nil)
	assert.Equal(t, 0, count)
}

func TestWatchContainerTranslatesGrowIntoObservationEvent(t *testing.T) {
	bus := observer.New()
	set := variant.NewSet(variant.KeyByProperty("id"))
	defer set.Unref()

	var subSeen string
	bus.Register(set, "grow", "*", func(ev observer.Event) { subSeen = ev.Sub })
	bus.WatchContainer(set, variant.KeyByProperty("id"))

	member, err := variant.NewObjectFromPairs("id", variant.MustString("abc"))
	require.NoError(t, err)
	require.NoError(t, set.SetInsert(member, variant.PolicyStrict))
	member.Unref()

	assert.Equal(t, "abc", subSeen)
}
