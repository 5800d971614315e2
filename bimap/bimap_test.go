package bimap_test

import (
	"testing"

	"advantageair2mqtt/bimap"

	"github.com/epiclabs-io/ut"
)

func mustPanic(f func()) (panicked bool) {
	defer func() {
		panicked = recover() != nil
	}()
	f()
	return false
}

func TestBiMap(tx *testing.T) {
	t := ut.BeginTest(tx, false)
	defer t.FinishTest()

	m := bimap.New(map[interface{}]interface{}{
		"heat": "heat",
		"vent": "fan_only",
		"dry":  "dry",
	})
	t.Equals(3, m.Size())

	v, ok := m.Get("vent")
	t.Assert(ok, "forward lookup should succeed")
	t.Equals("fan_only", v)

	k, ok := m.GetInverse("fan_only")
	t.Assert(ok, "inverse lookup should succeed")
	t.Equals("vent", k)

	_, ok = m.Get("fan_only")
	t.Assert(!ok, "values are not keys")

	t.Assert(m.Exists("dry"), "inserted key should exist")
	t.Assert(m.ExistsInverse("dry"), "inserted value should exist")
	t.Assert(!m.Exists("bogus"), "unknown key should not exist")

	m.Insert("myauto", "auto")
	t.Equals(4, m.Size())

	// replacing a pairing drops the stale inverse entry
	m.Insert("vent", "ventilate")
	t.Assert(!m.ExistsInverse("fan_only"), "old value should be gone")
	k, ok = m.GetInverse("ventilate")
	t.Assert(ok, "new value should map back")
	t.Equals("vent", k)
	t.Equals(4, m.Size())

	m.Delete("dry")
	t.Assert(!m.Exists("dry"), "deleted key should not exist")
	t.Equals(3, m.Size())
	m.Delete("dry") // no-op
	t.Equals(3, m.Size())

	m.DeleteInverse("auto")
	t.Assert(!m.Exists("myauto"), "deleting by value removes the key")
	t.Equals(2, m.Size())

	t.Equals(len(m.GetForwardMap()), len(m.GetInverseMap()))

	m.MakeImmutable()
	t.Assert(mustPanic(func() { m.Insert("a", "b") }), "Insert should panic when immutable")
	t.Assert(mustPanic(func() { m.Delete("heat") }), "Delete should panic when immutable")
	t.Assert(mustPanic(func() { m.DeleteInverse("heat") }), "DeleteInverse should panic when immutable")
	t.Equals(2, m.Size())
}
