// Package setwaker coalesces wakeups from many independently scheduled units
// into one outer notification.
//
// An owner creates a Notifier and derives one Waker per unit with WithKey.
// When a unit is ready its Waker inserts the unit's key into a shared pending
// set and fires the single outer Waker stored with Register. The owner, woken
// once, calls DrainKeys to learn exactly which units fired since it last
// looked, then Registers again before suspending:
//
//	n := setwaker.New[string]()
//	n.Register(outer)
//	w := n.WithKey("a")
//	go func() { w.Wake() }()
//	...
//	for _, key := range n.DrainKeys() {
//		// re-run the unit named key
//	}
//
// Keys are reported once per drain no matter how many times they fired, and
// a key fired concurrently with a drain shows up in that drain or the next
// one, never in both and never in neither.
package setwaker
