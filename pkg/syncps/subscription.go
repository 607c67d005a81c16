package syncps

import "github.com/pollere/DNMP/pkg/wirename"

// UpdateCb is invoked for each new publication arriving from a peer whose
// name matches a subscribed topic.
type UpdateCb func(*Publication)

type subscriptionEntry struct {
	topic wirename.Name
	cb    UpdateCb
}

// subscriptionTable does longest-prefix-match routing from a publication
// name to the one subscribed topic that is its longest prefix, via an
// explicit walk rather than an ordered-map lower-bound lookup (which can
// undershoot by one); correctness doesn't depend on table size staying
// small (real deployments subscribe to a handful of topics).
type subscriptionTable struct {
	entries []subscriptionEntry
}

// subscribeTo installs cb for topic, replacing any existing subscription to
// the same topic.
func (t *subscriptionTable) subscribeTo(topic wirename.Name, cb UpdateCb) {
	for i := range t.entries {
		if t.entries[i].topic.Equal(topic) {
			t.entries[i].cb = cb
			return
		}
	}
	t.entries = append(t.entries, subscriptionEntry{topic: topic.Clone(), cb: cb})
}

// unsubscribe removes any subscription to topic.
func (t *subscriptionTable) unsubscribe(topic wirename.Name) {
	for i := range t.entries {
		if t.entries[i].topic.Equal(topic) {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// match returns the callback whose topic is the longest prefix of name, and
// whether one was found.
func (t *subscriptionTable) match(name wirename.Name) (UpdateCb, bool) {
	var best *subscriptionEntry
	for i := range t.entries {
		e := &t.entries[i]
		if !e.topic.IsPrefixOf(name) {
			continue
		}
		if best == nil || e.topic.Size() > best.topic.Size() {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return best.cb, true
}
