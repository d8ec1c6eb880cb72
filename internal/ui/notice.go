package ui

import "time"

const infoTTL = 5 * time.Second

// notice is a transient info line. It stays visible for infoTTL unless it is
// replaced or reset first.
type notice struct {
	text    string
	expires time.Time
}

func (n *notice) set(text string, now time.Time) {
	n.text = text
	n.expires = now.Add(infoTTL)
}

func (n *notice) reset() {
	*n = notice{}
}

func (n *notice) expired(now time.Time) bool {
	return n.text != "" && !n.expires.IsZero() && !now.Before(n.expires)
}

// current returns the live text, dropping it first if it has expired.
func (n *notice) current(now time.Time) string {
	if n.expired(now) {
		n.reset()
	}
	return n.text
}

func (m *Model) setInfo(message string) {
	m.info.set(message, time.Now())
}

// clearInfo drops the info line once it has been visible long enough.
func (m *Model) clearInfo() {
	m.info.current(time.Now())
}

func (m *Model) forceClearInfo() {
	m.info.reset()
}

func (m *Model) currentInfo() string {
	return m.info.current(time.Now())
}
