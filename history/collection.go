package history

// Collection holds archived sessions, most recently archived first.
type Collection []Session

// Upsert returns a collection with s at the front and any older entry
// carrying the same ID removed.
func (c Collection) Upsert(s Session) Collection {
	out := make(Collection, 0, len(c)+1)
	out = append(out, s)
	for _, existing := range c {
		if existing.ID != s.ID {
			out = append(out, existing)
		}
	}
	return out
}

// Remove returns a collection without the session identified by id and
// reports whether anything was removed.
func (c Collection) Remove(id string) (Collection, bool) {
	out := make(Collection, 0, len(c))
	removed := false
	for _, existing := range c {
		if existing.ID == id {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}

// Find returns a copy of the session identified by id.
func (c Collection) Find(id string) (Session, bool) {
	for _, s := range c {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return Session{}, false
}

// Infos summarizes every session in order.
func (c Collection) Infos() []SessionInfo {
	infos := make([]SessionInfo, 0, len(c))
	for _, s := range c {
		infos = append(infos, s.Info())
	}
	return infos
}
