package core

// Ledger is the append-only ETA history of one record, ordered by commit.
// Entries are never updated, deleted, or reordered.
type Ledger []HistoryEntry

// Append returns a new ledger with entry added. The receiver is left
// untouched so shared snapshots stay stable.
func (l Ledger) Append(entry HistoryEntry) Ledger {
	out := make(Ledger, len(l), len(l)+1)
	copy(out, l)
	return append(out, entry)
}

// Strikes counts extension entries; it equals the record's strike count.
func (l Ledger) Strikes() int {
	n := 0
	for _, e := range l {
		if e.Type == EntryExtension {
			n++
		}
	}
	return n
}

// Last returns the most recent entry, or nil for an empty ledger.
func (l Ledger) Last() *HistoryEntry {
	if len(l) == 0 {
		return nil
	}
	return &l[len(l)-1]
}
