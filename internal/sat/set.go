package sat

// ResetSet is a set of variable indices in [0, N) that supports clearing
// the whole set in O(1) by bumping a generation counter instead of
// zeroing every slot: Conflict analysis clears and repopulates it once
// per conflict.
type ResetSet struct {
	addedAt        []uint16
	addedTimestamp uint16
}

// Contains returns true if v is in the set.
func (rs *ResetSet) Contains(v int) bool {
	return rs.addedAt[v] == rs.addedTimestamp
}

// Add adds v to the set.
func (rs *ResetSet) Add(v int) {
	rs.addedAt[v] = rs.addedTimestamp
}

// Remove undoes an Add of v made in the current generation, without
// needing a full Clear. It is used to roll back speculative marks that
// turn out not to hold.
func (rs *ResetSet) Remove(v int) {
	rs.addedAt[v] = rs.addedTimestamp - 1
}

// Clear removes all the elements in the set in constant time.
func (rs *ResetSet) Clear() {
	rs.addedTimestamp++
	if rs.addedTimestamp == 0 { // overflow
		rs.addedTimestamp = 1
		for i := range rs.addedAt {
			rs.addedAt[i] = 0
		}
	}
}

// Expand increases the capacity of the set.
func (rs *ResetSet) Expand() {
	rs.addedAt = append(rs.addedAt, 0)
}
