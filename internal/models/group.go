package models

// Group represents a set of accounts acting as one side of a transaction.
//
// Every account has exactly one personal group (a group whose only member
// is that account). Groups with more than one member represent a specific
// N-way split and are reused whenever the same member set splits again.
type Group struct {
	// ID is the unique identifier for the group.
	ID int64

	// Members is the materialized set of member account ids, sorted
	// ascending. The sort order is what makes remainder distribution in
	// split calculations deterministic.
	Members []int64

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// IsPersonal reports whether the group is a singleton (personal) group.
func (g *Group) IsPersonal() bool { return len(g.Members) == 1 }

// Contains reports whether accountID is a member of the group.
func (g *Group) Contains(accountID int64) bool {
	for _, id := range g.Members {
		if id == accountID {
			return true
		}
	}
	return false
}
