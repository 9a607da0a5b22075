package domain

// GlobalRole is the platform-wide role an account was registered with.
type GlobalRole string

const (
	GlobalRoleCandidate GlobalRole = "candidate"
	GlobalRoleRecruiter GlobalRole = "recruiter"
)

// Valid reports whether r is a known global role.
func (r GlobalRole) Valid() bool {
	return r == GlobalRoleCandidate || r == GlobalRoleRecruiter
}

// Actor is the authenticated caller as resolved by the upstream directory.
type Actor struct {
	ID         string
	GlobalRole GlobalRole
}

// IsCandidate reports whether the actor applies to jobs rather than working for companies.
func (a Actor) IsCandidate() bool {
	return a.GlobalRole == GlobalRoleCandidate
}
