package models

// Principal identifies the caller behind a bearer credential.
// An empty UserId means the anonymous key was presented.
type Principal struct {
	UserId string
}

func (p Principal) Anonymous() bool {
	return p.UserId == ""
}
