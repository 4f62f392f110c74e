package intent

// Registration is the outcome of registering an incoming payment: either the
// provider accepted it (Registered) or it was synthesized locally (Simulated).
type Registration interface {
	IntentID() string
	isRegistration()
}

type Registered struct {
	ID  string
	URL string
}

func (r Registered) IntentID() string { return r.ID }
func (Registered) isRegistration()    {}

type Simulated struct {
	ID    string
	Cause error
}

func (s Simulated) IntentID() string { return s.ID }
func (Simulated) isRegistration()    {}
