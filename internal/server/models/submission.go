package models

// Submission is an untrusted request to publish or update a mod.
type Submission struct {
	Name        string   `json:"name"`
	Owner       string   `json:"owner"`
	Secret      string   `json:"secret"`
	Description string   `json:"description"`
	Homepage    string   `json:"homepage"`
	Version     string   `json:"version"`
	Icon        string   `json:"icon"`
	Binaries    []string `json:"binaries"`
}

// ID returns the submission's "owner/name" identity.
func (s *Submission) ID() string {
	return Identity(s.Owner, s.Name)
}

// Outcome is the result of an accepted write.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Message is the text shown to the submitter.
func (o Outcome) Message() string {
	if o == OutcomeUpdated {
		return "Successfully updated mod."
	}
	return "Successfully inserted mod."
}
