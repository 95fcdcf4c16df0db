package domain

// Status representa el estado de ruteo de un ticket.
type Status string

const (
	// StatusLgpd holds the ticket until the contact accepts the consent flow.
	StatusLgpd Status = "lgpd"
	// StatusPending waits for an agent to accept the conversation.
	StatusPending Status = "pending"
	// StatusGroup is the parallel track for group chats not treated as tickets.
	StatusGroup Status = "group"
	// StatusOpen is an active conversation owned by an agent.
	StatusOpen Status = "open"
	// StatusNps awaits a numeric satisfaction reply from the contact.
	StatusNps Status = "nps"
	// StatusClosed is terminal; the row persists for history only.
	StatusClosed Status = "closed"
)

// LiveStatuses is the set of statuses that count as an active routing
// session. At most one live ticket may exist per (tenant, channel,
// identity key).
var LiveStatuses = []Status{StatusOpen, StatusPending, StatusGroup, StatusNps, StatusLgpd}

// IsLive reports whether the status belongs to the live set.
func (s Status) IsLive() bool {
	for _, live := range LiveStatuses {
		if s == live {
			return true
		}
	}
	return false
}

var transitions = map[Status][]Status{
	StatusLgpd:    {StatusPending, StatusOpen, StatusClosed},
	StatusPending: {StatusOpen, StatusClosed},
	StatusGroup:   {StatusOpen, StatusClosed},
	StatusOpen:    {StatusPending, StatusNps, StatusClosed},
	StatusNps:     {StatusClosed},
	StatusClosed:  {StatusPending},
}

// CanTransition reports whether moving from one status to another is a
// legal lifecycle step. closed -> pending is the reopen path used by the
// resolver's reopen window.
func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}
