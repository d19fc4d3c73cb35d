package access

// Status is the lifecycle state of an access request.
type Status string

// Access request states.
const (
	StatusPending Status = "pending"
	StatusAccept  Status = "accept"
	StatusDecline Status = "decline"
)

// Resolved reports whether s is a state a pending request may move to.
func (s Status) Resolved() bool {
	return s == StatusAccept || s == StatusDecline
}

// Request is a stored access request.
type Request struct {
	ID          int64  `json:"idaccess"`
	RequestedBy string `json:"Username_req"`
	AcceptedBy  string `json:"Username_acc"`
	Status      Status `json:"status"`
}
