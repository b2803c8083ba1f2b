package models

// PartyRequest is the inbound payload. Every field is optional on the wire:
// create requires all of them, update applies only the ones present.
type PartyRequest struct {
	CustID    *int64  `json:"custId,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	EmailID   *string `json:"emailId,omitempty"`
	PhoneNo   *string `json:"phoneNo,omitempty"`
}

// PartyResponse is the client-facing projection. It carries no custId and no
// timestamps.
type PartyResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	EmailID   string `json:"emailId"`
	PhoneNo   string `json:"phoneNo"`
}
