// Package mapper translates between the wire request, the persisted record and
// the wire response. Every field is copied explicitly.
package mapper

import "party/internal/party/models"

// ToRecord builds a new, unpersisted record from a create request. Identity,
// version and timestamps are left for the store and service to assign.
func ToRecord(req *models.PartyRequest) *models.Party {
	if req == nil {
		return nil
	}
	p := &models.Party{}
	if req.CustID != nil {
		p.CustID = *req.CustID
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.EmailID != nil {
		p.EmailID = *req.EmailID
	}
	if req.PhoneNo != nil {
		p.PhoneNo = *req.PhoneNo
	}
	return p
}

// ApplyUpdate copies the fields present in req onto p. Absent fields leave p
// untouched.
func ApplyUpdate(p *models.Party, req *models.PartyRequest) {
	if p == nil || req == nil {
		return
	}
	if req.CustID != nil {
		p.CustID = *req.CustID
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.EmailID != nil {
		p.EmailID = *req.EmailID
	}
	if req.PhoneNo != nil {
		p.PhoneNo = *req.PhoneNo
	}
}

// ToResponse projects a record onto the client-facing shape. custId and the
// audit timestamps are not part of the projection. A nil record maps to nil.
func ToResponse(p *models.Party) *models.PartyResponse {
	if p == nil {
		return nil
	}
	return &models.PartyResponse{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		EmailID:   p.EmailID,
		PhoneNo:   p.PhoneNo,
	}
}
