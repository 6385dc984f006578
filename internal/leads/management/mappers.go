package management

import (
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/phone"
)

// ToLeadResponse maps a stored lead to its API shape.
func ToLeadResponse(l repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:             l.ID,
		Name:           l.Name,
		Phone:          l.Phone,
		Source:         l.Source,
		Program:        l.Program,
		Status:         string(l.Status),
		StatusLabel:    l.Status.Label(),
		AssignedTo:     l.AssignedTo,
		AssigneeName:   l.AssigneeName,
		Value:          l.Value,
		Notes:          l.Notes,
		ReceivedDate:   l.ReceivedDate.Format(transport.DateLayout),
		Address:        l.Address,
		CreatedAt:      l.CreatedAt,
		LastUpdateDate: l.LastUpdateDate,
	}
	if l.Birthday != nil {
		resp.Birthday = l.Birthday.Format(transport.DateLayout)
	}
	return resp
}

func toLeadResponses(leads []repository.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadResponse(l))
	}
	return out
}

// Summary builds the display-ready lead view carried by events.
func Summary(l repository.Lead) events.LeadSummary {
	return events.LeadSummary{
		LeadID:       l.ID,
		Name:         l.Name,
		Phone:        phone.Display(l.Phone),
		Source:       l.Source,
		Program:      l.Program,
		StatusLabel:  l.Status.Label(),
		AssigneeName: l.AssigneeName,
	}
}
