package cowin

import (
	"fmt"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// toDocument converts a calendar payload into a domain document. A center
// without a "sessions" key or a session without "available_capacity" is an
// error; an empty list or a zero capacity is not.
func toDocument(centers []apiCenter) (*domain.Document, error) {
	doc := &domain.Document{Centers: make([]domain.Center, 0, len(centers))}
	for i := range centers {
		c := &centers[i]
		if c.Sessions == nil {
			return nil, fmt.Errorf("center %d (index %d) has no \"sessions\" key", int(c.CenterID), i)
		}
		sessions := *c.Sessions
		center := domain.Center{
			ID:       int(c.CenterID),
			Name:     c.Name,
			Address:  c.Address,
			District: c.DistrictName,
			Pincode:  int(c.Pincode),
			FeeType:  c.FeeType,
			Sessions: make([]domain.Session, 0, len(sessions)),
		}
		for j := range sessions {
			s, err := toSession(&sessions[j])
			if err != nil {
				return nil, fmt.Errorf("center %d: %w", center.ID, err)
			}
			center.Sessions = append(center.Sessions, s)
		}
		doc.Centers = append(doc.Centers, center)
	}
	return doc, nil
}

// groupDaySessions regroups flattened single-day sessions by center, keeping
// centers in order of first appearance.
func groupDaySessions(sessions []apiDaySession) (*domain.Document, error) {
	doc := &domain.Document{Centers: []domain.Center{}}
	index := make(map[int]int)

	for i := range sessions {
		s := &sessions[i]
		id := int(s.CenterID)

		session, err := toSession(&s.apiSession)
		if err != nil {
			return nil, fmt.Errorf("center %d: %w", id, err)
		}

		pos, ok := index[id]
		if !ok {
			pos = len(doc.Centers)
			index[id] = pos
			doc.Centers = append(doc.Centers, domain.Center{
				ID:       id,
				Name:     s.Name,
				Address:  s.Address,
				District: s.DistrictName,
				Pincode:  int(s.Pincode),
				FeeType:  s.FeeType,
			})
		}
		doc.Centers[pos].Sessions = append(doc.Centers[pos].Sessions, session)
	}

	return doc, nil
}

func toSession(s *apiSession) (domain.Session, error) {
	if s.AvailableCapacity == nil {
		return domain.Session{}, fmt.Errorf(
			"session %q on %s has no \"available_capacity\" key", s.SessionID, s.Date,
		)
	}
	out := domain.Session{
		ID:                s.SessionID,
		Date:              s.Date,
		AvailableCapacity: nonNegative(int(*s.AvailableCapacity)),
		Dose1Capacity:     nonNegative(int(s.AvailableCapacityDose1)),
		Dose2Capacity:     nonNegative(int(s.AvailableCapacityDose2)),
		MinAgeLimit:       int(s.MinAgeLimit),
		Vaccine:           s.Vaccine,
	}
	if len(s.Slots) > 0 {
		out.Slots = make([]string, 0, len(s.Slots))
		for _, slot := range s.Slots {
			out.Slots = append(out.Slots, string(slot))
		}
	}
	return out, nil
}

func nonNegative(n int) int {
	return max(n, 0)
}
