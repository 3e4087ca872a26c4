package model

import "fmt"

// ExpandRequirements expands (design, quantity) pairs into a flat list of
// individually placeable pieces. Quantity N produces N pieces with ids
// "<designID>-1" through "<designID>-N". Output order matches input order,
// with copies of the same design appearing consecutively.
func ExpandRequirements(reqs []Requirement) ([]Piece, error) {
	var pieces []Piece
	for _, r := range reqs {
		if r.Quantity < 1 {
			return nil, fmt.Errorf("design %q quantity must be at least 1, got %d", r.Design.ID, r.Quantity)
		}
		if r.Design.Width <= 0 || r.Design.Height <= 0 {
			return nil, fmt.Errorf("design %q has non-positive dimensions %.1f x %.1f",
				r.Design.ID, r.Design.Width, r.Design.Height)
		}
		for i := 1; i <= r.Quantity; i++ {
			pieces = append(pieces, Piece{
				ID:        fmt.Sprintf("%s-%d", r.Design.ID, i),
				DesignID:  r.Design.ID,
				Name:      r.Design.Name,
				Width:     r.Design.Width,
				Height:    r.Design.Height,
				Thickness: r.Design.Thickness,
				Area:      r.Design.Width * r.Design.Height,
				Priority:  r.Design.Priority,
			})
		}
	}
	return pieces, nil
}
