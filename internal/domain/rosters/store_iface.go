package rosters

import "context"

type StoreAPI interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Roster, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Get(ctx context.Context, id string) (*Roster, error)
	ProjectClientID(ctx context.Context, projectID string) (string, error)
	Create(ctx context.Context, r Roster) (string, error)
	Update(ctx context.Context, r Roster) error
	SetStatus(ctx context.Context, id, status string) error
	// Delete removes a draft roster and reports whether it did.
	Delete(ctx context.Context, id string) (bool, error)
	Assignments(ctx context.Context, rosterID string) ([]Assignment, error)
	// Assign reports false when the pair already existed.
	Assign(ctx context.Context, rosterID, profileID string) (bool, error)
	Unassign(ctx context.Context, rosterID, profileID string) error
	SetAssignmentStatus(ctx context.Context, rosterID, profileID, status string) error
}
