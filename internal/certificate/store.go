package certificate

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("certificate not found")

type Store interface {
	// Insert fails with a driver uniqueness error if the (learner, course)
	// pair, the number, or the verification code already exists. The store
	// never disambiguates which; the issuer does.
	Insert(ctx context.Context, c Certificate) error
	GetByOwner(ctx context.Context, learnerID, courseID string) (Certificate, error)
	GetByID(ctx context.Context, id string) (Certificate, error)
	GetByCode(ctx context.Context, code string) (Certificate, error)
	SetValid(ctx context.Context, id string, valid bool) (Certificate, error)
	ListByLearner(ctx context.Context, learnerID string) ([]Certificate, error)
	// HasValid serves the eligibility gate.
	HasValid(ctx context.Context, learnerID, courseID string) (bool, error)
}
