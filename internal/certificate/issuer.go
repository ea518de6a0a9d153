package certificate

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/coursekit-lms/internal/db"
)

var (
	// ErrMissingCourseData means issuance was requested without resolvable
	// course/learner metadata. Never issue a certificate with an incomplete
	// snapshot.
	ErrMissingCourseData = errors.New("course metadata missing at issuance")
	// ErrIssuanceExhausted means number/code generation kept colliding.
	// Should effectively never happen; worth alerting on when it does.
	ErrIssuanceExhausted = errors.New("certificate issuance retries exhausted")
)

const issueRetries = 5

type IssueInput struct {
	LearnerID    string
	LearnerName  string
	CourseID     string
	CourseName   string
	AttemptID    string
	Score        float64
	PassingScore float64
}

// Issuer converts a passing attempt into exactly one valid certificate per
// (learner, course). Safe under concurrent duplicate invocation: the storage
// uniqueness constraint is the backstop, not the read-before-write.
type Issuer struct {
	store Store
	now   func() time.Time
}

func NewIssuer(store Store) *Issuer {
	return &Issuer{store: store, now: time.Now}
}

func (i *Issuer) Issue(ctx context.Context, in IssueInput) (Certificate, error) {
	if in.LearnerID == "" || in.CourseID == "" || in.CourseName == "" || in.LearnerName == "" {
		return Certificate{}, ErrMissingCourseData
	}

	// Fast path: an existing certificate is returned unchanged, whether or
	// not it is still valid. Re-issuing never overrides a revocation.
	if c, err := i.store.GetByOwner(ctx, in.LearnerID, in.CourseID); err == nil {
		return c, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Certificate{}, err
	}

	for attempt := 0; attempt < issueRetries; attempt++ {
		c := Certificate{
			ID:               uuid.NewString(),
			LearnerID:        in.LearnerID,
			CourseID:         in.CourseID,
			AttemptID:        in.AttemptID,
			Number:           i.newNumber(in),
			VerificationCode: randToken(10),
			IssuedAt:         i.now().Unix(),
			Valid:            true,
			CourseName:       in.CourseName,
			LearnerName:      in.LearnerName,
			Score:            in.Score,
			PassingScore:     in.PassingScore,
		}
		err := i.store.Insert(ctx, c)
		if err == nil {
			return c, nil
		}
		if !db.IsUniqueViolation(err) {
			return Certificate{}, err
		}
		// Either a concurrent issue won the (learner, course) slot, or a
		// number/code collided. Re-reading distinguishes the two.
		if existing, err2 := i.store.GetByOwner(ctx, in.LearnerID, in.CourseID); err2 == nil {
			return existing, nil
		} else if !errors.Is(err2, ErrNotFound) {
			return Certificate{}, err2
		}
		// collision on number or code: regenerate and retry
	}
	return Certificate{}, ErrIssuanceExhausted
}

// Revoke flips validity off. The row is kept; issuance never creates a second
// certificate alongside a revoked one.
func (i *Issuer) Revoke(ctx context.Context, certID string) (Certificate, error) {
	return i.store.SetValid(ctx, certID, false)
}

// Renew flips validity back on for a previously revoked certificate.
func (i *Issuer) Renew(ctx context.Context, certID string) (Certificate, error) {
	return i.store.SetValid(ctx, certID, true)
}

// Verify resolves a public verification code. The response never includes the
// certificate number.
func (i *Issuer) Verify(ctx context.Context, code string) (Verification, error) {
	c, err := i.store.GetByCode(ctx, code)
	if err != nil {
		return Verification{}, err
	}
	return Verification{
		LearnerName: c.LearnerName,
		CourseName:  c.CourseName,
		IssuedAt:    c.IssuedAt,
		Valid:       c.Valid,
	}, nil
}

func (i *Issuer) newNumber(in IssueInput) string {
	return fmt.Sprintf("CERT-%s-%s-%d-%s", in.CourseID, in.LearnerID, i.now().Unix(), randToken(4))
}

const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randToken draws from an unambiguous alphabet (no 0/O, 1/I) so the code is
// safe to read over the phone.
func randToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf)
}
