package claim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/entities"
	"github.com/b1gw1z/frn-backend/pkg/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes -----------------------------------------------------------------

type fakeDonationRepo struct {
	mu        sync.Mutex
	donations map[string]*entities.Donation
}

func newFakeDonationRepo(donations ...*entities.Donation) *fakeDonationRepo {
	repo := &fakeDonationRepo{donations: make(map[string]*entities.Donation)}
	for _, d := range donations {
		repo.donations[d.ID.String()] = d
	}
	return repo
}

func (r *fakeDonationRepo) CreateDonation(_ context.Context, d *entities.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations[d.ID.String()] = d
	return nil
}

func (r *fakeDonationRepo) GetDonationByID(_ context.Context, id string) (*entities.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok {
		return nil, domain.ErrDonationNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDonationRepo) GetOpenDonations(_ context.Context, _ int) ([]*entities.Donation, error) {
	return nil, nil
}

func (r *fakeDonationRepo) GetOpenDonationsByIDs(_ context.Context, _ []string) ([]*entities.Donation, error) {
	return nil, nil
}

func (r *fakeDonationRepo) GetUserDonations(_ context.Context, _ string, _, _ int) ([]*entities.Donation, int64, error) {
	return nil, 0, nil
}

func (r *fakeDonationRepo) GetDonationsPastDeadline(_ context.Context, _ time.Time) ([]*entities.Donation, error) {
	return nil, nil
}

func (r *fakeDonationRepo) ClaimDonation(_ context.Context, id string, rescuerID uuid.UUID, claimedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.Status != entities.DonationStatusOpen {
		return domain.ErrStaleState
	}
	d.Status = entities.DonationStatusClaimed
	d.ClaimedBy = &rescuerID
	d.ClaimedAt = &claimedAt
	return nil
}

func (r *fakeDonationRepo) TransitionStatus(_ context.Context, id string, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.Status != from {
		return domain.ErrStaleState
	}
	d.Status = to
	return nil
}

func (r *fakeDonationRepo) status(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.donations[id].Status
}

func (r *fakeDonationRepo) claimedBy(id string) *uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.donations[id].ClaimedBy
}

type fakeClaimRepo struct {
	mu     sync.Mutex
	claims []*entities.Claim
}

func (r *fakeClaimRepo) CreateClaim(_ context.Context, c *entities.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims = append(r.claims, c)
	return nil
}

func (r *fakeClaimRepo) GetDonationClaims(_ context.Context, donationID string) ([]*entities.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Claim
	for _, c := range r.claims {
		if c.DonationID.String() == donationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClaimRepo) GetUserClaims(_ context.Context, rescuerID string, _, _ int) ([]*entities.Claim, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Claim
	for _, c := range r.claims {
		if c.RescuerID.String() == rescuerID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeClaimRepo) results() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, c := range r.claims {
		counts[c.Result]++
	}
	return counts
}

type fakeUserRepo struct {
	users map[string]*entities.User
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *entities.User) error {
	r.users[u.ID.String()] = u
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, _ string) (*entities.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []string
}

func (r *fakeActivityRepo) Append(_ context.Context, _ uuid.UUID, action, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, action)
	return nil
}

func (r *fakeActivityRepo) GetUserActivity(_ context.Context, _ string, _ int) ([]*entities.ActivityLog, error) {
	return nil, nil
}

// ---- helpers ---------------------------------------------------------------

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newRescuer(repo *fakeUserRepo) *entities.User {
	u := &entities.User{
		ID:               uuid.New(),
		Role:             domain.RoleRescuer,
		OrganizationName: "Helping Hands NGO",
		Email:            "ngo@example.com",
		IsVerified:       true,
	}
	repo.users[u.ID.String()] = u
	return u
}

func newDonor(repo *fakeUserRepo) *entities.User {
	u := &entities.User{
		ID:               uuid.New(),
		Role:             domain.RoleDonor,
		OrganizationName: "Mama Cass Kitchen",
		Email:            "kitchen@example.com",
		IsVerified:       true,
	}
	repo.users[u.ID.String()] = u
	return u
}

func newOpenDonation(donor *entities.User) *entities.Donation {
	return &entities.Donation{
		ID:                uuid.New(),
		DonorID:           donor.ID,
		Description:       "Jollof rice trays",
		QuantityKg:        12,
		Latitude:          6.5244,
		Longitude:         3.3792,
		Status:            entities.DonationStatusOpen,
		FreshnessDeadline: testNow.Add(2 * time.Hour),
		Donor:             donor,
	}
}

func newTestService(donations *fakeDonationRepo, claims *fakeClaimRepo, users *fakeUserRepo) ClaimService {
	return NewClaimService(donations, claims, users, &fakeActivityRepo{}, clock.NewFixed(testNow), nil)
}

// ---- tests -----------------------------------------------------------------

func TestClaimSingleWinnerUnderContention(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	target := newOpenDonation(donor)
	donations := newFakeDonationRepo(target)
	claims := &fakeClaimRepo{}
	svc := newTestService(donations, claims, users)

	const attempts = 32
	rescuers := make([]*entities.User, attempts)
	for i := range rescuers {
		rescuers[i] = newRescuer(users)
	}

	outcomes := make([]*domain.ClaimOutcome, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			outcomes[n], errs[n] = svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, rescuers[n].ID.String())
		}(i)
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	won, lost := 0, 0
	var winner *entities.User
	for i, outcome := range outcomes {
		switch outcome.Result {
		case domain.ClaimResultWon:
			won++
			winner = rescuers[i]
			assert.NotEmpty(t, outcome.PickupCode)
		case domain.ClaimResultLost:
			lost++
		default:
			t.Fatalf("unexpected result %s", outcome.Result)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)

	require.NotNil(t, winner)
	require.NotNil(t, donations.claimedBy(target.ID.String()))
	assert.Equal(t, winner.ID, *donations.claimedBy(target.ID.String()))
	assert.Equal(t, entities.DonationStatusClaimed, donations.status(target.ID.String()))

	counts := claims.results()
	assert.Equal(t, 1, counts[domain.ClaimResultWon])
	assert.Equal(t, attempts-1, counts[domain.ClaimResultLost])
}

func TestClaimOwnDonationRejectedBeforeStateRead(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	target := newOpenDonation(donor)
	donations := newFakeDonationRepo(target)
	claims := &fakeClaimRepo{}
	svc := newTestService(donations, claims, users)

	outcome, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, donor.ID.String())
	assert.ErrorIs(t, err, domain.ErrSelfClaim)
	assert.Nil(t, outcome)

	assert.Equal(t, entities.DonationStatusOpen, donations.status(target.ID.String()))
	assert.Empty(t, claims.claims)
}

func TestClaimExpiredDonationAlreadyTerminal(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	rescuer := newRescuer(users)
	target := newOpenDonation(donor)
	target.Status = entities.DonationStatusExpired
	donations := newFakeDonationRepo(target)
	claims := &fakeClaimRepo{}
	svc := newTestService(donations, claims, users)

	outcome, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, rescuer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimResultAlreadyTerminal, outcome.Result)
	assert.Empty(t, claims.claims)
}

func TestClaimCancelledDonationAlreadyTerminal(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	rescuer := newRescuer(users)
	target := newOpenDonation(donor)
	target.Status = entities.DonationStatusCancelled
	donations := newFakeDonationRepo(target)
	svc := newTestService(donations, &fakeClaimRepo{}, users)

	outcome, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, rescuer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimResultAlreadyTerminal, outcome.Result)
}

func TestClaimPastDeadlineNotHandedOut(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	rescuer := newRescuer(users)
	target := newOpenDonation(donor)
	target.FreshnessDeadline = testNow.Add(-time.Minute)
	donations := newFakeDonationRepo(target)
	svc := newTestService(donations, &fakeClaimRepo{}, users)

	outcome, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, rescuer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimResultAlreadyTerminal, outcome.Result)
	// No transition was attempted; the reaper owns the expiry.
	assert.Equal(t, entities.DonationStatusOpen, donations.status(target.ID.String()))
}

func TestClaimUnknownDonationNotFound(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	rescuer := newRescuer(users)
	svc := newTestService(newFakeDonationRepo(), &fakeClaimRepo{}, users)

	outcome, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: uuid.NewString()}, rescuer.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimResultNotFound, outcome.Result)
}

func TestClaimByDonorRoleRejected(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	otherDonor := newDonor(users)
	target := newOpenDonation(donor)
	svc := newTestService(newFakeDonationRepo(target), &fakeClaimRepo{}, users)

	_, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, otherDonor.ID.String())
	assert.ErrorIs(t, err, domain.ErrClaimNotAllowed)
}

func TestClaimByUnverifiedRescuerRejected(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	rescuer := newRescuer(users)
	rescuer.IsVerified = false
	target := newOpenDonation(donor)
	svc := newTestService(newFakeDonationRepo(target), &fakeClaimRepo{}, users)

	_, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, rescuer.ID.String())
	assert.ErrorIs(t, err, domain.ErrUserNotVerified)
}

func TestClaimAfterWinIsLost(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	first := newRescuer(users)
	second := newRescuer(users)
	target := newOpenDonation(donor)
	donations := newFakeDonationRepo(target)
	claims := &fakeClaimRepo{}
	svc := newTestService(donations, claims, users)

	req := domain.ClaimRequest{DonationID: target.ID.String()}

	outcome, err := svc.Claim(context.Background(), req, first.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.ClaimResultWon, outcome.Result)

	outcome, err = svc.Claim(context.Background(), req, second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimResultLost, outcome.Result)

	// The winner is unchanged by the lost attempt.
	assert.Equal(t, first.ID, *donations.claimedBy(target.ID.String()))
}

func TestDonationClaimHistoryDonorOnly(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	winner := newRescuer(users)
	loser := newRescuer(users)
	target := newOpenDonation(donor)
	donations := newFakeDonationRepo(target)
	claims := &fakeClaimRepo{}
	svc := newTestService(donations, claims, users)

	req := domain.ClaimRequest{DonationID: target.ID.String()}
	outcome, err := svc.Claim(context.Background(), req, winner.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.ClaimResultWon, outcome.Result)
	_, err = svc.Claim(context.Background(), req, loser.ID.String())
	require.NoError(t, err)

	history, err := svc.GetDonationClaims(context.Background(), target.ID.String(), donor.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)
	byRescuer := make(map[string]string, len(history))
	for _, h := range history {
		byRescuer[h.RescuerID] = h.Result
	}
	assert.Equal(t, domain.ClaimResultWon, byRescuer[winner.ID.String()])
	assert.Equal(t, domain.ClaimResultLost, byRescuer[loser.ID.String()])

	// Only the donor may read the history.
	_, err = svc.GetDonationClaims(context.Background(), target.ID.String(), winner.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnauthorizedDonationAccess)

	_, err = svc.GetDonationClaims(context.Background(), uuid.NewString(), donor.ID.String())
	assert.ErrorIs(t, err, domain.ErrDonationNotFound)
}

func TestClaimNotifiesDonor(t *testing.T) {
	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	donor := newDonor(users)
	rescuer := newRescuer(users)
	target := newOpenDonation(donor)
	donations := newFakeDonationRepo(target)

	var sentTo, sentBody string
	mailer := func(toEmail, _ string, body string) error {
		sentTo = toEmail
		sentBody = body
		return nil
	}
	svc := NewClaimService(donations, &fakeClaimRepo{}, users, &fakeActivityRepo{}, clock.NewFixed(testNow), mailer)

	outcome, err := svc.Claim(context.Background(), domain.ClaimRequest{DonationID: target.ID.String()}, rescuer.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.ClaimResultWon, outcome.Result)

	assert.Equal(t, donor.Email, sentTo)
	assert.Contains(t, sentBody, rescuer.OrganizationName)
	assert.Contains(t, sentBody, outcome.PickupCode)
}
