package authz

import (
	"context"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type assignment struct {
	role     string
	assigned bool
}

type stubStore struct {
	perms  []Permission
	grants []RoleGrant

	upserted   []RoleGrant
	upsertErr  error
	listCalls  int
	listErr    error
	grantsErr  error
	statusErr  error
	assignErr  error
	campaigns  map[int64]string
	assigned   map[int64]assignment
	assignedTo map[int64][]int64
	activeIDs  []int64
	activeErr  error
	orderKeys  map[int64]OrderKey
	orderErr   error
	reps       map[int64][]RepRef
	repsErr    error
}

func (s *stubStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.perms, nil
}

func (s *stubStore) ListGrants(ctx context.Context) ([]RoleGrant, error) {
	if s.grantsErr != nil {
		return nil, s.grantsErr
	}
	return s.grants, nil
}

func (s *stubStore) UpsertGrant(ctx context.Context, grant RoleGrant) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, grant)
	return nil
}

func (s *stubStore) CampaignStatus(ctx context.Context, campaignID int64) (string, error) {
	if s.statusErr != nil {
		return "", s.statusErr
	}
	status, ok := s.campaigns[campaignID]
	if !ok {
		return "", ErrNotFound
	}
	return status, nil
}

func (s *stubStore) CampaignAssignment(ctx context.Context, campaignID, userID int64) (string, bool, error) {
	if s.assignErr != nil {
		return "", false, s.assignErr
	}
	a, ok := s.assigned[campaignID*1000+userID]
	if !ok {
		return "", false, nil
	}
	return a.role, a.assigned, nil
}

func (s *stubStore) AssignedCampaignIDs(ctx context.Context, userID int64) ([]int64, error) {
	if s.assignErr != nil {
		return nil, s.assignErr
	}
	return s.assignedTo[userID], nil
}

func (s *stubStore) ActiveCampaignIDs(ctx context.Context) ([]int64, error) {
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	return s.activeIDs, nil
}

func (s *stubStore) OrderKey(ctx context.Context, orderID int64) (OrderKey, error) {
	if s.orderErr != nil {
		return OrderKey{}, s.orderErr
	}
	key, ok := s.orderKeys[orderID]
	if !ok {
		return OrderKey{}, ErrNotFound
	}
	return key, nil
}

func (s *stubStore) ManagedReps(ctx context.Context, managerID int64) ([]RepRef, error) {
	if s.repsErr != nil {
		return nil, s.repsErr
	}
	return s.reps[managerID], nil
}

func (s *stubStore) assign(campaignID, userID int64, role string) {
	if s.assigned == nil {
		s.assigned = make(map[int64]assignment)
	}
	s.assigned[campaignID*1000+userID] = assignment{role: role, assigned: true}
}

type stubDirectory struct {
	portfolios map[string][]string
	errs       map[string]error
	countries  []string
	calls      int
}

func (d *stubDirectory) CustomerNumbers(ctx context.Context, repID, country string) ([]string, error) {
	d.calls++
	key := repID + "/" + country
	if err := d.errs[key]; err != nil {
		return nil, err
	}
	return d.portfolios[key], nil
}

func (d *stubDirectory) Countries() []string {
	if d.countries != nil {
		return d.countries
	}
	return []string{"BE", "LU"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, store Store, dir Directory) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(store, dir, client, testLogger(), nil)
}

func catalogPerms() []Permission {
	return []Permission{
		{Code: PermCampaignsView, Name: "Voir les campagnes", Category: "Campagnes", SortOrder: 1},
		{Code: PermCampaignsEdit, Name: "Modifier les campagnes", Category: "Campagnes", SortOrder: 2},
		{Code: PermCampaignsEditAll, Name: "Modifier toutes les campagnes", Category: "Campagnes", SortOrder: 3},
		{Code: PermCampaignsAssign, Name: "Assigner des collaborateurs", Category: "Campagnes", SortOrder: 4},
		{Code: PermOrdersView, Name: "Voir les commandes", Category: "Commandes", SortOrder: 1},
		{Code: PermCustomersView, Name: "Voir les clients", Category: "Clients", SortOrder: 1},
		{Code: PermSettingsPermissions, Name: "Gérer les permissions", Category: "Administration", SortOrder: 1},
	}
}
