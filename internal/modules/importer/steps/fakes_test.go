package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rowiverse/assessment-backend/internal/domain"
)

// In-memory repo fakes. Guarded by one mutex because batches run rows
// concurrently.

type memStore struct {
	mu sync.Mutex

	accounts      map[uuid.UUID]*types.Account
	verseProfiles map[uuid.UUID]*types.VerseProfile
	members       map[uuid.UUID]*types.Member
	communities   map[uuid.UUID]*types.Community
	memberships   map[uuid.UUID]*types.Membership
	snapshots     map[uuid.UUID]*types.Snapshot
	contributions []*types.Contribution

	// failSnapshotFor rejects snapshot writes for one account's email.
	failSnapshotFor map[uuid.UUID]bool
	failAccountGets bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:        map[uuid.UUID]*types.Account{},
		verseProfiles:   map[uuid.UUID]*types.VerseProfile{},
		members:         map[uuid.UUID]*types.Member{},
		communities:     map[uuid.UUID]*types.Community{},
		memberships:     map[uuid.UUID]*types.Membership{},
		snapshots:       map[uuid.UUID]*types.Snapshot{},
		failSnapshotFor: map[uuid.UUID]bool{},
	}
}

type fakeAccountRepo struct{ s *memStore }

func (f *fakeAccountRepo) Create(ctx context.Context, tx *gorm.DB, account *types.Account) (*types.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.accounts {
		if existing.Email == account.Email {
			return nil, fmt.Errorf("duplicate email %s", account.Email)
		}
	}
	cp := *account
	f.s.accounts[account.ID] = &cp
	return account, nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if a, ok := f.s.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failAccountGets {
		return nil, fmt.Errorf("store unavailable")
	}
	for _, a := range f.s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FillMissing(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.accounts[id]
	if !ok {
		return fmt.Errorf("account %s not found", id)
	}
	if v, ok := fields["first_name"].(string); ok && a.FirstName == "" {
		a.FirstName = v
	}
	if v, ok := fields["last_name"].(string); ok && a.LastName == "" {
		a.LastName = v
	}
	if v, ok := fields["country"].(string); ok && a.Country == nil {
		a.Country = &v
	}
	if v, ok := fields["language"].(string); ok && a.Language == nil {
		a.Language = &v
	}
	return nil
}

func (f *fakeAccountRepo) SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.accounts[id]
	if !ok {
		return fmt.Errorf("account %s not found", id)
	}
	a.VerseProfileID = &verseProfileID
	return nil
}

type fakeVerseProfileRepo struct{ s *memStore }

func (f *fakeVerseProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.VerseProfile) (*types.VerseProfile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if profile.AccountID != nil {
		for _, existing := range f.s.verseProfiles {
			if existing.AccountID != nil && *existing.AccountID == *profile.AccountID {
				return nil, fmt.Errorf("duplicate verse profile for account %s", *profile.AccountID)
			}
		}
	}
	cp := *profile
	f.s.verseProfiles[profile.ID] = &cp
	return profile, nil
}

func (f *fakeVerseProfileRepo) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.VerseProfile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.verseProfiles {
		if p.AccountID != nil && *p.AccountID == accountID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeVerseProfileRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.VerseProfile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.verseProfiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeVerseProfileRepo) LinkAccount(ctx context.Context, tx *gorm.DB, id, accountID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.verseProfiles[id]
	if !ok {
		return fmt.Errorf("verse profile %s not found", id)
	}
	if p.AccountID == nil {
		p.AccountID = &accountID
	}
	return nil
}

type fakeMemberRepo struct{ s *memStore }

func (f *fakeMemberRepo) Create(ctx context.Context, tx *gorm.DB, member *types.Member) (*types.Member, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.members {
		if existing.Email == member.Email {
			return nil, fmt.Errorf("duplicate member email %s", member.Email)
		}
	}
	cp := *member
	f.s.members[member.ID] = &cp
	return member, nil
}

func (f *fakeMemberRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Member, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, m := range f.s.members {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberRepo) ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*types.Member, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*types.Member
	for _, m := range f.s.members {
		if m.TenantID != nil && *m.TenantID == tenantID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) PatchLinks(ctx context.Context, tx *gorm.DB, id uuid.UUID, verseProfileID, tenantID *uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.members[id]
	if !ok {
		return fmt.Errorf("member %s not found", id)
	}
	if m.VerseProfileID == nil && verseProfileID != nil {
		m.VerseProfileID = verseProfileID
	}
	if m.TenantID == nil && tenantID != nil {
		m.TenantID = tenantID
	}
	return nil
}

type fakeCommunityRepo struct{ s *memStore }

func (f *fakeCommunityRepo) Create(ctx context.Context, tx *gorm.DB, c *types.Community) (*types.Community, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.communities {
		if existing.Slug == c.Slug {
			return nil, fmt.Errorf("duplicate community slug %s", c.Slug)
		}
	}
	cp := *c
	f.s.communities[c.ID] = &cp
	return c, nil
}

func (f *fakeCommunityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Community, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if c, ok := f.s.communities[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCommunityRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Community, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.communities {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeMembershipRepo struct{ s *memStore }

func (f *fakeMembershipRepo) Create(ctx context.Context, tx *gorm.DB, m *types.Membership) (*types.Membership, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.memberships {
		if existing.CommunityID == m.CommunityID && existing.AccountID == m.AccountID {
			return nil, fmt.Errorf("duplicate membership")
		}
	}
	cp := *m
	f.s.memberships[m.ID] = &cp
	return m, nil
}

func (f *fakeMembershipRepo) Get(ctx context.Context, tx *gorm.DB, communityID, accountID uuid.UUID) (*types.Membership, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, m := range f.s.memberships {
		if m.CommunityID == communityID && m.AccountID == accountID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMembershipRepo) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Membership, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, m := range f.s.memberships {
		if m.AccountID == accountID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMembershipRepo) ListActiveByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) ([]*types.Membership, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*types.Membership
	for _, m := range f.s.memberships {
		if m.CommunityID == communityID && m.Status == types.MembershipStatusActive {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.memberships[id]
	if !ok {
		return fmt.Errorf("membership %s not found", id)
	}
	if m.VerseProfileID == nil {
		m.VerseProfileID = &verseProfileID
	}
	return nil
}

type fakeSnapshotRepo struct{ s *memStore }

func (f *fakeSnapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failSnapshotFor[snapshot.AccountID] {
		return nil, fmt.Errorf("snapshot store unavailable")
	}
	cp := *snapshot
	f.s.snapshots[snapshot.ID] = &cp
	return snapshot, nil
}

func (f *fakeSnapshotRepo) LatestByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.Snapshot, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	latest := map[uuid.UUID]*types.Snapshot{}
	for _, s := range f.s.snapshots {
		for _, id := range accountIDs {
			if s.AccountID != id {
				continue
			}
			if cur, ok := latest[id]; !ok || s.TakenAt.After(cur.TakenAt) {
				latest[id] = s
			}
		}
	}
	var out []*types.Snapshot
	for _, s := range latest {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSnapshotRepo) CountByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var count int64
	for _, s := range f.s.snapshots {
		if s.CommunityID == communityID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSnapshotRepo) SubfactorsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Subfactor, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*types.Subfactor
	for _, id := range snapshotIDs {
		if s, ok := f.s.snapshots[id]; ok {
			for i := range s.Subfactors {
				cp := s.Subfactors[i]
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) OutcomesBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Outcome, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*types.Outcome
	for _, id := range snapshotIDs {
		if s, ok := f.s.snapshots[id]; ok {
			for i := range s.Outcomes {
				cp := s.Outcomes[i]
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) TalentsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Talent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*types.Talent
	for _, id := range snapshotIDs {
		if s, ok := f.s.snapshots[id]; ok {
			for i := range s.Talents {
				cp := s.Talents[i]
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

type fakeContributionRepo struct{ s *memStore }

func (f *fakeContributionRepo) CreateBulk(ctx context.Context, tx *gorm.DB, contributions []*types.Contribution) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.contributions = append(f.s.contributions, contributions...)
	return nil
}

func testDeps(s *memStore) RunImportDeps {
	return RunImportDeps{
		Log:           testLogger(),
		Accounts:      &fakeAccountRepo{s: s},
		VerseProfiles: &fakeVerseProfileRepo{s: s},
		Members:       &fakeMemberRepo{s: s},
		Communities:   &fakeCommunityRepo{s: s},
		Memberships:   &fakeMembershipRepo{s: s},
		Snapshots:     &fakeSnapshotRepo{s: s},
		Contributions: &fakeContributionRepo{s: s},
	}
}
