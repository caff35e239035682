package steps

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/rowiverse/assessment-backend/internal/domain"
)

func resolveDeps(s *memStore) ResolveIdentityDeps {
	return ResolveIdentityDeps{
		Log:           testLogger(),
		Accounts:      &fakeAccountRepo{s: s},
		VerseProfiles: &fakeVerseProfileRepo{s: s},
		Memberships:   &fakeMembershipRepo{s: s},
		Members:       &fakeMemberRepo{s: s},
	}
}

func seedCommunity(s *memStore) *types.Community {
	tenantID := uuid.New()
	c := &types.Community{
		ID:       uuid.New(),
		Name:     "Acme",
		Slug:     "acme",
		TenantID: &tenantID,
	}
	s.communities[c.ID] = c
	return c
}

func TestResolveIdentityCreatesChain(t *testing.T) {
	s := newMemStore()
	community := seedCommunity(s)
	ctx := context.Background()

	out, err := ResolveIdentity(ctx, resolveDeps(s), ResolveIdentityInput{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Community: community,
	})
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if !out.AccountCreated || !out.MembershipCreated {
		t.Fatalf("expected fresh account and membership, got %+v", out)
	}
	if out.VerseProfile == nil || out.VerseProfile.Status != types.VerseProfileStatusPending {
		t.Fatalf("expected pending verse profile, got %+v", out.VerseProfile)
	}
	if out.Account.VerseProfileID == nil || *out.Account.VerseProfileID != out.VerseProfile.ID {
		t.Fatalf("account back-reference not set")
	}
	if out.Membership.VerseProfileID == nil {
		t.Fatalf("membership verse link not set")
	}
	if out.Member == nil || out.Member.TenantID == nil || *out.Member.TenantID != *community.TenantID {
		t.Fatalf("legacy member not linked to tenant: %+v", out.Member)
	}
}

func TestResolveIdentityIdempotent(t *testing.T) {
	s := newMemStore()
	community := seedCommunity(s)
	ctx := context.Background()

	in := ResolveIdentityInput{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Community: community,
	}
	first, err := ResolveIdentity(ctx, resolveDeps(s), in)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := ResolveIdentity(ctx, resolveDeps(s), in)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if again.AccountCreated || again.MembershipCreated {
			t.Fatalf("resolve %d created new entities", i)
		}
		if again.Account.ID != first.Account.ID {
			t.Fatalf("resolve %d returned a different account", i)
		}
	}

	if len(s.accounts) != 1 || len(s.verseProfiles) != 1 || len(s.memberships) != 1 || len(s.members) != 1 {
		t.Fatalf("duplicates created: %d accounts, %d profiles, %d memberships, %d members",
			len(s.accounts), len(s.verseProfiles), len(s.memberships), len(s.members))
	}
}

func TestResolveIdentityAdoptsOrphanVerseProfile(t *testing.T) {
	s := newMemStore()
	community := seedCommunity(s)
	ctx := context.Background()

	// A verse profile that predates the account, keyed only by email.
	orphan := &types.VerseProfile{
		ID:     uuid.New(),
		Email:  "ada@example.com",
		Status: types.VerseProfileStatusPending,
	}
	s.verseProfiles[orphan.ID] = orphan

	out, err := ResolveIdentity(ctx, resolveDeps(s), ResolveIdentityInput{
		Email:     "ada@example.com",
		Community: community,
	})
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if out.VerseProfile.ID != orphan.ID {
		t.Fatalf("expected the orphan profile to be adopted, got %s", out.VerseProfile.ID)
	}
	if len(s.verseProfiles) != 1 {
		t.Fatalf("expected no second verse profile, have %d", len(s.verseProfiles))
	}
	stored := s.verseProfiles[orphan.ID]
	if stored.AccountID == nil || *stored.AccountID != out.Account.ID {
		t.Fatalf("orphan profile not linked to account")
	}
}

func TestResolveIdentityNeverOverwritesAccountFields(t *testing.T) {
	s := newMemStore()
	community := seedCommunity(s)
	ctx := context.Background()

	existingCountry := "UK"
	account := &types.Account{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		FirstName: "Ada",
		Country:   &existingCountry,
	}
	s.accounts[account.ID] = account

	newCountry := "FR"
	out, err := ResolveIdentity(ctx, resolveDeps(s), ResolveIdentityInput{
		Email:     "ada@example.com",
		FirstName: "Renamed",
		LastName:  "Lovelace",
		Country:   &newCountry,
		Community: community,
	})
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	stored := s.accounts[out.Account.ID]
	if stored.FirstName != "Ada" {
		t.Fatalf("existing first name overwritten: %q", stored.FirstName)
	}
	if stored.Country == nil || *stored.Country != "UK" {
		t.Fatalf("existing country overwritten: %v", stored.Country)
	}
	// The previously-empty last name is filled.
	if stored.LastName != "Lovelace" {
		t.Fatalf("empty last name not filled: %q", stored.LastName)
	}
}

func TestResolveIdentityStoreErrorAbandonsRow(t *testing.T) {
	s := newMemStore()
	community := seedCommunity(s)
	s.failAccountGets = true
	ctx := context.Background()

	_, err := ResolveIdentity(ctx, resolveDeps(s), ResolveIdentityInput{
		Email:     "ada@example.com",
		Community: community,
	})
	if err == nil {
		t.Fatalf("expected error when the store is unavailable")
	}
	if len(s.accounts) != 0 && len(s.memberships) != 0 {
		t.Fatalf("partial writes after failed resolution")
	}
}
