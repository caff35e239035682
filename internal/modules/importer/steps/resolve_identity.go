package steps

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type ResolveIdentityDeps struct {
	Log           *logger.Logger
	Accounts      repos.AccountRepo
	VerseProfiles repos.VerseProfileRepo
	Memberships   repos.MembershipRepo
	Members       repos.MemberRepo
}

type ResolveIdentityInput struct {
	Email     string
	FirstName string
	LastName  string
	Country   *string
	Language  *string
	Community *types.Community
}

type ResolveIdentityOutput struct {
	Account      *types.Account
	VerseProfile *types.VerseProfile
	Membership   *types.Membership
	Member       *types.Member

	AccountCreated    bool
	MembershipCreated bool
}

// ResolveIdentity finds or creates the three-tier identity chain for one
// email: account, verse profile, community membership, plus the legacy member
// record. Every step is an idempotent find-or-create with repair-on-conflict,
// so running it again for the same inputs yields exactly one of each entity.
// A store error at any step abandons the whole resolution for the row.
func ResolveIdentity(ctx context.Context, deps ResolveIdentityDeps, in ResolveIdentityInput) (ResolveIdentityOutput, error) {
	var out ResolveIdentityOutput

	if in.Community == nil {
		return out, fmt.Errorf("resolve identity: community required")
	}
	email := in.Email

	// 1. Account by normalized email. Row values seed a new account; for an
	// existing one they only fill previously-empty fields.
	account, err := deps.Accounts.GetByEmail(ctx, nil, email)
	if err != nil {
		return out, fmt.Errorf("resolve identity: get account: %w", err)
	}
	if account == nil {
		account, err = deps.Accounts.Create(ctx, nil, &types.Account{
			ID:        uuid.New(),
			Email:     email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Country:   in.Country,
			Language:  in.Language,
		})
		if err != nil {
			return out, fmt.Errorf("resolve identity: create account: %w", err)
		}
		out.AccountCreated = true
	} else {
		fill := map[string]any{}
		if in.FirstName != "" {
			fill["first_name"] = in.FirstName
		}
		if in.LastName != "" {
			fill["last_name"] = in.LastName
		}
		if in.Country != nil {
			fill["country"] = *in.Country
		}
		if in.Language != nil {
			fill["language"] = *in.Language
		}
		if len(fill) > 0 {
			if err := deps.Accounts.FillMissing(ctx, nil, account.ID, fill); err != nil {
				return out, fmt.Errorf("resolve identity: fill account: %w", err)
			}
		}
	}

	// 2. Verse profile: by account, then by email, else create pending.
	profile, err := deps.VerseProfiles.GetByAccountID(ctx, nil, account.ID)
	if err != nil {
		return out, fmt.Errorf("resolve identity: get verse profile by account: %w", err)
	}
	if profile == nil {
		profile, err = deps.VerseProfiles.GetByEmail(ctx, nil, email)
		if err != nil {
			return out, fmt.Errorf("resolve identity: get verse profile by email: %w", err)
		}
		if profile != nil && profile.AccountID == nil {
			if err := deps.VerseProfiles.LinkAccount(ctx, nil, profile.ID, account.ID); err != nil {
				return out, fmt.Errorf("resolve identity: link verse profile: %w", err)
			}
			profile.AccountID = &account.ID
		}
	}
	if profile == nil {
		accountID := account.ID
		profile, err = deps.VerseProfiles.Create(ctx, nil, &types.VerseProfile{
			ID:        uuid.New(),
			AccountID: &accountID,
			Email:     email,
			Status:    types.VerseProfileStatusPending,
			VerseID:   in.Community.VerseID,
		})
		if err != nil {
			return out, fmt.Errorf("resolve identity: create verse profile: %w", err)
		}
	}

	// 3. Back-reference from account to verse profile.
	if account.VerseProfileID == nil {
		if err := deps.Accounts.SetVerseProfile(ctx, nil, account.ID, profile.ID); err != nil {
			return out, fmt.Errorf("resolve identity: set account verse profile: %w", err)
		}
		id := profile.ID
		account.VerseProfileID = &id
	}

	// 4. Community membership; repair a missing verse link on an existing one.
	membership, err := deps.Memberships.Get(ctx, nil, in.Community.ID, account.ID)
	if err != nil {
		return out, fmt.Errorf("resolve identity: get membership: %w", err)
	}
	if membership == nil {
		profileID := profile.ID
		membership, err = deps.Memberships.Create(ctx, nil, &types.Membership{
			ID:             uuid.New(),
			CommunityID:    in.Community.ID,
			AccountID:      account.ID,
			Role:           types.MembershipRoleMember,
			Status:         types.MembershipStatusActive,
			DisplayName:    displayName(in.FirstName, in.LastName, email),
			Email:          email,
			VerseProfileID: &profileID,
		})
		if err != nil {
			return out, fmt.Errorf("resolve identity: create membership: %w", err)
		}
		out.MembershipCreated = true
	} else if membership.VerseProfileID == nil {
		if err := deps.Memberships.SetVerseProfile(ctx, nil, membership.ID, profile.ID); err != nil {
			return out, fmt.Errorf("resolve identity: repair membership verse link: %w", err)
		}
		id := profile.ID
		membership.VerseProfileID = &id
	}

	// 5. Legacy member record, keyed by email globally. On conflict, patch
	// missing links rather than erroring.
	member, err := deps.Members.GetByEmail(ctx, nil, email)
	if err != nil {
		return out, fmt.Errorf("resolve identity: get member: %w", err)
	}
	if member == nil {
		profileID := profile.ID
		member, err = deps.Members.Create(ctx, nil, &types.Member{
			ID:             uuid.New(),
			Email:          email,
			Name:           displayName(in.FirstName, in.LastName, email),
			VerseProfileID: &profileID,
			TenantID:       in.Community.TenantID,
		})
		if err != nil {
			return out, fmt.Errorf("resolve identity: create member: %w", err)
		}
	} else if member.VerseProfileID == nil || member.TenantID == nil {
		profileID := profile.ID
		if err := deps.Members.PatchLinks(ctx, nil, member.ID, &profileID, in.Community.TenantID); err != nil {
			return out, fmt.Errorf("resolve identity: patch member links: %w", err)
		}
	}

	out.Account = account
	out.VerseProfile = profile
	out.Membership = membership
	out.Member = member
	return out, nil
}

func displayName(first, last, fallback string) string {
	name := first
	if last != "" {
		if name != "" {
			name += " "
		}
		name += last
	}
	if name == "" {
		return fallback
	}
	return name
}
