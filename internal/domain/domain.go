package domain

import (
	"github.com/rowiverse/assessment-backend/internal/domain/assessment"
	"github.com/rowiverse/assessment-backend/internal/domain/benchmark"
	"github.com/rowiverse/assessment-backend/internal/domain/community"
	"github.com/rowiverse/assessment-backend/internal/domain/identity"
)

type Account = identity.Account
type VerseProfile = identity.VerseProfile
type Member = identity.Member

type Community = community.Community
type Membership = community.Membership

type Snapshot = assessment.Snapshot
type Competency = assessment.Competency
type Subfactor = assessment.Subfactor
type Outcome = assessment.Outcome
type SuccessFactor = assessment.SuccessFactor
type Talent = assessment.Talent

type Benchmark = benchmark.Benchmark
type BenchmarkStatistic = benchmark.Statistic
type TopPerformerProfile = benchmark.TopPerformerProfile
type Contribution = benchmark.Contribution

const (
	VerseProfileStatusPending  = identity.VerseProfileStatusPending
	VerseProfileStatusVerified = identity.VerseProfileStatusVerified

	MembershipRoleMember     = community.MembershipRoleMember
	MembershipRoleAdmin      = community.MembershipRoleAdmin
	MembershipStatusActive   = community.MembershipStatusActive
	MembershipStatusInactive = community.MembershipStatusInactive

	BenchmarkTypeCommunity = benchmark.TypeCommunity
	BenchmarkTypeExternal  = benchmark.TypeExternal
	BenchmarkTypeInternal  = benchmark.TypeInternal

	BenchmarkScopeGlobal  = benchmark.ScopeGlobal
	BenchmarkScopeRegion  = benchmark.ScopeRegion
	BenchmarkScopeCountry = benchmark.ScopeCountry
	BenchmarkScopeSector  = benchmark.ScopeSector
	BenchmarkScopeTenant  = benchmark.ScopeTenant
	BenchmarkScopeHub     = benchmark.ScopeHub
)
