package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	"claimflow/internal/attestation/ports/mocks"
	dErrors "claimflow/pkg/domain-errors"
	"claimflow/pkg/platform/sentinel"
)

type ResolverSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	definitions *mocks.MockDefinitions
	searcher    *mocks.MockSearcher
	store       *mocks.MockEntityStore
	resolver    *Resolver
	schema      []*models.Policy
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.definitions = mocks.NewMockDefinitions(s.ctrl)
	s.searcher = mocks.NewMockSearcher(s.ctrl)
	s.store = mocks.NewMockEntityStore(s.ctrl)
	s.schema = []*models.Policy{{Name: "nameAttestation"}, {Name: "dup"}}
	s.definitions.EXPECT().Policies("Teacher").Return(s.schema).AnyTimes()

	var err error
	s.resolver, err = New(s.definitions,
		WithSearcher(s.searcher),
		WithPolicySearch(true),
		WithStore(s.store),
	)
	s.Require().NoError(err)
}

func (s *ResolverSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverSuite) expectPolicySearch(entities []models.Document, err error) {
	s.searcher.EXPECT().Search(gomock.Any(), ports.SearchQuery{
		EntityType: models.PolicyEntityType,
		Filters:    map[string]ports.Filter{"entity": {Op: ports.FilterEq, Value: "Teacher"}},
	}).Return(&ports.SearchResult{Entities: entities, TotalCount: len(entities)}, err)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ResolverSuite) TestNew() {
	s.Run("nil definitions returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "definitions are required")
	})
}

// =============================================================================
// Resolve Tests
// =============================================================================

func (s *ResolverSuite) TestResolve() {
	ctx := context.Background()

	s.Run("dynamic policies precede schema policies and names are not deduplicated", func() {
		s.expectPolicySearch([]models.Document{{"name": "dup", "entity": "Teacher"}}, nil)

		got := s.resolver.Resolve(ctx, "Teacher")
		s.Require().Len(got, 3)
		s.Equal("dup", got[0].Name)
		s.Equal("Teacher", got[0].Entity)
		s.Same(s.schema[0], got[1])
		s.Same(s.schema[1], got[2])
	})

	s.Run("search failure degrades to schema policies", func() {
		s.searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("index down"))
		s.Equal(s.schema, s.resolver.Resolve(ctx, "Teacher"))
	})

	s.Run("search disabled skips the searcher", func() {
		r, err := New(s.definitions, WithSearcher(s.searcher))
		s.Require().NoError(err)
		s.Equal(s.schema, r.Resolve(ctx, "Teacher"))
	})
}

func (s *ResolverSuite) TestResolvePolicy() {
	ctx := context.Background()

	s.Run("found", func() {
		s.expectPolicySearch(nil, nil)
		p, err := s.resolver.ResolvePolicy(ctx, "Teacher", "nameAttestation")
		s.Require().NoError(err)
		s.Same(s.schema[0], p)
	})

	s.Run("missing", func() {
		s.expectPolicySearch(nil, nil)
		_, err := s.resolver.ResolvePolicy(ctx, "Teacher", "unknown")
		s.ErrorIs(err, models.ErrPolicyNotFound)
	})
}

// =============================================================================
// Administration Tests
// =============================================================================

func (s *ResolverSuite) TestCreatePolicy() {
	ctx := context.Background()

	s.Run("rejects used name", func() {
		s.expectPolicySearch(nil, nil)
		_, err := s.resolver.CreatePolicy(ctx, "u1", &models.Policy{Name: "nameAttestation", Entity: "Teacher"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("stores policy with creator", func() {
		s.expectPolicySearch(nil, nil)
		s.store.EXPECT().Create(gomock.Any(), models.PolicyEntityType, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, doc map[string]any) (string, error) {
				s.Equal("u1", doc["createdBy"])
				s.Equal("Teacher", doc["entity"])
				return "p-1", nil
			})

		p := &models.Policy{Name: "fresh", Entity: "Teacher"}
		id, err := s.resolver.CreatePolicy(ctx, "u1", p)
		s.Require().NoError(err)
		s.Equal("p-1", id)
		s.Equal("p-1", p.ID)
	})

	s.Run("requires entity", func() {
		_, err := s.resolver.CreatePolicy(ctx, "u1", &models.Policy{Name: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ResolverSuite) TestFindPolicyByID() {
	ctx := context.Background()

	s.Run("missing policy maps to not found", func() {
		s.store.EXPECT().Read(gomock.Any(), models.PolicyEntityType, "nope").Return(nil, sentinel.ErrNotFound)
		_, err := s.resolver.FindPolicyByID(ctx, "nope")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("decodes stored policy", func() {
		s.store.EXPECT().Read(gomock.Any(), models.PolicyEntityType, "p-1").Return(models.Document{
			models.PolicyEntityType: map[string]any{"osid": "p-1", "name": "fresh", "type": "AUTOMATED"},
		}, nil)
		p, err := s.resolver.FindPolicyByID(ctx, "p-1")
		s.Require().NoError(err)
		s.Equal("p-1", p.ID)
		s.True(p.IsAutomated())
	})
}

func (s *ResolverSuite) TestUpdateAndDeletePolicy() {
	ctx := context.Background()

	s.store.EXPECT().Read(gomock.Any(), models.PolicyEntityType, "p-1").Return(models.Document{
		models.PolicyEntityType: map[string]any{"osid": "p-1", "name": "fresh", "createdBy": "u1"},
	}, nil)
	s.store.EXPECT().Update(gomock.Any(), models.PolicyEntityType, "p-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, root map[string]any) error {
			body := root[models.PolicyEntityType].(map[string]any)
			s.Equal("u1", body["createdBy"])
			s.Equal("renamed", body["name"])
			return nil
		})
	s.Require().NoError(s.resolver.UpdatePolicy(ctx, "p-1", &models.Policy{Name: "renamed"}))

	s.store.EXPECT().Delete(gomock.Any(), models.PolicyEntityType, "p-1").Return(nil)
	s.Require().NoError(s.resolver.DeletePolicy(ctx, "p-1"))
}

func (s *ResolverSuite) TestFindPoliciesByCreator() {
	s.searcher.EXPECT().Search(gomock.Any(), ports.SearchQuery{
		EntityType: models.PolicyEntityType,
		Filters:    map[string]ports.Filter{"createdBy": {Op: ports.FilterEq, Value: "u1"}},
	}).Return(&ports.SearchResult{Entities: []models.Document{{"name": "a"}, {"name": "b"}}}, nil)

	got, err := s.resolver.FindPoliciesByCreator(context.Background(), "u1")
	s.Require().NoError(err)
	s.Len(got, 2)
}
