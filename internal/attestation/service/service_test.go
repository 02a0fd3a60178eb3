package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports/mocks"
	"claimflow/internal/attestation/service"
	"claimflow/internal/registry/store"
	dErrors "claimflow/pkg/domain-errors"
)

type staticPolicies map[string][]*models.Policy

func (p staticPolicies) Resolve(_ context.Context, entityType string) []*models.Policy {
	return p[entityType]
}

func (p staticPolicies) ResolvePolicy(_ context.Context, entityType, name string) (*models.Policy, error) {
	for _, policy := range p[entityType] {
		if policy.Name == name {
			return policy, nil
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", entityType, name, models.ErrPolicyNotFound)
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	store    *store.InMemoryStore
	router   *mocks.MockRouter
	signer   *mocks.MockSigner
	files    *mocks.MockFileStorage
	ledger   *mocks.MockRevocationLedger
	defs     *mocks.MockDefinitions
	funcs    *mocks.MockFunctionExecutor
	conds    *mocks.MockConditionResolver
	policies staticPolicies
	ids      int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemory("osid")
	s.router = mocks.NewMockRouter(s.ctrl)
	s.signer = mocks.NewMockSigner(s.ctrl)
	s.files = mocks.NewMockFileStorage(s.ctrl)
	s.ledger = mocks.NewMockRevocationLedger(s.ctrl)
	s.defs = mocks.NewMockDefinitions(s.ctrl)
	s.funcs = mocks.NewMockFunctionExecutor(s.ctrl)
	s.conds = mocks.NewMockConditionResolver(s.ctrl)
	s.policies = staticPolicies{}
	s.ids = 0
}

func (s *ServiceSuite) newService(cfg service.Config, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithSearcher(s.store),
		service.WithSigner(s.signer),
		service.WithFileStorage(s.files),
		service.WithRevocationLedger(s.ledger),
		service.WithDefinitions(s.defs),
		service.WithFunctionExecutor(s.funcs),
		service.WithConditionResolver(s.conds),
		service.WithIDGenerator(func() string {
			s.ids++
			return fmt.Sprintf("rec-%d", s.ids)
		}),
	}
	svc, err := service.New(s.store, s.policies, s.router, cfg, append(base, opts...)...)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) addPolicy(entityType string, p *models.Policy) *models.Policy {
	s.policies[entityType] = append(s.policies[entityType], p)
	return p
}

func (s *ServiceSuite) createEntity(entityType string, body models.Document) string {
	id, err := s.store.Create(s.ctx, entityType, body)
	s.Require().NoError(err)
	return id
}

func (s *ServiceSuite) body(entityType, id string) models.Document {
	root, err := s.store.Read(s.ctx, entityType, id)
	s.Require().NoError(err)
	return root[entityType].(models.Document)
}

func (s *ServiceSuite) records(entityType, id, policy string) []models.Document {
	items, _ := s.body(entityType, id)[policy].([]any)
	out := make([]models.Document, 0, len(items))
	for _, item := range items {
		out = append(out, item.(models.Document))
	}
	return out
}

func (s *ServiceSuite) status(entityType, id, policy string) any {
	statuses, _ := s.body(entityType, id)[models.FieldAttestationStatus].(models.Document)
	return statuses[policy]
}

func grant(policy, recordID, response string) models.PluginResponseMessage {
	return models.PluginResponseMessage{
		PolicyName:      policy,
		SourceEntity:    "Teacher",
		SourceUUID:      "t-1",
		AttestationUUID: recordID,
		Status:          models.ActionGrantClaim,
		Response:        response,
		UserID:          "u1",
	}
}

func requested(id, policy, propertyData string) models.Document {
	return models.Document{
		"osid":                   id,
		models.FieldName:         policy,
		models.FieldState:        string(models.StateAttestationRequested),
		models.FieldPropertyData: propertyData,
		models.FieldEntityName:   "Teacher",
		models.FieldEntityID:     "t-1",
	}
}

// =============================================================================
// UpdateState
// =============================================================================

func (s *ServiceSuite) TestClaimLifecycleEndToEnd() {
	s.addPolicy("Teacher", &models.Policy{
		Name:           "HeadTeacherApproval",
		Type:           models.AttestationTypeManual,
		AttestorPlugin: "did:external:HeadTeacher",
	})
	s.createEntity("Teacher", models.Document{"osid": "t-1", "name": "Ana"})
	svc := s.newService(service.Config{})

	err := svc.UpdateState(s.ctx, models.PluginResponseMessage{
		PolicyName:     "HeadTeacherApproval",
		SourceEntity:   "Teacher",
		SourceUUID:     "t-1",
		Status:         models.ActionRaiseClaim,
		AdditionalData: models.Document{"claimId": "C1"},
	})
	s.Require().NoError(err)

	recs := s.records("Teacher", "t-1", "HeadTeacherApproval")
	s.Require().Len(recs, 1)
	s.Equal(string(models.StateAttestationRequested), recs[0][models.FieldState])
	s.Equal("C1", recs[0][models.FieldClaimID])
	s.Equal(string(models.StateAttestationRequested), s.status("Teacher", "t-1", "HeadTeacherApproval"))

	err = svc.UpdateState(s.ctx, models.PluginResponseMessage{
		PolicyName:     "HeadTeacherApproval",
		SourceEntity:   "Teacher",
		SourceUUID:     "t-1",
		Status:         models.ActionGrantClaim,
		Response:       "approved",
		AdditionalData: models.Document{"claimId": "C1"},
	})
	s.Require().NoError(err)

	recs = s.records("Teacher", "t-1", "HeadTeacherApproval")
	s.Require().Len(recs, 1)
	s.Equal(string(models.StatePublished), recs[0][models.FieldState])
	s.Equal("approved", recs[0][models.FieldAttestedDataMeta])
	s.Equal(string(models.StatePublished), s.status("Teacher", "t-1", "HeadTeacherApproval"))
}

func (s *ServiceSuite) TestUpdateStateTransitions() {
	s.addPolicy("Teacher", &models.Policy{Name: "Degree", AttestorPlugin: "did:external:Uni"})
	s.createEntity("Teacher", models.Document{
		"osid":   "t-1",
		"Degree": []any{requested("r1", "Degree", `{"degree":"BSc"}`)},
	})
	svc := s.newService(service.Config{})

	s.Run("grant is idempotent", func() {
		s.Require().NoError(svc.UpdateState(s.ctx, grant("Degree", "r1", "ok")))
		s.Require().NoError(svc.UpdateState(s.ctx, grant("Degree", "r1", "ok")))
		recs := s.records("Teacher", "t-1", "Degree")
		s.Require().Len(recs, 1)
		s.Equal(string(models.StatePublished), recs[0][models.FieldState])
	})

	s.Run("invalidate is not accepted from plugins", func() {
		resp := grant("Degree", "r1", "")
		resp.Status = models.ActionInvalidate
		err := svc.UpdateState(s.ctx, resp)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown status is rejected", func() {
		resp := grant("Degree", "r1", "")
		resp.Status = "APPROVE"
		err := svc.UpdateState(s.ctx, resp)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown policy is not found", func() {
		err := svc.UpdateState(s.ctx, grant("Nope", "r1", ""))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("grant of a missing record is not found", func() {
		err := svc.UpdateState(s.ctx, grant("Degree", "missing", ""))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.ErrorIs(err, models.ErrRecordNotFound)
	})

	s.Run("reject of a published record violates the lifecycle", func() {
		resp := grant("Degree", "r1", "no")
		resp.Status = models.ActionRejectClaim
		err := svc.UpdateState(s.ctx, resp)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("missing entity is not found", func() {
		resp := grant("Degree", "r1", "")
		resp.SourceUUID = "t-404"
		err := svc.UpdateState(s.ctx, resp)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRejectReturnsToDraft() {
	s.addPolicy("Teacher", &models.Policy{Name: "Degree"})
	s.createEntity("Teacher", models.Document{
		"osid":   "t-1",
		"Degree": []any{requested("r1", "Degree", "{}")},
	})
	svc := s.newService(service.Config{})

	resp := grant("Degree", "r1", "missing transcript")
	resp.Status = models.ActionRejectClaim
	s.Require().NoError(svc.UpdateState(s.ctx, resp))

	recs := s.records("Teacher", "t-1", "Degree")
	s.Equal(string(models.StateDraft), recs[0][models.FieldState])
	s.Equal("missing transcript", recs[0][models.FieldAttestedDataMeta])
	s.Equal(string(models.StateDraft), s.status("Teacher", "t-1", "Degree"))
}

// =============================================================================
// Credential signing on grant
// =============================================================================

func (s *ServiceSuite) TestGrantSignsCredential() {
	s.Run("signed credential is stored on the record", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree", CredentialTemplate: []byte(`{"type":["VerifiableCredential"]}`)})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{SignatureEnabled: true})

		s.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.SignRequest) (*models.SignedCredential, error) {
				s.Equal("Teacher_Degree", req.Title)
				s.JSONEq(`{"degree":"BSc"}`, string(req.Data))
				s.JSONEq(`{"type":["VerifiableCredential"]}`, string(req.CredentialTemplate))
				return &models.SignedCredential{Raw: []byte(`{"proof":"sig"}`)}, nil
			})

		s.Require().NoError(svc.UpdateState(s.ctx, grant("Degree", "r1", `{"degree":"BSc"}`)))

		recs := s.records("Teacher", "t-1", "Degree")
		s.Equal(string(models.StatePublished), recs[0][models.FieldState])
		s.Equal(`{"proof":"sig"}`, recs[0][models.FieldAttestedDataMeta])
		s.Equal(`{"proof":"sig"}`, recs[0][models.FieldAttestedData])
	})

	s.Run("v2 provider stores the credential id", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree", CredentialTemplate: []byte(`{"a":1}`)})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{SignatureEnabled: true, SignatureProvider: models.SignatureProviderV2})

		s.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).
			Return(&models.SignedCredential{ID: "did:cred:1", Raw: []byte(`{}`)}, nil)

		s.Require().NoError(svc.UpdateState(s.ctx, grant("Degree", "r1", "{}")))
		recs := s.records("Teacher", "t-1", "Degree")
		s.Equal("did:cred:1", recs[0][models.FieldCredentialID])
	})

	s.Run("signing disabled leaves the claim pending", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree", CredentialTemplate: []byte(`{"a":1}`)})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{})

		err := svc.UpdateState(s.ctx, grant("Degree", "r1", "{}"))
		s.True(dErrors.HasCode(err, dErrors.CodeServiceUnavailable))
		s.ErrorIs(err, models.ErrServiceNotEnabled)
		recs := s.records("Teacher", "t-1", "Degree")
		s.Equal(string(models.StateAttestationRequested), recs[0][models.FieldState])
	})

	s.Run("signer failure aborts the grant", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree", CredentialTemplate: []byte(`{"a":1}`)})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{SignatureEnabled: true})

		s.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(nil, errors.New("signer down"))

		err := svc.UpdateState(s.ctx, grant("Degree", "r1", "{}"))
		s.ErrorIs(err, models.ErrSigningFailed)
		recs := s.records("Teacher", "t-1", "Degree")
		s.Equal(string(models.StateAttestationRequested), recs[0][models.FieldState])
	})

	s.Run("replayed grant keeps the first credential", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree", CredentialTemplate: []byte(`{"a":1}`)})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{SignatureEnabled: true})

		s.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).
			Return(&models.SignedCredential{Raw: []byte(`{"proof":"first"}`)}, nil).Times(1)

		s.Require().NoError(svc.UpdateState(s.ctx, grant("Degree", "r1", "{}")))
		s.Require().NoError(svc.UpdateState(s.ctx, grant("Degree", "r1", "{}")))

		recs := s.records("Teacher", "t-1", "Degree")
		s.Require().Len(recs, 1)
		s.Equal(string(models.StatePublished), recs[0][models.FieldState])
		s.Equal(`{"proof":"first"}`, recs[0][models.FieldAttestedData])
	})

	s.Run("grant of a missing record signs nothing", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree", CredentialTemplate: []byte(`{"a":1}`)})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{SignatureEnabled: true})

		s.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Times(0)

		err := svc.UpdateState(s.ctx, grant("Degree", "missing", "{}"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("grant of a draft record signs nothing", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree", CredentialTemplate: []byte(`{"a":1}`)})
		draft := requested("r1", "Degree", "{}")
		draft[models.FieldState] = string(models.StateDraft)
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{draft}})
		svc := s.newService(service.Config{SignatureEnabled: true})

		s.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Times(0)

		err := svc.UpdateState(s.ctx, grant("Degree", "r1", "{}"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Equal(string(models.StateDraft), s.records("Teacher", "t-1", "Degree")[0][models.FieldState])
	})
}

// =============================================================================
// Completion
// =============================================================================

func (s *ServiceSuite) TestCompletionRaisesNextAttestation() {
	s.addPolicy("Teacher", &models.Policy{
		Name:            "p1",
		OnComplete:      "attestation:p2",
		CompletionType:  models.CompletionAttestation,
		CompletionValue: "p2",
	})
	s.addPolicy("Teacher", &models.Policy{Name: "p2", AttestorPlugin: "did:external:Board"})
	s.createEntity("Teacher", models.Document{"osid": "t-1", "p1": []any{requested("r1", "p1", "{}")}})
	svc := s.newService(service.Config{})

	s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
			s.Equal("p2", msg.PolicyName)
			s.Equal("did:external:Board", msg.AttestorPlugin)
			s.Equal("rec-1", msg.AttestationUUID)
			s.JSONEq(`{"grade":"A"}`, msg.PropertyData)
			return nil
		}).Times(1)

	s.Require().NoError(svc.UpdateState(s.ctx, grant("p1", "r1", `{"grade":"A"}`)))

	s.Equal(string(models.StatePublished), s.records("Teacher", "t-1", "p1")[0][models.FieldState])
	p2 := s.records("Teacher", "t-1", "p2")
	s.Require().Len(p2, 1)
	s.Equal(string(models.StateAttestationRequested), p2[0][models.FieldState])
	s.JSONEq(`{"grade":"A"}`, p2[0][models.FieldPropertyData].(string))

	s.Run("replayed grant does not raise the next attestation again", func() {
		s.Require().NoError(svc.UpdateState(s.ctx, grant("p1", "r1", `{"grade":"A"}`)))

		p2 := s.records("Teacher", "t-1", "p2")
		s.Require().Len(p2, 1)
		s.Equal("rec-1", p2[0]["osid"])
		s.Equal(string(models.StateAttestationRequested), p2[0][models.FieldState])
	})
}

func (s *ServiceSuite) TestCompletionWithUnknownNextPolicyKeepsGrant() {
	s.addPolicy("Teacher", &models.Policy{
		Name:            "p1",
		OnComplete:      "attestation:gone",
		CompletionType:  models.CompletionAttestation,
		CompletionValue: "gone",
	})
	s.createEntity("Teacher", models.Document{"osid": "t-1", "p1": []any{requested("r1", "p1", "{}")}})
	svc := s.newService(service.Config{})

	s.Require().NoError(svc.UpdateState(s.ctx, grant("p1", "r1", "ok")))
	s.Equal(string(models.StatePublished), s.records("Teacher", "t-1", "p1")[0][models.FieldState])
}

func (s *ServiceSuite) TestCompletionRunsFunction() {
	def := &models.FunctionDefinition{Name: "setGrade", Result: map[string]string{"grade": "$.attestationResponse.response"}}
	policy := &models.Policy{
		Name:                   "p1",
		OnComplete:             "function:setGrade",
		CompletionType:         models.CompletionFunction,
		CompletionValue:        "setGrade",
		CompletionFunctionName: "setGrade",
	}

	s.Run("output is persisted without the response", func() {
		s.SetupTest()
		s.addPolicy("Teacher", policy)
		s.createEntity("Teacher", models.Document{"osid": "t-1", "p1": []any{requested("r1", "p1", "{}")}})
		svc := s.newService(service.Config{})

		s.defs.EXPECT().FunctionDefinition("Teacher", "setGrade").Return(def, true)
		s.funcs.EXPECT().Execute(gomock.Any(), "setGrade", *def, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ models.FunctionDefinition, input models.Document) (models.Document, error) {
				response, ok := input[models.FieldAttestationResponse].(models.Document)
				s.Require().True(ok)
				s.Equal("A", response["response"])
				input["grade"] = response["response"]
				return input, nil
			})

		s.Require().NoError(svc.UpdateState(s.ctx, grant("p1", "r1", "A")))

		body := s.body("Teacher", "t-1")
		s.Equal("A", body["grade"])
		s.NotContains(body, models.FieldAttestationResponse)
	})

	s.Run("unchanged output is not written", func() {
		s.SetupTest()
		s.addPolicy("Teacher", policy)
		entities := mocks.NewMockEntityStore(s.ctrl)
		root := models.Document{"Teacher": models.Document{"osid": "t-1", "p1": []any{requested("r1", "p1", "{}")}}}
		entities.EXPECT().Read(gomock.Any(), "Teacher", "t-1").Return(root, nil)
		entities.EXPECT().Update(gomock.Any(), "Teacher", "t-1", gomock.Any()).Return(nil).Times(1)
		svc, err := service.New(entities, s.policies, s.router, service.Config{},
			service.WithDefinitions(s.defs), service.WithFunctionExecutor(s.funcs))
		s.Require().NoError(err)

		s.defs.EXPECT().FunctionDefinition("Teacher", "setGrade").Return(def, true)
		s.funcs.EXPECT().Execute(gomock.Any(), "setGrade", *def, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ models.FunctionDefinition, input models.Document) (models.Document, error) {
				return input, nil
			})

		s.Require().NoError(svc.UpdateState(s.ctx, grant("p1", "r1", "A")))
	})

	s.Run("missing function is logged and the grant stands", func() {
		s.SetupTest()
		s.addPolicy("Teacher", policy)
		s.createEntity("Teacher", models.Document{"osid": "t-1", "p1": []any{requested("r1", "p1", "{}")}})
		svc := s.newService(service.Config{})

		s.defs.EXPECT().FunctionDefinition("Teacher", "setGrade").Return(nil, false)

		s.Require().NoError(svc.UpdateState(s.ctx, grant("p1", "r1", "A")))
		s.Equal(string(models.StatePublished), s.records("Teacher", "t-1", "p1")[0][models.FieldState])
	})

	s.Run("failing function is logged and the grant stands", func() {
		s.SetupTest()
		s.addPolicy("Teacher", policy)
		s.createEntity("Teacher", models.Document{"osid": "t-1", "p1": []any{requested("r1", "p1", "{}")}})
		svc := s.newService(service.Config{})

		s.defs.EXPECT().FunctionDefinition("Teacher", "setGrade").Return(def, true)
		s.funcs.EXPECT().Execute(gomock.Any(), "setGrade", *def, gomock.Any()).
			Return(nil, errors.New("path not found"))

		s.Require().NoError(svc.UpdateState(s.ctx, grant("p1", "r1", "A")))
		s.Equal(string(models.StatePublished), s.records("Teacher", "t-1", "p1")[0][models.FieldState])
		s.NotContains(s.body("Teacher", "t-1"), "grade")
	})
}

// =============================================================================
// Attested files
// =============================================================================

func (s *ServiceSuite) TestGrantStoresAttachedFiles() {
	s.Run("files are namespaced and failures are left out", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree"})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{FileStorageEnabled: true})

		s.files.EXPECT().Save(gomock.Any(), gomock.Any(), "Teacher/t-1/Degree/documents/a.pdf").Return(nil)
		s.files.EXPECT().Save(gomock.Any(), gomock.Any(), "Teacher/t-1/Degree/documents/b.pdf").Return(errors.New("bucket full"))

		resp := grant("Degree", "r1", `{"degree":"BSc"}`)
		resp.Files = []models.PluginFile{
			{FileName: "a.pdf", File: []byte("a")},
			{FileName: "b.pdf", File: []byte("b")},
		}
		s.Require().NoError(svc.UpdateState(s.ctx, resp))

		recs := s.records("Teacher", "t-1", "Degree")
		s.JSONEq(`{"degree":"BSc","files":["Teacher/t-1/Degree/documents/a.pdf"]}`,
			recs[0][models.FieldAttestedDataMeta].(string))
	})

	s.Run("plain responses are kept under value", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree"})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{FileStorageEnabled: true})

		s.files.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		resp := grant("Degree", "r1", "approved")
		resp.Files = []models.PluginFile{{FileName: "a.pdf", File: []byte("a")}}
		s.Require().NoError(svc.UpdateState(s.ctx, resp))

		recs := s.records("Teacher", "t-1", "Degree")
		s.JSONEq(`{"value":"approved","files":["Teacher/t-1/Degree/documents/a.pdf"]}`,
			recs[0][models.FieldAttestedDataMeta].(string))
	})

	s.Run("storage disabled rejects the response", func() {
		s.SetupTest()
		s.addPolicy("Teacher", &models.Policy{Name: "Degree"})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("r1", "Degree", "{}")}})
		svc := s.newService(service.Config{})

		resp := grant("Degree", "r1", "approved")
		resp.Files = []models.PluginFile{{FileName: "a.pdf"}}
		err := svc.UpdateState(s.ctx, resp)
		s.True(dErrors.HasCode(err, dErrors.CodeServiceUnavailable))
	})
}

// =============================================================================
// TriggerAttestation
// =============================================================================

func (s *ServiceSuite) TestTriggerAttestation() {
	s.Run("stores a pending record and dispatches it", func() {
		s.SetupTest()
		policy := s.addPolicy("Teacher", &models.Policy{Name: "Degree", AttestorPlugin: "did:external:Uni", AttestorEntity: "University"})
		s.createEntity("Teacher", models.Document{"osid": "t-1"})
		svc := s.newService(service.Config{})

		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
				s.Equal("Degree", msg.PolicyName)
				s.Equal("rec-1", msg.AttestationUUID)
				s.Equal("Teacher", msg.SourceEntity)
				s.Equal("t-1", msg.SourceUUID)
				s.Equal(models.ActionRaiseClaim, msg.Status)
				s.Equal("University", msg.AttestorEntity)
				s.JSONEq(`{"degree":"BSc"}`, msg.PropertyData)
				s.Equal(map[string][]string{"degree": {"d1"}}, msg.PropertiesUUID)
				return nil
			})

		id, err := svc.TriggerAttestation(s.ctx, models.AttestationRequest{
			EntityName:     "Teacher",
			EntityID:       "t-1",
			PropertyData:   map[string]any{"degree": "BSc"},
			PropertiesUUID: map[string][]string{"degree": {"d1"}},
			UserID:         "u1",
		}, policy)
		s.Require().NoError(err)
		s.Equal("rec-1", id)

		recs := s.records("Teacher", "t-1", "Degree")
		s.Require().Len(recs, 1)
		s.Equal("rec-1", recs[0]["osid"])
		s.Equal(string(models.StateAttestationRequested), recs[0][models.FieldState])
		s.JSONEq(`{"degree":"BSc"}`, recs[0][models.FieldPropertyData].(string))
		s.Equal([]any{"d1"}, recs[0][models.FieldPropertiesUUID].(models.Document)["degree"])
		s.Equal(string(models.StateAttestationRequested), s.status("Teacher", "t-1", "Degree"))
	})

	s.Run("routing failure is reported after the record is stored", func() {
		s.SetupTest()
		policy := s.addPolicy("Teacher", &models.Policy{Name: "Degree", AttestorPlugin: "did:external:Uni"})
		s.createEntity("Teacher", models.Document{"osid": "t-1"})
		svc := s.newService(service.Config{})

		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		_, err := svc.TriggerAttestation(s.ctx, models.AttestationRequest{EntityName: "Teacher", EntityID: "t-1"}, policy)
		s.True(dErrors.HasCode(err, dErrors.CodeServiceUnavailable))
		s.Len(s.records("Teacher", "t-1", "Degree"), 1)
	})

	s.Run("internal attestors receive resolved conditions", func() {
		s.SetupTest()
		policy := s.addPolicy("Teacher", &models.Policy{
			Name:           "Degree",
			AttestorPlugin: "did:internal:ClaimPluginActor?entity=Principal",
			Conditions:     "(ATTESTOR#$.school#.contains(REQUESTER#$.school#))",
		})
		s.createEntity("Teacher", models.Document{"osid": "t-1"})
		svc := s.newService(service.Config{})

		s.conds.EXPECT().
			Resolve(gomock.Any(), map[string]any{"school": "S1"}, "REQUESTER", policy.Conditions).
			Return(`(ATTESTOR#$.school#.contains('S1'))`, nil)
		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
				s.Equal(`(ATTESTOR#$.school#.contains('S1'))`, msg.Condition)
				return nil
			})

		_, err := svc.TriggerAttestation(s.ctx, models.AttestationRequest{
			EntityName:   "Teacher",
			EntityID:     "t-1",
			PropertyData: map[string]any{"school": "S1"},
		}, policy)
		s.Require().NoError(err)
	})

	s.Run("file urls are re-signed and failures dropped", func() {
		s.SetupTest()
		policy := s.addPolicy("Teacher", &models.Policy{Name: "Degree", AttestorPlugin: "did:external:Uni"})
		s.createEntity("Teacher", models.Document{"osid": "t-1"})
		svc := s.newService(service.Config{FileStorageEnabled: true})

		s.files.EXPECT().SignedURL(gomock.Any(), "docs/a.pdf").Return("https://files/a.pdf?sig=1", nil)
		s.files.EXPECT().SignedURL(gomock.Any(), "docs/b.pdf").Return("", errors.New("gone"))
		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
				s.Equal([]any{"https://files/a.pdf?sig=1"}, msg.AdditionalInputs[models.FieldFileURL])
				return nil
			})

		_, err := svc.TriggerAttestation(s.ctx, models.AttestationRequest{
			EntityName:      "Teacher",
			EntityID:        "t-1",
			AdditionalInput: models.Document{models.FieldFileURL: []any{"docs/a.pdf", "docs/b.pdf"}},
		}, policy)
		s.Require().NoError(err)
	})

	s.Run("file urls without storage are rejected", func() {
		s.SetupTest()
		policy := s.addPolicy("Teacher", &models.Policy{Name: "Degree"})
		s.createEntity("Teacher", models.Document{"osid": "t-1"})
		svc := s.newService(service.Config{})

		_, err := svc.TriggerAttestation(s.ctx, models.AttestationRequest{
			EntityName:      "Teacher",
			EntityID:        "t-1",
			AdditionalInput: models.Document{models.FieldFileURL: []any{"docs/a.pdf"}},
		}, policy)
		s.True(dErrors.HasCode(err, dErrors.CodeServiceUnavailable))
		s.Empty(s.records("Teacher", "t-1", "Degree"))
	})

	s.Run("new claim supersedes the pending one", func() {
		s.SetupTest()
		policy := s.addPolicy("Teacher", &models.Policy{Name: "Degree"})
		old := requested("old", "Degree", "{}")
		old[models.FieldClaimID] = "c-old"
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{old}})
		svc := s.newService(service.Config{})

		gomock.InOrder(
			s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
					s.Equal(models.ClaimPluginActor, msg.AttestorPlugin)
					s.Equal(models.ActionSetToDraft, msg.Status)
					s.Equal("c-old", msg.AdditionalInputs["claimId"])
					return nil
				}),
			s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
					s.Equal("Degree", msg.PolicyName)
					s.Equal("rec-1", msg.AttestationUUID)
					return nil
				}),
		)

		_, err := svc.TriggerAttestation(s.ctx, models.AttestationRequest{EntityName: "Teacher", EntityID: "t-1"}, policy)
		s.Require().NoError(err)

		recs := s.records("Teacher", "t-1", "Degree")
		s.Require().Len(recs, 2)
		s.Equal("rec-1", recs[0]["osid"])
		s.Equal(string(models.StateAttestationRequested), recs[0][models.FieldState])
		s.Equal(string(models.StateDraft), recs[1][models.FieldState])
	})

	s.Run("superseded claim without a claim id is not routed", func() {
		s.SetupTest()
		policy := s.addPolicy("Teacher", &models.Policy{Name: "Degree"})
		s.createEntity("Teacher", models.Document{"osid": "t-1", "Degree": []any{requested("old", "Degree", "{}")}})
		svc := s.newService(service.Config{})

		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		_, err := svc.TriggerAttestation(s.ctx, models.AttestationRequest{EntityName: "Teacher", EntityID: "t-1"}, policy)
		s.Require().NoError(err)
		s.Equal(string(models.StateDraft), s.records("Teacher", "t-1", "Degree")[1][models.FieldState])
	})
}

func (s *ServiceSuite) TestAutoRaiseClaim() {
	s.addPolicy("Teacher", &models.Policy{
		Name:                  "NameCheck",
		Type:                  models.AttestationTypeAutomated,
		AttestationProperties: map[string]string{"name": "$.name"},
		AttestorPlugin:        "did:external:Registry",
	})
	s.addPolicy("Teacher", &models.Policy{
		Name:                  "Manual",
		Type:                  models.AttestationTypeManual,
		AttestationProperties: map[string]string{"name": "$.name"},
	})
	s.createEntity("Teacher", models.Document{"osid": "t-1", "name": "Ana"})
	svc := s.newService(service.Config{Enabled: true})

	snapshot := func(name string) models.Document {
		return models.Document{"Teacher": models.Document{"osid": "t-1", "name": name}}
	}

	s.Run("new entity raises automated claims", func() {
		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
				s.Equal("NameCheck", msg.PolicyName)
				s.JSONEq(`{"name":"Ana"}`, msg.PropertyData)
				return nil
			})
		s.Require().NoError(svc.AutoRaiseClaim(s.ctx, "Teacher", "t-1", "u1", nil, snapshot("Ana"), "ana@example.org"))
	})

	s.Run("unchanged properties raise nothing", func() {
		s.Require().NoError(svc.AutoRaiseClaim(s.ctx, "Teacher", "t-1", "u1", snapshot("Ana"), snapshot("Ana"), ""))
	})

	s.Run("changed properties raise again", func() {
		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).Return(nil)
		s.Require().NoError(svc.AutoRaiseClaim(s.ctx, "Teacher", "t-1", "u1", snapshot("Ana"), snapshot("Bea"), ""))
	})

	s.Run("disabled engine raises nothing", func() {
		disabled := s.newService(service.Config{})
		s.Require().NoError(disabled.AutoRaiseClaim(s.ctx, "Teacher", "t-1", "u1", nil, snapshot("Ana"), ""))
	})
}

// =============================================================================
// Invalidation
// =============================================================================

func published(id, policy, credential string) models.Document {
	return models.Document{
		"osid":                   id,
		models.FieldName:         policy,
		models.FieldState:        string(models.StatePublished),
		models.FieldAttestedData: credential,
		models.FieldEntityName:   "Teacher",
		models.FieldEntityID:     "t-1",
		models.FieldPropertiesUUID: models.Document{
			"subjects": []any{"s1"},
		},
	}
}

func (s *ServiceSuite) TestInvalidatePublishedAttestations() {
	template := []byte(`{"type":["VerifiableCredential"]}`)
	s.addPolicy("Teacher", &models.Policy{
		Name:                  "p1Attestation",
		AttestationProperties: map[string]string{"p1": "$.p1"},
		CredentialTemplate:    template,
	})
	s.addPolicy("Teacher", &models.Policy{
		Name:                  "p2Attestation",
		AttestationProperties: map[string]string{"p2": "$.p2"},
		CredentialTemplate:    template,
	})
	s.createEntity("Teacher", models.Document{
		"osid":          "t-1",
		"p1":            "edited",
		"p2":            "same",
		"p1Attestation": []any{published("a1", "p1Attestation", "cred-1")},
		"p2Attestation": []any{published("a2", "p2Attestation", "cred-2")},
		models.FieldAttestationStatus: models.Document{
			"p1Attestation": "PUBLISHED",
			"p2Attestation": "PUBLISHED",
		},
	})
	svc := s.newService(service.Config{})

	s.signer.EXPECT().Revoke(gomock.Any(), "Teacher", "t-1", "cred-1").Return(nil).Times(1)
	s.ledger.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rc models.RevokedCredential) error {
			s.Equal(models.SignedHash("cred-1"), rc.SignedHash)
			s.Equal("u1", rc.UserID)
			return nil
		}).Times(1)

	s.Require().NoError(svc.InvalidateAttestation(s.ctx, "Teacher", "t-1", "u1", "p1"))

	p1 := s.records("Teacher", "t-1", "p1Attestation")
	p2 := s.records("Teacher", "t-1", "p2Attestation")
	s.Equal(string(models.StateInvalid), p1[0][models.FieldState])
	s.Equal(string(models.StatePublished), p2[0][models.FieldState])
	s.Equal(string(models.StateInvalid), s.status("Teacher", "t-1", "p1Attestation"))
	s.Equal(string(models.StatePublished), s.status("Teacher", "t-1", "p2Attestation"))
}

func (s *ServiceSuite) TestInvalidateStaleClaims() {
	s.addPolicy("Teacher", &models.Policy{
		Name:                  "Grade",
		AttestationProperties: map[string]string{"grade": "$.grade"},
		AttestorEntity:        "Principal",
	})
	s.createEntity("Principal", models.Document{"osid": "pr-1", models.FieldOwner: []any{"u1"}})

	claim := requested("r1", "Grade", `{"grade":"A"}`)
	claim[models.FieldClaimID] = "C9"

	s.Run("changed property data drafts the claim and notifies the attestor once", func() {
		s.createEntity("Teacher", models.Document{"osid": "t-1", "grade": "B", "Grade": []any{claim}})
		svc := s.newService(service.Config{})

		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
				s.Equal(models.ClaimPluginActor, msg.AttestorPlugin)
				s.Equal(models.ActionSetToDraft, msg.Status)
				s.Equal("C9", msg.AdditionalInputs["claimId"])
				s.Equal(models.ClaimClosedNote, msg.AdditionalInputs["notes"])
				info, ok := msg.AdditionalInputs["attestorInfo"].(models.Document)
				s.Require().True(ok)
				s.Equal("pr-1", info["osid"])
				return nil
			}).Times(1)

		s.Require().NoError(svc.InvalidateAttestation(s.ctx, "Teacher", "t-1", "u1", "grade"))
		recs := s.records("Teacher", "t-1", "Grade")
		s.Equal(string(models.StateDraft), recs[0][models.FieldState])
		s.Equal(string(models.StateDraft), s.status("Teacher", "t-1", "Grade"))
	})

	s.Run("unchanged property data keeps the claim pending", func() {
		s.createEntity("Teacher", models.Document{"osid": "t-2", "grade": "A", "Grade": []any{claim}})
		svc := s.newService(service.Config{})

		s.Require().NoError(svc.InvalidateAttestation(s.ctx, "Teacher", "t-2", "u1", "grade"))
		recs := s.records("Teacher", "t-2", "Grade")
		s.Equal(string(models.StateAttestationRequested), recs[0][models.FieldState])
	})

	s.Run("async pass completes after the caller is cancelled", func() {
		s.createEntity("Teacher", models.Document{"osid": "t-3", "grade": "C", "Grade": []any{claim}})
		svc := s.newService(service.Config{})
		s.router.EXPECT().Route(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		svc.InvalidateAttestationAsync(ctx, "Teacher", "t-3", "u1", "grade")
		svc.Wait()

		recs := s.records("Teacher", "t-3", "Grade")
		s.Equal(string(models.StateDraft), recs[0][models.FieldState])
	})
}

func (s *ServiceSuite) TestInvalidateClaimWithoutAttestorRecord() {
	svc := s.newService(service.Config{})

	s.router.EXPECT().Route(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg models.PluginRequestMessage) error {
			s.NotContains(msg.AdditionalInputs, "attestorInfo")
			s.Equal("C1", msg.AdditionalInputs["claimId"])
			return nil
		})

	s.Require().NoError(svc.InvalidateClaim(s.ctx, "Principal", "nobody", "C1"))
}

// =============================================================================
// Revocation and entity signing
// =============================================================================

func (s *ServiceSuite) TestRevocation() {
	svc := s.newService(service.Config{})

	s.Run("revoked credential is found by content", func() {
		var recorded models.RevokedCredential
		s.signer.EXPECT().Revoke(gomock.Any(), "Teacher", "t-1", "signed").Return(nil)
		s.ledger.EXPECT().Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rc models.RevokedCredential) error {
				recorded = rc
				return nil
			})
		s.ledger.EXPECT().Exists(gomock.Any(), models.SignedHash("signed")).Return(true, nil)

		s.Require().NoError(svc.RevokeExistingCredentials(s.ctx, "Teacher", "t-1", "u1", "signed"))
		s.Equal("signed", recorded.SignedData)

		revoked, err := svc.CheckIfCredentialIsRevoked(s.ctx, "signed")
		s.Require().NoError(err)
		s.True(revoked)
	})

	s.Run("empty credential is a no-op", func() {
		s.Require().NoError(svc.RevokeExistingCredentials(s.ctx, "Teacher", "t-1", "u1", ""))
	})

	s.Run("signer failure is not recorded", func() {
		s.signer.EXPECT().Revoke(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("down"))
		err := svc.RevokeExistingCredentials(s.ctx, "Teacher", "t-1", "u1", "other")
		s.True(dErrors.HasCode(err, dErrors.CodeServiceUnavailable))
	})

	s.Run("ledger is required", func() {
		bare, err := service.New(s.store, s.policies, s.router, service.Config{})
		s.Require().NoError(err)
		_, err = bare.CheckIfCredentialIsRevoked(s.ctx, "signed")
		s.ErrorIs(err, models.ErrServiceNotEnabled)
	})
}

func (s *ServiceSuite) TestSignEntity() {
	s.createEntity("Teacher", models.Document{"osid": "t-1", "name": "Ana"})

	s.Run("stores the signed entity credential", func() {
		svc := s.newService(service.Config{SignatureEnabled: true})
		s.defs.EXPECT().CredentialTemplate("Teacher").Return([]byte(`{"type":["VerifiableCredential"]}`))
		s.signer.EXPECT().Sign(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.SignRequest) (*models.SignedCredential, error) {
				s.Equal("t-1", req.Title)
				s.Contains(string(req.Data), `"name":"Ana"`)
				return &models.SignedCredential{Raw: []byte(`{"proof":"x"}`)}, nil
			})

		s.Require().NoError(svc.SignEntity(s.ctx, "Teacher", "t-1"))
		s.Equal(`{"proof":"x"}`, s.body("Teacher", "t-1")[models.FieldSignedData])
	})

	s.Run("no template means nothing to sign", func() {
		svc := s.newService(service.Config{SignatureEnabled: true})
		s.defs.EXPECT().CredentialTemplate("Teacher").Return(nil)
		s.Require().NoError(svc.SignEntity(s.ctx, "Teacher", "t-1"))
	})

	s.Run("signing disabled does nothing", func() {
		svc := s.newService(service.Config{})
		s.Require().NoError(svc.SignEntity(s.ctx, "Teacher", "t-1"))
	})
}

func (s *ServiceSuite) TestNewRequiresCollaborators() {
	_, err := service.New(nil, s.policies, s.router, service.Config{})
	s.Error(err)
	_, err = service.New(s.store, nil, s.router, service.Config{})
	s.Error(err)
	_, err = service.New(s.store, s.policies, nil, service.Config{})
	s.Error(err)
}
