package schema_test

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/suite"

	"claimflow/internal/attestation/models"
	"claimflow/internal/schema"
)

type RegistrySuite struct {
	suite.Suite
	registry *schema.Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	r, err := schema.Load(os.DirFS("testdata"))
	s.Require().NoError(err)
	s.registry = r
}

func (s *RegistrySuite) TestLoad() {
	s.Equal([]string{"Principal", "Teacher"}, s.registry.EntityTypes())
}

func (s *RegistrySuite) TestPolicies() {
	policies := s.registry.Policies("Teacher")
	s.Require().Len(policies, 2)

	s.Run("entity defaults to the schema title", func() {
		s.Equal("Teacher", policies[0].Entity)
	})

	s.Run("attestation completion is derived", func() {
		s.Equal(models.CompletionAttestation, policies[0].CompletionType)
		s.Equal("BoardApproval", policies[0].CompletionValue)
		s.True(policies[0].IsInternal())
	})

	s.Run("function completion is derived", func() {
		s.Equal(models.CompletionFunction, policies[1].CompletionType)
		s.Equal("#/functionDefinitions/stamp($.attestationResponse.status)", policies[1].CompletionValue)
		s.Equal("stamp", policies[1].CompletionFunctionName)
	})

	s.Run("unknown type has none", func() {
		s.Empty(s.registry.Policies("Nope"))
	})
}

func (s *RegistrySuite) TestFunctionDefinition() {
	fn, ok := s.registry.FunctionDefinition("Teacher", "stamp")
	s.Require().True(ok)
	s.Equal("arg1", fn.Result["verification.status"])

	_, ok = s.registry.FunctionDefinition("Teacher", "missing")
	s.False(ok)
	_, ok = s.registry.FunctionDefinition("Nope", "stamp")
	s.False(ok)
}

func (s *RegistrySuite) TestCredentialTemplate() {
	teacher := &models.Policy{CredentialTemplate: s.registry.CredentialTemplate("Teacher")}
	s.True(teacher.HasCredentialTemplate())

	principal := &models.Policy{CredentialTemplate: s.registry.CredentialTemplate("Principal")}
	s.False(principal.HasCredentialTemplate())
}

func (s *RegistrySuite) TestInvalidSchemas() {
	s.Run("malformed json", func() {
		_, err := schema.Load(fstest.MapFS{"bad.json": {Data: []byte("{")}})
		s.Error(err)
	})

	s.Run("duplicate title", func() {
		_, err := schema.Load(fstest.MapFS{
			"a.json": {Data: []byte(`{"title":"X"}`)},
			"b.json": {Data: []byte(`{"title":"X"}`)},
		})
		s.Error(err)
	})

	s.Run("title defaults to the file name", func() {
		r, err := schema.Load(fstest.MapFS{"Student.json": {Data: []byte(`{}`)}, "notes.txt": {Data: []byte("x")}})
		s.Require().NoError(err)
		s.Equal([]string{"Student"}, r.EntityTypes())
	})
}
