package plugin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"claimflow/internal/attestation/models"
	portmocks "claimflow/internal/attestation/ports/mocks"
	"claimflow/internal/plugin"
	"claimflow/pkg/platform/sentinel"
)

type DispatcherSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	external *portmocks.MockRouter
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.external = portmocks.NewMockRouter(s.ctrl)
}

func (s *DispatcherSuite) TearDownTest() {
	s.ctrl.Finish()
}

// =============================================================================
// Routing
// =============================================================================

func (s *DispatcherSuite) TestInternalPluginsAreQueued() {
	d := plugin.NewDispatcher(s.external)
	msg := models.PluginRequestMessage{AttestorPlugin: "did:internal:ClaimPluginActor?entity=Principal", PolicyName: "p"}

	s.Require().NoError(d.Route(context.Background(), msg))

	select {
	case got := <-d.Inbox():
		s.Equal("p", got.PolicyName)
	default:
		s.Fail("expected queued message")
	}
}

func (s *DispatcherSuite) TestExternalPluginsArePublished() {
	d := plugin.NewDispatcher(s.external)
	msg := models.PluginRequestMessage{AttestorPlugin: "did:external:Board"}
	s.external.EXPECT().Route(gomock.Any(), msg).Return(nil)

	s.Require().NoError(d.Route(context.Background(), msg))
	s.Empty(d.Inbox())
}

func (s *DispatcherSuite) TestQueueFull() {
	d := plugin.NewDispatcher(nil, plugin.WithQueueSize(1))
	msg := models.PluginRequestMessage{AttestorPlugin: "did:internal:ClaimPluginActor"}

	s.Require().NoError(d.Route(context.Background(), msg))
	err := d.Route(context.Background(), msg)

	s.ErrorIs(err, plugin.ErrQueueFull)
	s.ErrorIs(err, sentinel.ErrUnavailable)
}

func (s *DispatcherSuite) TestNoExternalRoute() {
	d := plugin.NewDispatcher(nil)

	err := d.Route(context.Background(), models.PluginRequestMessage{AttestorPlugin: "did:external:Board"})

	s.ErrorIs(err, plugin.ErrNoRoute)
}

func (s *DispatcherSuite) TestActorName() {
	cases := map[string]string{
		"did:internal:ClaimPluginActor?entity=Teacher": "ClaimPluginActor",
		"did:internal:ClaimPluginActor":                "ClaimPluginActor",
		"did:internal:Notifier#frag":                   "Notifier",
	}
	for in, want := range cases {
		s.Equal(want, plugin.ActorName(in), in)
	}
	s.True(plugin.IsInternal("did:internal:x"))
	s.False(plugin.IsInternal("did:external:x"))
}
