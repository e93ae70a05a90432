package factory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/arvo/pkg/arvo/contract"
	"github.com/randalmurphal/arvo/pkg/arvo/factory"
	"github.com/randalmurphal/arvo/pkg/arvo/subject"
)

func orderFlowVersioned(t *testing.T) *contract.Versioned {
	t.Helper()
	c, err := contract.NewOrchestrator(contract.OrchestratorParams{
		URI:  "#/orc/order/flow",
		Name: "order.flow",
		Versions: map[string]contract.OrchestratorVersionSpec{
			"1.0.0": {
				Init: contract.MustCompileSchema(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"orderId": map[string]any{"type": "string"},
					},
					"required": []any{"orderId"},
				}),
				Complete: contract.MustCompileSchema(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status": map[string]any{"type": "string"},
					},
					"required": []any{"status"},
				}),
			},
		},
	})
	require.NoError(t, err)
	v, err := c.Version("1.0.0")
	require.NoError(t, err)
	return v
}

func TestNewOrchestratorRequiresOrchestratorContract(t *testing.T) {
	_, err := factory.NewOrchestrator(reserveContract(t))
	require.ErrorIs(t, err, factory.ErrNotOrchestrator)

	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)
	assert.Equal(t, "arvo.orc.order.flow.done", f.CompleteType())
}

func TestInitRootExecution(t *testing.T) {
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	evt, err := f.Init(context.Background(), factory.InitParams{
		Source: "com.example.api",
		Data: map[string]any{
			"parentSubject$$": nil,
			"orderId":         "ord-1",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "arvo.orc.order.flow", evt.Type)
	assert.Equal(t, "#/orc/order/flow/1.0.0", evt.DataSchema)
	require.True(t, subject.IsValid(evt.Subject), "init mints a parseable subject token")

	content, err := subject.Parse(evt.Subject)
	require.NoError(t, err)
	assert.Equal(t, "arvo.orc.order.flow", content.Orchestrator.Name)
	assert.Equal(t, "1.0.0", content.Orchestrator.Version)
	assert.Equal(t, "com.example.api", content.Execution.Initiator)
	assert.Nil(t, content.Execution.Domain)
}

func TestInitChildExecution(t *testing.T) {
	parentToken, err := subject.New("parent.flow", "2.0.0", "com.example.api",
		subject.WithDomain("region1"),
		subject.WithMeta(map[string]string{"tenant": "acme"}),
	)
	require.NoError(t, err)

	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	evt, err := f.Init(context.Background(), factory.InitParams{
		Source: "parent.flow",
		Data: map[string]any{
			"parentSubject$$": parentToken,
			"orderId":         "ord-2",
		},
		Meta: map[string]string{"step": "reserve"},
	})
	require.NoError(t, err)

	content, err := subject.Parse(evt.Subject)
	require.NoError(t, err)
	assert.Equal(t, "arvo.orc.order.flow", content.Orchestrator.Name)
	assert.Equal(t, "parent.flow", content.Execution.Initiator, "child initiator is the parent orchestrator")
	require.NotNil(t, content.Execution.Domain)
	assert.Equal(t, "region1", *content.Execution.Domain, "domain inherited from parent")
	assert.Equal(t, "acme", content.Meta["tenant"], "parent meta inherited")
	assert.Equal(t, "reserve", content.Meta["step"], "caller meta merged in")
}

func TestInitExplicitSubjectOverride(t *testing.T) {
	pinned, err := subject.New("order.flow", "1.0.0", "com.example.scheduler")
	require.NoError(t, err)

	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	evt, err := f.Init(context.Background(), factory.InitParams{
		Source:  "com.example.api",
		Subject: pinned,
		Data: map[string]any{
			"parentSubject$$": nil,
			"orderId":         "ord-3",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, pinned, evt.Subject)
}

func TestInitDomainAssignsSubjectAndEvent(t *testing.T) {
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	evt, err := f.Init(context.Background(), factory.InitParams{
		Source: "com.example.api",
		Domain: "analytics",
		Data: map[string]any{
			"parentSubject$$": nil,
			"orderId":         "ord-4",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "analytics", evt.Domain)
	content, err := subject.Parse(evt.Subject)
	require.NoError(t, err)
	require.NotNil(t, content.Execution.Domain)
	assert.Equal(t, "analytics", *content.Execution.Domain)
}

func TestInitRejectsMissingParentField(t *testing.T) {
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	_, err = f.Init(context.Background(), factory.InitParams{
		Source: "com.example.api",
		Data:   map[string]any{"orderId": "ord-5"},
	})
	var verr *factory.DataValidationError
	require.ErrorAs(t, err, &verr)
}

func TestInitRejectsCorruptParentToken(t *testing.T) {
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	_, err = f.Init(context.Background(), factory.InitParams{
		Source: "com.example.api",
		Data: map[string]any{
			"parentSubject$$": "not-a-real-token",
			"orderId":         "ord-6",
		},
	})
	var decErr *subject.DecodingError
	require.ErrorAs(t, err, &decErr)
}

func TestInitRejectsNonIdentifierSourceForRoot(t *testing.T) {
	// A root execution uses the source as the subject initiator, which must
	// be a dotted identifier even though the envelope would accept any URI.
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	_, err = f.Init(context.Background(), factory.InitParams{
		Source: "https://api.example.com",
		Data: map[string]any{
			"parentSubject$$": nil,
			"orderId":         "ord-7",
		},
	})
	var encErr *subject.EncodingError
	require.ErrorAs(t, err, &encErr)
}

func TestComplete(t *testing.T) {
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	token, err := subject.New("arvo.orc.order.flow", "1.0.0", "com.example.api")
	require.NoError(t, err)

	evt, err := f.Complete(context.Background(), factory.CompleteParams{
		Source:  "arvo.orc.order.flow",
		Subject: token,
		Data:    map[string]any{"status": "fulfilled"},
		To:      "com.example.api",
	})
	require.NoError(t, err)

	assert.Equal(t, "arvo.orc.order.flow.done", evt.Type)
	assert.Equal(t, "#/orc/order/flow/1.0.0", evt.DataSchema)
	assert.Equal(t, "com.example.api", evt.To)
}

func TestCompleteRejectsInvalidPayload(t *testing.T) {
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	token, err := subject.New("arvo.orc.order.flow", "1.0.0", "com.example.api")
	require.NoError(t, err)

	_, err = f.Complete(context.Background(), factory.CompleteParams{
		Source:  "arvo.orc.order.flow",
		Subject: token,
		Data:    map[string]any{"status": 200},
	})
	var verr *factory.DataValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "arvo.orc.order.flow.done", verr.EventType)
}

func TestOrchestratorFactoryKeepsGenericOperations(t *testing.T) {
	f, err := factory.NewOrchestrator(orderFlowVersioned(t))
	require.NoError(t, err)

	token, err := subject.New("arvo.orc.order.flow", "1.0.0", "com.example.api")
	require.NoError(t, err)

	evt, err := f.SystemError(context.Background(), assert.AnError, factory.EventParams{
		Source:  "arvo.orc.order.flow",
		Subject: token,
	})
	require.NoError(t, err)
	assert.Equal(t, "sys.arvo.orc.order.flow.error", evt.Type)
	assert.Equal(t, "#/orc/order/flow/0.0.0", evt.DataSchema)
}
