package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pefitness/internal/adapters/ai"
	"pefitness/internal/domain/fitness"
	"pefitness/internal/domain/narrative"
)

// NarrativeInput carries one narrative request.
type NarrativeInput struct {
	Assessment     fitness.AssessmentResult
	UserCredential string // key typed by the visitor; used only without a deployment key
	VisitorID      string // in-flight guard key; empty disables the guard
}

// NarrativeDeps holds dependencies for ExecuteRequestNarrative.
type NarrativeDeps struct {
	DeploymentCredential string
	Completer            ai.Completer
	Guard                *InFlightGuard // optional
}

// ResolveCredential picks the deployment credential, then the user's, then none.
func ResolveCredential(deployment, user string) (string, bool) {
	if c := strings.TrimSpace(deployment); c != "" {
		return c, true
	}
	if c := strings.TrimSpace(user); c != "" {
		return c, true
	}
	return "", false
}

// ExecuteRequestNarrative asks the completion endpoint for coaching advice.
// PRE: input.Assessment was produced by fitness.Build
// POST: always returns a terminal Result; never retries
// INVARIANT: no outbound call is made without a credential
func ExecuteRequestNarrative(ctx context.Context, input NarrativeInput, deps NarrativeDeps) narrative.Result {
	credential, ok := ResolveCredential(deps.DeploymentCredential, input.UserCredential)
	if !ok {
		slog.Info("narrative_requested", "outcome", narrative.KindCredentialMissing)
		return narrative.CredentialMissing()
	}

	if deps.Guard != nil && input.VisitorID != "" {
		release, acquired := deps.Guard.TryAcquire(input.VisitorID)
		if !acquired {
			slog.Info("narrative_requested", "outcome", narrative.KindBusy)
			return narrative.Busy()
		}
		defer release()
	}

	text, err := deps.Completer.Complete(ctx, credential, narrative.BuildPrompt(input.Assessment))
	result := classifyCompletion(text, err)
	slog.Info("narrative_requested", "outcome", result.Kind, "user_key", strings.TrimSpace(deps.DeploymentCredential) == "")
	return result
}

func classifyCompletion(text string, err error) narrative.Result {
	if err == nil {
		return narrative.Success(text)
	}
	var upstream *ai.UpstreamError
	if errors.As(err, &upstream) {
		return narrative.Upstream(upstream.Message)
	}
	var transport *ai.TransportError
	if errors.As(err, &transport) {
		return narrative.Network(transport.Err)
	}
	return narrative.Network(err)
}
