package secondary

import (
	"context"
	"errors"

	"github.com/example/inkwell/internal/core/classify"
)

// ErrClassifierUnavailable wraps transport-level failures talking to the
// language model, as opposed to a malformed response
// (classify.ErrMalformedDecision) or a valid no-task decision.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Classifier sends message text to the external language model and returns
// the structured decision.
type Classifier interface {
	Classify(ctx context.Context, msg *Message) (*classify.Decision, error)
}
