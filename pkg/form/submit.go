package form

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// Transport delivers a payload for the form identified by formID. The engine
// calls it at most once per submission attempt and never retries.
type Transport interface {
	Send(ctx context.Context, formID string, payload Payload) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, formID string, payload Payload) error

func (fn TransportFunc) Send(ctx context.Context, formID string, payload Payload) error {
	return fn(ctx, formID, payload)
}

// Submit runs the submission sequence: validate with annotation, and only
// when every required widget passes, build the payload and hand it unmodified
// to transport exactly once. A blocked attempt emits one aggregate notice and
// returns an error matching ErrRequiredFieldsMissing; the transport is not
// contacted. Duplicate triggers are not deduplicated here.
func (e *Engine) Submit(ctx context.Context, inst *Instance, transport Transport) (Report, error) {
	if transport == nil {
		return Report{}, goerr.New("form: transport is required", goerr.V(KeyForm, inst.ID()))
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report, err := e.ValidateRequired(inst, true)
	if err != nil {
		return report, err
	}
	if !report.OK() {
		e.presenter.Notify(RequiredNotice)
		e.logger.Info("submission blocked",
			zap.String("form", inst.ID()),
			zap.Strings("missing", report.Keys()),
		)
		return report, report.Err()
	}

	payload, err := e.BuildPayload(inst)
	if err != nil {
		return report, err
	}

	e.logger.Info("submitting form",
		zap.String("form", inst.ID()),
		zap.Int("fields", payload.Len()),
	)
	if err := transport.Send(ctx, inst.ID(), payload); err != nil {
		e.logger.Warn("transport failed", zap.String("form", inst.ID()), zap.Error(err))
		return report, goerr.Wrap(err, "form: send payload", goerr.V(KeyForm, inst.ID()))
	}
	return report, nil
}
