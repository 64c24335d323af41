package form

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// BuildPayload reads every primary widget in document order into a Payload.
// Each key appears exactly once. A signature widget, when present, is stamped
// with the current time in epoch milliseconds as the final step so it reflects
// submission time rather than render time. The widgets are only read.
func (e *Engine) BuildPayload(inst *Instance) (Payload, error) {
	var (
		payload   Payload
		signature *Signature
	)
	for _, w := range inst.Widgets() {
		if sig, ok := w.(*Signature); ok {
			if signature != nil {
				return Payload{}, goerr.Wrap(ErrMultipleSignatures, "cannot stamp payload",
					goerr.V(KeyForm, inst.ID()), goerr.V(KeyField, sig.Key))
			}
			signature = sig
			continue
		}
		value, err := inst.Extract(w)
		if err != nil {
			return Payload{}, err
		}
		payload.Set(w.Descriptor().Key, value)
	}

	if signature != nil {
		payload.Set(signature.Key, ValueOf(strconv.FormatInt(e.stamp(), 10)))
	}
	return payload, nil
}
