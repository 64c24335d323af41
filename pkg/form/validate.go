package form

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
)

// Failure describes one required widget that did not pass the gate. Err is
// ErrMissingRequiredValue or ErrPatternMismatch.
type Failure struct {
	Key  string
	Kind Kind
	Err  error
}

// Report is the outcome of a required-field validation run.
type Report struct {
	Checked  int
	Failures []Failure
}

// OK reports whether every required widget passed.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Keys returns the failing keys in document order.
func (r Report) Keys() []string {
	if len(r.Failures) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.Failures))
	for _, failure := range r.Failures {
		keys = append(keys, failure.Key)
	}
	return keys
}

// Err folds the failures into a single ErrRequiredFieldsMissing, or nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return goerr.Wrap(ErrRequiredFieldsMissing, RequiredNotice, goerr.V(KeyMissing, r.Keys()))
}

// ValidateRequired checks every required widget of inst. A widget passes when
// it resolves to a value and, if it declares a pattern, the value matches it.
// Every required widget is evaluated even after a failure so that, with
// annotate set, all presentation state is refreshed: failing widgets are
// marked and suffixed, passing ones are cleared. Repeated calls on unchanged
// state leave the same visible result.
//
// Signature widgets are stamped at submission and always pass. The returned
// error is reserved for schema problems; user input failures are in Report.
func (e *Engine) ValidateRequired(inst *Instance, annotate bool) (Report, error) {
	var report Report
	for _, w := range inst.Widgets() {
		desc := w.Descriptor()
		if !desc.Required {
			continue
		}
		report.Checked++

		cause, err := e.check(inst, w)
		if err != nil {
			return report, err
		}
		if cause != nil {
			report.Failures = append(report.Failures, Failure{Key: desc.Key, Kind: w.Kind(), Err: cause})
			e.logger.Debug("required field failed",
				zap.String("form", inst.ID()),
				zap.String("key", desc.Key),
				zap.Error(cause),
			)
		}
		if annotate {
			e.annotate(w, cause == nil)
		}
	}
	return report, nil
}

func (e *Engine) check(inst *Instance, w Widget) (cause, err error) {
	if _, ok := w.(*Signature); ok {
		return nil, nil
	}
	value, err := inst.Extract(w)
	if err != nil {
		return nil, err
	}
	text, ok := value.Get()
	if !ok {
		return ErrMissingRequiredValue, nil
	}
	pattern := w.Descriptor().Pattern
	if pattern == "" {
		// No pattern declared: any present value passes.
		return nil, nil
	}
	re, err := e.compile(w.Descriptor().Key, pattern)
	if err != nil {
		return nil, err
	}
	if !re.MatchString(text) {
		return ErrPatternMismatch, nil
	}
	return nil, nil
}

// CheckText vets a candidate answer for a required widget against its
// pattern before the answer is written back. Empty answers and widgets
// without a pattern pass; the required gate reports those at submission.
func (e *Engine) CheckText(w Widget, text string) error {
	desc := w.Descriptor()
	if !desc.Required || desc.Pattern == "" || text == "" {
		return nil
	}
	re, err := e.compile(desc.Key, desc.Pattern)
	if err != nil {
		return err
	}
	if !re.MatchString(text) {
		return goerr.Wrap(ErrPatternMismatch, "answer does not match the expected format",
			goerr.V(KeyField, desc.Key), goerr.V(KeyPattern, desc.Pattern))
	}
	return nil
}

func (e *Engine) annotate(w Widget, passed bool) {
	key := w.Descriptor().Key
	placeholder, hasPlaceholder := e.presenter.Placeholder(key)
	if passed {
		e.presenter.ClearInvalid(key)
		if hasPlaceholder {
			e.presenter.SetPlaceholder(key, WithoutRequiredSuffix(placeholder))
		}
		return
	}
	e.presenter.MarkInvalid(key, markStyle(w))
	if hasPlaceholder {
		e.presenter.SetPlaceholder(key, WithRequiredSuffix(placeholder))
	}
}

// IsInputFailure reports whether err is a user input failure rather than a
// schema or transport error.
func IsInputFailure(err error) bool {
	return errors.Is(err, ErrMissingRequiredValue) ||
		errors.Is(err, ErrPatternMismatch) ||
		errors.Is(err, ErrRequiredFieldsMissing)
}
