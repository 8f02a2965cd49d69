package service

import (
	"errors"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
)

// FieldRule validates one field value.
type FieldRule func(value string) error

// FormState tracks one form: per-field values, validation errors and the
// submit-in-flight flag that guards against double submits.
type FormState struct {
	mu         sync.RWMutex
	values     map[string]string
	fieldErrs  map[string]string
	rules      map[string][]FieldRule
	submitting bool
}

func NewForm() *FormState {
	return &FormState{
		values:    make(map[string]string),
		fieldErrs: make(map[string]string),
		rules:     make(map[string][]FieldRule),
	}
}

// Rule registers validators for a field, run in order on Validate.
func (f *FormState) Rule(field string, rules ...FieldRule) *FormState {
	f.mu.Lock()
	f.rules[field] = append(f.rules[field], rules...)
	f.mu.Unlock()
	return f
}

// Set stores the value and clears the field's stale error.
func (f *FormState) Set(field, value string) {
	f.mu.Lock()
	f.values[field] = value
	delete(f.fieldErrs, field)
	f.mu.Unlock()
}

func (f *FormState) Value(field string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[field]
}

// ValidateField runs the field's rules and records the first failure.
func (f *FormState) ValidateField(field string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked(field)
}

// Validate runs every registered field and reports whether all passed.
func (f *FormState) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	ok := true
	for field := range f.rules {
		if err := f.validateLocked(field); err != nil {
			ok = false
		}
	}
	return ok
}

func (f *FormState) validateLocked(field string) error {
	for _, rule := range f.rules[field] {
		if err := rule(f.values[field]); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				f.fieldErrs[field] = err.Error()
			}
			return err
		}
	}
	delete(f.fieldErrs, field)
	return nil
}

// FieldError returns the recorded message for the field, empty when valid.
func (f *FormState) FieldError(field string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fieldErrs[field]
}

func (f *FormState) Errors() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]string, len(f.fieldErrs))
	for k, v := range f.fieldErrs {
		out[k] = v
	}
	return out
}

// BeginSubmit flips the in-flight flag; a second call before EndSubmit
// reports false so callers drop the duplicate submit.
func (f *FormState) BeginSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitting {
		return false
	}
	f.submitting = true
	return true
}

func (f *FormState) EndSubmit() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func (f *FormState) Submitting() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitting
}

// Reset clears values, errors and the submit flag; rules stay.
func (f *FormState) Reset() {
	f.mu.Lock()
	f.values = make(map[string]string)
	f.fieldErrs = make(map[string]string)
	f.submitting = false
	f.mu.Unlock()
}
