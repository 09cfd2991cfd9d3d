// Package form implements the create/edit item dialog as a state machine.
//
// A Form owns the in-progress Draft, the pending image file, validation
// errors and the outcome message. Submit talks to the remote item service and
// reports its result to the item collection; the two never touch each
// other's state directly.
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"tokodash/internal/client"
	"tokodash/internal/models"
	"tokodash/internal/validation"

	"go.uber.org/zap"
)

// State is the dialog state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Outcome is the result of a Submit call.
type Outcome int

const (
	// OutcomeInvalid means validation failed and nothing was sent.
	OutcomeInvalid Outcome = iota
	// OutcomeSaved means the item was saved and the form closed.
	OutcomeSaved
	// OutcomeFailed means a remote call failed and the form stayed open.
	OutcomeFailed
	// OutcomeStale means the form was closed or reopened while the request
	// was in flight. The form was left untouched; a success still reached the
	// collection and a failure went to the notifier.
	OutcomeStale
)

// Messages set by Submit.
const (
	MsgCreated      = "Item created successfully!"
	MsgUpdated      = "Item updated successfully!"
	MsgSaveFailed   = "An error occurred while saving the item."
	MsgUploadFailed = "An error occurred while uploading the image."
)

var (
	// ErrNotOpen is returned by operations that need an open dialog.
	ErrNotOpen = errors.New("form is not open")
	// ErrSubmitting is returned while a submit is already in flight.
	ErrSubmitting = errors.New("form is already submitting")
	// ErrUnknownField is returned by SetField for an unsupported field name.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotFinite is returned by SetField for an infinite or NaN price.
	ErrNotFinite = errors.New("price must be a finite number")
)

// Collection receives the outcome of a successful submit.
type Collection interface {
	ApplyUpdate(item models.Item)
	RequestCreateRefresh(ctx context.Context)
}

// Notifier shows a transient, non-blocking notice.
type Notifier interface {
	Notify(msg string)
}

// TokenSource returns the current bearer token. It is read on every submit.
type TokenSource interface {
	Token() string
}

// View is a copy of the form state for rendering.
type View struct {
	State     State
	Draft     models.Draft
	ImageFile string // name of the pending image, "" when none
	Errors    validation.ErrorMap
	Success   string
}

// Form is the item dialog state machine. It is safe for concurrent use; the
// lock is never held across a remote call.
type Form struct {
	svc        client.ItemService
	tokens     TokenSource
	collection Collection
	notifier   Notifier
	logger     *zap.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	draft   models.Draft
	file    *models.ImageFile
	errs    validation.ErrorMap
	success string
}

// New creates a closed Form. notifier and logger may be nil.
func New(svc client.ItemService, tokens TokenSource, collection Collection, notifier Notifier, logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form{
		svc:        svc,
		tokens:     tokens,
		collection: collection,
		notifier:   notifier,
		logger:     logger,
		draft:      models.NewDraft(),
		errs:       validation.ErrorMap{},
	}
}

// OpenCreate opens the dialog with an empty draft.
func (f *Form) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
	f.state = StateOpen
}

// OpenEdit opens the dialog with a draft pre-populated from item.
func (f *Form) OpenEdit(item models.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
	f.draft = models.DraftFromItem(item)
	f.state = StateOpen
}

// Close discards the draft and messages from any state. A submit in flight
// keeps running but its result will not reach the form.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Form) resetLocked() {
	f.gen++
	f.state = StateClosed
	f.draft = models.NewDraft()
	f.file = nil
	f.errs = validation.ErrorMap{}
	f.success = ""
}

// CoerceBlankNumericToZero maps blank input of a numeric field to "0", so a
// cleared price or quantity reads as zero instead of unset.
func CoerceBlankNumericToZero(value string) string {
	if strings.TrimSpace(value) == "" {
		return "0"
	}
	return value
}

// SetField updates one draft field from user input and clears that field's
// error. Numeric fields go through CoerceBlankNumericToZero; text that is not
// a number returns an error and leaves the draft unchanged.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateOpen {
		return ErrNotOpen
	}

	switch name {
	case validation.FieldName:
		f.draft.Name = value
	case validation.FieldDescription:
		f.draft.Description = value
	case validation.FieldQuantity:
		n, err := strconv.Atoi(strings.TrimSpace(CoerceBlankNumericToZero(value)))
		if err != nil {
			return fmt.Errorf("quantity must be a whole number: %w", err)
		}
		f.draft.Quantity = n
	case validation.FieldPrice:
		p, err := strconv.ParseFloat(strings.TrimSpace(CoerceBlankNumericToZero(value)), 64)
		if err != nil {
			return fmt.Errorf("price must be a number: %w", err)
		}
		if !validation.IsFinite(p) {
			f.errs[name] = validation.MsgPriceFinite
			return ErrNotFinite
		}
		f.draft.Price = &p
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	delete(f.errs, name)
	return nil
}

// SetImageFile replaces the pending image. nil clears it. Nothing is uploaded
// until Submit.
func (f *Form) SetImageFile(file *models.ImageFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateOpen {
		return ErrNotOpen
	}
	if file != nil {
		cp := *file
		file = &cp
	}
	f.file = file
	return nil
}

// View returns a snapshot of the form.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := View{
		State:   f.state,
		Draft:   f.draft,
		Errors:  f.errs.Clone(),
		Success: f.success,
	}
	if f.file != nil {
		v.ImageFile = f.file.Name
	}
	return v
}

// Submit validates the draft and, when valid, uploads the pending image and
// then creates or updates the item. It blocks until the remote calls finish.
// The returned error is only ErrNotOpen or ErrSubmitting; remote failures are
// reported through the form state and the Outcome.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	switch f.state {
	case StateClosed:
		f.mu.Unlock()
		return OutcomeInvalid, ErrNotOpen
	case StateSubmitting:
		f.mu.Unlock()
		return OutcomeInvalid, ErrSubmitting
	}
	if errs := validation.Validate(f.draft); len(errs) > 0 {
		f.errs = errs
		f.mu.Unlock()
		return OutcomeInvalid, nil
	}
	f.state = StateSubmitting
	f.errs = validation.ErrorMap{}
	f.success = ""
	gen := f.gen
	draft := f.draft
	file := f.file
	f.mu.Unlock()

	token := f.tokens.Token()

	imageURL := draft.ImageURL
	if file != nil {
		res, err := f.svc.UploadImage(ctx, token, *file)
		if err != nil {
			f.logger.Warn("image upload failed", zap.String("file", file.Name), zap.Error(err))
			return f.fail(gen, err, MsgUploadFailed), nil
		}
		imageURL = &res.URL
	}

	fields := draft.Fields(imageURL)
	var (
		item models.Item
		err  error
	)
	if draft.Mode == models.DraftEdit {
		item, err = f.svc.UpdateItem(ctx, token, draft.EditingID, fields)
		if err == nil && item.ID == 0 {
			item = models.Item{ID: draft.EditingID}.WithFields(fields)
		}
	} else {
		item, err = f.svc.CreateItem(ctx, token, fields)
	}
	if err != nil {
		f.logger.Warn("saving item failed",
			zap.Stringer("mode", draft.Mode),
			zap.Int64("item_id", draft.EditingID),
			zap.Error(err))
		return f.fail(gen, err, MsgSaveFailed), nil
	}

	msg := MsgCreated
	if draft.Mode == models.DraftEdit {
		msg = MsgUpdated
	}

	f.mu.Lock()
	stale := gen != f.gen
	if !stale {
		f.resetLocked()
		f.success = msg
	}
	f.mu.Unlock()

	if f.collection != nil {
		if draft.Mode == models.DraftEdit {
			f.collection.ApplyUpdate(item)
		} else {
			f.collection.RequestCreateRefresh(ctx)
		}
	}

	if stale {
		return OutcomeStale, nil
	}
	return OutcomeSaved, nil
}

// fail records a remote failure as the general error, or hands it to the
// notifier when the form moved on in the meantime.
func (f *Form) fail(gen uint64, err error, fallback string) Outcome {
	msg := models.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}

	f.mu.Lock()
	stale := gen != f.gen
	if !stale {
		f.state = StateOpen
		f.errs = validation.ErrorMap{validation.FieldGeneral: msg}
	}
	f.mu.Unlock()

	if stale {
		if f.notifier != nil {
			f.notifier.Notify(msg)
		}
		return OutcomeStale
	}
	return OutcomeFailed
}
