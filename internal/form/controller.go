package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrNothingToSubmit is returned when the body is empty and no file is selected
	ErrNothingToSubmit = errors.New("nothing to submit")
	// ErrRequestInFlight is returned when a suggestion is already loading
	ErrRequestInFlight = errors.New("a suggestion request is already in flight")
	// ErrUnknownField is returned by UpdateField for names other than from, subject and body
	ErrUnknownField = errors.New("unknown field")
	// ErrNoResult is returned when editing is attempted without a settled result
	ErrNoResult = errors.New("no result to edit")
	// ErrNotEditing is returned when a draft is changed outside edit mode
	ErrNotEditing = errors.New("not in edit mode")
)

// Notification durations
const (
	ErrorAutoClose   = 5 * time.Second
	SuccessAutoClose = 3 * time.Second
)

// Classifier sends a submission to the classification service
type Classifier interface {
	Classify(ctx context.Context, submission Submission) (*core.ModelOutput, error)
}

// Controller owns the state of one email form
type Controller struct {
	classifier Classifier
	logger     *zap.Logger

	mu             sync.Mutex
	input          Input
	file           *UploadedFile
	phase          Phase
	classification string
	suggestedReply string
	editMode       bool
	editedReply    string
	cycle          uint64
	pickerKey      int
	notifications  []Notification
}

// NewController creates a new form controller
func NewController(classifier Classifier, logger *zap.Logger) *Controller {
	return &Controller{
		classifier: classifier,
		logger:     logger,
	}
}

// UpdateField sets one of the typed fields: from, subject or body
func (c *Controller) UpdateField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "from":
		c.input.From = value
	case "subject":
		c.input.Subject = value
	case "body":
		c.input.Body = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Loading reports whether a suggestion is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseLoading
}

// NotifyError queues an error notification with the error duration
func (c *Controller) NotifyError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyLocked(NotificationError, message, ErrorAutoClose)
}

// SelectFile keeps the file when its declared type is PDF or plain text.
// Any other file, or nil, clears the current selection. It reports whether
// the file was kept.
func (c *Controller) SelectFile(file *UploadedFile) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if file == nil || (file.ContentType != ContentTypePDF && file.ContentType != ContentTypeText) {
		if file != nil {
			c.logger.Debug("Rejected file selection",
				zap.String("name", file.Name),
				zap.String("content_type", file.ContentType))
		}
		c.file = nil
		return false
	}

	c.file = file
	return true
}

// Suggestion is a started request for a suggested reply. Run must be called
// exactly once.
type Suggestion struct {
	c          *Controller
	cycle      uint64
	submission Submission
}

// Submission returns what will be sent
func (s *Suggestion) Submission() Submission {
	return s.submission
}

// BeginSuggestion checks the preconditions and moves the form to loading:
// the previous result is cleared and the result pane shown. The returned
// Suggestion performs the call.
func (c *Controller) BeginSuggestion() (*Suggestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseLoading {
		return nil, ErrRequestInFlight
	}
	if !c.canSubmitLocked() {
		return nil, ErrNothingToSubmit
	}

	c.phase = PhaseLoading
	c.classification = ""
	c.suggestedReply = ""
	c.editMode = false
	c.editedReply = ""
	c.cycle++

	var submission Submission
	if c.file != nil {
		file := *c.file
		submission.File = &file
	} else {
		input := c.input
		submission.Fields = &input
	}

	return &Suggestion{c: c, cycle: c.cycle, submission: submission}, nil
}

// Run sends the submission and records the outcome. Failures are reported
// through an error notification and also returned for logging. Loading is
// cleared on every path.
func (s *Suggestion) Run(ctx context.Context) (err error) {
	var out *core.ModelOutput
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("classifier panicked: %v", r)
		}
		s.c.complete(s.cycle, out, err)
	}()

	out, err = s.c.classifier.Classify(ctx, s.submission)
	return err
}

// RequestSuggestion begins a suggestion and waits for it to finish
func (c *Controller) RequestSuggestion(ctx context.Context) error {
	s, err := c.BeginSuggestion()
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

func (c *Controller) complete(cycle uint64, out *core.ModelOutput, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cycle != c.cycle {
		c.logger.Debug("Discarding response for a reset form", zap.Uint64("cycle", cycle))
		return
	}

	if err != nil || out == nil {
		if err != nil {
			c.logger.Warn("Suggestion request failed", zap.Error(err))
		} else {
			c.logger.Warn("Suggestion request ended without a result")
		}
		c.phase = PhaseFailed
		c.notifyLocked(NotificationError, MessageSuggestionFailed, ErrorAutoClose)
		return
	}

	c.phase = PhaseSucceeded
	c.classification = out.Classification
	c.suggestedReply = ComposeSuggestion(out)
	c.editedReply = c.suggestedReply
}

// ToggleEdit enters edit mode with a draft seeded from the suggestion, or
// leaves it discarding the draft
func (c *Controller) ToggleEdit(enter bool) error {
	if !enter {
		c.CancelEdit()
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseIdle || c.phase == PhaseLoading {
		return ErrNoResult
	}
	c.editMode = true
	c.editedReply = c.suggestedReply
	return nil
}

// SetDraft replaces the draft while editing
func (c *Controller) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editMode {
		return ErrNotEditing
	}
	c.editedReply = text
	return nil
}

// SaveEdit commits the draft as the suggestion and leaves edit mode
func (c *Controller) SaveEdit(draft string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editMode {
		return ErrNotEditing
	}
	c.suggestedReply = draft
	c.editedReply = draft
	c.editMode = false
	return nil
}

// CancelEdit discards the draft and leaves edit mode
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.editMode = false
	c.editedReply = c.suggestedReply
}

// SubmitEmail acknowledges the send action. Nothing is sent anywhere.
func (c *Controller) SubmitEmail() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notifyLocked(NotificationSuccess, MessageEmailSent, SuccessAutoClose)
}

// Reset returns the form to its initial state. The file picker key changes
// so a fresh, empty picker is rendered. A request still in flight is
// ignored when it completes.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = Input{}
	c.file = nil
	c.phase = PhaseIdle
	c.classification = ""
	c.suggestedReply = ""
	c.editMode = false
	c.editedReply = ""
	c.cycle++
	c.pickerKey++
}

// Notifications removes and returns the pending notifications
func (c *Controller) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.notifications
	c.notifications = nil
	return pending
}

// Snapshot returns the current state for rendering
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := View{
		Input:          c.input,
		Phase:          c.phase,
		Loading:        c.phase == PhaseLoading,
		ShowResult:     c.phase != PhaseIdle,
		CanSubmit:      c.phase != PhaseLoading && c.canSubmitLocked(),
		Classification: c.classification,
		SuggestedReply: c.suggestedReply,
		EditMode:       c.editMode,
		EditedReply:    c.editedReply,
		PickerKey:      c.pickerKey,
	}
	if c.file != nil {
		view.FileName = c.file.Name
	}
	return view
}

func (c *Controller) canSubmitLocked() bool {
	return c.input.Body != "" || c.file != nil
}

func (c *Controller) notifyLocked(kind NotificationKind, message string, autoClose time.Duration) {
	c.notifications = append(c.notifications, Notification{
		Kind:      kind,
		Message:   message,
		AutoClose: autoClose,
	})
}
