package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/itiky/employee-sync/model"
)

// ErrFormClosed is returned by Submit when no form is open.
var ErrFormClosed = errors.New("form is closed")

// Notification messages.
const (
	msgAdded   = "Employee added successfully"
	msgUpdated = "Employee updated successfully"
	msgDeleted = "Employee deleted successfully"
)

type (
	// UpdateMode defines the update request body source.
	UpdateMode string

	// ReconcileMode defines how the local list follows a successful mutation.
	ReconcileMode string

	// FormState is the form lifecycle state.
	FormState int
)

const (
	// UpdateModeFixed sends model.PlaceholderUpdate instead of the form values.
	UpdateModeFixed UpdateMode = "fixed"
	// UpdateModeForm sends the form values and pre-populates them on BeginUpdate.
	UpdateModeForm UpdateMode = "form"
)

const (
	// ReconcileNone leaves the local list untouched until the next Load.
	ReconcileNone ReconcileMode = "none"
	// ReconcileRefetch reloads the list after every successful mutation.
	ReconcileRefetch ReconcileMode = "refetch"
	// ReconcilePatch applies the mutation to the local list.
	ReconcilePatch ReconcileMode = "patch"
)

const (
	FormClosed FormState = iota
	FormOpenForCreate
	FormOpenForUpdate
)

// String implements the stringer interface.
func (s FormState) String() string {
	switch s {
	case FormClosed:
		return "Closed"
	case FormOpenForCreate:
		return "OpenForCreate"
	case FormOpenForUpdate:
		return "OpenForUpdate"
	}

	return fmt.Sprintf("FormState(%d)", int(s))
}

// ParseUpdateMode converts the input string to UpdateMode.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch m := UpdateMode(s); m {
	case UpdateModeFixed, UpdateModeForm:
		return m, nil
	}

	return "", fmt.Errorf("update mode %q: must be one of [%s, %s]", s, UpdateModeFixed, UpdateModeForm)
}

// ParseReconcileMode converts the input string to ReconcileMode.
func ParseReconcileMode(s string) (ReconcileMode, error) {
	switch m := ReconcileMode(s); m {
	case ReconcileNone, ReconcileRefetch, ReconcilePatch:
		return m, nil
	}

	return "", fmt.Errorf("reconcile mode %q: must be one of [%s, %s, %s]", s, ReconcileNone, ReconcileRefetch, ReconcilePatch)
}

type (
	// ControllerConfig keeps RecordSyncController behaviour switches.
	ControllerConfig struct {
		UpdateMode    UpdateMode
		ReconcileMode ReconcileMode
	}

	// RecordSyncController owns the local record list and the pending edit form state.
	// Remote calls are performed without holding the state lock, so operations
	// triggered by separate user actions may complete in any order.
	RecordSyncController struct {
		// Config
		cfg ControllerConfig
		// State
		mu          sync.Mutex
		records     model.RecordList
		pending     model.PendingEdit
		formVisible bool
		//
		remote   RemoteCollection
		notifier Notifier
		log      *log.Entry
	}
)

// Records returns a copy of the local list.
func (c *RecordSyncController) Records() model.RecordList {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.records.Copy()
}

// Pending returns the pending edit.
func (c *RecordSyncController) Pending() model.PendingEdit {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pending
}

// FormState returns the form lifecycle state.
func (c *RecordSyncController) FormState() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.formState()
}

// Load fetches the full collection and replaces the local list.
// On failure the local list is left unchanged and the error is only logged.
func (c *RecordSyncController) Load(ctx context.Context) error {
	records, err := c.remote.List(ctx)
	if err != nil {
		c.log.Errorf("load: %v", err)
		return fmt.Errorf("load: %w", err)
	}

	c.mu.Lock()
	c.records = records
	c.mu.Unlock()

	monitor.ListReplaced()
	c.log.Debugf("load: %d records", len(records))

	return nil
}

// BeginCreate resets the pending edit and opens the form for create.
func (c *RecordSyncController) BeginCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = model.PendingEdit{}
	c.formVisible = true
}

// BeginUpdate opens the form for update of the target record.
// Fields are pre-populated from the local list in UpdateModeForm only.
func (c *RecordSyncController) BeginUpdate(id model.RecordId) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.formVisible = true
	if c.cfg.UpdateMode != UpdateModeForm {
		c.pending.IsUpdate = true
		c.pending.TargetId = id
		return
	}

	c.pending = model.PendingEdit{IsUpdate: true, TargetId: id}
	if rec, found := c.records.Get(id); found {
		c.pending.Name, c.pending.Salary, c.pending.Age = rec.Name, rec.Salary, rec.Age
	}
}

// SetField updates one pending edit field (no value validation).
func (c *RecordSyncController) SetField(fieldName, value string) error {
	field, err := model.ParseField(fieldName)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending.Set(field, value)

	return nil
}

// CancelForm closes the form discarding the pending edit.
func (c *RecordSyncController) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeForm()
}

// Submit sends the pending edit to the create or update endpoint depending on the form mode.
// The form is closed and a single notification is fired in both success and failure cases.
func (c *RecordSyncController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.formVisible {
		c.mu.Unlock()
		return ErrFormClosed
	}
	edit := c.pending
	c.mu.Unlock()

	if edit.IsUpdate {
		return c.submitUpdate(ctx, edit)
	}

	return c.submitCreate(ctx, edit)
}

// Delete sends the delete request for the record.
// A single notification is fired in both success and failure cases.
func (c *RecordSyncController) Delete(ctx context.Context, id model.RecordId) error {
	if err := c.remote.Delete(ctx, id); err != nil {
		c.log.Errorf("delete (%s): %v", id, err)
		c.notifier.Notify(model.NewErrorNotification())
		return fmt.Errorf("delete (%s): %w", id, err)
	}

	c.notifier.Notify(model.NewSuccessNotification(msgDeleted))
	c.reconcile(ctx, model.ListOperation{
		Type: model.DeleteOperationType,
		Id:   id,
	})

	return nil
}

// submitCreate handles the create form.
func (c *RecordSyncController) submitCreate(ctx context.Context, edit model.PendingEdit) error {
	req := edit.WriteRequest()

	res, err := c.remote.Create(ctx, req)
	if err != nil {
		c.log.Errorf("create: %v", err)
		c.notifier.Notify(model.NewErrorNotification())
		c.CancelForm()
		return fmt.Errorf("create: %w", err)
	}

	c.notifier.Notify(model.NewSuccessNotification(msgAdded))
	c.CancelForm()
	c.reconcile(ctx, model.ListOperation{
		Type:   model.InsertOperationType,
		Id:     res.Id,
		Record: res.ToRecord(req),
	})

	return nil
}

// submitUpdate handles the update form.
func (c *RecordSyncController) submitUpdate(ctx context.Context, edit model.PendingEdit) error {
	req := model.PlaceholderUpdate
	if c.cfg.UpdateMode == UpdateModeForm {
		req = edit.WriteRequest()
	}

	res, err := c.remote.Update(ctx, edit.TargetId, req)
	if err != nil {
		c.log.Errorf("update (%s): %v", edit.TargetId, err)
		c.notifier.Notify(model.NewErrorNotification())
		c.CancelForm()
		return fmt.Errorf("update (%s): %w", edit.TargetId, err)
	}

	c.notifier.Notify(model.NewSuccessNotification(msgUpdated))
	c.CancelForm()
	c.reconcile(ctx, model.ListOperation{
		Type:   model.UpdateOperationType,
		Id:     edit.TargetId,
		Record: res.ToRecord(req),
	})

	return nil
}

// reconcile brings the local list in line with a successful mutation according to the ReconcileMode.
// Failures here are logged only: the mutation itself has already succeeded.
func (c *RecordSyncController) reconcile(ctx context.Context, op model.ListOperation) {
	switch c.cfg.ReconcileMode {
	case ReconcileRefetch:
		_ = c.Load(ctx)

	case ReconcilePatch:
		if op.Id == "" {
			c.log.Debugf("reconcile (%s): no id in response: refetching", op.Type)
			_ = c.Load(ctx)
			return
		}

		c.mu.Lock()
		records, err := model.ApplyListOperations(c.records, op)
		if err == nil {
			c.records = records
		}
		c.mu.Unlock()

		if err != nil {
			c.log.Warnf("reconcile (%s): %v: refetching", op.Type, err)
			_ = c.Load(ctx)
		}
	}
}

// formState must be called under the lock.
func (c *RecordSyncController) formState() FormState {
	switch {
	case !c.formVisible:
		return FormClosed
	case c.pending.IsUpdate:
		return FormOpenForUpdate
	default:
		return FormOpenForCreate
	}
}

// closeForm must be called under the lock.
func (c *RecordSyncController) closeForm() {
	c.formVisible = false
	c.pending = model.PendingEdit{}
}

// NewRecordSyncController creates a new RecordSyncController object.
// The local list is empty until the first Load call.
func NewRecordSyncController(remote RemoteCollection, notifier Notifier, cfg ControllerConfig) (*RecordSyncController, error) {
	if remote == nil {
		return nil, fmt.Errorf("%s: nil", "remote")
	}
	if notifier == nil {
		return nil, fmt.Errorf("%s: nil", "notifier")
	}
	if cfg.UpdateMode == "" {
		cfg.UpdateMode = UpdateModeFixed
	}
	if cfg.ReconcileMode == "" {
		cfg.ReconcileMode = ReconcileNone
	}
	if _, err := ParseUpdateMode(string(cfg.UpdateMode)); err != nil {
		return nil, err
	}
	if _, err := ParseReconcileMode(string(cfg.ReconcileMode)); err != nil {
		return nil, err
	}

	return &RecordSyncController{
		cfg:      cfg,
		remote:   remote,
		notifier: notifier,
		log:      log.WithField("component", "record-sync-controller"),
	}, nil
}
