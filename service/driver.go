package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/ports"
	"go.uber.org/zap"
)

var (
	// ErrAPIClientRequired is returned when a driver is built without an API client
	ErrAPIClientRequired = errors.New("api client is required")

	// ErrStateTokenizerRequired is returned when a driver is built without a state tokenizer
	ErrStateTokenizerRequired = errors.New("state tokenizer is required")

	// ErrDriverNotInitialized is reported by a zero-value Driver
	ErrDriverNotInitialized = errors.New("driver was not created with New")

	// ErrTokenizationInProgress rejects a second concurrent tokenization
	ErrTokenizationInProgress = errors.New("a venmo tokenization is already in progress")

	// ErrStateMismatch is returned when the return state belongs to another switch
	ErrStateMismatch = errors.New("return state does not match the pending app switch")

	// ErrStateReplayed is returned when a return state was already consumed
	ErrStateReplayed = errors.New("return state was already consumed")

	// ErrReturnURLSchemeMissing is returned when no return URL scheme is configured
	ErrReturnURLSchemeMissing = errors.New("return url scheme is not configured")
)

// Analytics event names
const (
	EventInitiateSuccess  = "venmo.appswitch.initiate.success"
	EventInitiateError    = "venmo.appswitch.initiate.error"
	EventHandleSuccess    = "venmo.appswitch.handle.success"
	EventHandleError      = "venmo.appswitch.handle.error"
	EventHandleCancel     = "venmo.appswitch.handle.cancel"
	EventHandleInvalid    = "venmo.appswitch.handle.invalid"
	EventHandleAbandoned  = "venmo.appswitch.handle.abandoned"
	EventHandleReplayed   = "venmo.appswitch.handle.replayed"
	EventTokenizeDisabled = "venmo.tokenize.disabled"
	EventAppNotAvailable  = "venmo.tokenize.app-not-available"
	EventInProgress       = "venmo.tokenize.in-progress"
)

// Completion receives the outcome of a tokenization. On success credential is
// set, on failure err is set, on cancellation both are nil.
type Completion func(credential *core.TokenizedCredential, err error)

// Driver runs the Venmo app switch flow and returns tokenized credentials
type Driver struct {
	client    ports.APIClient
	switcher  ports.AppSwitcher
	tokenizer ports.StateTokenizer
	store     ports.Store
	analytics ports.Analytics
	logger    *zap.Logger

	host        core.HostApp
	returnGrace time.Duration
	stateTTL    time.Duration
	sessionID   string

	mu       sync.Mutex
	state    core.State
	pending  *operation
	observer *observerSlot
}

type operation struct {
	request    *core.SwitchRequest
	switchURL  *url.URL
	completion Completion
	switched   bool
	processing bool
	consumed   bool
	done       bool
	grace      *time.Timer
}

// NewDriver creates a driver sharing the given API client
func NewDriver(client ports.APIClient, opts ...Option) (*Driver, error) {
	if client == nil {
		return nil, ErrAPIClientRequired
	}

	d := &Driver{
		client:      client,
		switcher:    unavailableSwitcher{},
		logger:      zap.NewNop(),
		returnGrace: DefaultReturnGracePeriod,
		stateTTL:    DefaultStateTTL,
		sessionID:   uuid.New().String(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.tokenizer == nil {
		return nil, ErrStateTokenizerRequired
	}
	if d.switcher == nil {
		d.switcher = unavailableSwitcher{}
	}

	return d, nil
}

// SetObserver registers o for lifecycle notifications, replacing any
// previous observer. The driver does not own o.
func (d *Driver) SetObserver(o Observer) *Registration {
	slot := &observerSlot{observer: o}

	d.mu.Lock()
	d.observer = slot
	d.mu.Unlock()

	return &Registration{driver: d, slot: slot}
}

// State returns where the driver is in the app switch flow
func (d *Driver) State() core.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SwitchURL returns the app switch URL of the pending tokenization, or nil
// before one was issued
func (d *Driver) SwitchURL() *url.URL {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil || d.pending.switchURL == nil {
		return nil
	}
	u := *d.pending.switchURL
	return &u
}

// IsAppSwitchAvailable reports whether the Venmo app can be launched. It
// does not reflect whether Venmo is enabled for the merchant.
func (d *Driver) IsAppSwitchAvailable() bool {
	if d.switcher == nil {
		return false
	}
	return d.switcher.CanOpenURL(core.BaseAppSwitchURL())
}

// CanHandleReturnURL reports whether u is a Venmo return URL for this host
func (d *Driver) CanHandleReturnURL(u *url.URL) bool {
	return core.IsReturnURL(u, d.host.ReturnURLScheme)
}

// TokenizeCredential starts the app switch. It returns immediately; done is
// invoked exactly once with the outcome.
func (d *Driver) TokenizeCredential(ctx context.Context, done Completion) {
	if done == nil {
		done = func(*core.TokenizedCredential, error) {}
	}
	if d.client == nil || d.tokenizer == nil {
		done(nil, core.NewError(core.KindUnknown, "", ErrDriverNotInitialized))
		return
	}

	d.mu.Lock()
	if d.pending != nil {
		d.mu.Unlock()
		d.logger.Warn("rejecting concurrent venmo tokenization")
		d.track(ctx, EventInProgress)
		done(nil, core.NewError(core.KindUnknown, "", ErrTokenizationInProgress))
		return
	}
	op := &operation{completion: done}
	d.pending = op
	d.state = core.StateAwaitingSwitch
	d.mu.Unlock()

	go d.start(ctx, op)
}

func (d *Driver) start(ctx context.Context, op *operation) {
	config, err := d.client.FetchConfiguration(ctx)
	if err != nil {
		d.fail(ctx, op, core.NewError(core.KindUnknown, "failed to fetch configuration", err))
		return
	}
	if !config.VenmoEnabled() {
		d.track(ctx, EventTokenizeDisabled)
		d.fail(ctx, op, core.NewError(core.KindFeatureDisabled, "", nil))
		return
	}
	if !d.IsAppSwitchAvailable() {
		d.track(ctx, EventAppNotAvailable)
		d.fail(ctx, op, core.NewError(core.KindAppNotAvailable, "", nil))
		return
	}
	if strings.TrimSpace(d.host.DisplayName) == "" {
		d.fail(ctx, op, core.NewError(core.KindMissingDisplayName, "", nil))
		return
	}
	if d.host.ReturnURLScheme == "" {
		d.fail(ctx, op, core.NewError(core.KindAppSwitchFailed, "", ErrReturnURLSchemeMissing))
		return
	}

	now := time.Now()
	req := &core.SwitchRequest{
		ID:              uuid.New().String(),
		MerchantID:      config.MerchantID,
		ReturnURLScheme: d.host.ReturnURLScheme,
		IssuedAt:        now,
		ExpiresAt:       now.Add(d.stateTTL),
	}

	state, err := d.tokenizer.SwitchRequestToState(req)
	if err != nil {
		d.fail(ctx, op, core.NewError(core.KindAppSwitchFailed, "failed to create return state", err))
		return
	}

	switchURL, err := core.AppSwitchURL(core.AppSwitchParams{
		Config:    config,
		Host:      d.host,
		State:     state,
		SessionID: d.sessionID,
	})
	if err != nil {
		d.fail(ctx, op, core.NewError(core.KindAppSwitchFailed, "", err))
		return
	}

	// Return URLs may arrive as soon as the switch happens
	d.mu.Lock()
	op.request = req
	op.switchURL = switchURL
	d.mu.Unlock()

	if obs, ok := d.currentObserver().(WillPerformAppSwitchObserver); ok {
		obs.WillPerformAppSwitch(d)
	}

	if err := d.switcher.OpenURL(ctx, switchURL); err != nil {
		d.track(ctx, EventInitiateError)
		d.fail(ctx, op, core.NewError(core.KindAppSwitchFailed, "", err))
		return
	}
	d.track(ctx, EventInitiateSuccess)
	d.logger.Debug("performed venmo app switch", zap.String("request_id", req.ID))

	d.announceSwitch(op)
	d.transition(op, core.StateAwaitingReturn)
}

// HandleReturnURL processes the URL delivered when Venmo hands control back.
// It returns false when the URL is not a Venmo return URL, its state was
// already used, or no app switch is pending.
func (d *Driver) HandleReturnURL(ctx context.Context, u *url.URL) bool {
	if d.client == nil || d.tokenizer == nil || !d.CanHandleReturnURL(u) {
		return false
	}
	if d.replayed(ctx, u) {
		return false
	}

	d.mu.Lock()
	op := d.pending
	if op == nil || op.request == nil || op.processing {
		d.mu.Unlock()
		d.logger.Debug("ignoring venmo return url without a pending app switch")
		return false
	}
	op.processing = true
	if op.grace != nil {
		op.grace.Stop()
	}
	d.mu.Unlock()

	// The return may beat start to it when Venmo answers immediately
	d.announceSwitch(op)
	if obs, ok := d.currentObserver().(WillProcessAppSwitchReturnObserver); ok {
		obs.WillProcessAppSwitchReturn(d)
	}

	credential, err := d.processReturn(ctx, op, u)
	d.finish(ctx, op, credential, err)
	return true
}

func (d *Driver) processReturn(ctx context.Context, op *operation, u *url.URL) (*core.TokenizedCredential, error) {
	payload, err := core.ParseReturnURL(u, d.host.ReturnURLScheme)
	if err != nil {
		d.track(ctx, EventHandleInvalid)
		return nil, core.NewError(core.KindInvalidReturnURL, "", err)
	}

	req, err := d.tokenizer.StateToSwitchRequest(payload.State)
	if err != nil {
		d.track(ctx, EventHandleInvalid)
		return nil, core.NewError(core.KindInvalidReturnURL, "", err)
	}
	if req.ID != op.request.ID {
		d.track(ctx, EventHandleInvalid)
		return nil, core.NewError(core.KindInvalidReturnURL, "", ErrStateMismatch)
	}
	if err := d.consumeState(ctx, op, req); err != nil {
		if errors.Is(err, ErrStateReplayed) {
			d.track(ctx, EventHandleInvalid)
			return nil, core.NewError(core.KindInvalidReturnURL, "", err)
		}
		return nil, core.NewError(core.KindUnknown, "", err)
	}

	switch payload.Outcome {
	case core.OutcomeCancel:
		d.track(ctx, EventHandleCancel)
		return nil, nil
	case core.OutcomeError:
		d.track(ctx, EventHandleError)
		var cause error
		if payload.ErrorCode != "" {
			cause = fmt.Errorf("venmo error code %s", payload.ErrorCode)
		}
		return nil, core.NewError(core.KindUnknown, payload.ErrorMessage, cause)
	}

	credential := &core.TokenizedCredential{
		Nonce:       payload.Nonce,
		Description: payload.Username,
		Username:    payload.Username,
	}
	if d.client.AuthMode().SupportsCardDetails() {
		details, err := d.client.FetchCardDetails(ctx, payload.Nonce)
		if err != nil {
			d.track(ctx, EventHandleError)
			return nil, core.NewError(core.KindUnknown, "failed to fetch card details", err)
		}
		credential.CardNetwork = details.Network
		credential.LastTwo = details.LastTwo
		if details.Description != "" {
			credential.Description = details.Description
		}
	}
	d.track(ctx, EventHandleSuccess)

	return credential, nil
}

// replayed reports whether u carries a return state that was already used.
// Such URLs are ignored so they cannot end the pending switch.
func (d *Driver) replayed(ctx context.Context, u *url.URL) bool {
	if d.store == nil {
		return false
	}

	state := u.Query().Get("state")
	if state == "" {
		return false
	}
	req, err := d.tokenizer.StateToSwitchRequest(state)
	if err != nil {
		return false
	}

	consumed, err := d.store.IsStateConsumed(ctx, req.ID)
	if err != nil || !consumed {
		return false
	}

	d.logger.Warn("ignoring replayed venmo return url", zap.String("request_id", req.ID))
	d.track(ctx, EventHandleReplayed)
	return true
}

func (d *Driver) consumeState(ctx context.Context, op *operation, req *core.SwitchRequest) error {
	if d.store == nil {
		return nil
	}

	consumed, err := d.store.IsStateConsumed(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("failed to check return state: %w", err)
	}
	if consumed {
		return ErrStateReplayed
	}

	ttl := time.Until(req.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := d.store.ConsumeState(ctx, req.ID, ttl); err != nil {
		if errors.Is(err, ports.ErrStateConsumed) {
			return ErrStateReplayed
		}
		return fmt.Errorf("failed to consume return state: %w", err)
	}

	d.mu.Lock()
	op.consumed = true
	d.mu.Unlock()
	return nil
}

// retire marks the state of a finished switch as used, so a late delivery
// of its return URL is ignored instead of hitting the next switch
func (d *Driver) retire(ctx context.Context, op *operation) {
	d.mu.Lock()
	req, consumed := op.request, op.consumed
	d.mu.Unlock()

	if d.store == nil || req == nil || consumed {
		return
	}
	ttl := time.Until(req.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if err := d.store.ConsumeState(ctx, req.ID, ttl); err != nil && !errors.Is(err, ports.ErrStateConsumed) {
		d.logger.Warn("failed to retire return state", zap.String("request_id", req.ID), zap.Error(err))
	}
}

// ApplicationDidBecomeActive tells the driver the host app is in the
// foreground again. If no return URL shows up within the grace period the
// pending tokenization completes as cancelled.
func (d *Driver) ApplicationDidBecomeActive(ctx context.Context) {
	d.mu.Lock()
	op := d.pending
	if op == nil || op.processing || op.grace != nil ||
		(d.state != core.StateSwitched && d.state != core.StateAwaitingReturn) {
		d.mu.Unlock()
		return
	}
	if d.returnGrace <= 0 {
		op.processing = true
		d.mu.Unlock()
		d.abandon(ctx, op)
		return
	}
	op.grace = time.AfterFunc(d.returnGrace, func() {
		d.mu.Lock()
		if d.pending != op || op.processing {
			d.mu.Unlock()
			return
		}
		op.processing = true
		d.mu.Unlock()
		d.abandon(ctx, op)
	})
	d.mu.Unlock()
}

func (d *Driver) abandon(ctx context.Context, op *operation) {
	d.logger.Info("venmo app switch abandoned by the user")
	d.track(ctx, EventHandleAbandoned)
	d.finish(ctx, op, nil, nil)
}

func (d *Driver) transition(op *operation, next core.State) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != op || op.done || op.processing {
		return false
	}
	d.state = next
	return true
}

// announceSwitch moves op to switched and notifies the observer, once
func (d *Driver) announceSwitch(op *operation) {
	d.mu.Lock()
	if d.pending != op || op.done || op.switched {
		d.mu.Unlock()
		return
	}
	op.switched = true
	d.state = core.StateSwitched
	d.mu.Unlock()

	if obs, ok := d.currentObserver().(DidPerformAppSwitchObserver); ok {
		obs.DidPerformAppSwitch(d)
	}
}

func (d *Driver) fail(ctx context.Context, op *operation, err error) {
	d.logger.Warn("venmo tokenization failed",
		zap.String("kind", core.KindOf(err).String()),
		zap.Error(err))
	d.finish(ctx, op, nil, err)
}

// finish completes op exactly once and returns the driver to idle
func (d *Driver) finish(ctx context.Context, op *operation, credential *core.TokenizedCredential, err error) {
	d.mu.Lock()
	if op.done {
		d.mu.Unlock()
		return
	}
	op.done = true
	if op.grace != nil {
		op.grace.Stop()
	}
	if d.pending == op {
		d.pending = nil
		d.state = core.StateIdle
	}
	d.mu.Unlock()

	d.retire(ctx, op)
	op.completion(credential, err)
}

func (d *Driver) currentObserver() Observer {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.observer == nil {
		return nil
	}
	return d.observer.observer
}

func (d *Driver) track(ctx context.Context, event string) {
	if d.analytics == nil {
		return
	}
	if err := d.analytics.Track(ctx, event); err != nil {
		d.logger.Debug("failed to track analytics event", zap.String("event", event), zap.Error(err))
	}
}

// unavailableSwitcher is used when no app switcher is configured
type unavailableSwitcher struct{}

func (unavailableSwitcher) CanOpenURL(*url.URL) bool { return false }

func (unavailableSwitcher) OpenURL(context.Context, *url.URL) error {
	return errors.New("no app switcher configured")
}
