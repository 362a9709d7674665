package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/service"
	"go.uber.org/zap"
)

const defaultSwitchTimeout = 10 * time.Second

// Result statuses
const (
	StatusNone      = "none"
	StatusPending   = "pending"
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Result is the JSON view of the latest tokenization
type Result struct {
	Status      string `json:"status"`
	Nonce       string `json:"nonce,omitempty"`
	Username    string `json:"username,omitempty"`
	Description string `json:"description,omitempty"`
	CardNetwork string `json:"card_network,omitempty"`
	LastTwo     string `json:"last_two,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	ErrorDomain string `json:"error_domain,omitempty"`

	inProgress bool
}

func newResult(credential *core.TokenizedCredential, err error) Result {
	switch {
	case err != nil:
		r := Result{Status: StatusError, Error: err.Error(), ErrorKind: core.KindOf(err).String()}
		var driverErr *core.Error
		if errors.As(err, &driverErr) {
			r.ErrorDomain = driverErr.Domain()
		}
		r.inProgress = errors.Is(err, service.ErrTokenizationInProgress)
		return r
	case credential != nil:
		return Result{
			Status:      StatusSuccess,
			Nonce:       credential.Nonce,
			Username:    credential.Username,
			Description: credential.Description,
			CardNetwork: credential.CardNetwork,
			LastTwo:     credential.LastTwo,
		}
	default:
		return Result{Status: StatusCancelled}
	}
}

// Opener exposes the URLs handed to the app switcher
type Opener interface {
	Opened() <-chan *url.URL
}

// Handlers contains HTTP handlers for the Venmo host surface
type Handlers struct {
	driver        *service.Driver
	opener        Opener
	logger        *zap.Logger
	switchTimeout time.Duration

	mu     sync.Mutex
	latest Result
}

// NewHandlers creates new Venmo handlers
func NewHandlers(driver *service.Driver, opener Opener, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		driver:        driver,
		opener:        opener,
		logger:        logger,
		switchTimeout: defaultSwitchTimeout,
		latest:        Result{Status: StatusNone},
	}
}

func (h *Handlers) record(r Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = r
}

func (h *Handlers) latestResult() Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Availability reports whether the Venmo app can be launched
func (h *Handlers) Availability(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"available": h.driver.IsAppSwitchAvailable()})
}

// Tokenize starts an app switch and responds with the URL to open
func (h *Handlers) Tokenize(c *gin.Context) {
	done := make(chan Result, 1)

	// The flow outlives this request, it completes on return or foreground
	ctx := context.WithoutCancel(c.Request.Context())
	h.driver.TokenizeCredential(ctx, func(credential *core.TokenizedCredential, err error) {
		r := newResult(credential, err)
		if !r.inProgress {
			h.record(r)
		}
		select {
		case done <- r:
		default:
		}
	})

	// Rejections and zero-value drivers complete synchronously
	select {
	case r := <-done:
		c.JSON(statusFor(r), r)
		return
	default:
	}

	timer := time.NewTimer(h.switchTimeout)
	defer timer.Stop()

	for {
		select {
		case u := <-h.opener.Opened():
			// URLs of switches whose client went away stay queued
			if !h.issuedForPending(u) {
				h.logger.Debug("discarding stale venmo app switch url")
				continue
			}
			h.record(Result{Status: StatusPending})
			h.logger.Debug("venmo app switch url issued")
			c.JSON(http.StatusAccepted, gin.H{"app_switch_url": u.String()})
			return
		case r := <-done:
			c.JSON(statusFor(r), r)
			return
		case <-timer.C:
			h.logger.Warn("timed out waiting for venmo app switch", zap.Duration("timeout", h.switchTimeout))
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timed out waiting for app switch"})
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Handlers) issuedForPending(u *url.URL) bool {
	pending := h.driver.SwitchURL()
	return u != nil && pending != nil && pending.String() == u.String()
}

// Return hands the URL delivered by the Venmo app to the driver
func (h *Handlers) Return(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	u, err := url.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid return url"})
		return
	}

	if !h.driver.HandleReturnURL(c.Request.Context(), u) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending venmo app switch for this url"})
		return
	}

	r := h.latestResult()
	c.JSON(statusFor(r), r)
}

// Foreground signals that the host app is active again
func (h *Handlers) Foreground(c *gin.Context) {
	h.driver.ApplicationDidBecomeActive(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusAccepted, gin.H{"state": h.driver.State().String()})
}

// Latest returns the most recent tokenization result
func (h *Handlers) Latest(c *gin.Context) {
	c.JSON(http.StatusOK, h.latestResult())
}

func statusFor(r Result) int {
	if r.Status != StatusError {
		return http.StatusOK
	}

	if r.inProgress {
		return http.StatusConflict
	}

	switch r.ErrorKind {
	case core.KindFeatureDisabled.String():
		return http.StatusForbidden
	case core.KindAppNotAvailable.String():
		return http.StatusConflict
	case core.KindAppSwitchFailed.String():
		return http.StatusBadGateway
	case core.KindInvalidReturnURL.String():
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
