package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"netinv/internal/domain"
)

// SourceResult is the partial inventory one source contributes to a scan.
// An adapter fills only the sequences its backend knows about; an empty
// result is a successful fetch.
type SourceResult struct {
	NetworkDevices   []domain.NetworkDevice
	WirelessClients  []domain.WirelessClient
	WirelessNetworks []domain.WirelessNetwork
	AccessPoints     []domain.AccessPoint
	Containers       []domain.Container
	VirtualMachines  []domain.VirtualMachine
}

// Adapter is the capability contract every inventory source implements.
//
// Fetch must honor the context deadline and return rather than hang, must
// not retry internally, and must not fail for ordinary "no data" conditions.
type Adapter interface {
	// Name returns the unique identifier for this source
	Name() string

	// Enabled reports whether the source is active in configuration
	Enabled() bool

	// Fetch pulls the source's current inventory
	Fetch(ctx context.Context) (*SourceResult, error)
}

// ErrorKind classifies a source failure
type ErrorKind string

const (
	ErrorTimeout     ErrorKind = "timeout"
	ErrorAuth        ErrorKind = "auth_failure"
	ErrorUnreachable ErrorKind = "unreachable"
	ErrorInternal    ErrorKind = "internal"
)

// SourceError wraps a failure from one source with its classification.
// Source errors are contained at the coordinator boundary and recorded in
// the snapshot's partial failures, never propagated past the merge.
type SourceError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError classifies err and wraps it for the named source
func NewSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return ErrorAuth
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorTimeout
		}
		return ErrorUnreachable
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ErrorUnreachable
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrorUnreachable
	}

	return ErrorInternal
}

// AuthError marks a failure as an authentication problem so classification
// can distinguish it from connectivity issues.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
