package contracts

import (
	"errors"
	"fmt"
)

// ErrNoSessionData means the provider has no published data for the date
// (weekend, holiday, or not yet published). Recoverable: the run reports it.
var ErrNoSessionData = errors.New("no session data")

// NoSessionData wraps ErrNoSessionData with the source and date
func NoSessionData(source string, date SessionDate) error {
	return fmt.Errorf("%s: %s: %w", source, date, ErrNoSessionData)
}

// IsNoSessionData reports whether err is (or wraps) ErrNoSessionData
func IsNoSessionData(err error) bool {
	return errors.Is(err, ErrNoSessionData)
}

// GatewayError is a transport / auth / rate-limit failure talking to a provider.
// Fatal for the market-wide fetch, recoverable for a single candidate's broker flow.
type GatewayError struct {
	Source     string // finmind, twse
	Op         string // market, broker_flow
	StatusCode int    // HTTP or provider status, 0 if none
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Source, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err is (or wraps) a *GatewayError
func IsGatewayError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}

// ErrReportNotFound means no finished report exists for the requested session
var ErrReportNotFound = errors.New("report not found")
