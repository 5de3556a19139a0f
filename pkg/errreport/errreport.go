// Package errreport forwards unexpected server errors to Rollbar.
package errreport

import (
	"net/http"

	"github.com/rollbar/rollbar-go"
)

// Reporter receives errors that surfaced as internal server errors
type Reporter interface {
	Report(r *http.Request, err error)
	Close()
}

// Config holds Rollbar settings
type Config struct {
	Token       string
	Environment string
	CodeVersion string
	ServerHost  string
}

// New returns a Rollbar reporter, or a no-op reporter when no token is set
func New(cfg Config) Reporter {
	if cfg.Token == "" {
		return NoOp{}
	}

	rollbar.SetToken(cfg.Token)
	rollbar.SetEnvironment(cfg.Environment)
	rollbar.SetCodeVersion(cfg.CodeVersion)
	rollbar.SetServerHost(cfg.ServerHost)
	rollbar.SetEnabled(true)

	return &RollbarReporter{}
}

// RollbarReporter sends errors through the global rollbar client
type RollbarReporter struct{}

// Report sends err with the request context attached
func (RollbarReporter) Report(r *http.Request, err error) {
	if r != nil {
		rollbar.RequestError(rollbar.ERR, r, err)
		return
	}
	rollbar.Error(err)
}

// Close waits for queued items to be sent
func (RollbarReporter) Close() {
	rollbar.Wait()
}

// NoOp discards every report
type NoOp struct{}

func (NoOp) Report(*http.Request, error) {}

func (NoOp) Close() {}
