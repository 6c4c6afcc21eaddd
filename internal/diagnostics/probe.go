// Package diagnostics builds the report served by GET /test.  Every failure
// while probing the database collaborator is folded into a status string;
// Run never returns an error and never lets a panic escape.
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"

	"github.com/iliyamo/care-assistant-api/internal/database"
	"github.com/iliyamo/care-assistant-api/internal/model"
)

const (
	maxCollections = 10
	maxErrorRunes  = 50
)

const (
	statusBackendRunning = "✅ Running"

	statusNotAvailable   = "❌ Not Available"
	statusModuleNotFound = "❌ Database module not found (run enable-database first)"
	statusNotInitialized = "⚠️  Available but not initialized"
	statusWorking        = "✅ Connected & Working"
	statusConnectedError = "⚠️  Connected but Error: "
	statusError          = "❌ Error: "

	connConnected    = "Connected"
	connNotConnected = "Not Connected"

	envSet    = "✅ Set"
	envNotSet = "❌ Not Set"
)

// Prober inspects the database handle and the DATABASE_* variables.
type Prober struct {
	handle    database.Handle
	timeout   time.Duration
	lookupEnv func(string) (string, bool)
}

// NewProber returns a Prober over h.  timeout bounds the collection listing;
// a non-positive value means 5s.
func NewProber(h database.Handle, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{handle: h, timeout: timeout, lookupEnv: os.LookupEnv}
}

// Run builds a fresh report.
func (p *Prober) Run(ctx context.Context) model.DiagnosticReport {
	r := model.DiagnosticReport{
		Backend:          statusBackendRunning,
		Database:         statusNotAvailable,
		ConnectionStatus: connNotConnected,
		Collections:      []string{},
	}
	p.probeDatabase(ctx, &r)

	r.DatabaseURL = p.presence("DATABASE_URL")
	r.DatabaseName = p.presence("DATABASE_NAME")
	return r
}

func (p *Prober) probeDatabase(ctx context.Context, r *model.DiagnosticReport) {
	defer func() {
		if v := recover(); v != nil {
			log.WithField("panic", fmt.Sprint(v)).Error("diagnostics.probe.panic")
			r.Database = statusError + truncate(fmt.Sprint(v), maxErrorRunes)
		}
	}()

	if !p.handle.Installed {
		r.Database = statusModuleNotFound
		return
	}
	if p.handle.Catalog == nil {
		r.Database = statusNotInitialized
		return
	}
	name := p.handle.Catalog.Name()
	r.ConnectionStatus = connConnected

	names, err := p.listCollections(ctx)
	if err != nil {
		log.WithError(err).WithField("database", name).Warn("diagnostics.list_collections")
		r.Database = statusConnectedError + truncate(err.Error(), maxErrorRunes)
		return
	}
	if len(names) > maxCollections {
		names = names[:maxCollections]
	}
	r.Collections = append([]string{}, names...)
	r.Database = statusWorking
}

type listResult struct {
	names []string
	err   error
}

// listCollections runs the listing on its own goroutine so a catalog that
// ignores ctx still cannot hold the request past the timeout.  A panic in
// the catalog is reported as a listing error.
func (p *Prober) listCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan listResult, 1)
	go func() {
		var res listResult
		defer func() {
			if v := recover(); v != nil {
				res = listResult{err: fmt.Errorf("%v", v)}
			}
			done <- res
		}()
		res.names, res.err = p.handle.Catalog.ListCollections(ctx)
	}()

	select {
	case res := <-done:
		return res.names, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Prober) presence(key string) string {
	if v, ok := p.lookupEnv(key); ok && v != "" {
		return envSet
	}
	return envNotSet
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
