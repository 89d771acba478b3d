package sheets

import (
	"context"
	"sync"

	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
)

// LazyGateway connects on first use and retries the connection on later
// calls until one succeeds, so a bad credential shows up as a per-request
// error instead of stopping the process.
type LazyGateway struct {
	cfg     Config
	connect func(context.Context, Config) (*Gateway, error)

	mu      sync.Mutex
	gw      *Gateway
	lastErr error
}

var _ repository.InventoryGateway = (*LazyGateway)(nil)

// NewLazy lazy gateway yaratish
func NewLazy(cfg Config) *LazyGateway {
	return &LazyGateway{cfg: cfg, connect: Connect}
}

func (l *LazyGateway) gateway(ctx context.Context) (*Gateway, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gw != nil {
		return l.gw, nil
	}
	gw, err := l.connect(ctx, l.cfg)
	if err != nil {
		l.lastErr = err
		return nil, err
	}
	l.gw = gw
	l.lastErr = nil
	return gw, nil
}

// ReadAll see Gateway.ReadAll
func (l *LazyGateway) ReadAll(ctx context.Context) (entity.Table, error) {
	gw, err := l.gateway(ctx)
	if err != nil {
		return entity.Table{}, err
	}
	return gw.ReadAll(ctx)
}

// WriteAll see Gateway.WriteAll
func (l *LazyGateway) WriteAll(ctx context.Context, table entity.Table) error {
	gw, err := l.gateway(ctx)
	if err != nil {
		return err
	}
	return gw.WriteAll(ctx, table)
}

// Diagnostics reports the connected credential, or what parsing the
// configured one says when not connected yet.
func (l *LazyGateway) Diagnostics() entity.CredentialDiagnostics {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gw != nil {
		return l.gw.Diagnostics()
	}
	diag := entity.CredentialDiagnostics{Source: l.cfg.Source}
	if len(l.cfg.ClientOptions) == 0 {
		sa, err := entity.ParseServiceAccount(l.cfg.Credentials)
		if err != nil {
			diag.Error = err.Error()
			return diag
		}
		diag.Loaded = true
		diag.Type = sa.Type
		diag.ClientEmail = sa.ClientEmail
		diag.ProjectID = sa.ProjectID
	}
	if l.lastErr != nil {
		diag.Error = l.lastErr.Error()
	}
	return diag
}
