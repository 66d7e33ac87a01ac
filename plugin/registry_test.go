package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/equityledger/event"
	"github.com/xraph/equityledger/plugin"
)

// recordingPlugin implements a subset of the hook interfaces and
// records every call it receives.
type recordingPlugin struct {
	name string

	mu          sync.Mutex
	investments []event.InvestmentMade
	transfers   []event.TokensTransferred
	initCalls   int
	hookErr     error
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) OnInit(_ context.Context, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initCalls++
	return p.hookErr
}

func (p *recordingPlugin) OnInvestmentMade(_ context.Context, ev event.InvestmentMade) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.investments = append(p.investments, ev)
	return p.hookErr
}

func (p *recordingPlugin) OnTokensTransferred(_ context.Context, ev event.TokensTransferred) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transfers = append(p.transfers, ev)
	return p.hookErr
}

// slowPlugin blocks its hook until released.
type slowPlugin struct {
	release chan struct{}
}

func (p *slowPlugin) Name() string { return "slow" }

func (p *slowPlugin) OnInvestmentMade(_ context.Context, _ event.InvestmentMade) error {
	<-p.release
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryRegister(t *testing.T) {
	r := plugin.NewRegistry().WithLogger(quietLogger())

	p := &recordingPlugin{name: "recorder"}
	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&recordingPlugin{name: "recorder"}); err == nil {
		t.Error("duplicate Register = nil, want error")
	}

	if got := r.Count(); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
	if got := r.Get("recorder"); got != p {
		t.Errorf("Get = %v, want the registered plugin", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
	if got := r.List(); len(got) != 1 {
		t.Errorf("List = %d plugins, want 1", len(got))
	}
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	r := plugin.NewRegistry().WithLogger(quietLogger())

	p := &recordingPlugin{name: "recorder"}
	if err := r.Register(p); err != nil {
		t.Fatal(err)
	}

	r.EmitInit(ctx, nil)
	r.EmitInvestmentMade(ctx, event.InvestmentMade{CampaignID: 7, Investor: "alice"})
	r.EmitTokensTransferred(ctx, event.TokensTransferred{From: "alice", To: "bob"})

	// The plugin does not implement OnCampaignClosed; emitting must not
	// reach it or panic.
	r.EmitCampaignClosed(ctx, event.CampaignClosed{CampaignID: 7})

	if p.initCalls != 1 {
		t.Errorf("init calls = %d, want 1", p.initCalls)
	}
	if len(p.investments) != 1 || p.investments[0].CampaignID != 7 {
		t.Errorf("investments = %v, want one for campaign 7", p.investments)
	}
	if len(p.transfers) != 1 || p.transfers[0].To != "bob" {
		t.Errorf("transfers = %v, want one to bob", p.transfers)
	}
}

func TestRegistryHookErrorsDoNotPropagate(t *testing.T) {
	ctx := context.Background()
	r := plugin.NewRegistry().WithLogger(quietLogger())

	failing := &recordingPlugin{name: "failing", hookErr: errors.New("boom")}
	healthy := &recordingPlugin{name: "healthy"}
	if err := r.Register(failing); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(healthy); err != nil {
		t.Fatal(err)
	}

	// Emission has no error return: a failing hook is logged and the
	// remaining plugins still run.
	r.EmitInvestmentMade(ctx, event.InvestmentMade{CampaignID: 1})

	if len(failing.investments) != 1 {
		t.Errorf("failing plugin calls = %d, want 1", len(failing.investments))
	}
	if len(healthy.investments) != 1 {
		t.Errorf("healthy plugin calls = %d, want 1", len(healthy.investments))
	}
}

func TestRegistryHookTimeout(t *testing.T) {
	ctx := context.Background()
	slow := &slowPlugin{release: make(chan struct{})}
	defer close(slow.release)

	r := plugin.NewRegistry().
		WithLogger(quietLogger()).
		WithHookTimeout(10 * time.Millisecond)
	if err := r.Register(slow); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		r.EmitInvestmentMade(ctx, event.InvestmentMade{CampaignID: 1})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emission did not return after hook timeout")
	}
}
