package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg))

	m.ObserveRender("factory", 10*time.Millisecond, nil)
	m.ObserveRender("factory", 10*time.Millisecond, errors.New("x"))
	m.ObserveRender("module", time.Millisecond, nil)
	m.ObserveStabilize(time.Millisecond)
	m.HookFailed()
	m.HookFailed()
	m.PlatformCreated()
	m.PlatformCreated()
	m.PlatformDestroyed()

	if got := testutil.ToFloat64(m.rendersTotal.WithLabelValues("factory", StatusOK)); got != 1 {
		t.Errorf("factory ok = %v", got)
	}
	if got := testutil.ToFloat64(m.rendersTotal.WithLabelValues("factory", StatusError)); got != 1 {
		t.Errorf("factory error = %v", got)
	}
	if got := testutil.ToFloat64(m.hookFailures); got != 2 {
		t.Errorf("hook failures = %v", got)
	}
	if got := testutil.ToFloat64(m.platformsActive); got != 1 {
		t.Errorf("platforms active = %v", got)
	}

	expected := `
# HELP vango_engine_hook_failures_total Total number of before-app-serialized hooks that failed
# TYPE vango_engine_hook_failures_total counter
vango_engine_hook_failures_total 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "vango_engine_hook_failures_total"); err != nil {
		t.Error(err)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRender("module", time.Second, nil)
	m.ObserveStabilize(time.Second)
	m.HookFailed()
	m.PlatformCreated()
	m.PlatformDestroyed()
}

func TestCustomNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("shop"), WithSubsystem("ssr"))
	m.HookFailed()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "shop_ssr_hook_failures_total" {
			found = true
		}
	}
	if !found {
		t.Error("custom namespace not applied")
	}
}
