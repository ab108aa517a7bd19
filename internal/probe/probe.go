// Package probe polls a llama-server until its OpenAI-compatible API answers.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Defaults used when the corresponding Prober fields are unset.
const (
	DefaultAttempts = 30
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 2 * time.Second
)

// HealthPath is polled on the child; any 200 means ready.
const HealthPath = "/v1/models"

var probeAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mmjd",
		Subsystem: "probe",
		Name:      "attempts_total",
		Help:      "Readiness probe attempts against llama-server by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(probeAttemptsTotal)
}

// Prober checks readiness of a llama-server.
type Prober struct {
	// Attempts is the maximum number of health requests.
	Attempts int
	// Interval is slept between unsuccessful attempts.
	Interval time.Duration
	// Timeout bounds each health request.
	Timeout time.Duration
	// Client performs the requests. Its own Timeout should be 0; per-request
	// deadlines come from Timeout.
	Client *http.Client
	Logger zerolog.Logger

	sleep func(time.Duration)
}

// New returns a Prober with the default budget.
func New(logger zerolog.Logger) *Prober {
	return &Prober{
		Attempts: DefaultAttempts,
		Interval: DefaultInterval,
		Timeout:  DefaultTimeout,
		Client:   &http.Client{Timeout: 0},
		Logger:   logger,
	}
}

// WaitUntilReady polls http://host:port/v1/models until it returns 200 or the
// attempt budget is spent. It blocks for at most about Attempts*(Interval+Timeout)
// and never fails with an error; the caller decides what not-ready means.
func (p *Prober) WaitUntilReady(host string, port int) bool {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	url := fmt.Sprintf("http://%s:%d%s", host, port, HealthPath)
	for i := 1; i <= attempts; i++ {
		ok, reason := p.check(url)
		if ok {
			probeAttemptsTotal.WithLabelValues("ready").Inc()
			p.Logger.Info().Str("event", "ready").Str("url", url).Int("attempt", i).Msg("llama-server ready")
			return true
		}
		probeAttemptsTotal.WithLabelValues("not_ready").Inc()
		p.Logger.Debug().Str("event", "probe").Str("url", url).Int("attempt", i).Str("reason", reason).Msg("llama-server not ready")
		if i < attempts {
			p.pause()
		}
	}
	p.Logger.Warn().Str("event", "timeout").Str("url", url).Int("attempts", attempts).Msg("llama-server not responding")
	return false
}

// check performs one health request.
func (p *Prober) check(url string) (bool, string) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err.Error()
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return false, resp.Status
	}
	return true, ""
}

func (p *Prober) pause() {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if p.sleep != nil {
		p.sleep(interval)
		return
	}
	time.Sleep(interval)
}
