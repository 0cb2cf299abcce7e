package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/gofiber/fiber/v3/log"
)

const healthCheckPath = "/payments/service-health"

// Prober issues a single health request against one processor endpoint.
// Probing failures are data, not errors: a nil record means no readable
// answer could be retrieved at all, while a Failing record means the
// endpoint answered but is not healthy.
type Prober interface {
	Probe(ctx context.Context, name, baseURL string) *domain.HealthRecord
}

func NewHTTPProber() Prober {
	return &httpProber{
		client:  &http.Client{Timeout: 5 * time.Second},
		timeout: 3 * time.Second,
	}
}

type httpProber struct {
	client  *http.Client
	timeout time.Duration
}

func (p *httpProber) Probe(ctx context.Context, name, baseURL string) *domain.HealthRecord {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+healthCheckPath, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.Warnf("health check request to %s processor failed: %v", name, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.HealthRecord{Name: name, URL: baseURL, Failing: true}
	}

	var body struct {
		Failing         bool `json:"failing"`
		MinResponseTime int  `json:"minResponseTime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Warnf("health check response from %s processor is unreadable: %v", name, err)
		return nil
	}
	return &domain.HealthRecord{
		Name:            name,
		URL:             baseURL,
		Failing:         body.Failing,
		MinResponseTime: body.MinResponseTime,
	}
}
