package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefront-labs/backend-integration/internal/contracts"
	"github.com/storefront-labs/backend-integration/internal/domain"
)

// LivenessStatusOK is the only status reported by the liveness endpoint.
const LivenessStatusOK = "ok"

// DomainHealthDetails is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainHealthDetails domain.HealthDetails

// DomainServiceStatus is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainServiceStatus domain.ServiceStatus

// ServiceStatus is the connection status of a single downstream service.
type ServiceStatus struct {
	Name    string `doc:"Name of the checked service"                                   example:"Shopify API Connection: my-store" json:"name"     minLength:"1"`
	IsOK    bool   `doc:"Whether the service could be reached and accepted our credentials"                                           json:"is_ok"`
	SpeedMS *int64 `doc:"Round-trip time of the check in milliseconds, absent if the check could not be attempted" example:"87" json:"speed_ms,omitempty" minimum:"0"`
}

// HealthDetails is the aggregate health of the application and its downstream services.
type HealthDetails struct {
	AppName     string          `doc:"Name of the running application"                             example:"backend-integration" json:"app_name"`
	Version     string          `doc:"Version of the running application"                          example:"1.4.0"               json:"version"`
	ServiceList []ServiceStatus `doc:"Status of every configured downstream service, in configuration order"                     json:"service_list"`
}

// HealthDetailsResponse is the response for GET /health/details.
type HealthDetailsResponse struct {
	Body HealthDetails
}

// Liveness is the body returned by GET /health.
type Liveness struct {
	Status string `doc:"Always 'ok' while the process is serving requests" enum:"ok" json:"status"`
}

// LivenessResponse is the response for GET /health.
type LivenessResponse struct {
	Body Liveness
}

// ToAPIType converts a service status to its API representation.
// Durations are truncated to whole milliseconds and never negative.
func (d DomainServiceStatus) ToAPIType() ServiceStatus {
	var speed *int64
	if d.Elapsed != nil {
		ms := max(d.Elapsed.Milliseconds(), 0)
		speed = &ms
	}

	return ServiceStatus{
		Name:    d.Name,
		IsOK:    d.OK,
		SpeedMS: speed,
	}
}

// ToAPIType converts aggregated health details to their API representation.
func (d DomainHealthDetails) ToAPIType() HealthDetails {
	services := make([]ServiceStatus, 0, len(d.Services))
	for _, s := range d.Services {
		services = append(services, DomainServiceStatus(s).ToAPIType())
	}

	return HealthDetails{
		AppName:     d.AppName,
		Version:     d.Version,
		ServiceList: services,
	}
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, reporter contracts.HealthReporter, apiPathPrefix string) {
	tags := []string{"Health"}

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getLiveness",
			Method:      http.MethodGet,
			Path:        apiPathPrefix,
			Summary:     "Report that the process is alive",
			Tags:        tags,
			Hidden:      true,
		},
		func(_ context.Context, _ *struct{}) (*LivenessResponse, error) {
			return handleLiveness(), nil
		},
	)

	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getHealthDetails",
			Method:      http.MethodGet,
			Path:        apiPathPrefix + "/details",
			Summary:     "Check connectivity to every downstream service",
			Description: "Probes each configured downstream service once and reports whether it is reachable " +
				"and how long the probe took. A failing service is reported as unhealthy, it does not fail the request.",
			Tags: tags,
		},
		func(ctx context.Context, _ *struct{}) (*HealthDetailsResponse, error) {
			return handleHealthDetails(ctx, reporter)
		},
	)
}

func handleLiveness() *LivenessResponse {
	resp := &LivenessResponse{}
	resp.Body.Status = LivenessStatusOK
	return resp
}

// handleHealthDetails is the handler for probing all configured downstream services.
func handleHealthDetails(ctx context.Context, reporter contracts.HealthReporter) (*HealthDetailsResponse, error) {
	details, err := reporter.Details(ctx)
	if err != nil {
		return nil, err
	}

	resp := &HealthDetailsResponse{}
	resp.Body = DomainHealthDetails(details).ToAPIType()

	return resp, nil
}
