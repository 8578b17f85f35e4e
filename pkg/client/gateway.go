package client

import (
	"context"
	"net/url"
	"time"

	"clinicportal/pkg/model"
)

const gatewaySlotsPath = "/api/GatewaySlots"

type GatewayClient struct {
	httpClient *HttpClient
}

func NewGatewayClient(baseURL string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *GatewayClient) AvailableSlots(ctx context.Context, doctorID, date string) (*Response, error) {
	q := url.Values{}
	q.Set("doctorId", doctorID)
	q.Set("date", date)
	return c.httpClient.GET(ctx, gatewaySlotsPath+"?"+q.Encode())
}

// Book forwards idempotencyKey as Idempotency-Key when set.
func (c *GatewayClient) Book(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*Response, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	return c.httpClient.POSTWithHeaders(ctx, gatewaySlotsPath+"/book", req, headers)
}

func (c *GatewayClient) History(ctx context.Context, patientID string) (*Response, error) {
	q := url.Values{}
	q.Set("patientId", patientID)
	return c.httpClient.GET(ctx, gatewaySlotsPath+"/history?"+q.Encode())
}

func (c *GatewayClient) DoctorSlots(ctx context.Context, doctorID, date string) (*Response, error) {
	q := url.Values{}
	q.Set("doctorId", doctorID)
	q.Set("date", date)
	return c.httpClient.GET(ctx, gatewaySlotsPath+"/doctor?"+q.Encode())
}

func (c *GatewayClient) CreateSchedule(ctx context.Context, req model.CreateScheduleRequest) (*Response, error) {
	return c.httpClient.POST(ctx, gatewaySlotsPath+"/schedule", req)
}
