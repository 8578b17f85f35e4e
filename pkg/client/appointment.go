package client

import (
	"context"
	"net/url"
	"time"
)

type AppointmentClient struct {
	httpClient *HttpClient
}

func NewAppointmentClient(baseURL string, timeout time.Duration) *AppointmentClient {
	return &AppointmentClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *AppointmentClient) PatientAppointments(ctx context.Context, patientID string) (*Response, error) {
	return c.httpClient.GET(ctx, "/Appointment/patient/"+url.PathEscape(patientID))
}
