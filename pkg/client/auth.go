package client

import (
	"context"
	"time"

	"clinicportal/pkg/model"
)

type AuthClient struct {
	httpClient *HttpClient
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *AuthClient) Login(ctx context.Context, req model.LoginRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/User/login", req)
}
