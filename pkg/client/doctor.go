package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clinicportal/pkg/model"
)

type DoctorClient struct {
	httpClient *HttpClient
}

func NewDoctorClient(baseURL string, timeout time.Duration) *DoctorClient {
	return &DoctorClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *DoctorClient) Login(ctx context.Context, req model.LoginRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/doctors/login", req)
}

func (c *DoctorClient) GetAll(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/doctors")
}

func (c *DoctorClient) GetPaged(ctx context.Context, pageIndex, pageSize int) (*Response, error) {
	path := fmt.Sprintf("/doctors?pageIndex=%d&pageSize=%d", pageIndex, pageSize)
	return c.httpClient.GET(ctx, path)
}

func (c *DoctorClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/doctors/"+url.PathEscape(id))
}

func (c *DoctorClient) Search(ctx context.Context, search model.DoctorSearch) (*Response, error) {
	q := url.Values{}
	if search.Name != "" {
		q.Set("Name", search.Name)
	}
	if search.Specialty != "" {
		q.Set("Specialty", search.Specialty)
	}
	return c.httpClient.GET(ctx, "/doctors/search?"+q.Encode())
}

func (c *DoctorClient) Create(ctx context.Context, req model.DoctorCreateRequest) (*Response, error) {
	fields := doctorFields(req.Name, req.Email, req.Bio, req.Specialization, req.Experience)
	return c.httpClient.Multipart(ctx, http.MethodPost, "/doctors", fields, "avatar", req.Avatar)
}

func (c *DoctorClient) Update(ctx context.Context, id string, req model.DoctorUpdateRequest) (*Response, error) {
	fields := doctorFields(req.Name, req.Email, req.Bio, req.Specialization, req.Experience)
	if req.Avatar == nil && req.AvatarURL != "" {
		fields["avatar"] = req.AvatarURL
	}
	return c.httpClient.Multipart(ctx, http.MethodPut, "/doctors/"+url.PathEscape(id), fields, "avatar", req.Avatar)
}

func (c *DoctorClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/doctors/"+url.PathEscape(id))
}

func doctorFields(name, email, bio, specialization string, experience int) map[string]string {
	return map[string]string{
		"name":           name,
		"email":          email,
		"bio":            bio,
		"specialization": specialization,
		"experience":     strconv.Itoa(experience),
	}
}
