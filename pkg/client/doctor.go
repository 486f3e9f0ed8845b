package client

type DoctorClient struct {
	httpClient *HttpClient
}

func NewDoctorClient(baseUrl string) *DoctorClient {
	return &DoctorClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *DoctorClient) As(userID, role string) *DoctorClient {
	return &DoctorClient{httpClient: c.httpClient.As(userID, role)}
}

func (c *DoctorClient) Register(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/doctors", body)
}

func (c *DoctorClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/doctors/id/" + id)
}

func (c *DoctorClient) GetSchedule() (*Response, error) {
	return c.httpClient.GET("/api/v1/doctors/me/schedule")
}

// UpdateSchedule sends raw JSON; the service accepts several layouts.
func (c *DoctorClient) UpdateSchedule(rawBody []byte) (*Response, error) {
	return c.httpClient.PUTRaw("/api/v1/doctors/me/schedule", rawBody)
}
