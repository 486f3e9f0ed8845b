package client

import (
	"fmt"
	"net/url"
)

type AppointmentClient struct {
	httpClient *HttpClient
}

func NewAppointmentClient(baseUrl string) *AppointmentClient {
	return &AppointmentClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// As returns a client acting as the given user.
func (c *AppointmentClient) As(userID, role string) *AppointmentClient {
	return &AppointmentClient{httpClient: c.httpClient.As(userID, role)}
}

func (c *AppointmentClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/appointments", body)
}

func (c *AppointmentClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/appointments/id/" + id)
}

func (c *AppointmentClient) List(status, dateFrom, dateTo string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))
	if status != "" {
		q.Set("status", status)
	}
	if dateFrom != "" {
		q.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		q.Set("date_to", dateTo)
	}
	return c.httpClient.GET("/api/v1/appointments?" + q.Encode())
}

func (c *AppointmentClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/appointments/id/"+id, body)
}

func (c *AppointmentClient) SetStatus(id string, body any) (*Response, error) {
	return c.httpClient.PUT("/api/v1/appointments/id/"+id+"/status", body)
}

func (c *AppointmentClient) Cancel(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/appointments/id/" + id)
}

func (c *AppointmentClient) Stats() (*Response, error) {
	return c.httpClient.GET("/api/v1/appointments/stats")
}

func (c *AppointmentClient) AvailableSlots(doctorID, date string) (*Response, error) {
	return c.httpClient.GET(fmt.Sprintf("/api/v1/doctors/id/%s/slots?date=%s", doctorID, url.QueryEscape(date)))
}

func (c *AppointmentClient) CheckSlot(doctorID, date, slot string) (*Response, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("time", slot)
	return c.httpClient.GET(fmt.Sprintf("/api/v1/doctors/id/%s/slots/check?%s", doctorID, q.Encode()))
}
