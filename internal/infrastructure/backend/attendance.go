package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

func (c *Client) MarkAttendance(ctx context.Context) (*domain.Attendance, error) {
	return c.attendance(ctx, http.MethodPost, "/attendance/mark_attendance/")
}

func (c *Client) MarkCheckout(ctx context.Context) (*domain.Attendance, error) {
	return c.attendance(ctx, http.MethodPost, "/attendance/mark_checkout/")
}

// TodayAttendance returns nil, nil when the backend has no record for today.
func (c *Client) TodayAttendance(ctx context.Context) (*domain.Attendance, error) {
	a, err := c.attendance(ctx, http.MethodGet, "/attendance/today/")
	var he *domain.HTTPError
	if errors.As(err, &he) && he.Status == http.StatusNotFound {
		return nil, nil
	}
	return a, err
}

func (c *Client) MyAttendanceRecords(ctx context.Context) ([]domain.Attendance, error) {
	return getList[domain.Attendance](ctx, c, "/attendance/my_records/", "/attendance/my_records/", nil)
}

func (c *Client) UserAttendance(ctx context.Context, userID int64) ([]domain.Attendance, error) {
	q := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	return getList[domain.Attendance](ctx, c, "/attendance/user_attendance/", "/attendance/user_attendance/", q)
}

func (c *Client) AllAttendance(ctx context.Context) ([]domain.Attendance, error) {
	return getList[domain.Attendance](ctx, c, "/attendance/", "/attendance/", nil)
}

func (c *Client) ActiveUsers(ctx context.Context) (*domain.ActiveUsers, error) {
	var out domain.ActiveUsers
	if err := c.get(ctx, "/attendance/active_users/", "/attendance/active_users/", &out); err != nil {
		return nil, err
	}
	if out.Sales == nil {
		out.Sales = []domain.User{}
	}
	if out.IT == nil {
		out.IT = []domain.User{}
	}
	return &out, nil
}

// attendance decodes a record that may come bare or wrapped as {"attendance": {...}}.
func (c *Client) attendance(ctx context.Context, method, path string) (*domain.Attendance, error) {
	var raw json.RawMessage
	if err := c.sendJSON(ctx, method, path, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeAttendance(raw)
}

func decodeAttendance(raw json.RawMessage) (*domain.Attendance, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var wrapped struct {
		Attendance *domain.Attendance `json:"attendance"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Attendance != nil {
		return wrapped.Attendance, nil
	}
	var a domain.Attendance
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return &a, nil
}
