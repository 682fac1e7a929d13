package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api", Timeout: time.Second, UploadTimeout: 2 * time.Second}, zerolog.Nop()), srv
}

func TestClient_LoginNeverSendsBearer(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","user":{"id":5,"email":"a@x.io","user_type":"staff"},"tokens":{"access":"T1","refresh":"R1"}}`)
	})

	ctx := ports.WithAccessToken(context.Background(), "stale")
	resp, err := c.Login(ctx, "a@x.io", "pw")
	require.NoError(t, err)
	require.Equal(t, "/api/login/", gotPath)
	require.Empty(t, gotAuth)
	require.Equal(t, "a@x.io", gotBody["email"])
	require.True(t, resp.Success)
	require.Equal(t, int64(5), resp.User.ID)
	require.Equal(t, "T1", resp.Tokens.Access)
}

func TestClient_PublicAuthCallsNeverSendBearer(t *testing.T) {
	tests := []struct {
		name     string
		wantPath string
		reply    string
		call     func(ctx context.Context, c *Client) error
		wantBody map[string]string
	}{
		{
			name:     "register",
			wantPath: "/api/register/",
			reply:    `{"success":true,"message":"ok","user":{"id":6,"email":"n@x.io","user_type":"sales"},"tokens":{"access":"T1","refresh":"R1"}}`,
			call: func(ctx context.Context, c *Client) error {
				resp, err := c.Register(ctx, ports.Registration{Username: "n", Email: "n@x.io", Password: "pw", UserType: "sales"})
				if err == nil && !resp.Success {
					return errors.New("expected success")
				}
				return err
			},
			wantBody: map[string]string{"username": "n", "email": "n@x.io", "user_type": "sales"},
		},
		{
			name:     "refresh",
			wantPath: "/api/token/refresh/",
			reply:    `{"access":"T2"}`,
			call: func(ctx context.Context, c *Client) error {
				pair, err := c.RefreshToken(ctx, "R1")
				if err == nil && pair.Access != "T2" {
					return errors.New("expected the new access token")
				}
				return err
			},
			wantBody: map[string]string{"refresh": "R1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth, gotPath string
			var gotBody map[string]any
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				_, _ = io.WriteString(w, tt.reply)
			})

			ctx := ports.WithAccessToken(context.Background(), "expired-access")
			require.NoError(t, tt.call(ctx, c))
			require.Equal(t, tt.wantPath, gotPath)
			require.Empty(t, gotAuth)
			for k, v := range tt.wantBody {
				require.Equal(t, v, gotBody[k], k)
			}
		})
	}
}

func TestClient_ProtectedCallsCarryBearer(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.ListTasks(ports.WithAccessToken(context.Background(), "T1"))
	require.NoError(t, err)
	require.Equal(t, "Bearer T1", gotAuth)

	_, err = c.ListTasks(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestClient_ListAcceptsBothShapes(t *testing.T) {
	bodies := map[string]string{
		"/api/tasks/": `[{"id":1,"title":"a","status":"pending"}]`,
		"/api/users/": `{"count":2,"results":[{"id":1,"user_type":"sales"},{"id":2,"user_type":"staff"}]}`,
		"/api/leads/": `{"results":null}`,
	}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, bodies[r.URL.Path])
	})
	ctx := context.Background()

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, domain.TaskPending, tasks[0].Status)

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	leads, err := c.ListLeads(ctx)
	require.NoError(t, err)
	require.NotNil(t, leads)
	require.Empty(t, leads)
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		fields  map[string][]string
	}{
		{"detail", 401, `{"detail":"Given token not valid"}`, "Given token not valid", nil},
		{"message", 403, `{"success":false,"message":"Only admins"}`, "Only admins", nil},
		{"error", 400, `{"error":"Invalid status"}`, "Invalid status", nil},
		{"non field errors", 400, `{"non_field_errors":["Invalid credentials"]}`, "Invalid credentials",
			map[string][]string{"non_field_errors": {"Invalid credentials"}}},
		{"errors object", 400, `{"success":false,"errors":{"email":["already registered"]}}`, "email: already registered",
			map[string][]string{"email": {"already registered"}}},
		{"field errors", 400, `{"username":["taken"],"password":"too short"}`, "password: too short",
			map[string][]string{"username": {"taken"}, "password": {"too short"}}},
		{"html", 502, `<html>bad gateway</html>`, "Bad Gateway", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetTask(context.Background(), 1)
			var he *domain.HTTPError
			require.ErrorAs(t, err, &he)
			require.Equal(t, tt.status, he.Status)
			require.Equal(t, tt.message, he.Message)
			require.Equal(t, tt.fields, he.Fields)
			require.False(t, errors.Is(err, domain.ErrNetwork))
		})
	}
}

func TestClient_NetworkErrorIsDistinct(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.ListTasks(context.Background())
	require.ErrorIs(t, err, domain.ErrNetwork)
	require.Zero(t, domain.StatusOf(err))
}

func TestClient_TodayAttendanceNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"No attendance record for today"}`)
	})

	a, err := c.TodayAttendance(context.Background())
	require.NoError(t, err)
	require.Nil(t, a)
	require.Empty(t, a.CheckIn())
}

func TestClient_MarkAttendanceWrapped(t *testing.T) {
	var gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_, _ = io.WriteString(w, `{"message":"marked","attendance":{"id":3,"date":"2024-05-10","time_in":"09:01:00","time_out":null,"status":"present"}}`)
	})

	a, err := c.MarkAttendance(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "2024-05-10 09:01:00", a.CheckIn())
	require.Empty(t, a.CheckOut())
}

func TestClient_UploadUsesLongerDeadline(t *testing.T) {
	var gotNotes, gotFile string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		if strings.HasSuffix(r.URL.Path, "/indicator_upload/") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			gotNotes = r.FormValue("notes")
			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			b, _ := io.ReadAll(f)
			gotFile = hdr.Filename + ":" + string(b)
			_, _ = io.WriteString(w, `{"id":1,"lead":9,"file":"/media/proof.png","notes":"signed"}`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})
	c.timeout = 20 * time.Millisecond
	c.uploadTimeout = 2 * time.Second

	_, err := c.ListLeads(context.Background())
	require.ErrorIs(t, err, domain.ErrNetwork)

	proof, err := c.UploadIndicatorProof(context.Background(), 9, ports.Upload{Filename: "proof.png", Content: strings.NewReader("PNG")}, "signed")
	require.NoError(t, err)
	require.Equal(t, int64(9), proof.Lead)
	require.Equal(t, "signed", gotNotes)
	require.Equal(t, "proof.png:PNG", gotFile)
}

func TestClient_AccountOpeningAmount(t *testing.T) {
	var sent map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		_, _ = io.WriteString(w, `{"id":4,"lead":9,"deposit_amount":"2500.00","notes":""}`)
	})

	ao, err := c.CreateAccountOpening(context.Background(), 9, domain.Amount("2500.00"), "")
	require.NoError(t, err)
	require.Equal(t, domain.Amount("2500.00"), ao.DepositAmount)
	require.Equal(t, 2500.0, sent["deposit_amount"])
	require.Equal(t, 9.0, sent["lead"])
}

func TestClient_Ping(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	require.NoError(t, c.Ping(context.Background()))

	srv.Close()
	require.ErrorIs(t, c.Ping(context.Background()), domain.ErrNetwork)
}
