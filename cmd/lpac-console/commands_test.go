package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/muurk/lpac-console/internal/config"
	"github.com/muurk/lpac-console/internal/gateway"
)

const (
	lpacInstalled    = `{"success":true,"data":{"installed":true}}`
	lpacNotInstalled = `{"success":true,"data":{"installed":false}}`
)

// routerStub serves canned reads and records every action posted to it
type routerStub struct {
	mu    sync.Mutex
	reads map[gateway.Endpoint]string
	posts []gateway.Endpoint
}

func (s *routerStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ep := gateway.Endpoint(path.Base(r.URL.Path))
	w.Header().Set("Content-Type", "application/json")

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method == http.MethodPost {
		s.posts = append(s.posts, ep)
		_, _ = w.Write([]byte(`{"success":true,"data":{"profiles":[]}}`))
		return
	}
	body, ok := s.reads[ep]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func (s *routerStub) postsMade() []gateway.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.Endpoint(nil), s.posts...)
}

// useRouter points the command globals at a test server for one test
func useRouter(t *testing.T, reads map[gateway.Endpoint]string) *routerStub {
	t.Helper()

	stub := &routerStub{reads: reads}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	oldRegistry, oldRouter, oldFormat, oldYes := registry, routerFlag, outputFormat, assumeYes
	t.Cleanup(func() {
		registry, routerFlag, outputFormat, assumeYes = oldRegistry, oldRouter, oldFormat, oldYes
	})

	registry = config.NewRegistry()
	routerFlag = srv.URL
	outputFormat = "detailed"
	assumeYes = true
	return stub
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetContext(context.Background())
	return cmd.RunE(cmd, args)
}

func TestActionRefusedForUnavailableView(t *testing.T) {
	stub := useRouter(t, map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:       lpacNotInstalled,
		gateway.EndpointGetConfig:       `{"success":true,"data":{}}`,
		gateway.EndpointListAPDUDrivers: `{"success":true,"data":{"drivers":[]}}`,
		gateway.EndpointListHTTPDrivers: `{"success":true,"data":{"drivers":[]}}`,
	})

	err := runCommand(t, discoverCmd)
	if !errors.Is(err, errReported) {
		t.Errorf("discover error = %v, want errReported", err)
	}
	if posts := stub.postsMade(); len(posts) != 0 {
		t.Errorf("posts = %v, want none", posts)
	}
}

func TestActionRefusedForFailedView(t *testing.T) {
	stub := useRouter(t, map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:    lpacInstalled,
		gateway.EndpointListProfiles: `{"success":false,"message":"lpac: no card"}`,
	})

	err := runCommand(t, profilesEnableCmd, "8944110000000000001")
	if !errors.Is(err, errReported) {
		t.Errorf("enable error = %v, want errReported", err)
	}
	if posts := stub.postsMade(); len(posts) != 0 {
		t.Errorf("posts = %v, want none", posts)
	}
}

func TestBulkNotificationCommandsWithNothingPending(t *testing.T) {
	for _, cmd := range []*cobra.Command{notificationsProcessAllCmd, notificationsRemoveAllCmd} {
		t.Run(cmd.Name(), func(t *testing.T) {
			stub := useRouter(t, map[gateway.Endpoint]string{
				gateway.EndpointCheckLpac:         lpacInstalled,
				gateway.EndpointListNotifications: `{"success":true,"data":{"notifications":[]}}`,
			})

			if err := runCommand(t, cmd); err != nil {
				t.Errorf("%s error = %v, want nil", cmd.Name(), err)
			}
			if posts := stub.postsMade(); len(posts) != 0 {
				t.Errorf("posts = %v, want none", posts)
			}
		})
	}
}

func TestDiscoverWithUnreadableConfig(t *testing.T) {
	stub := useRouter(t, map[gateway.Endpoint]string{
		gateway.EndpointCheckLpac:       lpacInstalled,
		gateway.EndpointGetConfig:       `{"success":false,"message":"uci read failed"}`,
		gateway.EndpointListAPDUDrivers: `{"success":true,"data":{"drivers":["pcsc"]}}`,
		gateway.EndpointListHTTPDrivers: `{"success":true,"data":{"drivers":["curl"]}}`,
	})

	if err := runCommand(t, discoverCmd); err != nil {
		t.Fatalf("discover error = %v", err)
	}
	posts := stub.postsMade()
	if len(posts) != 1 || posts[0] != gateway.EndpointDiscoverProfiles {
		t.Errorf("posts = %v, want [%s]", posts, gateway.EndpointDiscoverProfiles)
	}
}
