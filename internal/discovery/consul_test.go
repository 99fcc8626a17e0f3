package discovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgent serves the handful of Consul HTTP endpoints the client uses.
type fakeAgent struct {
	mu           sync.Mutex
	registered   []api.AgentServiceRegistration
	deregistered []string
	healthy      []*api.ServiceEntry
}

func (a *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Consul-Index", "1")
	w.Header().Set("X-Consul-LastContact", "0")
	w.Header().Set("X-Consul-KnownLeader", "true")

	switch {
	case r.URL.Path == "/v1/agent/self":
		w.Write([]byte(`{"Config":{"NodeName":"test"}}`))
	case r.URL.Path == "/v1/agent/service/register":
		var reg api.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.registered = append(a.registered, reg)
	case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
		a.deregistered = append(a.deregistered, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
	case strings.HasPrefix(r.URL.Path, "/v1/health/service/"):
		json.NewEncoder(w).Encode(a.healthy)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, agent *fakeAgent) *ConsulClient {
	t.Helper()
	srv := httptest.NewServer(agent)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	client, err := NewConsulClient(strings.TrimPrefix(srv.URL, "http://"), logger)
	require.NoError(t, err)
	return client
}

func TestRegisterAndDeregister(t *testing.T) {
	agent := &fakeAgent{}
	client := newTestClient(t, agent)

	err := client.Register(ServiceConfig{
		Name:    "order-api",
		ID:      "order-api-1",
		Address: "10.0.0.5",
		Port:    8080,
		Tags:    []string{"api"},
	})
	require.NoError(t, err)

	require.Len(t, agent.registered, 1)
	reg := agent.registered[0]
	assert.Equal(t, "order-api-1", reg.ID)
	assert.Equal(t, "10.0.0.5", reg.Address)
	require.NotNil(t, reg.Check)
	assert.Equal(t, "http://10.0.0.5:8080/health", reg.Check.HTTP)

	require.NoError(t, client.Deregister("order-api-1"))
	assert.Equal(t, []string{"order-api-1"}, agent.deregistered)
}

func TestGetServiceURL(t *testing.T) {
	agent := &fakeAgent{healthy: []*api.ServiceEntry{
		{Service: &api.AgentService{Service: "order-api", Address: "10.0.0.7", Port: 8080}},
	}}
	client := newTestClient(t, agent)

	u, err := client.GetServiceURL("order-api")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.7:8080", u)
}

func TestGetServiceFallsBackToNodeAddress(t *testing.T) {
	agent := &fakeAgent{healthy: []*api.ServiceEntry{
		{Node: &api.Node{Address: "192.168.1.20"}, Service: &api.AgentService{Service: "order-api", Port: 9000}},
	}}
	client := newTestClient(t, agent)

	address, port, err := client.GetService("order-api")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", address)
	assert.Equal(t, 9000, port)
}

func TestGetServiceNoHealthyInstances(t *testing.T) {
	client := newTestClient(t, &fakeAgent{})

	_, err := client.GetServiceURL("order-api")
	assert.EqualError(t, err, "no healthy instances of order-api found")
}

func TestNewConsulClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	logger, _ := test.NewNullLogger()
	_, err := NewConsulClient(addr, logger)
	assert.Error(t, err)
}
