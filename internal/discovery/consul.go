package discovery

import (
	"fmt"
	"net"

	"github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
)

type ConsulClient struct {
	client *api.Client
	logger *logrus.Logger
}

type ServiceConfig struct {
	Name    string
	ID      string
	Address string
	Port    int
	Tags    []string
}

func NewConsulClient(addr string, logger *logrus.Logger) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	// Test connection
	_, err = client.Agent().Self()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Consul: %w", err)
	}

	logger.WithField("addr", addr).Info("Connected to Consul")

	return &ConsulClient{client: client, logger: logger}, nil
}

// getOutboundIP gets the preferred outbound IP of this machine
func getOutboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}

// Register registers a service with Consul along with an HTTP health check
func (c *ConsulClient) Register(cfg ServiceConfig) error {
	host := cfg.Address
	if host == "" {
		host = getOutboundIP()
	}

	registration := &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Port:    cfg.Port,
		Address: host,
		Tags:    cfg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", host, cfg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	err := c.client.Agent().ServiceRegister(registration)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"service": cfg.Name,
		"id":      cfg.ID,
		"address": fmt.Sprintf("%s:%d", host, cfg.Port),
	}).Info("Registered service")
	return nil
}

// Deregister removes a service from Consul
func (c *ConsulClient) Deregister(serviceID string) error {
	err := c.client.Agent().ServiceDeregister(serviceID)
	if err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	c.logger.WithField("id", serviceID).Info("Deregistered service")
	return nil
}

// GetService returns a healthy instance of a service
func (c *ConsulClient) GetService(serviceName string) (string, int, error) {
	services, _, err := c.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get service: %w", err)
	}

	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of %s found", serviceName)
	}

	// Return first healthy instance
	service := services[0].Service
	address := service.Address
	if address == "" && services[0].Node != nil {
		address = services[0].Node.Address
	}
	if address == "" {
		address = "localhost"
	}

	return address, service.Port, nil
}

// GetServiceURL returns the full URL for a service
func (c *ConsulClient) GetServiceURL(serviceName string) (string, error) {
	address, port, err := c.GetService(serviceName)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", address, port), nil
}
