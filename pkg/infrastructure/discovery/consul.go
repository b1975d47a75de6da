// Package discovery registers the kitchen service with Consul.
package discovery

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/consul/api"
)

const ServiceName = "kitchen"

// Agent is the subset of the Consul agent API used for registration
type Agent interface {
	ServiceRegister(service *api.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

type ConsulClient struct {
	agent Agent
}

func NewConsulClient(address string) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulClient{agent: client.Agent()}, nil
}

func NewClientWithAgent(agent Agent) *ConsulClient {
	return &ConsulClient{agent: agent}
}

// Register announces the service with an HTTP health check against host:port/health
func (c *ConsulClient) Register(serviceID, host, port string) error {
	registration, err := Registration(serviceID, host, port)
	if err != nil {
		return err
	}
	if err := c.agent.ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register %s with consul: %w", serviceID, err)
	}
	return nil
}

func (c *ConsulClient) Deregister(serviceID string) error {
	if err := c.agent.ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister %s from consul: %w", serviceID, err)
	}
	return nil
}

func Registration(serviceID, host, port string) (*api.AgentServiceRegistration, error) {
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %w", port, err)
	}
	return &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    ServiceName,
		Address: host,
		Port:    p,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", host, p),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}, nil
}
