package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultServiceName   = "payment-intents"
	DefaultCheckInterval = 10 * time.Second
	DefaultCheckPath     = "/health"
)

// ServiceInfo describes one registered instance.
type ServiceInfo struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
	Meta    map[string]string
}

// BaseURL is the http base of the instance.
func (s *ServiceInfo) BaseURL() string {
	return "http://" + net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

// Registrar registers this process with a Consul agent and looks up its
// peers.
type Registrar struct {
	client  *api.Client
	service *ServiceInfo
	cfg     config.Discovery
}

// NewRegistrar returns nil when no Consul address is configured.
func NewRegistrar(cfg config.Discovery, listenAddress string) (*Registrar, error) {
	if cfg.ConsulAddress == "" {
		return nil, nil
	}

	consulCfg := api.DefaultConfig()
	consulCfg.Address = cfg.ConsulAddress

	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create consul client")
	}

	service, err := serviceInfoFromConfig(cfg, listenAddress)
	if err != nil {
		return nil, err
	}

	return &Registrar{client: client, service: service, cfg: cfg}, nil
}

func (r *Registrar) Service() *ServiceInfo {
	return r.service
}

func serviceInfoFromConfig(cfg config.Discovery, listenAddress string) (*ServiceInfo, error) {
	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}

	address := cfg.AdvertiseAddress
	port := cfg.AdvertisePort

	if address == "" || port == 0 {
		host, portStr, err := net.SplitHostPort(listenAddress)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot derive advertise address from %q", listenAddress)
		}
		if address == "" {
			address = host
		}
		if address == "" || address == "0.0.0.0" || address == "::" {
			address = "127.0.0.1"
		}
		if port == 0 {
			port, err = strconv.Atoi(portStr)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid listen port %q", portStr)
			}
		}
	}

	id := cfg.ServiceID
	if id == "" {
		id = fmt.Sprintf("%s-%s-%d", name, strings.ReplaceAll(address, ":", "_"), port)
	}

	return &ServiceInfo{
		ID:      id,
		Name:    name,
		Address: address,
		Port:    port,
		Tags:    []string{"http", "payment-intents"},
		Meta:    map[string]string{"health": DefaultCheckPath},
	}, nil
}

func buildRegistration(service *ServiceInfo, interval time.Duration) *api.AgentServiceRegistration {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	return &api.AgentServiceRegistration{
		ID:      service.ID,
		Name:    service.Name,
		Address: service.Address,
		Port:    service.Port,
		Tags:    service.Tags,
		Meta:    service.Meta,
		Check: &api.AgentServiceCheck{
			HTTP:                           service.BaseURL() + DefaultCheckPath,
			Method:                         "GET",
			Interval:                       interval.String(),
			Timeout:                        (interval / 2).String(),
			DeregisterCriticalServiceAfter: (interval * 6).String(),
		},
	}
}

// Register announces the service with an HTTP check on /health.
func (r *Registrar) Register(ctx context.Context) error {
	registration := buildRegistration(r.service, r.cfg.CheckInterval)

	opts := api.ServiceRegisterOpts{}.WithContext(ctx)
	if err := r.client.Agent().ServiceRegisterOpts(registration, opts); err != nil {
		return errors.Wrapf(err, "failed to register service %s", r.service.ID)
	}

	log.Info().
		Str("service_id", r.service.ID).
		Str("service_name", r.service.Name).
		Str("address", r.service.Address).
		Int("port", r.service.Port).
		Msg("Service registered with consul")

	return nil
}

func (r *Registrar) Deregister(ctx context.Context) error {
	opts := (&api.QueryOptions{}).WithContext(ctx)
	if err := r.client.Agent().ServiceDeregisterOpts(r.service.ID, opts); err != nil {
		return errors.Wrapf(err, "failed to deregister service %s", r.service.ID)
	}

	log.Info().Str("service_id", r.service.ID).Msg("Service deregistered from consul")
	return nil
}

// Discover returns the healthy instances of serviceName.
func Discover(ctx context.Context, consulAddress string, serviceName string) ([]*ServiceInfo, error) {
	consulCfg := api.DefaultConfig()
	consulCfg.Address = consulAddress

	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create consul client")
	}

	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	entries, _, err := client.Health().Service(serviceName, "", true, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to discover service %s", serviceName)
	}

	res := make([]*ServiceInfo, 0, len(entries))
	for _, entry := range entries {
		address := entry.Service.Address
		if address == "" {
			address = entry.Node.Address
		}
		res = append(res, &ServiceInfo{
			ID:      entry.Service.ID,
			Name:    entry.Service.Service,
			Address: address,
			Port:    entry.Service.Port,
			Tags:    entry.Service.Tags,
			Meta:    entry.Service.Meta,
		})
	}

	log.Debug().
		Str("service_name", serviceName).
		Int("found_services", len(res)).
		Msg("Service discovery completed")

	return res, nil
}
