package container

import (
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/staking-ledger/testutil"
)

const (
	mongoContainerName  = "mongo"
	rabbitContainerName = "rabbitmq"

	Username = "user"
	Password = "password"
)

// Manager is a wrapper around all Docker instances, and the Docker API.
// It provides utilities to run and interact with all Docker containers used within e2e testing.
type Manager struct {
	cfg       ImageConfig
	pool      *dockertest.Pool
	resources map[string]*dockertest.Resource
	suffix    string
}

// NewManager creates a new Manager instance and initializes
// all Docker specific utilities. Returns an error if initialization fails.
func NewManager() (*Manager, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}
	pool.MaxWait = time.Minute

	suffix, err := testutil.RandomAlphaNum(4)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:       NewImageConfig(),
		pool:      pool,
		resources: make(map[string]*dockertest.Resource),
		suffix:    suffix,
	}, nil
}

func (m *Manager) run(t *testing.T, name string, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()

	opts.Name = fmt.Sprintf("%s-e2e-%s", name, m.suffix)
	resource, err := m.pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	require.NoError(t, err)

	m.resources[name] = resource
	return resource
}

// RunMongoResource starts mongo and returns its connection address.
func (m *Manager) RunMongoResource(t *testing.T) string {
	resource := m.run(t, mongoContainerName, &dockertest.RunOptions{
		Repository: m.cfg.MongoRepository,
		Tag:        m.cfg.MongoVersion,
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=" + Username,
			"MONGO_INITDB_ROOT_PASSWORD=" + Password,
		},
	})
	return fmt.Sprintf("mongodb://localhost:%s/", resource.GetPort("27017/tcp"))
}

// RunRabbitMQResource starts rabbitmq and returns its host:port.
func (m *Manager) RunRabbitMQResource(t *testing.T) string {
	resource := m.run(t, rabbitContainerName, &dockertest.RunOptions{
		Repository: m.cfg.RabbitMQRepository,
		Tag:        m.cfg.RabbitMQVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + Username,
			"RABBITMQ_DEFAULT_PASS=" + Password,
		},
	})
	return fmt.Sprintf("localhost:%s", resource.GetPort("5672/tcp"))
}

// Retry calls op until it succeeds or the pool's MaxWait elapses.
func (m *Manager) Retry(op func() error) error {
	return m.pool.Retry(op)
}

// ClearResources removes all outstanding Docker resources created by the Manager.
func (m *Manager) ClearResources() error {
	for _, resource := range m.resources {
		if err := m.pool.Purge(resource); err != nil {
			return err
		}
	}
	return nil
}
