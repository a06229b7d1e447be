package server

import (
	"sync"

	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/server/service"
)

// Registry tracks registered business services so the manager can drive
// their lifecycle hooks.
type Registry struct {
	mu       sync.RWMutex
	services map[string]service.Service
}

// NewRegistry creates a new service registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]service.Service),
	}
}

// Register registers a service by its name. Registering the same name
// twice replaces the earlier entry.
func (r *Registry) Register(svc service.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[svc.ServiceName()] = svc
}

// GetService returns a registered service by name.
func (r *Registry) GetService(name string) (service.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	return svc, ok
}

// GetAllServices returns all registered services.
func (r *Registry) GetAllServices() []service.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]service.Service, 0, len(r.services))
	for _, svc := range r.services {
		services = append(services, svc)
	}
	return services
}
