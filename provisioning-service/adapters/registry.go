package adapters

import (
	"sync"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
)

var _ domain.AdapterResolver = (*Registry)(nil)

// Registry maps step action keys ("system.action") to adapters
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]domain.StepAdapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]domain.StepAdapter)}
}

// Register binds an adapter to system.action, replacing any previous one
func (r *Registry) Register(system, action string, adapter domain.StepAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[system+"."+action] = adapter
}

// RegisterClient binds every action of client's system that appears in a
// step template
func (r *Registry) RegisterClient(client *RESTClient) {
	for _, workflowType := range domain.AllWorkflowTypes {
		template, err := domain.StepTemplate(workflowType)
		if err != nil {
			continue
		}
		for _, def := range template {
			if def.TargetSystem == client.System() {
				r.Register(def.TargetSystem, def.Action, client.Action(def.Action))
			}
		}
	}
}

// Resolve implements domain.AdapterResolver
func (r *Registry) Resolve(actionKey string) (domain.StepAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[actionKey]
	return a, ok
}

// Missing lists the template actions that have no adapter
func (r *Registry) Missing() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var missing []string
	for _, workflowType := range domain.AllWorkflowTypes {
		template, err := domain.StepTemplate(workflowType)
		if err != nil {
			continue
		}
		for _, def := range template {
			key := def.ActionKey()
			if _, ok := r.adapters[key]; !ok && !seen[key] {
				seen[key] = true
				missing = append(missing, key)
			}
		}
	}
	return missing
}
