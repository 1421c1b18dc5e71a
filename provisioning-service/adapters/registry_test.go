package adapters

import (
	"testing"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterClient(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterClient(NewRESTClient(SystemConfig{System: domain.SystemRadius, BaseURL: "http://radius"}))

	for _, key := range []string{"radius.create_account", "radius.delete_account", "radius.update_profile", "radius.enable_account", "radius.disable_account"} {
		adapter, ok := registry.Resolve(key)
		assert.True(t, ok, key)
		assert.NotNil(t, adapter, key)
	}

	_, ok := registry.Resolve("ipam.allocate_address")
	assert.False(t, ok)
}

func TestRegistry_Missing(t *testing.T) {
	registry := NewRegistry()
	for _, system := range []string{
		domain.SystemRadius, domain.SystemIPAM, domain.SystemCPE,
		domain.SystemOLT, domain.SystemBilling,
	} {
		registry.RegisterClient(NewRESTClient(SystemConfig{System: system, BaseURL: "http://" + system}))
	}

	missing := registry.Missing()
	require.Equal(t, []string{"notification.send_welcome"}, missing)

	registry.RegisterClient(NewRESTClient(SystemConfig{System: domain.SystemNotification, BaseURL: "http://notification"}))
	assert.Empty(t, registry.Missing())
}
