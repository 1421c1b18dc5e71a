package telemetry

// ProvisioningServiceConfig is the telemetry configuration for the provisioning service
var ProvisioningServiceConfig = Config{
	ServiceName:    "provisioning-service",
	ServiceVersion: "1.0.0",
}

// NewConfigForService creates a new telemetry config for a custom service
func NewConfigForService(serviceName, version, otlpEndpoint string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		OTLPEndpoint:   otlpEndpoint,
	}
}

// WithOTLPEndpoint sets the OTLP endpoint for a config
func (c Config) WithOTLPEndpoint(endpoint string) Config {
	c.OTLPEndpoint = endpoint
	return c
}

// WithEnvironment sets the deployment environment for a config
func (c Config) WithEnvironment(env string) Config {
	c.Environment = env
	return c
}
