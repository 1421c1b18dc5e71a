package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		logDebug  bool
		wantLines int
		wantKeys  map[string]string
	}{
		{
			name:      "context fields are stamped",
			cfg:       Config{ServiceName: "provisioning-service", Environment: "test", InstanceID: "node-1", Level: "info"},
			wantLines: 1,
			wantKeys:  map[string]string{"service": "provisioning-service", "env": "test", "instance_id": "node-1"},
		},
		{
			name:      "invalid level falls back to info",
			cfg:       Config{Level: "loud"},
			logDebug:  true,
			wantLines: 1,
		},
		{
			name:      "debug level lets debug through",
			cfg:       Config{Level: "debug"},
			logDebug:  true,
			wantLines: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.cfg)

			if tt.logDebug {
				logger.Debug().Msg("debug")
			}
			logger.Info().Msg("info")

			lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
			assert.Len(t, lines, tt.wantLines)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
			assert.Equal(t, "info", entry["message"])
			for k, v := range tt.wantKeys {
				assert.Equal(t, v, entry[k])
			}
			if tt.cfg.ServiceName == "" {
				assert.NotContains(t, entry, "service")
			}
		})
	}
}
