package interfaces

import (
	"errors"
	"testing"
	"time"
)

func TestTransportConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  TransportConfig
		wantErr error
	}{
		{
			name:    "memory mode",
			config:  TransportConfig{Mode: ModeMemory, Timeout: 5 * time.Second},
			wantErr: nil,
		},
		{
			name: "gateway mode",
			config: TransportConfig{
				Mode:    ModeGateway,
				BaseURL: "https://msgapi.example.com",
				From:    "*TESTGW1",
				Secret:  "s3cret",
				Timeout: 5 * time.Second,
			},
			wantErr: nil,
		},
		{
			name:    "gateway without url",
			config:  TransportConfig{Mode: ModeGateway, From: "*TESTGW1", Secret: "x", Timeout: time.Second},
			wantErr: ErrMissingEndpoint,
		},
		{
			name:    "gateway without secret",
			config:  TransportConfig{Mode: ModeGateway, BaseURL: "http://x", From: "*TESTGW1", Timeout: time.Second},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "gateway with bad identity",
			config:  TransportConfig{Mode: ModeGateway, BaseURL: "http://x", From: "bad", Secret: "x", Timeout: time.Second},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "timeout too small",
			config:  TransportConfig{Mode: ModeMemory, Timeout: time.Millisecond},
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "timeout too large",
			config:  TransportConfig{Mode: ModeMemory, Timeout: time.Hour},
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "unknown mode",
			config:  TransportConfig{Mode: "carrier-pigeon", Timeout: time.Second},
			wantErr: ErrInvalidMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
