package factory

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/msgcrypt"
	"github.com/opd-ai/msgcrypt/blobstore"
	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/gateway"
	"github.com/opd-ai/msgcrypt/interfaces"
)

// Environment variables read by NewTransportFactory.
const (
	EnvMode    = "MSGCRYPT_MODE"
	EnvBaseURL = "MSGCRYPT_BASE_URL"
	EnvFrom    = "MSGCRYPT_FROM"
	EnvSecret  = "MSGCRYPT_SECRET"
	EnvTimeout = "MSGCRYPT_TIMEOUT"
)

// DefaultTimeout is the request timeout when none is configured.
const DefaultTimeout = 10 * time.Second

// ErrUnsupportedMode indicates a collaborator that the configured mode
// cannot provide.
var ErrUnsupportedMode = fmt.Errorf("%w: collaborator not available in this mode", interfaces.ErrInvalidMode)

// TransportFactory creates collaborator implementations based on
// configuration. It is safe for concurrent use.
type TransportFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.TransportConfig
	// memory backs every memory mode blob transport of this factory, so an
	// upload through one transport can be downloaded through another
	memory *blobstore.MemoryStore
}

// NewTransportFactory creates a factory with default configuration and
// MSGCRYPT_* environment overrides applied.
func NewTransportFactory() *TransportFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &TransportFactory{
		defaultConfig: defaultConfig,
		memory:        blobstore.NewMemoryStore(),
	}
}

// NewTransportFactoryWithConfig creates a factory for config without reading
// the environment. The configuration is validated when a collaborator is
// created, so an incomplete gateway configuration is accepted here.
func NewTransportFactoryWithConfig(config *interfaces.TransportConfig) *TransportFactory {
	if config == nil {
		config = createDefaultConfig()
	}
	copied := *config
	logConfigurationInfo(&copied)

	return &TransportFactory{
		defaultConfig: &copied,
		memory:        blobstore.NewMemoryStore(),
	}
}

// createDefaultConfig returns gateway mode against the public gateway. The
// API identity and secret have no defaults.
func createDefaultConfig() *interfaces.TransportConfig {
	return &interfaces.TransportConfig{
		Mode:    interfaces.ModeGateway,
		BaseURL: gateway.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

func applyEnvironmentOverrides(config *interfaces.TransportConfig) {
	parseModeSetting(config)
	parseTimeoutSetting(config)
	if v := os.Getenv(EnvBaseURL); v != "" {
		config.BaseURL = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		config.Secret = v
	}
	parseFromSetting(config)
}

func parseModeSetting(config *interfaces.TransportConfig) {
	modeStr := os.Getenv(EnvMode)
	if modeStr == "" {
		return
	}
	mode := interfaces.TransportMode(modeStr)
	if mode != interfaces.ModeGateway && mode != interfaces.ModeMemory {
		logrus.WithFields(logrus.Fields{
			"function":    "parseModeSetting",
			"env_var":     EnvMode,
			"value":       modeStr,
			"using_value": config.Mode,
		}).Warn("Unknown MSGCRYPT_MODE value, using default")
		return
	}
	config.Mode = mode
}

// parseTimeoutSetting reads MSGCRYPT_TIMEOUT as integer milliseconds within
// [MinTimeout, MaxTimeout].
func parseTimeoutSetting(config *interfaces.TransportConfig) {
	timeoutStr := os.Getenv(EnvTimeout)
	if timeoutStr == "" {
		return
	}
	ms, err := strconv.Atoi(timeoutStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseTimeoutSetting",
			"env_var":     EnvTimeout,
			"value":       timeoutStr,
			"error":       err.Error(),
			"using_value": config.Timeout,
		}).Warn("Failed to parse MSGCRYPT_TIMEOUT environment variable, using default")
		return
	}
	timeout := time.Duration(ms) * time.Millisecond
	if timeout < interfaces.MinTimeout || timeout > interfaces.MaxTimeout {
		logrus.WithFields(logrus.Fields{
			"function":    "parseTimeoutSetting",
			"env_var":     EnvTimeout,
			"value":       ms,
			"min":         interfaces.MinTimeout,
			"max":         interfaces.MaxTimeout,
			"using_value": config.Timeout,
		}).Warn("MSGCRYPT_TIMEOUT value out of bounds, using default")
		return
	}
	config.Timeout = timeout
}

func parseFromSetting(config *interfaces.TransportConfig) {
	fromStr := os.Getenv(EnvFrom)
	if fromStr == "" {
		return
	}
	id, err := crypto.ParseIdentity(fromStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "parseFromSetting",
			"env_var":  EnvFrom,
			"value":    fromStr,
			"error":    err.Error(),
		}).Warn("Invalid MSGCRYPT_FROM identity, ignoring")
		return
	}
	config.From = id
}

func logConfigurationInfo(config *interfaces.TransportConfig) {
	logrus.WithFields(logrus.Fields{
		"function":   "NewTransportFactory",
		"mode":       config.Mode,
		"base_url":   config.BaseURL,
		"from":       config.From,
		"has_secret": config.Secret != "",
		"timeout":    config.Timeout,
	}).Info("Created transport factory with configuration")
}

func (f *TransportFactory) config() interfaces.TransportConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return *f.defaultConfig
}

// CreateGatewayClient creates a gateway client from the current
// configuration. It fails outside gateway mode.
func (f *TransportFactory) CreateGatewayClient() (*gateway.Client, error) {
	config := f.config()
	if config.Mode != interfaces.ModeGateway {
		return nil, fmt.Errorf("%w: gateway client in %s mode", ErrUnsupportedMode, config.Mode)
	}
	return gateway.NewClient(config, nil)
}

// CreateBlobTransport creates the blob transport for the configured mode.
func (f *TransportFactory) CreateBlobTransport() (interfaces.IBlobTransport, error) {
	config := f.config()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateBlobTransport",
		"mode":     config.Mode,
	}).Info("Creating blob transport")

	if config.Mode == interfaces.ModeMemory {
		return blobstore.NewLocalTransport(f.memory), nil
	}
	gw, err := gateway.NewClient(config, nil)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// CreateSender creates the message sender. Only gateway mode can send.
func (f *TransportFactory) CreateSender() (interfaces.IMessageSender, error) {
	gw, err := f.CreateGatewayClient()
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// CreateDirectory creates the public key directory. Only gateway mode has one.
func (f *TransportFactory) CreateDirectory() (interfaces.IDirectory, error) {
	gw, err := f.CreateGatewayClient()
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// CreateClient builds a msgcrypt client wired with every collaborator the
// configured mode provides. In memory mode only the blob transport is set.
func (f *TransportFactory) CreateClient() (*msgcrypt.Client, error) {
	config := f.config()
	options := msgcrypt.NewOptions()

	blobs, err := f.CreateBlobTransport()
	if err != nil {
		return nil, err
	}
	options.Blobs = blobs

	if config.Mode == interfaces.ModeGateway {
		gw, err := f.CreateGatewayClient()
		if err != nil {
			return nil, err
		}
		options.From = config.From
		options.Sender = gw
		options.Directory = gw
	}

	return msgcrypt.New(options)
}

// CreateMemoryForTesting returns a blob transport over a fresh store that is
// not shared with the factory.
func (f *TransportFactory) CreateMemoryForTesting() *blobstore.LocalTransport {
	logrus.WithFields(logrus.Fields{
		"function": "CreateMemoryForTesting",
	}).Debug("Creating isolated memory blob transport for testing")
	return blobstore.NewLocalTransport(blobstore.NewMemoryStore())
}

// SwitchMode changes the mode of the default configuration.
func (f *TransportFactory) SwitchMode(mode interfaces.TransportMode) error {
	if mode != interfaces.ModeGateway && mode != interfaces.ModeMemory {
		return fmt.Errorf("%w: %q", interfaces.ErrInvalidMode, mode)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchMode",
		"previous": f.defaultConfig.Mode,
		"current":  mode,
	}).Info("Switching factory mode")

	f.defaultConfig.Mode = mode
	return nil
}

// GetCurrentConfig returns a copy of the current default configuration.
func (f *TransportFactory) GetCurrentConfig() *interfaces.TransportConfig {
	config := f.config()
	return &config
}

// UpdateConfig replaces the default configuration after validating it.
func (f *TransportFactory) UpdateConfig(config *interfaces.TransportConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "UpdateConfig",
		"old_mode":    f.defaultConfig.Mode,
		"new_mode":    config.Mode,
		"old_timeout": f.defaultConfig.Timeout,
		"new_timeout": config.Timeout,
	}).Info("Updating factory configuration")

	copied := *config
	f.defaultConfig = &copied
	return nil
}
