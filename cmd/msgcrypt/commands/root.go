package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/msgcrypt/crypto"
	"github.com/opd-ai/msgcrypt/factory"
	"github.com/opd-ai/msgcrypt/interfaces"
)

// EnvLogLevel sets the default log level.
const EnvLogLevel = "MSGCRYPT_LOG_LEVEL"

// EnvPrivateKey supplies the private key when --key is not given.
const EnvPrivateKey = "MSGCRYPT_PRIVATE_KEY"

// EnvHome is the key store directory; the default is ~/.msgcrypt.
const EnvHome = "MSGCRYPT_HOME"

// EnvPassphrase unlocks the key store.
const EnvPassphrase = "MSGCRYPT_PASSPHRASE"

// app is the state shared by all subcommands of one invocation.
type app struct {
	logLevel string
	mode     string
	baseURL  string
	from     string
	secret   string
	timeout  time.Duration
	home     string

	factory *factory.TransportFactory
}

// Execute runs the command line tool with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the msgcrypt command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "msgcrypt",
		Short:         "End-to-end encrypted gateway messaging",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	defaultLevel := os.Getenv(EnvLogLevel)
	if defaultLevel == "" {
		defaultLevel = "warn"
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", defaultLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&a.mode, "mode", "", "transport mode: gateway or memory (default from MSGCRYPT_MODE)")
	flags.StringVar(&a.baseURL, "base-url", "", "gateway API root (default from MSGCRYPT_BASE_URL)")
	flags.StringVar(&a.from, "from", "", "API identity (default from MSGCRYPT_FROM)")
	flags.StringVar(&a.secret, "secret", "", "API secret (default from MSGCRYPT_SECRET)")
	flags.DurationVar(&a.timeout, "timeout", 0, "request timeout (default from MSGCRYPT_TIMEOUT)")
	flags.StringVar(&a.home, "home", os.Getenv(EnvHome), "key store directory (default ~/.msgcrypt)")

	root.AddCommand(
		keygenCmd(a),
		deriveCmd(),
		encryptCmd(a),
		decryptCmd(a),
		sendCmd(a),
		sendSimpleCmd(a),
		lookupCmd(a),
		creditsCmd(a),
		blobCmd(a),
	)
	return root
}

// setup applies the log level and builds the transport factory with flag
// overrides on top of the environment configuration.
func (a *app) setup(cmd *cobra.Command) error {
	level, err := logrus.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(cmd.ErrOrStderr())

	config := factory.NewTransportFactory().GetCurrentConfig()
	if a.mode != "" {
		config.Mode = interfaces.TransportMode(a.mode)
	}
	if a.baseURL != "" {
		config.BaseURL = a.baseURL
	}
	if a.from != "" {
		id, err := crypto.ParseIdentity(a.from)
		if err != nil {
			return err
		}
		config.From = id
	}
	if a.secret != "" {
		config.Secret = a.secret
	}
	if a.timeout != 0 {
		config.Timeout = a.timeout
	}

	// Offline commands run without credentials; the rest fail when they
	// create a collaborator.
	a.factory = factory.NewTransportFactoryWithConfig(config)
	return nil
}

// keyStore opens the key store with the passphrase from MSGCRYPT_PASSPHRASE.
func (a *app) keyStore() (*crypto.KeyStore, error) {
	dir := a.home
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".msgcrypt")
	}
	passphrase := os.Getenv(EnvPassphrase)
	if passphrase == "" {
		return nil, fmt.Errorf("key store needs a passphrase in %s", EnvPassphrase)
	}
	return crypto.NewKeyStore(dir, []byte(passphrase))
}

// keyFlags selects the private key of a command.
type keyFlags struct {
	hex  string
	name string
}

func (k *keyFlags) register(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&k.hex, "key", "", usage+" private key hex")
	cmd.Flags().StringVar(&k.name, "key-name", "", "load the "+usage+" key from the key store")
}

// keyPair loads the key named by --key-name, or parses --key, or falls back
// to MSGCRYPT_PRIVATE_KEY.
func (a *app) keyPair(k keyFlags) (*crypto.KeyPair, error) {
	if k.name == "" {
		return privateKey(k.hex)
	}
	if k.hex != "" {
		return nil, fmt.Errorf("--key and --key-name are mutually exclusive")
	}
	ks, err := a.keyStore()
	if err != nil {
		return nil, err
	}
	defer ks.Close()
	return ks.Load(k.name)
}

// privateKey reads the private key from --key or MSGCRYPT_PRIVATE_KEY.
func privateKey(flag string) (*crypto.KeyPair, error) {
	if flag == "" {
		flag = os.Getenv(EnvPrivateKey)
	}
	if flag == "" {
		return nil, fmt.Errorf("private key required (--key or %s)", EnvPrivateKey)
	}
	sk, err := crypto.PrivateKeyFromHex(strings.TrimSpace(flag))
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(sk[:])
	return crypto.KeyPairFromPrivate(sk[:])
}
