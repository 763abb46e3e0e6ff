package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	faucet "github.com/TheAlpha16/faucet-go"
)

// Config is the faucetctl configuration.
type Config struct {
	Transport  TransportConfig  `mapstructure:"transport"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Faucet     FaucetConfig     `mapstructure:"faucet"`
	Log        LogConfig        `mapstructure:"log"`
}

// TransportConfig selects the transport: "valkey" or "nats".
type TransportConfig struct {
	Kind string `mapstructure:"kind"`
}

type ValkeyConfig struct {
	Address string `mapstructure:"address"`
	Channel string `mapstructure:"channel"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type DispatcherConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// FaucetConfig holds the accounts serve executes instructions against.
// Keys are hex encoded; an empty signer means unsigned requests.
type FaucetConfig struct {
	Destination string `mapstructure:"destination"`
	Signer      string `mapstructure:"signer"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from file and env.
func LoadConfig(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("transport.kind", "valkey")
	v.SetDefault("valkey.address", "localhost:6379")
	v.SetDefault("valkey.channel", "faucet-instructions")
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.subject", "faucet.instructions")
	v.SetDefault("dispatcher.buffer_size", 100)
	v.SetDefault("faucet.destination", "")
	v.SetDefault("faucet.signer", "")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("faucet")
		v.AddConfigPath("/etc/faucet")
		v.AddConfigPath("$HOME/.config/faucet")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FAUCET")
	v.AutomaticEnv()
	v.BindEnv("transport.kind", "FAUCET_TRANSPORT")
	v.BindEnv("faucet.signer", "FAUCET_SIGNER")
	v.BindEnv("faucet.destination", "FAUCET_DESTINATION")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional unless named explicitly.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Accounts resolves the configured faucet accounts.
func (c FaucetConfig) Accounts() (faucet.Accounts, error) {
	var accts faucet.Accounts
	if c.Destination == "" {
		return accts, fmt.Errorf("faucet.destination is required")
	}
	dest, err := faucet.ParsePublicKey(c.Destination)
	if err != nil {
		return accts, fmt.Errorf("faucet.destination: %w", err)
	}
	accts.Destination = dest

	if c.Signer != "" {
		signer, err := faucet.ParsePublicKey(c.Signer)
		if err != nil {
			return accts, fmt.Errorf("faucet.signer: %w", err)
		}
		accts.Signer = faucet.SomeKey(signer)
	}
	return accts, nil
}

// newTransport builds the configured transport.
func newTransport(cfg Config, opts ...faucet.Option) (faucet.Transport, error) {
	switch cfg.Transport.Kind {
	case "valkey":
		client, err := faucet.NewValkeyClient(cfg.Valkey.Address)
		if err != nil {
			return nil, fmt.Errorf("valkey connect: %w", err)
		}
		return faucet.NewValkeyTransport(client, cfg.Valkey.Channel, opts...), nil
	case "nats":
		return faucet.NewNATSTransportURL(cfg.NATS.URL, cfg.NATS.Subject, opts...)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport.Kind)
	}
}
