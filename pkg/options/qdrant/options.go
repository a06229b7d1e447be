// Package qdrantopts provides options for Qdrant client configuration.
package qdrantopts

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/ISHANT57/Gita-Chatbot/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Qdrant client configuration.
type Options struct {
	// Host is the Qdrant server host.
	Host string `json:"host" mapstructure:"host"`

	// Port is the Qdrant gRPC port.
	Port int `json:"port" mapstructure:"port"`

	// APIKey for Qdrant Cloud authentication (optional for local instances).
	APIKey string `json:"-" mapstructure:"api-key"`

	// UseTLS enables TLS for the connection (required by Qdrant Cloud).
	UseTLS bool `json:"use-tls" mapstructure:"use-tls"`

	// Timeout for connection and operations.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Host:    "localhost",
		Port:    6334,
		Timeout: 30 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Host, options.Join(prefixes...)+"qdrant.host", o.Host, "Qdrant server host.")
	fs.IntVar(&o.Port, options.Join(prefixes...)+"qdrant.port", o.Port, "Qdrant gRPC port.")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"qdrant.api-key", o.APIKey, "Qdrant API key (DEPRECATED: use QDRANT_API_KEY env var instead).")
	fs.BoolVar(&o.UseTLS, options.Join(prefixes...)+"qdrant.use-tls", o.UseTLS, "Use TLS for the Qdrant connection.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"qdrant.timeout", o.Timeout, "Connection and operation timeout.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("qdrant host is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("qdrant port must be in (0, 65535]"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("qdrant timeout must be positive"))
	}
	return errs
}

// Complete completes the options with defaults and environment values.
func (o *Options) Complete() error {
	if o.APIKey == "" {
		o.APIKey = os.Getenv("QDRANT_API_KEY")
	}
	return nil
}
