package pbconv

import (
	"go.uber.org/zap"

	"github.com/wippyai/pbconv/converter"
	"github.com/wippyai/pbconv/stream"
	"github.com/wippyai/pbconv/wire"
)

// Options configures a single Marshal or Unmarshal call.
type Options struct {
	// Logger receives one debug entry when the call fails and nothing
	// otherwise. Converter and codec diagnostics go to SetLogger.
	Logger *zap.Logger
	// MaxSize bounds the encoded output; zero or less means unbounded.
	MaxSize int
}

// DefaultOptions returns the default call configuration.
func DefaultOptions() Options {
	return Options{
		MaxSize: stream.DefaultMaxSize,
		Logger:  zap.NewNop(),
	}
}

// Option adjusts Options.
type Option func(*Options)

// WithMaxSize bounds the encoded output to n bytes.
func WithMaxSize(n int) Option {
	return func(o *Options) { o.MaxSize = n }
}

// WithLogger sets the logger that records the call's failure, if any.
// It is not handed to the converters or the codec; use SetLogger to see
// their diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Marshal encodes local with the converter m and returns the wire bytes.
func Marshal[L, P any](m converter.Message[L, P], local *L, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	w := stream.NewWriter(o.MaxSize)
	if err := converter.Encode(w, m, local); err != nil {
		o.Logger.Debug("marshal failed", zap.String("message", messageName(m.Descriptor)), zap.Error(err))
		return nil, err
	}
	return w.Release(), nil
}

// Unmarshal decodes data into local with the converter m. On failure
// local may be partially populated and should be discarded.
func Unmarshal[L, P any](data []byte, m converter.Message[L, P], local *L, opts ...Option) error {
	o := buildOptions(opts)
	if err := converter.Decode(stream.NewReader(data), m, local); err != nil {
		o.Logger.Debug("unmarshal failed",
			zap.String("message", messageName(m.Descriptor)),
			zap.Int("size", len(data)),
			zap.Error(err))
		return err
	}
	return nil
}

// SetLogger routes the converter and codec package loggers to l.
func SetLogger(l *zap.Logger) {
	converter.SetLogger(l)
	wire.SetLogger(l)
}

func messageName(d *wire.MessageDescriptor) string {
	if d == nil {
		return ""
	}
	return d.Name
}
