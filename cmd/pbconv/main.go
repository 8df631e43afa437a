package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/pbconv"
	"github.com/wippyai/pbconv/dynamic"
	"github.com/wippyai/pbconv/schema"
	"github.com/wippyai/pbconv/stream"
	"github.com/wippyai/pbconv/wire"
)

type config struct {
	schemaFile  string
	message     string
	decodeFile  string
	encodeFile  string
	outFile     string
	maxSize     int
	interactive bool
	verbose     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.schemaFile, "schema", "", "Path to YAML schema file")
	flag.StringVar(&cfg.message, "message", "", "Message type (optional when the schema has one message)")
	flag.StringVar(&cfg.decodeFile, "decode", "", "Binary message to decode (- for stdin)")
	flag.StringVar(&cfg.encodeFile, "encode", "", "JSON record to encode (- for stdin)")
	flag.StringVar(&cfg.outFile, "out", "", "Output file (default stdout)")
	flag.IntVar(&cfg.maxSize, "max-size", stream.DefaultMaxSize, "Maximum encoded size in bytes (0 for unbounded)")
	flag.BoolVar(&cfg.interactive, "i", false, "Browse the decoded record in a TUI")
	flag.BoolVar(&cfg.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if cfg.schemaFile == "" || (cfg.decodeFile == "") == (cfg.encodeFile == "") {
		fmt.Fprintln(os.Stderr, "Usage: pbconv -schema <file.yaml> [-message M] -decode <in.bin> [-i]")
		fmt.Fprintln(os.Stderr, "       pbconv -schema <file.yaml> [-message M] -encode <in.json> [-out out.bin]")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, newPrinter(os.Stderr).failure(err))
		os.Exit(1)
	}
}

func run(cfg config) error {
	logger := zap.NewNop()
	if cfg.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = l.Sync() }()
		logger = l
	}
	pbconv.SetLogger(logger)

	set, err := schema.Load(cfg.schemaFile)
	if err != nil {
		return err
	}
	desc, err := pickMessage(set, cfg.message)
	if err != nil {
		return err
	}
	logger.Debug("schema loaded",
		zap.String("file", cfg.schemaFile),
		zap.Strings("messages", set.Messages()),
		zap.String("using", desc.Name))

	opts := []pbconv.Option{pbconv.WithMaxSize(cfg.maxSize), pbconv.WithLogger(logger)}
	if cfg.decodeFile != "" {
		return runDecode(cfg, desc, opts)
	}
	return runEncode(cfg, desc, opts)
}

func pickMessage(set *schema.Set, name string) (*wire.MessageDescriptor, error) {
	if name == "" {
		names := set.Messages()
		if len(names) != 1 {
			return nil, fmt.Errorf("schema declares %d messages, choose one with -message", len(names))
		}
		name = names[0]
	}
	return set.Message(name)
}

func runDecode(cfg config, desc *wire.MessageDescriptor, opts []pbconv.Option) error {
	data, err := readInput(cfg.decodeFile)
	if err != nil {
		return err
	}
	rec := dynamic.NewRecord()
	if err := pbconv.Unmarshal(data, dynamic.Converter(desc), rec, opts...); err != nil {
		return err
	}

	if cfg.interactive {
		return runInteractive(desc, rec, len(data))
	}

	out, err := dynamic.ToJSON(rec, true)
	if err != nil {
		return err
	}
	return writeOutput(cfg.outFile, append(out, '\n'), func(p *printer) string {
		return p.title(desc.Name) + " " + p.dim(fmt.Sprintf("%d bytes, %d fields", len(data), rec.Len()))
	})
}

func runEncode(cfg config, desc *wire.MessageDescriptor, opts []pbconv.Option) error {
	data, err := readInput(cfg.encodeFile)
	if err != nil {
		return err
	}
	rec, err := dynamic.FromJSON(data, desc)
	if err != nil {
		return err
	}
	out, err := pbconv.Marshal(dynamic.Converter(desc), rec, opts...)
	if err != nil {
		return err
	}

	// raw bytes would garble a terminal
	if cfg.outFile == "" && isTerminal(os.Stdout) {
		out = []byte(hex.Dump(out))
	}
	return writeOutput(cfg.outFile, out, func(p *printer) string {
		return p.title(desc.Name) + " " + p.dim(fmt.Sprintf("%d bytes", len(out)))
	})
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// writeOutput writes data to name, or to stdout with a header line when
// stdout is a terminal.
func writeOutput(name string, data []byte, header func(*printer) string) error {
	if name != "" {
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		return nil
	}
	if isTerminal(os.Stdout) {
		fmt.Fprintln(os.Stderr, header(newPrinter(os.Stderr)))
	}
	_, err := os.Stdout.Write(data)
	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// printer styles short status lines, falling back to plain text when the
// target is not a terminal.
type printer struct {
	color bool
}

func newPrinter(f *os.File) *printer {
	return &printer{color: isTerminal(f)}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) title(text string) string { return p.render(titleStyle, text) }
func (p *printer) dim(text string) string { return p.render(helpStyle, text) }

func (p *printer) failure(err error) string {
	return p.render(errorStyle, fmt.Sprintf("Error: %v", err))
}
