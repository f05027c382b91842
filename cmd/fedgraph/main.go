package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hanpama/fedgraph/internal/eventbus"
	"github.com/hanpama/fedgraph/internal/introspection"
	"github.com/hanpama/fedgraph/internal/otel"
	"github.com/hanpama/fedgraph/internal/products"
	"github.com/hanpama/fedgraph/internal/server"
)

const rootUsage = `fedgraph: Apollo Federation compatible GraphQL subgraph

USAGE:
  fedgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP subgraph server
  print-sdl        Print the subgraph SDL served by _service { sdl }
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -graphql.introspection <bool>   Enable GraphQL introspection (default: true)
  -server.addr <addr>             HTTP listen address (default: :8080)
  -server.pretty                  Pretty-print JSON responses
  -server.timeout <duration>      Per-request timeout, e.g. 10s (default: 10s)
  -server.cors-origin <origin>    Allow CORS from origin. Repeatable
  -server.metadata-header <name>  Forward HTTP header to gRPC metadata. Repeatable
  -server.graphiql <bool>         Serve the GraphiQL IDE on GET (default: true)
  -log.dev                        Human-readable development logging
  -otel.endpoint <addr>           OTLP collector endpoint
  -otel.service <name>            OpenTelemetry service name (default: fedgraph)
`

const printSDLUsage = `print-sdl FLAGS:
  -out <file>   Write the SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("fedgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "print-sdl":
		return cmdPrintSDL(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "print-sdl":
		fmt.Print(printSDLUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdServe(args []string) error {
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	enableIntrospection := true
	graphiql := true
	devLog := false
	otelEndpoint := ""
	otelService := "fedgraph"
	var corsOrigins stringListFlag
	var metadataHeaders stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.BoolVar(&enableIntrospection, "graphql.introspection", enableIntrospection, "Enable GraphQL introspection")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Var(&corsOrigins, "server.cors-origin", "Allow CORS from origin")
	fs.Var(&metadataHeaders, "server.metadata-header", "Forward HTTP header to gRPC metadata")
	fs.BoolVar(&graphiql, "server.graphiql", graphiql, "Serve the GraphiQL IDE on GET")
	fs.BoolVar(&devLog, "log.dev", devLog, "Human-readable development logging")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	logger, err := newLogger(devLog)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	sg, err := products.New(products.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("subgraph init: %w", err)
	}
	runtime, sch := sg.Runtime, sg.Schema

	if enableIntrospection {
		wrapper := introspection.Wrap(runtime, sch)
		runtime = wrapper.Runtime
		sch = wrapper.Schema
	}

	sopts := []server.Option{server.WithGraphiQL(graphiql)}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	if len(metadataHeaders) > 0 {
		sopts = append(sopts, server.WithMetadataHeaders(metadataHeaders...))
	}
	h, err := server.New(runtime, sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	logger.Info("subgraph listening", zap.String("addr", addr), zap.Strings("entities", sg.Registry.Types()))
	return http.ListenAndServe(addr, mux)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func cmdPrintSDL(args []string) error {
	outFile := ""
	fs := flag.NewFlagSet("print-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write the SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, printSDLUsage)
		return err
	}
	if outFile == "" {
		fmt.Print(products.SDL)
		return nil
	}
	return os.WriteFile(outFile, []byte(products.SDL), 0644)
}
