// itx is a command-line tool to build, resolve and send a transaction signed
// with an ephemeral key. It is mainly useful to exercise a node endpoint.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/itx/access"
	"go.dedis.ch/itx/build"
	"go.dedis.ch/itx/crypto/ed25519"
	"go.dedis.ch/itx/interaction"
	"go.dedis.ch/itx/pipeline"
	"golang.org/x/xerrors"
)

func main() {
	err := run(os.Args, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	app := &urfave.App{
		Name:   "itx",
		Usage:  "build, resolve and send transactions",
		Writer: out,
		Commands: []*urfave.Command{
			{
				Name:  "send",
				Usage: "send a scripted transaction",
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:  "config",
						Usage: "path to the YAML configuration",
					},
					&urfave.StringFlag{
						Name:  "endpoint",
						Usage: "node endpoint, overrides the configuration",
					},
					&urfave.StringFlag{
						Name:     "script",
						Required: true,
						Usage:    "path to the script file",
					},
					&urfave.StringFlag{
						Name:     "address",
						Required: true,
						Usage:    "address of the signing account",
					},
					&urfave.Uint64Flag{
						Name:  "key-id",
						Usage: "key identifier of the signing account",
					},
					&urfave.Uint64Flag{
						Name:  "limit",
						Value: 100,
						Usage: "compute limit of the transaction",
					},
					&urfave.StringSliceFlag{
						Name:  "arg",
						Usage: "argument declared as name:type:value",
					},
				},
				Action: sendAction,
			},
		},
	}

	return app.Run(args)
}

func sendAction(c *urfave.Context) error {
	cfg := pipeline.Config{}

	if path := c.String("config"); path != "" {
		var err error

		cfg, err = pipeline.LoadConfig(path)
		if err != nil {
			return xerrors.Errorf("couldn't load config: %v", err)
		}
	}

	if endpoint := c.String("endpoint"); endpoint != "" {
		cfg.Endpoint = endpoint
	}

	if cfg.Endpoint == "" {
		return xerrors.New("no endpoint configured")
	}

	script, err := os.ReadFile(c.String("script"))
	if err != nil {
		return xerrors.Errorf("couldn't read script: %v", err)
	}

	// The ephemeral key fills the three roles, so the same capability signs
	// both the payload and the envelope.
	authz := access.NewAuthorization(c.String("address"), c.Uint64("key-id"), ed25519.NewSigner())

	builders := []build.Builder{
		build.Script(string(script)),
		build.ComputeLimit(c.Uint64("limit")),
		build.Proposer(authz),
		build.Payer(authz),
		build.Authorizer(authz),
	}

	for _, raw := range c.StringSlice("arg") {
		builder, err := parseArg(raw)
		if err != nil {
			return err
		}

		builders = append(builders, builder)
	}

	result, err := pipeline.New(cfg).Run(context.Background(), builders)
	if err != nil {
		return xerrors.Errorf("couldn't run pipeline: %v", err)
	}

	fmt.Fprintf(c.App.Writer, "transaction %x sent\n", result.TxID)
	fmt.Fprintln(c.App.Writer, string(result.Response))

	return nil
}

func parseArg(raw string) (build.Builder, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return nil, xerrors.Errorf("malformed argument '%s': expected name:type:value", raw)
	}

	name := parts[0]
	tag := interaction.TypeTag(parts[1])

	value, err := parseValue(tag, parts[2])
	if err != nil {
		return nil, xerrors.Errorf("malformed argument '%s': %v", raw, err)
	}

	return build.Arg(name, tag, value), nil
}

func parseValue(tag interaction.TypeTag, raw string) (interface{}, error) {
	switch tag {
	case interaction.TypeBool:
		return strconv.ParseBool(raw)
	case interaction.TypeInt:
		return strconv.ParseInt(raw, 10, 64)
	case interaction.TypeUInt:
		return strconv.ParseUint(raw, 10, 64)
	case interaction.TypeBytes:
		return hex.DecodeString(raw)
	default:
		return raw, nil
	}
}
