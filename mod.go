// Package itx implements a client-side pipeline to build, resolve, sign and
// submit transactions.
//
// A transaction starts as a partially specified interaction that is completed
// by a sequence of builders and asynchronous resolvers, signed by the signing
// capabilities attached to its accounts, checked by validators and finally
// handed over to the transport.
package itx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.WarnLevel)
