package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	faucet "github.com/TheAlpha16/faucet-go"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Create a dispatcher with a Valkey transport
	dispatcher, err := faucet.NewDispatcherWithValkeyAddress("localhost:6379", "faucet-instructions",
		faucet.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create dispatcher")
	}
	defer dispatcher.Shutdown()

	var admin faucet.PublicKey
	copy(admin[:], "quick-start-admin-key-0123456789")
	var dest faucet.PublicKey
	copy(dest[:], "quick-start-destination-account!")

	// An in-memory faucet handles every instruction kind
	f := faucet.NewFaucet()
	if err := f.Register(dispatcher, faucet.Accounts{Destination: dest}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register faucet")
	}

	ctx := context.Background()
	if err := dispatcher.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start dispatcher")
	}

	fmt.Println("Dispatcher started! Transport is now listening for instructions...")

	time.Sleep(1 * time.Second)

	instructions := []faucet.Instruction{
		faucet.InitFaucet{Admin: faucet.SomeKey(admin), Amount: 1000},
		faucet.MintTokens{Amount: 900},
		faucet.MintTokens{Amount: 5000}, // over the limit, rejected
	}
	for _, ix := range instructions {
		fmt.Printf("Submitting %s: % x\n", ix.Kind(), faucet.Pack(ix))
		if err := dispatcher.Submit(ctx, ix); err != nil {
			logger.Error().Err(err).Stringer("kind", ix.Kind()).Msg("Failed to submit instruction")
		}
		time.Sleep(200 * time.Millisecond)
	}

	time.Sleep(1 * time.Second)
	fmt.Printf("Destination balance: %d\n", f.Balance(dest))
}
