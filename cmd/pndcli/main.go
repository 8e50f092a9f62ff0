// pndcli is a small inspection tool for pool singleton chain data: it
// decodes pool state encodings, recovers membership state from serialized
// spends, and derives pay-to-singleton reward addresses.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	"github.com/urfave/cli"

	"github.com/poolnetwork/pnd/build"
	"github.com/poolnetwork/pnd/pool"
	"github.com/poolnetwork/pnd/puzzles"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[pndcli] %v\n", err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%s\n", out)
}

// parseHash decodes a 32-byte hex string without any byte-order reversal.
func parseHash(s string) (chainhash.Hash, error) {
	var h chainhash.Hash

	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != chainhash.HashSize {
		return h, fmt.Errorf("expected %d bytes, got %d",
			chainhash.HashSize, len(b))
	}

	copy(h[:], b)

	return h, nil
}

type poolStateResp struct {
	State              string `json:"state"`
	TargetPuzzleHash   string `json:"target_puzzle_hash"`
	OwnerPubKey        string `json:"owner_pubkey"`
	PoolURL            string `json:"pool_url,omitempty"`
	RelativeLockHeight uint32 `json:"relative_lock_height"`
	Version            uint8  `json:"version"`
}

func marshalPoolState(ps *pool.PoolState) *poolStateResp {
	return &poolStateResp{
		State:            ps.State.String(),
		TargetPuzzleHash: hex.EncodeToString(ps.TargetPuzzleHash[:]),
		OwnerPubKey: hex.EncodeToString(
			ps.OwnerPubKey.SerializeCompressed(),
		),
		PoolURL:            ps.PoolURL,
		RelativeLockHeight: ps.RelativeLockHeight,
		Version:            ps.Version,
	}
}

var decodeStateCommand = cli.Command{
	Name:      "decodestate",
	Usage:     "Decode a hex encoded pool state.",
	ArgsUsage: "state_hex",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.ShowCommandHelp(ctx, "decodestate")
		}

		blob, err := hex.DecodeString(ctx.Args().First())
		if err != nil {
			return err
		}

		ps, err := pool.DeserializePoolState(blob)
		if err != nil {
			return err
		}

		printJSON(marshalPoolState(ps))

		return nil
	},
}

var recoverStateCommand = cli.Command{
	Name: "recoverstate",
	Usage: "Recover the pool state a serialized spend commits, " +
		"if any.",
	ArgsUsage: "spend_hex",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.ShowCommandHelp(ctx, "recoverstate")
		}

		blob, err := hex.DecodeString(ctx.Args().First())
		if err != nil {
			return err
		}

		spend, err := pool.DeserializeSpend(blob)
		if err != nil {
			return err
		}

		state := pool.RecoverPoolState(spend)
		if state.IsNone() {
			fmt.Println("no pool state committed by this spend")

			return nil
		}

		ps := state.UnwrapOr(pool.PoolState{})
		printJSON(marshalPoolState(&ps))

		return nil
	},
}

var p2AddressCommand = cli.Command{
	Name: "p2address",
	Usage: "Derive the pay-to-singleton puzzle hash rewards for a " +
		"lineage are paid to.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "launcher_id",
			Usage: "the lineage's launcher coin id, hex",
		},
		cli.Uint64Flag{
			Name:  "seconds_delay",
			Usage: "claw-back delay of the fallback claim path",
		},
		cli.StringFlag{
			Name:  "delay_puzzle_hash",
			Usage: "fallback puzzle hash after the delay, hex",
		},
	},
	Action: func(ctx *cli.Context) error {
		launcherID, err := parseHash(ctx.String("launcher_id"))
		if err != nil {
			return fmt.Errorf("launcher_id: %w", err)
		}

		delayPH, err := parseHash(ctx.String("delay_puzzle_hash"))
		if err != nil {
			return fmt.Errorf("delay_puzzle_hash: %w", err)
		}

		hash := puzzles.P2SingletonHash(
			launcherID, ctx.Uint64("seconds_delay"), delayPH,
		)

		fmt.Println(hex.EncodeToString(hash[:]))

		return nil
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "pndcli"
	app.Usage = "inspect pool singleton chain data"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "debuglevel",
			Value: "off",
			Usage: "logging level {trace, debug, info, warn, " +
				"error, critical, off}",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		backend := btclog.NewBackend(os.Stderr)
		subs := build.SubLoggers{
			"POOL": backend.Logger("POOL"),
			"PUZL": backend.Logger("PUZL"),
		}

		err := build.ParseAndSetDebugLevels(
			ctx.String("debuglevel"), subs,
		)
		if err != nil {
			return err
		}

		pool.UseLogger(subs["POOL"])
		puzzles.UseLogger(subs["PUZL"])

		return nil
	}
	app.Commands = []cli.Command{
		decodeStateCommand,
		recoverStateCommand,
		p2AddressCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
