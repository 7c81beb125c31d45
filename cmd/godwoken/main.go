// Simple dirty and quick bootstrapping for driving the core from fixture
// files during development: run executes a block fixture against a fresh
// off-chain view, verify checks a challenge witness fixture.
//
// godwoken run -config rollup.yaml -block block.json
// godwoken verify -config rollup.yaml -witness witness.json
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/godwoken-go/godwoken/pkg/core/challenge"
	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/rollup/generator"
	"github.com/godwoken-go/godwoken/pkg/rollupcfg"
)

func main() {
	app := cli.NewApp()
	app.Name = "godwoken"
	app.Usage = "Layer-2 execution and fraud-proof core"
	app.Commands = []cli.Command{runCommand(), verifyCommand()}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommand() cli.Command {
	return cli.Command{
		Name:  "run",
		Usage: "execute a block fixture against a fresh off-chain view",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "config", Usage: "rollup config YAML path"},
			cli.StringFlag{Name: "block", Usage: "block fixture JSON path"},
		},
		Action: runAction,
	}
}

// blockFixture is the run subcommand's input shape: a block-info record
// and its transactions, each hex-encoded in the spec §4.4 wire format.
type blockFixture struct {
	Number       uint64   `json:"number"`
	RawBlockInfo string   `json:"raw_block_info"`
	RawTxs       []string `json:"raw_txs"`
}

func runAction(ctx *cli.Context) error {
	cfg, err := rollupcfg.Load(ctx.String("config"))
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(ctx.String("block"))
	if err != nil {
		return err
	}
	var fx blockFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return err
	}

	blockInfo, err := hex.DecodeString(fx.RawBlockInfo)
	if err != nil {
		return err
	}
	rawTxs := make([][]byte, len(fx.RawTxs))
	for i, s := range fx.RawTxs {
		b, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("tx %d: %w", i, err)
		}
		rawTxs[i] = b
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	g := generator.New(dao.NewView(nil), cfg, log)
	receipt, err := g.ExecuteBlock(generator.BlockInput{
		Number:       fx.Number,
		RawBlockInfo: blockInfo,
		RawTxs:       rawTxs,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(struct {
		Number         uint64 `json:"number"`
		PostCheckpoint string `json:"post_checkpoint"`
		TxCount        int    `json:"tx_count"`
	}{
		Number:         receipt.Number,
		PostCheckpoint: hex.EncodeToString(receipt.PostCheckpoint[:]),
		TxCount:        len(receipt.TxReceipts),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func verifyCommand() cli.Command {
	return cli.Command{
		Name:  "verify",
		Usage: "re-execute a challenge witness fixture and report the verdict",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "config", Usage: "rollup config YAML path"},
			cli.StringFlag{Name: "witness", Usage: "witness fixture JSON path"},
		},
		Action: verifyAction,
	}
}

// witnessFixture is the verify subcommand's input shape: every field
// challenge.Input needs, hex-encoded. The KV subset and tx/KV proofs are
// sibling lists produced by whichever off-chain run emitted the
// challenge (see pkg/core/dao.View.BuildWitness/Proof).
type witnessFixture struct {
	RawBlockHeader        string            `json:"raw_block_header"`
	ChallengedBlockHash   string            `json:"challenged_block_hash"`
	RawTx                 string            `json:"raw_tx"`
	RawBlockInfo          string            `json:"raw_block_info"`
	TxWitnessRoot         string            `json:"tx_witness_root"`
	TxProofLeafIndex      uint32            `json:"tx_proof_leaf_index"`
	TxProofSiblings       []string          `json:"tx_proof_siblings"`
	ChallengedBlockNumber uint64            `json:"challenged_block_number"`
	WitnessKV             map[string]string `json:"witness_kv"`
	WitnessAccountCount   uint32            `json:"witness_account_count"`
	WitnessReturnDataHash string            `json:"witness_return_data_hash"`
	PrevRoot              string            `json:"prev_root"`
	PrevCheckpoint        string            `json:"prev_checkpoint"`
	PrevKVProofSiblings   []string          `json:"prev_kv_proof_siblings"`
	PostCheckpoint        string            `json:"post_checkpoint"`
}

func hex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func hex32Slice(ss []string) ([][32]byte, error) {
	out := make([][32]byte, len(ss))
	for i, s := range ss {
		b, err := hex32(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

func verifyAction(ctx *cli.Context) error {
	cfg, err := rollupcfg.Load(ctx.String("config"))
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(ctx.String("witness"))
	if err != nil {
		return err
	}
	var fx witnessFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return err
	}

	in, err := buildChallengeInput(cfg, fx)
	if err != nil {
		return err
	}

	if err := challenge.Verify(in); err != nil {
		fmt.Printf("REJECTED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("ACCEPTED")
	return nil
}

func buildChallengeInput(cfg *rollupcfg.Config, fx witnessFixture) (challenge.Input, error) {
	var in challenge.Input
	in.RollupConfig = cfg

	raw, err := hex.DecodeString(fx.RawBlockHeader)
	if err != nil {
		return in, err
	}
	in.RawBlockHeader = raw

	if in.ChallengedBlockHash, err = hex32(fx.ChallengedBlockHash); err != nil {
		return in, err
	}
	if in.RawTx, err = hex.DecodeString(fx.RawTx); err != nil {
		return in, err
	}
	if in.RawBlockInfo, err = hex.DecodeString(fx.RawBlockInfo); err != nil {
		return in, err
	}
	if in.TxWitnessRoot, err = hex32(fx.TxWitnessRoot); err != nil {
		return in, err
	}
	siblings, err := hex32Slice(fx.TxProofSiblings)
	if err != nil {
		return in, err
	}
	in.TxProof = challenge.CBMTProof{LeafIndex: fx.TxProofLeafIndex, Siblings: siblings}
	in.ChallengedBlockNumber = fx.ChallengedBlockNumber

	kv := make(map[[32]byte][32]byte, len(fx.WitnessKV))
	for k, v := range fx.WitnessKV {
		kb, err := hex32(k)
		if err != nil {
			return in, err
		}
		vb, err := hex32(v)
		if err != nil {
			return in, err
		}
		kv[kb] = vb
	}
	in.Witness.KV = kv
	in.Witness.AccountCount = fx.WitnessAccountCount
	if in.Witness.ReturnDataHash, err = hex32(fx.WitnessReturnDataHash); err != nil {
		return in, err
	}

	if in.PrevRoot, err = hex32(fx.PrevRoot); err != nil {
		return in, err
	}
	if in.PrevCheckpoint, err = hex32(fx.PrevCheckpoint); err != nil {
		return in, err
	}
	prevSiblings, err := hex32Slice(fx.PrevKVProofSiblings)
	if err != nil {
		return in, err
	}
	in.PrevKVProof.Siblings = prevSiblings
	if in.PostCheckpoint, err = hex32(fx.PostCheckpoint); err != nil {
		return in, err
	}
	return in, nil
}
