// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Command consensus bootstraps a hashgraph.Core from configuration
// and a stake table, then feeds it a newline-delimited JSON event
// feed from stdin for local experimentation. Gossip and persistence
// stay out of scope; this is a harness, not a node.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hashgraph/consensus-core/config"
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/hashgraph"
	"github.com/hashgraph/consensus-core/log"
	"github.com/hashgraph/consensus-core/metrics"
)

// wireEvent is the newline-delimited JSON shape read from stdin: the
// hashed fields of an event plus its unhashed signature/other-id,
// with parent references carried as content hashes rather than
// pointers.
type wireEvent struct {
	Creator          uint32   `json:"creator"`
	Sequence         uint64   `json:"sequence"`
	SelfParentHash   string   `json:"selfParentHash,omitempty"`
	OtherParentHash  string   `json:"otherParentHash,omitempty"`
	TimestampCreated int64    `json:"timestampCreated"`
	Transactions     [][]byte `json:"transactions,omitempty"`
	Signature        []byte   `json:"signature,omitempty"`
	OtherID          uint32   `json:"otherId,omitempty"`
}

func main() {
	var (
		stakesFlag        string
		coinFreq          uint64
		roundsStale       uint64
		roundsExpired     uint64
		minTransIncrNanos int64
		whiteningLength   int
		metricsAddr       string
	)

	root := &cobra.Command{
		Use:   "consensus",
		Short: "Run a hashgraph consensus core over a stdin event feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			stakes, err := parseStakes(stakesFlag)
			if err != nil {
				return err
			}

			cfg := config.Default()
			if coinFreq > 0 {
				cfg.CoinFreq = coinFreq
			}
			if roundsStale > 0 {
				cfg.RoundsStale = roundsStale
			}
			if roundsExpired > 0 {
				cfg.RoundsExpired = roundsExpired
			}
			if minTransIncrNanos > 0 {
				cfg.MinTransTimestampIncrNanos = minTransIncrNanos
			}
			if whiteningLength > 0 {
				cfg.WhiteningLength = whiteningLength
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := log.NewNoOp()
			registry := prometheus.NewRegistry()
			m, err := metrics.New(registry)
			if err != nil {
				return fmt.Errorf("registering metrics: %w", err)
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, registry)
			}

			core, err := hashgraph.New(stakes, cfg, logger, m)
			if err != nil {
				return fmt.Errorf("constructing core: %w", err)
			}

			return runFeed(core, os.Stdin, os.Stdout)
		},
	}

	root.Flags().StringVar(&stakesFlag, "stakes", "1,1,1,1", "comma-separated per-member stake weights")
	root.Flags().Uint64Var(&coinFreq, "coin-freq", 0, "coin round spacing (0 = config default)")
	root.Flags().Uint64Var(&roundsStale, "rounds-stale", 0, "rounds before a non-consensus event goes stale (0 = config default)")
	root.Flags().Uint64Var(&roundsExpired, "rounds-expired", 0, "rounds before garbage collection (0 = config default)")
	root.Flags().Int64Var(&minTransIncrNanos, "min-trans-timestamp-incr-nanos", 0, "minimum per-transaction timestamp spacing (0 = config default)")
	root.Flags().IntVar(&whiteningLength, "whitening-length", 0, "bytes of judge signature XORed into a round's whitening vector (0 = config default)")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on, empty disables it")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "consensus: %v\n", err)
		os.Exit(1)
	}
}

func parseStakes(raw string) ([]uint64, error) {
	parts := strings.Split(raw, ",")
	stakes := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing stake %q: %w", p, err)
		}
		stakes = append(stakes, v)
	}
	return stakes, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	_ = http.ListenAndServe(addr, mux)
}

// runFeed decodes one wireEvent per line from r, resolves parent
// references by hash, inserts each into core, and writes one JSON
// result line to w for each insert that produced newly-consensus or
// stale events; inserts with neither write nothing.
func runFeed(core *hashgraph.Core, r *os.File, w *os.File) error {
	known := make(map[ids.ID]*event.Event)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var we wireEvent
		if err := json.Unmarshal([]byte(line), &we); err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}

		var selfParent, otherParent *event.Event
		if we.SelfParentHash != "" {
			h, err := ids.FromString(we.SelfParentHash)
			if err != nil {
				return fmt.Errorf("parsing self-parent hash: %w", err)
			}
			selfParent = known[h]
		}
		if we.OtherParentHash != "" {
			h, err := ids.FromString(we.OtherParentHash)
			if err != nil {
				return fmt.Errorf("parsing other-parent hash: %w", err)
			}
			otherParent = known[h]
		}

		e := event.New(event.Member(we.Creator), we.Sequence, selfParent, otherParent, we.TimestampCreated, we.Transactions)
		e.Unhashed.Signature = we.Signature
		e.Unhashed.OtherID = we.OtherID
		known[e.Hash()] = e

		result, err := core.Insert(e)
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
		if len(result.NewlyConsensus) == 0 && len(result.Stale) == 0 {
			continue
		}
		if err := encoder.Encode(summarize(result)); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return scanner.Err()
}

type resultSummary struct {
	NewlyConsensus []eventSummary `json:"newlyConsensus"`
	Stale          []eventSummary `json:"stale"`
}

type eventSummary struct {
	Hash           string `json:"hash"`
	Creator        uint32 `json:"creator"`
	Sequence       uint64 `json:"sequence"`
	RoundReceived  int64  `json:"roundReceived,omitempty"`
	ConsensusTime  int64  `json:"consensusTime,omitempty"`
	ConsensusOrder int64  `json:"consensusOrder,omitempty"`
}

func summarize(r hashgraph.Result) resultSummary {
	out := resultSummary{}
	for _, e := range r.NewlyConsensus {
		out.NewlyConsensus = append(out.NewlyConsensus, eventSummary{
			Hash:           e.Hash().String(),
			Creator:        uint32(e.Hashed.Creator),
			Sequence:       e.Sequence,
			RoundReceived:  e.RoundReceived,
			ConsensusTime:  e.ConsensusTime,
			ConsensusOrder: e.ConsensusOrder,
		})
	}
	for _, e := range r.Stale {
		out.Stale = append(out.Stale, eventSummary{
			Hash:     e.Hash().String(),
			Creator:  uint32(e.Hashed.Creator),
			Sequence: e.Sequence,
		})
	}
	return out
}
