// internal/stats/elastic.go
//
// Optional Elasticsearch indexer for finished casino rounds. One document per
// round, carrying the dealer result and every player's outcome. Disabled
// entirely when ES_ADDR is unset; indexing failures are logged and dropped.
package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gianlucanapo/terrazzo-manager/internal/casino"
)

const defaultIndex = "terrazzo-casino-rounds"

// Indexer ships round summaries to Elasticsearch.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	log    *logrus.Logger
}

// NewIndexerFromEnv builds an Indexer from ES_ADDR, ES_USERNAME, ES_PASSWORD,
// and ES_INDEX. Returns (nil, nil) when ES_ADDR is unset: stats are optional.
func NewIndexerFromEnv(logger *logrus.Logger) (*Indexer, error) {
	addr := os.Getenv("ES_ADDR")
	if addr == "" {
		return nil, nil
	}

	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}
	if user := os.Getenv("ES_USERNAME"); user != "" {
		cfg.Username = user
		cfg.Password = os.Getenv("ES_PASSWORD")
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	index := os.Getenv("ES_INDEX")
	if index == "" {
		index = defaultIndex
	}
	return &Indexer{client: client, index: index, log: logger}, nil
}

type roundDocument struct {
	FinishedAt      time.Time            `json:"finished_at"`
	DealerScore     int                  `json:"dealer_score"`
	DealerBlackjack bool                 `json:"dealer_blackjack"`
	Players         []casino.RoundResult `json:"players"`
}

// IndexRound writes one finished-round document. Safe to use as a
// TableService.OnRoundEnd callback.
func (ix *Indexer) IndexRound(summary casino.RoundSummary) {
	doc := roundDocument{
		FinishedAt:      summary.FinishedAt,
		DealerScore:     summary.DealerScore,
		DealerBlackjack: summary.DealerBlackjack,
		Players:         summary.Players,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		ix.log.WithError(err).Warn("failed to marshal round document")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		ix.log.WithError(err).Warn("failed to index round")
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		ix.log.WithField("status", res.Status()).Warn("elasticsearch rejected round document")
	}
}
