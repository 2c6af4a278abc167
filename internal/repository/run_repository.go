package repository

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ShortScan/internal/domain/models"
	domrepo "ShortScan/internal/domain/repository"
	pkgch "ShortScan/pkg/clickhouse"
	pkgkafka "ShortScan/pkg/kafka"
)

// CHRunStore persists fold results and importances of a run to ClickHouse.
type CHRunStore struct {
	ch              *pkgch.Client
	foldTable       string
	importanceTable string
}

var _ domrepo.RunSink = (*CHRunStore)(nil)

func NewCHRunStore(ch *pkgch.Client, foldTable, importanceTable string) *CHRunStore {
	return &CHRunStore{ch: ch, foldTable: foldTable, importanceTable: importanceTable}
}

// RunSchema returns the DDL of the fold and importance tables.
func RunSchema(foldTable, importanceTable string) []string {
	return []string{
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id      String,
            started_at  DateTime,
            fold        UInt16,
            train_rows  UInt32,
            test_rows   UInt32,
            accuracy    Float64,
            precision_0 Float64,
            recall_0    Float64,
            f1_0        Float64,
            precision_1 Float64,
            recall_1    Float64,
            f1_1        Float64,
            macro_f1    Float64,
            is_best     UInt8
        ) ENGINE = MergeTree
        ORDER BY (started_at, run_id, fold)`, foldTable),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id     String,
            started_at DateTime,
            rank       UInt8,
            feature    LowCardinality(String),
            importance Float64
        ) ENGINE = MergeTree
        ORDER BY (started_at, run_id, rank)`, importanceTable),
	}
}

func (s *CHRunStore) Name() string { return "clickhouse" }

func (s *CHRunStore) SaveRun(ctx context.Context, r *models.RunReport) error {
	q := fmt.Sprintf(`INSERT INTO %s (run_id, started_at, fold, train_rows, test_rows, accuracy,
        precision_0, recall_0, f1_0, precision_1, recall_1, f1_1, macro_f1, is_best)`, s.foldTable)
	if err := s.ch.InsertBatch(ctx, q, foldRows(r)); err != nil {
		return fmt.Errorf("store folds: %w", err)
	}
	q = fmt.Sprintf("INSERT INTO %s (run_id, started_at, rank, feature, importance)", s.importanceTable)
	if err := s.ch.InsertBatch(ctx, q, importanceRows(r)); err != nil {
		return fmt.Errorf("store importances: %w", err)
	}
	return nil
}

// Close is a no-op; the connection pool is owned by pkg/clickhouse.
func (s *CHRunStore) Close() error { return nil }

func foldRows(r *models.RunReport) [][]any {
	rows := make([][]any, 0, len(r.Folds))
	for _, f := range r.Folds {
		c0, c1 := f.Report.Classes[0], f.Report.Classes[1]
		var best uint8
		if f.Fold.Index == r.BestFold {
			best = 1
		}
		rows = append(rows, []any{
			r.RunID, r.StartedAt, uint16(f.Fold.Index),
			uint32(f.Fold.TrainSize()), uint32(f.Fold.TestSize()), f.Accuracy,
			c0.Precision, c0.Recall, c0.F1, c1.Precision, c1.Recall, c1.F1,
			f.Report.MacroAvg.F1, best,
		})
	}
	return rows
}

func importanceRows(r *models.RunReport) [][]any {
	rows := make([][]any, 0, len(r.Importances))
	for i, e := range r.Importances {
		rows = append(rows, []any{r.RunID, r.StartedAt, uint8(i + 1), e.Feature, e.Importance})
	}
	return rows
}

// KafkaRunPublisher publishes finished runs as JSON keyed by run id.
type KafkaRunPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.RunSink = (*KafkaRunPublisher)(nil)

// NewKafkaRunPublisher creates Kafka publisher.
func NewKafkaRunPublisher(producer *pkgkafka.Producer, topic string) *KafkaRunPublisher {
	return &KafkaRunPublisher{producer: producer, topic: topic}
}

func (p *KafkaRunPublisher) Name() string { return "kafka" }

func (p *KafkaRunPublisher) SaveRun(ctx context.Context, r *models.RunReport) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:     []byte(r.RunID),
		Value:   r,
		Headers: []kafka.Header{{Key: "content-type", Value: []byte("application/json")}},
	}})
}

func (p *KafkaRunPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
