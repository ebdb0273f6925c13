package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// ORDERED_ALONG_WITH edges are maintained by the nightly order import with
// times set to the number of orders containing both products
const coOccurrenceQuery = `
UNWIND $codes AS code
MATCH (s:Product {code: code})-[r:ORDERED_ALONG_WITH]->(p:Product)
RETURN s.code AS source, p.code AS product, r.times AS times`

// Reader runs read queries
type Reader interface {
	Read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)
}

// CoOccurrenceSource reads co-ordering counts from the product graph
type CoOccurrenceSource struct {
	reader Reader
}

// NewCoOccurrenceSource creates a new CoOccurrenceSource
func NewCoOccurrenceSource(reader Reader) *CoOccurrenceSource {
	return &CoOccurrenceSource{reader: reader}
}

// CoOccurrences returns co-ordering counts for every source product
func (s *CoOccurrenceSource) CoOccurrences(ctx context.Context, sourceCodes []string) ([]domain.CoOccurrence, error) {
	if len(sourceCodes) == 0 {
		return []domain.CoOccurrence{}, nil
	}

	records, err := s.reader.Read(ctx, coOccurrenceQuery, map[string]any{"codes": sourceCodes})
	if err != nil {
		return nil, err
	}
	return coOccurrencesFromRecords(records)
}

func coOccurrencesFromRecords(records []*neo4j.Record) ([]domain.CoOccurrence, error) {
	out := make([]domain.CoOccurrence, 0, len(records))
	for _, record := range records {
		source, _, err := neo4j.GetRecordValue[string](record, "source")
		if err != nil {
			return nil, fmt.Errorf("co-occurrence record: %w", err)
		}
		product, _, err := neo4j.GetRecordValue[string](record, "product")
		if err != nil {
			return nil, fmt.Errorf("co-occurrence record: %w", err)
		}
		// times may be absent on edges created before the counter existed
		times, isNil, err := neo4j.GetRecordValue[int64](record, "times")
		if err != nil && !isNil {
			return nil, fmt.Errorf("co-occurrence record: %w", err)
		}

		out = append(out, domain.CoOccurrence{SourceProductCode: source, ProductCode: product, Times: times})
	}
	return out, nil
}
