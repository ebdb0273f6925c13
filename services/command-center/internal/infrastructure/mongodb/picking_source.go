package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

const (
	PickTasksCollection = "pick_tasks"
	WorkersCollection   = "workers"
)

// Task statuses that hold a picker
var activePickStatuses = []string{"assigned", "in_progress"}

// Aggregator is the subset of a collection the picking source needs
type Aggregator interface {
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// PickingSource reads picker workload from open WES pick tasks
type PickingSource struct {
	tasks Aggregator
}

// NewPickingSource creates a new PickingSource over the pick_tasks collection
func NewPickingSource(tasks Aggregator) *PickingSource {
	return &PickingSource{tasks: tasks}
}

type pickerWorkloadDocument struct {
	PickerID     string `bson:"_id"`
	PickerName   string `bson:"pickerName"`
	ActiveOrders int    `bson:"activeOrders"`
	OpenLines    int    `bson:"openLines"`
}

func workloadPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":   bson.M{"$in": activePickStatuses},
			"pickerId": bson.M{"$nin": bson.A{nil, ""}},
		}}},
		{{Key: "$project", Value: bson.M{
			"pickerId": 1,
			"orderId":  1,
			"openLines": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$items", bson.A{}}},
				"as":    "item",
				"cond":  bson.M{"$lt": bson.A{bson.M{"$ifNull": bson.A{"$$item.pickedQuantity", 0}}, "$$item.quantity"}},
			}}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$pickerId",
			"orders":    bson.M{"$addToSet": "$orderId"},
			"openLines": bson.M{"$sum": "$openLines"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         WorkersCollection,
			"localField":   "_id",
			"foreignField": "workerId",
			"as":           "worker",
		}}},
		{{Key: "$project", Value: bson.M{
			"pickerName":   bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$worker.name", 0}}, "$_id"}},
			"activeOrders": bson.M{"$size": "$orders"},
			"openLines":    1,
		}}},
	}
}

// ListPickerWorkload returns one entry per picker holding an assigned or in-progress task
func (s *PickingSource) ListPickerWorkload(ctx context.Context) ([]domain.PickerWorkload, error) {
	cursor, err := s.tasks.Aggregate(ctx, workloadPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate picker workload: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []pickerWorkloadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode picker workload: %w", err)
	}

	workload := make([]domain.PickerWorkload, 0, len(docs))
	for _, doc := range docs {
		workload = append(workload, domain.PickerWorkload{
			PickerUserID: doc.PickerID,
			PickerName:   doc.PickerName,
			ActiveOrders: doc.ActiveOrders,
			OpenLines:    doc.OpenLines,
		})
	}
	return workload, nil
}
