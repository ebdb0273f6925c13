package mongodb

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/metrics"
	sharedmongo "github.com/b2b-portal/opscenter/shared/pkg/mongodb"
	sharedtesting "github.com/b2b-portal/opscenter/shared/pkg/testing"
)

func item(sku string, quantity, picked int) bson.M {
	return bson.M{"sku": sku, "quantity": quantity, "pickedQuantity": picked}
}

func TestPickingSource_ListPickerWorkload(t *testing.T) {
	sharedtesting.SkipIfShort(t)

	ctx, cancel := sharedtesting.CreateTestContext(2 * time.Minute)
	defer cancel()

	container, err := sharedtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)
	defer container.Close(context.Background())

	cfg := sharedmongo.DefaultConfig()
	cfg.URI = container.URI
	cfg.Database = "wes_test"
	cfg.PreferSecondary = false

	client, err := sharedmongo.NewClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close(context.Background())

	db := client.Database()
	require.NoError(t, sharedtesting.SeedCollection(ctx, db, WorkersCollection,
		bson.M{"workerId": "u-1", "name": "Ayşe Yılmaz"},
		bson.M{"workerId": "u-2", "name": "Mehmet Kaya"},
	))
	require.NoError(t, sharedtesting.SeedCollection(ctx, db, PickTasksCollection,
		bson.M{"taskId": "PT-1", "orderId": "O-1", "pickerId": "u-1", "status": "in_progress",
			"items": bson.A{item("SKU-1", 5, 5), item("SKU-2", 3, 1)}},
		bson.M{"taskId": "PT-2", "orderId": "O-2", "pickerId": "u-1", "status": "assigned",
			"items": bson.A{item("SKU-3", 2, 0), item("SKU-4", 1, 0)}},
		bson.M{"taskId": "PT-3", "orderId": "O-2", "pickerId": "u-1", "status": "assigned",
			"items": bson.A{item("SKU-5", 4, 0)}},
		bson.M{"taskId": "PT-4", "orderId": "O-3", "pickerId": "u-2", "status": "completed",
			"items": bson.A{item("SKU-1", 1, 1)}},
		bson.M{"taskId": "PT-5", "orderId": "O-4", "pickerId": "u-3", "status": "assigned",
			"items": bson.A{item("SKU-6", 1, 0)}},
		bson.M{"taskId": "PT-6", "orderId": "O-5", "status": "pending",
			"items": bson.A{item("SKU-7", 1, 0)}},
	))

	instrumented := sharedmongo.NewInstrumentedClient(client, metrics.New(metrics.DefaultConfig("test")), logging.NewNop())
	source := NewPickingSource(instrumented.Collection(PickTasksCollection))

	workload, err := source.ListPickerWorkload(ctx)
	require.NoError(t, err)

	sort.Slice(workload, func(i, j int) bool { return workload[i].PickerUserID < workload[j].PickerUserID })
	assert.Equal(t, []domain.PickerWorkload{
		{PickerUserID: "u-1", PickerName: "Ayşe Yılmaz", ActiveOrders: 2, OpenLines: 4},
		{PickerUserID: "u-3", PickerName: "u-3", ActiveOrders: 1, OpenLines: 1},
	}, workload)
}

func TestWorkloadPipeline_MatchesActiveStatuses(t *testing.T) {
	pipeline := workloadPipeline()
	require.NotEmpty(t, pipeline)

	match := pipeline[0][0]
	assert.Equal(t, "$match", match.Key)
	filter := match.Value.(bson.M)
	assert.Equal(t, bson.M{"$in": []string{"assigned", "in_progress"}}, filter["status"])
}
