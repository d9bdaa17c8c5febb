//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/loadhive/service-shipment/internal/application"
	"github.com/loadhive/service-shipment/internal/consumer"
	"github.com/loadhive/service-shipment/internal/events"
	"github.com/loadhive/service-shipment/internal/rates"
	"github.com/loadhive/service-shipment/internal/repository"
	"github.com/loadhive/service-shipment/internal/routing"
	"github.com/loadhive/service-shipment/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// shipmentStack holds wired-up shipment service components.
type shipmentStack struct {
	Service         *application.ShipmentService
	Consumer        *consumer.DispatchEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_shipment",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_shipment sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.ShipmentModel{},
		&repository.RegionRateModel{},
		&repository.ExtraServiceModel{},
		&repository.VehicleProductModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, events.TopicShipmentEvents, events.TopicDispatchEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupShipmentStack wires up the full shipment service stack.
func setupShipmentStack(t *testing.T, db *gorm.DB, brokers []string, routingBaseURL string) *shipmentStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	shipmentRepo := repository.NewGormShipmentRepository(db)
	rateRepo := repository.NewGormRateRepository(db)
	extraRepo := repository.NewGormExtraServiceRepository(db)
	vehicleRepo := repository.NewGormVehicleProductRepository(db)
	rateStore := rates.NewStore(rateRepo, extraRepo, nil, 0, logger)
	routingClient := routing.NewClient(routingBaseURL, 5*time.Second)
	producer := kafka.NewProducer(brokers, logger)

	shipmentSvc := application.NewShipmentService(shipmentRepo, vehicleRepo, rateStore, routingClient, producer, logger)

	groupID := fmt.Sprintf("test-shipment-%s", uuid.New().String()[:8])
	dispatchConsumer := consumer.NewDispatchEventConsumer(brokers, groupID, shipmentSvc, logger)

	return &shipmentStack{
		Service:         shipmentSvc,
		Consumer:        dispatchConsumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedRegionRate inserts a rate row so quotes can resolve a base rate.
func seedRegionRate(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now().UTC()
	model := repository.RegionRateModel{
		ID:              uuid.NewString(),
		RegionName:      "Çankaya",
		CityName:        "Ankara",
		CourierPrice:    5,
		MinivanPrice:    8,
		PanelvanPrice:   15,
		LightTruckPrice: 18,
		HeavyTruckPrice: 25,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed region rate")
}

// seedShipmentInStatus inserts a shipment in the given status for testing.
func seedShipmentInStatus(t *testing.T, db *gorm.DB, shipmentID, creatorID uuid.UUID, courierID *uuid.UUID, status string) {
	t.Helper()
	now := time.Now().UTC()

	pickup, _ := json.Marshal(map[string]interface{}{
		"lat": 39.92, "lng": 32.85, "address": "Kızılay, Ankara",
		"city_name": "Ankara", "region_name": "Çankaya",
	})
	dropoff, _ := json.Marshal(map[string]interface{}{
		"lat": 39.97, "lng": 32.75, "address": "Batıkent, Ankara",
		"city_name": "Ankara", "region_name": "Yenimahalle",
	})
	quote, _ := json.Marshal(map[string]interface{}{
		"distance_km": 12.4, "base_rate_per_km": 15.0,
		"base_price": 186.0, "extras_total": 0.0, "total_price": 186.0,
	})

	model := repository.ShipmentModel{
		ID:             shipmentID,
		ShipmentNumber: fmt.Sprintf("LD-INT%s", uuid.New().String()[:4]),
		CreatorID:      creatorID,
		CourierID:      courierID,
		Status:         status,
		DeliveryType:   "immediate",
		Pickup:         pickup,
		Dropoff:        dropoff,
		VehicleType:    "panelvan",
		PaymentMethod:  "card",
		Quote:          quote,
		Currency:       "TRY",
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed shipment")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForShipmentStatus polls the shipments table until the status matches.
func waitForShipmentStatus(t *testing.T, db *gorm.DB, shipmentID uuid.UUID, expectedStatus string, timeout time.Duration) repository.ShipmentModel {
	t.Helper()
	var result repository.ShipmentModel
	require.Eventually(t, func() bool {
		var model repository.ShipmentModel
		err := db.Where("id = ?", shipmentID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "shipment did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
