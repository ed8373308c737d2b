package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/vallois/aquawatt/internal/anomaly"
	"github.com/vallois/aquawatt/internal/catalog"
	"github.com/vallois/aquawatt/internal/influxdb"
	"github.com/vallois/aquawatt/internal/llm"
	"github.com/vallois/aquawatt/internal/mysql"
	"github.com/vallois/aquawatt/internal/processing"
	"github.com/vallois/aquawatt/internal/server"
	"github.com/vallois/aquawatt/internal/simulation"
	"github.com/vallois/aquawatt/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not loaded: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	readingStore, err := store.Open(store.PathFromEnv())
	if err != nil {
		log.Fatalf("reading store error: %v", err)
	}
	log.Printf("reading store ready; path=%s", readingStore.Path())

	manager := simulation.NewManager()
	catalogRepo := seedManager(ctx, manager)

	detector := anomaly.New(anomaly.DefaultConfig())

	var coordOpts []simulation.CoordinatorOption
	coordOpts = append(coordOpts, simulation.WithCycleInterval(simulation.IntervalFromEnv()))

	var influxClient *influxdb.Client
	if influxdb.Configured() {
		cfg, err := influxdb.FromEnv()
		if err != nil {
			log.Fatalf("influx config error: %v", err)
		}
		influxClient, err = influxdb.New(ctx, cfg)
		if err != nil {
			log.Fatalf("influx connection error: %v", err)
		}
		defer influxClient.Close()
		coordOpts = append(coordOpts, simulation.WithMirror(influxClient))
		log.Printf("reading mirror enabled; bucket=%s", cfg.Bucket)
	}

	coordinator := simulation.NewCoordinator(manager, readingStore, detector, coordOpts...)
	coordinator.Start(ctx)
	if simulation.AutostartFromEnv() {
		coordinator.Enable()
	}

	var insight *processing.InsightService
	if llm.Configured() {
		cfg, err := llm.FromEnv()
		if err != nil {
			log.Fatalf("llm config error: %v", err)
		}
		llmClient, err := llm.New(ctx, cfg)
		if err != nil {
			log.Fatalf("llm client error: %v", err)
		}
		defer llmClient.Close()
		insight = processing.NewInsightService(llmClient)
		log.Printf("anomaly insight enabled; model=%s", cfg.Model)
	}

	router := server.NewRouter(server.Dependencies{
		Manager:     manager,
		Store:       readingStore,
		Detector:    detector,
		Coordinator: coordinator,
		Influx:      influxClient,
		Catalog:     catalogRepo,
		Insight:     insight,
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("starting HTTP server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal(err)
	}
}

// seedManager fills the fleet from the MySQL catalog when configured,
// falling back to the built-in water-treatment sensors.
func seedManager(ctx context.Context, manager *simulation.Manager) *catalog.Repository {
	if mysql.Configured() {
		cfg, err := mysql.FromEnv()
		if err != nil {
			log.Fatalf("mysql config error: %v", err)
		}
		db, err := mysql.New(ctx, cfg)
		if err != nil {
			log.Fatalf("mysql connection error: %v", err)
		}
		repo := catalog.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("catalog schema error: %v", err)
		}
		added, err := repo.Seed(ctx, manager)
		if err != nil {
			log.Fatalf("catalog seed error: %v", err)
		}
		log.Printf("sensor catalog loaded; sensors=%d", added)
		if added > 0 {
			return repo
		}
		// Empty catalog: register the defaults and push them back so the
		// table reflects the running fleet.
		for _, sensor := range simulation.DefaultSensors() {
			if err := manager.Add(sensor); err != nil {
				log.Printf("default sensor %s not added: %v", sensor.ID, err)
				continue
			}
			input := catalog.UpsertInput{
				SensorID:  sensor.ID,
				Equipment: string(sensor.Type),
				Location:  sensor.Location,
				Active:    sensor.Active,
			}
			if err := repo.UpsertSensor(ctx, input); err != nil {
				log.Printf("catalog upsert %s failed: %v", sensor.ID, err)
			}
		}
		return repo
	}

	for _, sensor := range simulation.DefaultSensors() {
		if err := manager.Add(sensor); err != nil {
			log.Printf("default sensor %s not added: %v", sensor.ID, err)
		}
	}
	return nil
}
