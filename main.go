package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"go-medalert/config"
	"go-medalert/cronjobs"
	"go-medalert/dispatch"
	"go-medalert/geocode"
	"go-medalert/hub"
	"go-medalert/locate"
	"go-medalert/mission"
	"go-medalert/nlp"
	"go-medalert/protocol"
	"go-medalert/routes"
	"go-medalert/routing"
	"go-medalert/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := config.Load()
	ctx := context.Background()

	// Storage: Firestore when credentials are present, always backed by
	// the static seed data so dispatch keeps working offline.
	static, err := store.LoadStatic(cfg.StaticDataDir)
	if err != nil {
		log.Fatalf("Failed to load static data from %s: %v", cfg.StaticDataDir, err)
	}
	var st store.Store = static
	if cfg.FirebaseCredentials != "" {
		fs, err := store.NewFirestore(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Fatalf("Failed to initialize Firestore: %v", err)
		}
		defer fs.Close()
		st = store.NewFallback(fs, static)
	} else {
		log.Println("FIREBASE_CREDENTIALS not set, running on static data only")
	}

	// Geocoding cascade: Google Maps, then Nominatim, then the local
	// gazetteer. Ordered by accuracy.
	var providers []geocode.Geocoder
	if cfg.MapsAPIKey != "" {
		mapsClient, err := geocode.NewMapsClient(cfg.MapsAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Maps client: %v", err)
		}
		providers = append(providers, geocode.NewMapsGeocoder(mapsClient))
	}
	providers = append(providers,
		geocode.NewNominatimGeocoder(cfg.NominatimBaseURL, cfg.NominatimEmail, nil),
		geocode.NewGazetteer(),
	)
	cascade := geocode.NewCascade(providers...)

	var searcher locate.AddressSearcher = cascade
	if cfg.RedisEnabled {
		redisClient, err := geocode.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, geocode cache disabled: %v", err)
		} else {
			searcher = geocode.NewCachedCascade(cascade, redisClient, cfg.GeocodeTTL)
		}
	}

	// Entity extraction feeds address hints into the cascade.
	var hints locate.HintExtractor
	if cfg.NLPCredentials != "" {
		extractor, err := nlp.NewExtractor(ctx, cfg.NLPCredentials)
		if err != nil {
			log.Fatalf("Failed to create Natural Language client: %v", err)
		}
		defer extractor.Close()
		hints = extractor
	}

	resolver := locate.NewResolver(searcher, hints)

	var ipLocator *locate.IPLocator
	if cfg.IPGeoAPIKey != "" {
		ipLocator = locate.NewIPLocator(cfg.IPGeoAPIKey, cfg.IPGeoBaseURL, nil)
	}

	router := routing.NewProvider(cfg.ORSAPIKey, routing.WithBaseURL(cfg.ORSBaseURL))
	planner := dispatch.NewPlanner(
		dispatch.NewFacilitySelector(st, router),
		dispatch.NewFleetSelector(st),
		router,
	)

	missionHub := hub.New()
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go missionHub.Run(hubCtx)

	orchOpts := []mission.Option{
		mission.WithPublisher(missionHub),
		mission.WithDrivePace(cfg.DriveStride, cfg.DrivePace),
	}
	if cfg.GroqAPIKey != "" {
		client := protocol.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
		orchOpts = append(orchOpts, mission.WithProtocolGenerator(protocol.NewGenerator(client, cfg.GroqModel)))
	} else {
		log.Println("GROQ_API_KEY not set, care protocols disabled")
	}
	orch := mission.NewOrchestrator(st, planner, orchOpts...)
	runner := mission.NewRunner()

	sched := cronjobs.InitCronJobs(st)
	defer sched.Stop()

	r := routes.SetupRouter(routes.Deps{
		Store:        st,
		Resolver:     resolver,
		IPLocator:    ipLocator,
		Orchestrator: orch,
		Runner:       runner,
		Hub:          missionHub,
	})
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
	runner.Wait()
}
