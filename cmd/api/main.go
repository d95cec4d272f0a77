package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greyland/roseware-sync/internal/config"
	"github.com/greyland/roseware-sync/internal/entity"
	"github.com/greyland/roseware-sync/internal/infra/database"
	"github.com/greyland/roseware-sync/internal/infra/http/handlers"
	"github.com/greyland/roseware-sync/internal/infra/http/middleware"
	"github.com/greyland/roseware-sync/internal/infra/integration/monday"
	"github.com/greyland/roseware-sync/internal/infra/integration/pipedrive"
	"github.com/greyland/roseware-sync/internal/infra/integration/stripeapi"
	"github.com/greyland/roseware-sync/internal/infra/mail"
	"github.com/greyland/roseware-sync/internal/infra/queue"
	"github.com/greyland/roseware-sync/internal/infra/worker"
	"github.com/greyland/roseware-sync/internal/usecase"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	customerRepo := database.NewCustomerRepository(db)
	templateRepo := database.NewPackageTemplateRepository(db)
	planRepo := database.NewPackagePlanRepository(db)
	packageRepo := database.NewServicePackageRepository(db)
	leadRepo := database.NewLeadRepository(db)
	ownerRepo := database.NewOwnerRepository(db)
	leaseRepo := database.NewSyncLeaseRepository(db)
	togglesRepo := database.NewTogglesRepository(db)

	// 2. Gateways
	crm := pipedrive.NewClient()
	billing := stripeapi.NewClient()
	tasks := monday.NewClient()
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	if cfg.BackendURL != "" {
		if err := crm.RegisterWebhooks(context.Background(), cfg.BackendURL); err != nil {
			log.Printf("⚠️ Pipedrive webhook registration failed: %v", err)
		}
	}

	// 3. Write services and the outbound dispatcher
	dispatcher := usecase.NewSyncDispatcher(leaseRepo, producer)
	customerService := usecase.NewCustomerService(customerRepo, dispatcher, tasks, mailSender)
	templateService := usecase.NewPackageTemplateService(templateRepo, dispatcher)
	planService := usecase.NewPackagePlanService(planRepo, packageRepo, dispatcher)
	packageService := usecase.NewServicePackageService(packageRepo, planRepo, dispatcher)
	leadService := usecase.NewLeadService(leadRepo, dispatcher)

	// 4. Queue worker executing outbound pushes
	syncer := usecase.NewOutboundSyncer(
		customerRepo, templateRepo, planRepo, packageRepo, leadRepo, ownerRepo,
		crm, billing,
	)
	syncWorker := queue.NewWorker(rabbitMQ.Ch, syncer)
	go syncWorker.Start(queue.WorkQueue)

	// 5. Lease reaper
	reaper := worker.NewLeaseReaper(leaseRepo, cfg.LeaseTTL, cfg.ReaperInterval)
	go reaper.Start(context.Background())

	// 6. Inbound pipeline
	pipeline := usecase.NewWebhookPipeline(togglesRepo, leaseRepo, cfg.SettleDelay)
	pipeline.Register(entity.TypeCustomer, &usecase.CustomerAdapter{
		Customers: customerRepo, Service: customerService, DefaultOwnerID: cfg.DefaultOwnerID,
	})
	pipeline.Register(entity.TypePackageTemplate, &usecase.TemplateAdapter{
		Templates: templateRepo, Service: templateService, DefaultOwnerID: cfg.DefaultOwnerID,
	})
	pipeline.Register(entity.TypePackagePlan, &usecase.PlanAdapter{
		Plans: planRepo, Packages: packageRepo, Templates: templateRepo,
		Customers: customerRepo, Service: planService, LineService: packageService,
		DefaultOwnerID: cfg.DefaultOwnerID,
	})
	pipeline.Register(entity.TypeServicePackage, &usecase.ServicePackageAdapter{
		Packages: packageRepo, Service: packageService,
	})
	pipeline.Register(entity.TypeLead, &usecase.LeadAdapter{
		Leads: leadRepo, Customers: customerRepo, Service: leadService,
		DefaultOwnerID: cfg.DefaultOwnerID,
	})

	// 7. Handlers
	pipedriveWebhook := handlers.NewPipedriveWebhookHandler(pipeline, crm)
	stripeWebhook := handlers.NewStripeWebhookHandler(pipeline, cfg.StripeWebhookSecret)
	customerHandler := handlers.NewCustomerHandler(customerService, customerRepo)
	templateHandler := handlers.NewPackageTemplateHandler(templateService, templateRepo)
	planHandler := handlers.NewPackagePlanHandler(planService, packageService, planRepo, packageRepo)
	packageHandler := handlers.NewServicePackageHandler(packageService, packageRepo)
	leadHandler := handlers.NewLeadHandler(leadService, leadRepo)
	togglesHandler := handlers.NewTogglesHandler(togglesRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 8. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/webhooks", func(r chi.Router) {
		r.With(middleware.WebhookAuth(cfg.WebhookSecretToken)).
			Post("/pipedrive/{entity}/{action}", pipedriveWebhook.Handle)
		// Stripe authenticates with its own signature header.
		r.Post("/stripe", stripeWebhook.Handle)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", customerHandler.Create)
		r.Get("/{id}", customerHandler.Get)
		r.Put("/{id}", customerHandler.Update)
		r.Delete("/{id}", customerHandler.Delete)
	})
	r.Route("/package-templates", func(r chi.Router) {
		r.Post("/", templateHandler.Create)
		r.Get("/{id}", templateHandler.Get)
		r.Put("/{id}", templateHandler.Update)
		r.Delete("/{id}", templateHandler.Delete)
	})
	r.Route("/package-plans", func(r chi.Router) {
		r.Post("/", planHandler.Create)
		r.Get("/{id}", planHandler.Get)
		r.Put("/{id}", planHandler.Update)
		r.Delete("/{id}", planHandler.Delete)
	})
	r.Route("/service-packages", func(r chi.Router) {
		r.Post("/", packageHandler.Create)
		r.Put("/{id}", packageHandler.Update)
		r.Delete("/{id}", packageHandler.Delete)
	})
	r.Route("/leads", func(r chi.Router) {
		r.Post("/", leadHandler.Create)
		r.Get("/{id}", leadHandler.Get)
		r.Put("/{id}", leadHandler.Update)
		r.Delete("/{id}", leadHandler.Delete)
	})
	r.Route("/sync-toggles", func(r chi.Router) {
		r.Get("/", togglesHandler.Get)
		r.Put("/", togglesHandler.Set)
	})

	addr := ":" + cfg.Port
	log.Printf("🔥 Roseware sync coordinator listening on %s", addr)
	http.ListenAndServe(addr, r)
}
