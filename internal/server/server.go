package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"etl_manager/internal/config"
	"etl_manager/internal/dialect"
	"etl_manager/internal/handlers"
	"etl_manager/internal/introspect"
	"etl_manager/internal/middlewares"
	"etl_manager/internal/repositories"
	"etl_manager/internal/routes"
	"etl_manager/internal/services"
)

// NewServer wires repositories, services and handlers over pool and returns
// an http.Server ready to ListenAndServe.
func NewServer(cfg *config.Config, pool *pgxpool.Pool, log *zap.SugaredLogger) *http.Server {
	// Dependency injection
	metaRepo := repositories.NewMetadataRepository(pool, log)
	mappingRepo := repositories.NewMappingRepository(pool, log)
	templateRepo := repositories.NewTemplateRepository(pool)
	historyRepo := repositories.NewHistoryRepository(pool)
	connRepo := repositories.NewConnectionRepository(pool)

	introspector := introspect.New(dialect.Open, log)

	connService := services.NewConnectionService(connRepo, dialect.Open, log)
	metaService := services.NewMetadataService(metaRepo, introspector, dialect.Open, log)
	mappingService := services.NewMappingService(mappingRepo, metaRepo, introspector, log)
	templateService := services.NewTemplateService(templateRepo, log)
	dagService := services.NewDagService(mappingRepo, templateRepo, metaRepo, historyRepo, log)

	router := NewRouter(cfg.HTTP, routes.Handlers{
		Connection: handlers.NewConnectionHandler(connService),
		Metadata:   handlers.NewMetadataHandler(metaService),
		Mapping:    handlers.NewMappingHandler(mappingService),
		Template:   handlers.NewTemplateHandler(templateService),
		Dag:        handlers.NewDagHandler(dagService),
		Selection:  connService,
	}, log)

	return &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewRouter builds the gin engine with the shared middleware chain.
func NewRouter(cfg config.HTTPConfig, h routes.Handlers, log *zap.SugaredLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID)
	router.Use(middlewares.AccessLog(log))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	routes.RegisterRoutes(router, h)
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, middlewares.RequestIDHeader)
	c.ExposeHeaders = []string{middlewares.RequestIDHeader}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
