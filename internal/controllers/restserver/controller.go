// Package restserver exposes the observability engine over HTTP. It is the
// reporter-facing surface: grids, event predictions, and ephemeris
// snapshots go out as flat JSON or MessagePack data for plotting and
// tabulation layers to consume.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/clearskies/obsplan/internal/log"
	"github.com/clearskies/obsplan/internal/metrics"
	"github.com/clearskies/obsplan/internal/types"
	"github.com/clearskies/obsplan/pkg/catalog"
	"github.com/clearskies/obsplan/pkg/config"
	"github.com/clearskies/obsplan/pkg/constraints"
	"github.com/clearskies/obsplan/pkg/ephemeris"
	"github.com/clearskies/obsplan/pkg/observability"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, provider config.ConfigProvider, rc config.RESTServerData, recordChan chan<- types.EvaluationRecord, logger *zap.SugaredLogger) (*Controller, error) {
	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}
	if len(cfgData.Sites) == 0 {
		return nil, fmt.Errorf("no observing sites configured - at least one site is required for the REST server")
	}

	observers := make(map[string]*constraints.Observer, len(cfgData.Sites))
	ephProvider := ephemeris.NewMeeus()
	for _, site := range cfgData.Sites {
		observers[site.Name] = constraints.NewObserver(site.Name, ephemeris.Location{
			LatitudeDeg:  site.Latitude,
			LongitudeDeg: site.Longitude,
			ElevationM:   site.Elevation,
			PressureMb:   site.PressureMb,
			TemperatureC: site.TemperatureC,
		}, ephProvider)
	}

	var resolver catalog.Resolver = catalog.BrightStars()
	if cfgData.Catalog.SQLitePath != "" {
		sqliteResolver, err := catalog.NewSQLiteResolver(cfgData.Catalog.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("error opening target catalog: %v", err)
		}
		resolver = sqliteResolver
	}

	evaluator := &observability.Evaluator{
		Workers:       cfgData.Evaluator.Workers,
		Strict:        cfgData.Evaluator.Strict,
		SampleTimeout: time.Duration(cfgData.Evaluator.SampleTimeoutSeconds) * time.Second,
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		logger:     logger,
		handlers: NewHandlers(observers, defaultSiteName(cfgData.Sites), resolver,
			evaluator, ephProvider, recordChan, logger),
	}

	router := mux.NewRouter()
	ctrl.registerRoutes(router)

	ctrl.Server = http.Server{
		Addr:         fmt.Sprintf("%s:%d", rc.ListenAddr, rc.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return ctrl, nil
}

func defaultSiteName(sites []config.SiteData) string {
	return sites[0].Name
}

func (c *Controller) registerRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/observability", c.handlers.Observability).Methods(http.MethodPost)
	api.HandleFunc("/events", c.handlers.Events).Methods(http.MethodGet)
	api.HandleFunc("/ephemeris", c.handlers.Ephemeris).Methods(http.MethodGet)

	router.HandleFunc("/health", c.handlers.Health).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}

// StartController starts the HTTP listener and ties its lifetime to the
// controller context.
func (c *Controller) StartController() error {
	log.Info("starting REST server controller...")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		log.Infof("REST server listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("REST server shutdown error: %v", err)
		}
	}()

	return nil
}
