// Command scimdemo wires the SCIM core engine to an in-memory resource
// handler and serves it over HTTP, for manual exploration.
package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/openidx/scimcore/internal/common/logger"
	"github.com/openidx/scimcore/internal/scim"
	"github.com/openidx/scimcore/internal/scim/scimgin"
	"github.com/openidx/scimcore/internal/scim/scimmem"
)

func main() {
	log := logger.New()
	defer log.Sync()

	v := viper.New()
	v.SetEnvPrefix("SCIMDEMO")
	v.AutomaticEnv()
	limits, spc := scim.LoadConfig(v)

	reg := prometheus.NewRegistry()
	metrics := scim.NewMetrics(reg)

	registry := scim.NewRegistry()
	registry.Register(scimmem.NewUsersHandler())
	registry.Register(scimmem.NewGroupsHandler())

	auth := demoAuthenticator()
	router := scim.NewRouter(registry, auth, limits, spc, log, metrics)

	engine := gin.New()
	engine.Use(gin.Recovery(), logger.GinMiddleware(log))
	scimgin.Bind(engine, router)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	addr := os.Getenv("SCIMDEMO_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Sugar().Infof("scimdemo listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Sugar().Fatalf("scimdemo server exited: %v", err)
	}
}

func demoAuthenticator() scim.Authenticator {
	if token := os.Getenv("SCIMDEMO_TOKEN"); token != "" {
		return scim.NewStaticTokenAuthenticator(map[string]string{token: "default"})
	}
	return scim.NoAuthAuthenticator{}
}
