package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/super-flat/actorsdi/actors"
	promadapter "github.com/super-flat/actorsdi/adapters/prometheus"
	"github.com/super-flat/actorsdi/container"
	"github.com/super-flat/actorsdi/di"
	"github.com/super-flat/actorsdi/log"
	"github.com/super-flat/actorsdi/sample/actor"
	"go.uber.org/multierr"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type runConfig struct {
	actors         int
	messages       int
	passivateAfter time.Duration
	metricsAddr    string
	logLevel       string
	word           string
}

var runFlags runConfig

func init() {
	flags := runCMD.Flags()
	flags.IntVar(&runFlags.actors, "actors", envInt("ACTORS", 5), "number of greeters to talk to")
	flags.IntVar(&runFlags.messages, "messages", envInt("MESSAGES", 10), "messages sent to every greeter")
	flags.DurationVar(&runFlags.passivateAfter, "passivate-after", envDuration("PASSIVATE_AFTER", 2*time.Second), "idle time before a greeter is passivated")
	flags.StringVar(&runFlags.metricsAddr, "metrics-addr", envString("METRICS_ADDR", ""), "serve prometheus metrics on this address")
	flags.StringVar(&runFlags.logLevel, "log-level", envString("LOG_LEVEL", "info"), "debug, info, warn or error")
	flags.StringVar(&runFlags.word, "word", envString("WORD", "Hello"), "greeting word")
	rootCmd.AddCommand(runCMD)
}

var runCMD = &cobra.Command{
	Use:   "run",
	Short: "Greet a few names through dependency injected actors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger := log.New(log.ParseLevel(runFlags.logLevel), os.Stdout)
		defer func() { _ = logger.Sync() }()
		return Sample(ctx, runFlags, logger)
	},
}

// Sample wires the greeter through the container and sends it messages
func Sample(ctx context.Context, config runConfig, logger *log.Log) (err error) {
	registry := prometheus.NewRegistry()
	if config.metricsAddr != "" {
		server := serveMetrics(config.metricsAddr, registry, logger)
		defer func() { _ = server.Shutdown(context.Background()) }()
	}

	// register the greeter and its dependencies
	c := container.New(container.WithLogger(logger))
	if err := actor.Register(c, actor.GreeterConfig{Word: config.word}, logger); err != nil {
		return err
	}

	// hook the container into the actor system
	system := actors.NewSystem("sample", actors.WithSystemLogger(logger))
	resolver, err := di.NewResolver(c, c, system,
		di.WithLogger(logger),
		di.WithMetrics(promadapter.NewResolverMetrics(registry)),
	)
	if err != nil {
		return err
	}
	props, err := di.PropsFor[*actor.Greeter](resolver)
	if err != nil {
		return err
	}
	dispatcher := system.NewDispatcher(props,
		actors.WithPassivation(config.passivateAfter),
		actors.WithPassivationFrequency(config.passivateAfter/2),
		actors.WithMetrics(promadapter.NewRuntimeMetrics(registry)),
	)
	dispatcher.Start()
	defer func() {
		err = multierr.Combine(err, dispatcher.Shutdown(context.Background()), resolver.Shutdown(context.Background()))
	}()

	var wg sync.WaitGroup
	errs := make([]error, config.actors)
	for i := 0; i < config.actors; i++ {
		actorID := fmt.Sprintf("greeter-%s", gonanoid.Must(8))
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = sendMessages(ctx, dispatcher, actorID, config.messages, logger)
		}(i)
	}
	wg.Wait()
	logger.Infof("[sample] %d greeters answered, %d still bound", config.actors, resolver.Live())
	return multierr.Combine(errs...)
}

func sendMessages(ctx context.Context, dispatcher *actors.Dispatcher, actorID string, count int, logger log.Logger) error {
	for i := 0; i < count; i++ {
		reply, err := dispatcher.Send(ctx, actorID, wrapperspb.String(fmt.Sprintf("visitor %d", i)))
		if err != nil {
			return err
		}
		logger.Debugf("[sample] (%s) replied '%s'", actorID, reply.(*wrapperspb.StringValue).GetValue())
	}
	return nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("[sample] serving metrics on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("[sample] metrics server failed, err=%s", err.Error())
		}
	}()
	return server
}
