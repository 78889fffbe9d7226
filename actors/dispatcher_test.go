package actors_test

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/super-flat/actorsdi/actors"
	"github.com/super-flat/actorsdi/log"
	"github.com/super-flat/actorsdi/testkit"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// echoActor replies with the command it receives
type echoActor struct {
	id       string
	initErr  error
	received atomic.Int32
}

func (a *echoActor) Init(context.Context) error { return a.initErr }

func (a *echoActor) Receive(_ context.Context, command proto.Message, replyTo chan<- proto.Message) error {
	a.received.Add(1)
	if s, ok := command.(*wrapperspb.StringValue); ok && s.GetValue() == "panic" {
		panic("asked to")
	}
	replyTo <- command
	return nil
}

// releaseRecorder records released handles
type releaseRecorder struct {
	mtx      sync.Mutex
	releases []string
	gate     chan struct{}
}

func newReleaseRecorder() *releaseRecorder {
	return &releaseRecorder{}
}

func (r *releaseRecorder) Release(_ context.Context, handle string) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.releases = append(r.releases, handle)
	return nil
}

// count returns how many constructions of actorID were released
func (r *releaseRecorder) count(actorID string) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	count := 0
	for _, handle := range r.releases {
		if strings.Contains(handle, "/"+actorID+"#") {
			count++
		}
	}
	return count
}

// stubResolver builds echo actors by name
type stubResolver struct {
	*releaseRecorder
}

func (stubResolver) ActorType(name string) reflect.Type {
	if name == "echo" {
		return reflect.TypeOf(&echoActor{})
	}
	return nil
}

func (stubResolver) Factory(name string) actors.ActorFactory {
	return func(_ context.Context, actorID string, _ string) (actors.Actor, error) {
		if name != "echo" {
			return nil, errors.Errorf("unknown kind %s", name)
		}
		return &echoActor{id: actorID}, nil
	}
}

var _ = Describe("System", func() {
	It("accepts a single dependency resolver", func() {
		system := actors.NewSystem("test", actors.WithSystemLogger(log.DiscardLogger))
		resolver := stubResolver{newReleaseRecorder()}

		Expect(system.AddDependencyResolver(resolver)).To(Succeed())
		Expect(system.AddDependencyResolver(resolver)).To(MatchError(actors.ErrResolverAlreadyRegistered))
		Expect(system.DependencyResolver()).To(Equal(resolver))
		Expect(system.Name()).To(Equal("test"))
	})

	It("refuses props without a resolver", func() {
		system := actors.NewSystem("test", actors.WithSystemLogger(log.DiscardLogger))
		_, err := system.Props("echo")
		Expect(err).To(MatchError(actors.ErrNoDependencyResolver))
	})

	It("builds and releases actors through the resolver", func() {
		ctx := context.Background()
		system := actors.NewSystem("test", actors.WithSystemLogger(log.DiscardLogger))
		recorder := newReleaseRecorder()
		Expect(system.AddDependencyResolver(stubResolver{recorder})).To(Succeed())

		props, err := system.Props("echo")
		Expect(err).NotTo(HaveOccurred())
		Expect(props.Kind()).To(Equal("echo"))

		actor, handle, err := props.Produce(ctx, "a-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(actor.(*echoActor).id).To(Equal("a-1"))
		Expect(handle).To(HavePrefix("echo/a-1#"))
		Expect(props.Release(ctx, handle)).To(Succeed())
		Expect(recorder.count("a-1")).To(Equal(1))
	})
})

var _ = Describe("Props", func() {
	It("issues a new handle for every construction", func() {
		ctx := context.Background()
		var seen []string
		factory := func(_ context.Context, actorID string, handle string) (actors.Actor, error) {
			seen = append(seen, handle)
			return &echoActor{id: actorID}, nil
		}
		echo := actors.NewProps("echo", factory)
		greeter := actors.NewProps("greeter", factory)

		_, first, err := echo.Produce(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())
		_, second, err := echo.Produce(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())
		_, third, err := greeter.Produce(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())

		Expect(seen).To(Equal([]string{first, second, third}))
		Expect(first).NotTo(Equal(second))
		Expect(third).To(HavePrefix("greeter/user-1#"))
	})

	It("returns no handle when construction fails", func() {
		props := actors.NewProps("echo", func(context.Context, string, string) (actors.Actor, error) {
			return nil, errors.New("cannot build")
		})
		actor, handle, err := props.Produce(context.Background(), "user-1")
		Expect(err).To(MatchError("cannot build"))
		Expect(actor).To(BeNil())
		Expect(handle).To(BeEmpty())
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		ctx      context.Context
		recorder *releaseRecorder
		built    *sync.Map
		props    *actors.Props
	)

	BeforeEach(func() {
		ctx = context.Background()
		recorder = newReleaseRecorder()
		built = &sync.Map{}
		props = actors.NewProps("echo", func(_ context.Context, actorID string, _ string) (actors.Actor, error) {
			if actorID == "broken" {
				return nil, errors.New("cannot build")
			}
			actor := &echoActor{id: actorID}
			built.Store(actorID, actor)
			return actor, nil
		}).WithReleaser(recorder)
	})

	Context("on the calling thread", func() {
		var dispatcher *actors.Dispatcher

		BeforeEach(func() {
			dispatcher = actors.NewActorDispatcher(props,
				testkit.WithCallingThreadDispatcher(),
				actors.WithLogger(log.DiscardLogger),
				actors.WithPassivation(0),
				actors.WithAskTimeout(50*time.Millisecond),
				actors.WithInitBackOff(func() backoff.BackOff {
					return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1)
				}),
			)
		})

		AfterEach(func() {
			Expect(dispatcher.Shutdown(ctx)).To(Succeed())
		})

		It("is not ready before Start", func() {
			_, err := dispatcher.Send(ctx, "a-1", wrapperspb.String("hi"))
			Expect(err).To(MatchError(actors.ErrNotReady))
			dispatcher.Start()
			Expect(dispatcher.IsReceiving()).To(BeTrue())
		})

		It("creates actors on first message and replies", func() {
			dispatcher.Start()
			reply, err := dispatcher.Send(ctx, "a-1", wrapperspb.String("hi"))
			Expect(err).NotTo(HaveOccurred())
			Expect(proto.Equal(reply, wrapperspb.String("hi"))).To(BeTrue())

			_, err = dispatcher.Send(ctx, "a-1", wrapperspb.String("again"))
			Expect(err).NotTo(HaveOccurred())
			Expect(dispatcher.ActorCount()).To(Equal(1))
			actor, _ := built.Load("a-1")
			Expect(actor.(*echoActor).received.Load()).To(Equal(int32(2)))
		})

		It("surfaces construction failures to the sender", func() {
			dispatcher.Start()
			_, err := dispatcher.Send(ctx, "broken", wrapperspb.String("hi"))
			Expect(err).To(MatchError("cannot build"))
			Expect(dispatcher.ActorCount()).To(BeZero())
		})

		It("releases a stopped actor exactly once", func() {
			dispatcher.Start()
			_, err := dispatcher.Send(ctx, "a-1", wrapperspb.String("hi"))
			Expect(err).NotTo(HaveOccurred())

			Expect(dispatcher.Stop(ctx, "a-1")).To(Succeed())
			Expect(dispatcher.Stop(ctx, "a-1")).To(Succeed())
			Expect(recorder.count("a-1")).To(Equal(1))
			Expect(dispatcher.ActorCount()).To(BeZero())
		})

		It("ignores stopping an unknown actor", func() {
			dispatcher.Start()
			Expect(dispatcher.Stop(ctx, "nobody")).To(Succeed())
			Expect(recorder.count("nobody")).To(BeZero())
		})

		It("releases every actor on shutdown", func() {
			dispatcher.Start()
			for i := 0; i < 3; i++ {
				_, err := dispatcher.Send(ctx, fmt.Sprintf("a-%d", i), wrapperspb.String("hi"))
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(dispatcher.Shutdown(ctx)).To(Succeed())
			for i := 0; i < 3; i++ {
				Expect(recorder.count(fmt.Sprintf("a-%d", i))).To(Equal(1))
			}
			_, err := dispatcher.Send(ctx, "a-0", wrapperspb.String("hi"))
			Expect(err).To(MatchError(actors.ErrNotReady))
		})

		It("keeps processing after a panicking message", func() {
			dispatcher.Start()
			_, err := dispatcher.Send(ctx, "a-1", wrapperspb.String("panic"))
			Expect(err).To(MatchError(actors.ErrAskTimeout))
			reply, err := dispatcher.Send(ctx, "a-1", wrapperspb.String("fine"))
			Expect(err).NotTo(HaveOccurred())
			Expect(proto.Equal(reply, wrapperspb.String("fine"))).To(BeTrue())
		})
	})

	It("logs a panicking message as an actor error", func() {
		logger, logs := testkit.NewObservedLogger(log.ErrorLevel)
		dispatcher := actors.NewActorDispatcher(props,
			testkit.WithCallingThreadDispatcher(),
			actors.WithLogger(logger),
			actors.WithPassivation(0),
			actors.WithAskTimeout(20*time.Millisecond),
		)
		dispatcher.Start()
		_, err := dispatcher.Send(ctx, "a-1", wrapperspb.String("panic"))
		Expect(err).To(MatchError(actors.ErrAskTimeout))
		Expect(logs.FilterMessageSnippet("actor panicked: asked to").Len()).To(Equal(1))
		Expect(dispatcher.Shutdown(ctx)).To(Succeed())
	})

	It("drops messages for actors that fail to initialize", func() {
		failing := actors.NewProps("failing", func(_ context.Context, actorID string, _ string) (actors.Actor, error) {
			return &echoActor{id: actorID, initErr: errors.New("no database")}, nil
		}).WithReleaser(recorder)
		dispatcher := actors.NewActorDispatcher(failing,
			testkit.WithCallingThreadDispatcher(),
			actors.WithLogger(log.DiscardLogger),
			actors.WithPassivation(0),
			actors.WithAskTimeout(20*time.Millisecond),
			actors.WithInitBackOff(func() backoff.BackOff {
				return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
			}),
		)
		dispatcher.Start()
		_, err := dispatcher.Send(ctx, "a-1", wrapperspb.String("hi"))
		Expect(err).To(MatchError(actors.ErrAskTimeout))
		Expect(dispatcher.Shutdown(ctx)).To(Succeed())
		Expect(recorder.count("a-1")).To(Equal(1))
	})

	Context("on goroutines", func() {
		It("serves many actors concurrently", func() {
			dispatcher := actors.NewActorDispatcher(props,
				actors.WithLogger(log.DiscardLogger),
				actors.WithPassivation(0),
				actors.WithPartitions(4),
			)
			dispatcher.Start()
			defer func() { Expect(dispatcher.Shutdown(ctx)).To(Succeed()) }()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					actorID := fmt.Sprintf("a-%d", i%5)
					msg := wrapperspb.String(fmt.Sprintf("msg-%d", i))
					reply, err := dispatcher.Send(ctx, actorID, msg)
					Expect(err).NotTo(HaveOccurred())
					Expect(proto.Equal(reply, msg)).To(BeTrue())
				}(i)
			}
			wg.Wait()
			Expect(dispatcher.ActorCount()).To(Equal(5))
		})

		It("waits for a stopping actor and rebuilds it once it is released", func() {
			recorder.gate = make(chan struct{})
			dispatcher := actors.NewActorDispatcher(props,
				actors.WithLogger(log.DiscardLogger),
				actors.WithPassivation(0),
			)
			dispatcher.Start()

			_, err := dispatcher.Send(ctx, "slow", wrapperspb.String("hi"))
			Expect(err).NotTo(HaveOccurred())
			first, _ := built.Load("slow")

			stopped := make(chan error, 1)
			go func() { stopped <- dispatcher.Stop(ctx, "slow") }()
			// the mailbox refuses messages while the release is pending
			Eventually(func() error {
				shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
				defer cancel()
				_, err := dispatcher.Send(shortCtx, "slow", wrapperspb.String("hi"))
				return err
			}, time.Second, 5*time.Millisecond).Should(MatchError(context.DeadlineExceeded))

			close(recorder.gate)
			Eventually(stopped, time.Second).Should(Receive(BeNil()))

			reply, err := dispatcher.Send(ctx, "slow", wrapperspb.String("again"))
			Expect(err).NotTo(HaveOccurred())
			Expect(proto.Equal(reply, wrapperspb.String("again"))).To(BeTrue())
			second, _ := built.Load("slow")
			Expect(second).NotTo(BeIdenticalTo(first))
			Expect(recorder.count("slow")).To(Equal(1))
			Expect(dispatcher.Shutdown(ctx)).To(Succeed())
		})

		It("passivates and releases idle actors", func() {
			dispatcher := actors.NewActorDispatcher(props,
				actors.WithLogger(log.DiscardLogger),
				actors.WithPassivation(20*time.Millisecond),
				actors.WithPassivationFrequency(10*time.Millisecond),
			)
			dispatcher.Start()
			defer func() { Expect(dispatcher.Shutdown(ctx)).To(Succeed()) }()

			_, err := dispatcher.Send(ctx, "sleepy", wrapperspb.String("hi"))
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() int { return recorder.count("sleepy") }, time.Second, 5*time.Millisecond).Should(Equal(1))
			Eventually(dispatcher.ActorCount, time.Second, 5*time.Millisecond).Should(BeZero())
		})
	})
})

var _ = Describe("Spawn", func() {
	It("returns a reference to a running actor", func() {
		ctx := context.Background()
		ref, err := actors.Spawn(ctx, "solo", func(_ context.Context, actorID string, _ string) (actors.Actor, error) {
			return &echoActor{id: actorID}, nil
		}, actors.WithLogger(log.DiscardLogger), testkit.WithCallingThreadDispatcher())
		Expect(err).NotTo(HaveOccurred())
		Expect(ref.ID).To(Equal("solo"))

		reply, err := ref.Send(ctx, wrapperspb.String("ping"))
		Expect(err).NotTo(HaveOccurred())
		Expect(proto.Equal(reply, wrapperspb.String("ping"))).To(BeTrue())
		Expect(ref.Stop(ctx)).To(Succeed())
	})

	It("reports factory errors", func() {
		_, err := actors.Spawn(context.Background(), "solo", func(context.Context, string, string) (actors.Actor, error) {
			return nil, errors.New("nope")
		}, actors.WithLogger(log.DiscardLogger))
		Expect(err).To(MatchError("nope"))
	})
})

var _ = Describe("HashModPartitioner", func() {
	It("is stable and in range", func() {
		partitioner := actors.NewHashModPartitioner(8)
		for i := 0; i < 100; i++ {
			actorID := fmt.Sprintf("actor-%d", i)
			partition := partitioner.Get(actorID)
			Expect(partition).To(BeNumerically("<", 8))
			Expect(partitioner.Get(actorID)).To(Equal(partition))
		}
	})

	It("treats zero partitions as one", func() {
		Expect(actors.NewHashModPartitioner(0).Get("any")).To(BeZero())
	})
})
